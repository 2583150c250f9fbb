package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"alre/domain/core"
	"alre/domain/run"
	"alre/internal"
	"alre/internal/analysis"
	"alre/internal/errors"
	"alre/internal/report"
	"alre/ports"
)

// Base names of auxiliary artifacts
const (
	CurvesWorkbook = "curves"
	ReportName     = "report"
)

// AnalysisService runs the full pipeline: load result tables, build the
// figures, write them out and record a manifest of the run
type AnalysisService struct {
	source      ports.TableSourcePort
	sink        ports.ArtifactSinkPort
	logger      *internal.Logger
	codeVersion string
}

// AnalysisRequest selects what a run produces
type AnalysisRequest struct {
	ResultsDir     string
	Options        map[string]any
	ExportWorkbook bool
	WriteManifest  bool
	WriteReport    bool
	RunID          core.RunID // optional, generated if empty
}

// AnalysisResult describes one completed run
type AnalysisResult struct {
	RunID     core.RunID          `json:"run_id"`
	Figures   map[string]string   `json:"figures"`
	Workbook  string              `json:"workbook,omitempty"`
	Report    string              `json:"report,omitempty"`
	Manifest  *run.ReportManifest `json:"-"`
	Summary   *analysis.Summary   `json:"summary"`
	RuntimeMs int64               `json:"runtime_ms"`
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(source ports.TableSourcePort, sink ports.ArtifactSinkPort, logger *internal.Logger, codeVersion string) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		source:      source,
		sink:        sink,
		logger:      logger,
		codeVersion: codeVersion,
	}
}

// Load reads the three result sets and checks they are complete
func (s *AnalysisService) Load(ctx context.Context) (analysis.Results, error) {
	sets, err := s.source.LoadResults(ctx, analysis.ResultSetKeys)
	if err != nil {
		return analysis.Results{}, errors.Wrap(err, "failed to load results")
	}
	results, err := analysis.ResultsFromMap(sets)
	if err != nil {
		return analysis.Results{}, errors.InvalidInput("incomplete results", err)
	}
	return results, nil
}

// Summarise loads the results and computes the run summary without rendering
func (s *AnalysisService) Summarise(ctx context.Context) (*analysis.Summary, error) {
	results, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := analysis.Summarise(results)
	if err != nil {
		return nil, errors.InvalidInput("failed to summarise results", err)
	}
	return summary, nil
}

// Run executes the pipeline. Nothing is written unless every figure builds.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	start := time.Now()

	runID := req.RunID
	if runID == "" {
		runID = core.NewRunID()
	}

	results, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	manifest := run.NewReportManifest(runID, req.ResultsDir, results.Sets(), s.codeVersion)
	manifest.Options = req.Options

	figs, err := analysis.Analyse(results, req.Options)
	if err != nil {
		return nil, errors.InvalidInput("analysis failed", err)
	}
	summary, err := analysis.Summarise(results)
	if err != nil {
		return nil, errors.InvalidInput("failed to summarise results", err)
	}
	manifest.Summary = summary

	out := &AnalysisResult{
		RunID:   runID,
		Figures: make(map[string]string, len(figs)),
		Summary: summary,
	}

	for _, name := range figs.Names() {
		path, err := s.sink.WriteFigure(ctx, figs[name])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to write figure %s", name)
		}
		out.Figures[name] = path
		manifest.AddArtifact(core.ArtifactFigure, name, path)
	}

	if req.ExportWorkbook {
		curves, err := analysis.Curves(results)
		if err != nil {
			return nil, errors.InvalidInput("failed to build curves", err)
		}
		path, err := s.sink.WriteCurves(ctx, CurvesWorkbook, curves)
		if err != nil {
			return nil, errors.Wrap(err, "failed to write curve workbook")
		}
		out.Workbook = path
		manifest.AddArtifact(core.ArtifactWorkbook, CurvesWorkbook, path)
	}

	if req.WriteReport {
		if err := s.writeReport(ctx, req, out, manifest); err != nil {
			return nil, err
		}
	}

	manifest.Complete()
	if req.WriteManifest {
		if err := manifest.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid manifest")
		}
		if _, err := s.sink.WriteManifest(ctx, manifest); err != nil {
			return nil, errors.Wrap(err, "failed to write manifest")
		}
	}
	out.Manifest = manifest
	out.RuntimeMs = time.Since(start).Milliseconds()

	s.logger.Info("run %s: wrote %d figures in %dms", runID, len(out.Figures), out.RuntimeMs)
	return out, nil
}

func (s *AnalysisService) writeReport(ctx context.Context, req AnalysisRequest, out *AnalysisResult, manifest *run.ReportManifest) error {
	// every figure is written to the same directory
	var dir string
	for _, path := range out.Figures {
		dir = filepath.Dir(path)
		break
	}
	md := report.Markdown(report.Run{
		RunID:      out.RunID,
		ResultsDir: req.ResultsDir,
		Figures:    out.Figures,
		Summary:    out.Summary,
	}, dir)

	mdPath, err := s.sink.WriteReport(ctx, ReportName+".md", md)
	if err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	htmlPath, err := s.sink.WriteReport(ctx, ReportName+".html", report.HTML(md, "Run "+out.RunID.String()))
	if err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	manifest.AddArtifact(core.ArtifactReport, ReportName+".md", mdPath)
	manifest.AddArtifact(core.ArtifactReport, ReportName+".html", htmlPath)
	out.Report = htmlPath
	return nil
}

// String renders a one-line description of the result
func (r *AnalysisResult) String() string {
	return fmt.Sprintf("run %s: %d figures", r.RunID, len(r.Figures))
}
