// Package figures persists rendered charts, curve workbooks and run manifests
// to a local output directory.
package figures

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"alre/adapters/tables"
	"alre/domain/frame"
	"alre/domain/run"
	"alre/internal"
	"alre/internal/errors"
	"alre/internal/plotting"

	"gonum.org/v1/plot/vg"
)

// ManifestFile is the file name of the run manifest inside the output directory
const ManifestFile = "manifest.json"

// FileSink writes artifacts below one output directory
type FileSink struct {
	dir    string
	format string
	width  vg.Length
	height vg.Length
	logger *internal.Logger
}

// NewFileSink creates a sink rendering figures in format at the given size in inches.
// Non-positive sizes fall back to the default figure size.
func NewFileSink(dir, format string, widthIn, heightIn float64, logger *internal.Logger) *FileSink {
	width, height := plotting.DefaultWidth, plotting.DefaultHeight
	if widthIn > 0 {
		width = vg.Length(widthIn) * vg.Inch
	}
	if heightIn > 0 {
		height = vg.Length(heightIn) * vg.Inch
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FileSink{
		dir:    dir,
		format: strings.ToLower(format),
		width:  width,
		height: height,
		logger: logger,
	}
}

// Dir returns the output directory
func (s *FileSink) Dir() string {
	return s.dir
}

func (s *FileSink) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.IOError("failed to create output directory "+s.dir, err)
	}
	return nil
}

// WriteFigure renders fig to <dir>/<name>.<format>
func (s *FileSink) WriteFigure(ctx context.Context, fig *plotting.Figure) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, fig.Name+"."+s.format)
	out, err := os.Create(path)
	if err != nil {
		return "", errors.IOError("failed to create "+path, err)
	}
	if err := fig.Render(out, s.format, s.width, s.height); err != nil {
		out.Close()
		os.Remove(path)
		return "", errors.RenderError(fig.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", errors.IOError("failed to close "+path, err)
	}
	s.logger.Debug("wrote figure %s", path)
	return path, nil
}

// WriteCurves stores named tables as sheets of <dir>/<name>.xlsx
func (s *FileSink) WriteCurves(ctx context.Context, name string, curves []frame.Named) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name+"."+tables.TypeXLSX)
	if err := tables.WriteWorkbook(path, curves); err != nil {
		return "", err
	}
	s.logger.Debug("wrote %d curve sheets to %s", len(curves), path)
	return path, nil
}

// WriteManifest stores the manifest as indented JSON
func (s *FileSink) WriteManifest(ctx context.Context, manifest *run.ReportManifest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode manifest")
	}
	path := filepath.Join(s.dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.IOError("failed to write "+path, err)
	}
	return path, nil
}

// WriteReport stores a report document under its file name
func (s *FileSink) WriteReport(ctx context.Context, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.IOError("failed to write "+path, err)
	}
	return path, nil
}

// ReadManifest loads a manifest previously written by WriteManifest
func ReadManifest(path string) (*run.ReportManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("failed to read "+path, err)
	}
	var m run.ReportManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.InvalidInput("malformed manifest "+path, err)
	}
	return &m, nil
}
