package run

import (
	"fmt"
	"sort"
	"strings"

	"alre/domain/core"
	"alre/domain/frame"
)

// ArtifactRecord points at one file written by a run
type ArtifactRecord struct {
	Kind core.ArtifactKind `json:"kind"`
	Name string            `json:"name"`
	Path string            `json:"path"`
}

// ReportManifest is the audit record of one analysis run: which inputs were
// read, what was produced and when
type ReportManifest struct {
	RunID            core.RunID       `json:"run_id"`
	ResultsDir       string           `json:"results_dir"`
	InputFingerprint core.Hash        `json:"input_fingerprint"`
	Restarts         map[string]int   `json:"restarts"`
	Options          map[string]any   `json:"options,omitempty"`
	Artifacts        []ArtifactRecord `json:"artifacts"`
	Summary          interface{}      `json:"summary,omitempty"`
	CodeVersion      string           `json:"code_version"`
	StartedAt        core.Timestamp   `json:"started_at"`
	CompletedAt      core.Timestamp   `json:"completed_at"`
}

// NewReportManifest creates a manifest for the given inputs
func NewReportManifest(
	runID core.RunID,
	resultsDir string,
	sets map[string][]*frame.Frame,
	codeVersion string,
) *ReportManifest {
	restarts := make(map[string]int, len(sets))
	for key, tables := range sets {
		restarts[key] = len(tables)
	}
	return &ReportManifest{
		RunID:            runID,
		ResultsDir:       resultsDir,
		InputFingerprint: ComputeInputFingerprint(sets),
		Restarts:         restarts,
		CodeVersion:      codeVersion,
		StartedAt:        core.Now(),
	}
}

// AddArtifact records a written file
func (m *ReportManifest) AddArtifact(kind core.ArtifactKind, name, path string) {
	m.Artifacts = append(m.Artifacts, ArtifactRecord{Kind: kind, Name: name, Path: path})
}

// Complete stamps the completion time
func (m *ReportManifest) Complete() {
	m.CompletedAt = core.Now()
}

// ArtifactsOfKind returns records of one kind in insertion order
func (m *ReportManifest) ArtifactsOfKind(kind core.ArtifactKind) []ArtifactRecord {
	var out []ArtifactRecord
	for _, a := range m.Artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks if the manifest is complete
func (m *ReportManifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("report manifest: run_id cannot be empty")
	}
	if m.InputFingerprint.IsEmpty() {
		return fmt.Errorf("report manifest: input_fingerprint cannot be empty")
	}
	if m.CodeVersion == "" {
		return fmt.Errorf("report manifest: code_version cannot be empty")
	}
	return nil
}

// ComputeInputFingerprint hashes every table's labels, index and values.
// Identical inputs yield identical fingerprints regardless of map order.
func ComputeInputFingerprint(sets map[string][]*frame.Frame) core.Hash {
	keys := make([]string, 0, len(sets))
	for k := range sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fp := core.NewFingerprint()
	for _, key := range keys {
		for k, fr := range sets[key] {
			if fr == nil {
				continue
			}
			prefix := fmt.Sprintf("%s/%d", key, k)
			fp.AddString(prefix+"/columns", fr.IndexName+"|"+strings.Join(fr.Columns, "|"))
			fp.AddFloats(prefix+"/index", fr.Index)
			_, cols := fr.Dims()
			for j := 0; j < cols; j++ {
				fp.AddFloats(prefix+"/values", fr.ColAt(j))
			}
		}
	}
	return fp.Sum()
}
