package ports

import (
	"context"

	"alre/domain/frame"
	"alre/domain/run"
	"alre/internal/plotting"
)

// ArtifactSinkPort persists what an analysis run produces. Each method returns
// the location the artifact was written to.
type ArtifactSinkPort interface {
	WriteFigure(ctx context.Context, fig *plotting.Figure) (string, error)
	WriteCurves(ctx context.Context, name string, curves []frame.Named) (string, error)
	WriteManifest(ctx context.Context, manifest *run.ReportManifest) (string, error)
	WriteReport(ctx context.Context, name string, content []byte) (string, error)
}
