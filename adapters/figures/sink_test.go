package figures

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"alre/adapters/tables"
	"alre/domain/core"
	"alre/domain/frame"
	"alre/domain/run"
	"alre/internal"
	apperrors "alre/internal/errors"
	"alre/internal/plotting"
	"alre/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

func testFigure(t *testing.T) *plotting.Figure {
	t.Helper()
	fig := plotting.NewFigure("curve", 1)
	line, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: 2}})
	require.NoError(t, err)
	fig.Panel(0).Add(line)
	return fig
}

func TestWriteFigure(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(filepath.Join(dir, "out"), "SVG", 0, 0, internal.NewNopLogger())

	path, err := sink.WriteFigure(context.Background(), testFigure(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "curve.svg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("<svg")))
}

func TestWriteFigure_UnsupportedFormat(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "gif", 4, 3, internal.NewNopLogger())
	_, err := sink.WriteFigure(context.Background(), testFigure(t))
	require.Error(t, err)
	assert.Equal(t, "RENDER_ERROR", apperrors.GetCode(err))
	_, statErr := os.Stat(filepath.Join(sink.Dir(), "curve.gif"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFigure_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := NewFileSink(t.TempDir(), "png", 0, 0, internal.NewNopLogger())
	_, err := sink.WriteFigure(ctx, testFigure(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteCurves(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "png", 0, 0, internal.NewNopLogger())
	mean := testkit.Table([]string{"UCB", "Random"}, []float64{1, 2}, []float64{0.5, 1.5})
	stderr := testkit.Table([]string{"UCB", "Random"}, []float64{0.1, 0.2}, []float64{0.05, 0.1})

	path, err := sink.WriteCurves(context.Background(), "curves", []frame.Named{
		{Name: "mse_mean", Frame: mean},
		{Name: "mse_stderr", Frame: stderr},
	})
	require.NoError(t, err)
	assert.Equal(t, "curves.xlsx", filepath.Base(path))

	back, err := tables.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mean.Columns, back.Columns)
	assert.Equal(t, mean.ColAt(1), back.ColAt(1))
}

func TestManifestRoundTrip(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)
	m := run.NewReportManifest(core.NewRunID(), "results", exp.Map(), "test")
	m.AddArtifact(core.ArtifactFigure, "mse", "out/mse.png")
	m.Complete()

	sink := NewFileSink(t.TempDir(), "png", 0, 0, internal.NewNopLogger())
	path, err := sink.WriteManifest(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, ManifestFile, filepath.Base(path))

	back, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, back.RunID)
	assert.Equal(t, m.InputFingerprint, back.InputFingerprint)
	assert.Equal(t, m.Restarts, back.Restarts)
	require.Len(t, back.ArtifactsOfKind(core.ArtifactFigure), 1)
	assert.NoError(t, back.Validate())
}

func TestWriteReport(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "png", 0, 0, internal.NewNopLogger())
	path, err := sink.WriteReport(context.Background(), "../report.md", []byte("# run"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sink.Dir(), "report.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# run", string(data))
}
