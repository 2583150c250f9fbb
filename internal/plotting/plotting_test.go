package plotting

import (
	"bytes"
	"path/filepath"
	"testing"

	"alre/domain/frame"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func sampleFrames(t *testing.T) (*frame.Frame, *frame.Frame) {
	t.Helper()
	idx := []float64{0, 0.5, 1}
	mean, err := frame.FromRows(idx, []string{"Iteration 1", "Iteration 2"},
		[][]float64{{1, 0.5}, {2, 0.7}, {1.5, 0.2}})
	require.NoError(t, err)
	stderr, err := frame.FromRows(idx, []string{"Iteration 1", "Iteration 2"},
		[][]float64{{0.1, 0.05}, {0.2, 0.1}, {0.1, 0.0}})
	require.NoError(t, err)
	return mean, stderr
}

func TestLineGraphWithErrors_AddsLegendEntryPerColumn(t *testing.T) {
	mean, stderr := sampleFrames(t)
	fig := NewFigure("mle_err", 1)

	require.NoError(t, LineGraphWithErrors(fig.Panel(0), mean, stderr))

	var buf bytes.Buffer
	require.NoError(t, fig.Render(&buf, "svg", DefaultWidth, DefaultHeight))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Iteration 2")
}

func TestLineGraphWithErrors_ShapeMismatch(t *testing.T) {
	mean, _ := sampleFrames(t)
	other, err := frame.FromRows([]float64{0}, []string{"x"}, [][]float64{{1}})
	require.NoError(t, err)
	assert.Error(t, LineGraphWithErrors(NewFigure("x", 1).Panel(0), mean, other))
}

func TestRender_PNGMultiPanel(t *testing.T) {
	mean, _ := sampleFrames(t)
	fig := NewFigure("test_stat", 2)
	require.NoError(t, OverlayColumns(fig.Panel(0), mean, WithAlpha(ExactColor, OverlayAlpha)))
	require.NoError(t, OverlayColumns(fig.Panel(1), mean, WithAlpha(EstimColor, OverlayAlpha)))

	var buf bytes.Buffer
	require.NoError(t, fig.Render(&buf, "png", 4*vg.Inch, 4*vg.Inch))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRender_UnknownFormat(t *testing.T) {
	fig := NewFigure("x", 1)
	var buf bytes.Buffer
	assert.Error(t, fig.Render(&buf, "gif", DefaultWidth, DefaultHeight))
	assert.Error(t, (&Figure{Name: "empty"}).Render(&buf, "png", DefaultWidth, DefaultHeight))
}

func TestSave_PDFByExtension(t *testing.T) {
	mean, stderr := sampleFrames(t)
	fig := NewFigure("mse", 1)
	require.NoError(t, LineGraphWithErrors(fig.Panel(0), mean, stderr))

	path := filepath.Join(t.TempDir(), "mse.pdf")
	require.NoError(t, fig.Save(path, DefaultWidth, DefaultHeight))
	assert.FileExists(t, path)
}

func TestFiguresNames(t *testing.T) {
	fs := Figures{"test_stat": nil, "mle_err": nil, "mse": nil}
	assert.Equal(t, []string{"mle_err", "mse", "test_stat"}, fs.Names())
}

func TestAddColumn(t *testing.T) {
	mean, _ := sampleFrames(t)
	fig := NewFigure("debug", 1)
	assert.NoError(t, AddColumn(fig.Panel(0), mean, "Iteration 1", ExactColor))
	assert.Error(t, AddColumn(fig.Panel(0), mean, "Exact", ExactColor))
}
