package plotting

import (
	"fmt"
	"image/color"

	"alre/domain/frame"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// OverlayAlpha is the opacity used for per-restart overlays (0.2)
const OverlayAlpha = 51

var (
	ExactColor = color.NRGBA{B: 255, A: 255}
	EstimColor = color.NRGBA{R: 255, A: 255}
)

// WithAlpha returns c with its alpha channel replaced
func WithAlpha(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

type yerrs struct {
	plotter.XYs
	plotter.YErrors
}

func columnXYs(f *frame.Frame, j int) plotter.XYs {
	col := f.ColAt(j)
	xys := make(plotter.XYs, len(col))
	for i, v := range col {
		xys[i].X = f.Index[i]
		xys[i].Y = v
	}
	return xys
}

// LineGraphWithErrors plots every column of mean against the row index with
// symmetric error bars taken from the matching column of stderr.
func LineGraphWithErrors(p *plot.Plot, mean, stderr *frame.Frame) error {
	if !mean.SameShape(stderr) {
		return fmt.Errorf("mean and stderr tables differ in shape")
	}
	_, cols := mean.Dims()
	for j := 0; j < cols; j++ {
		xys := columnXYs(mean, j)
		errCol := stderr.ColAt(j)
		bars := yerrs{XYs: xys, YErrors: make(plotter.YErrors, len(errCol))}
		for i, e := range errCol {
			bars.YErrors[i].Low = e
			bars.YErrors[i].High = e
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("column %q: %w", mean.Columns[j], err)
		}
		line.LineStyle.Color = plotutil.Color(j)
		line.LineStyle.Width = vg.Points(1.5)

		errBars, err := plotter.NewYErrorBars(bars)
		if err != nil {
			return fmt.Errorf("column %q error bars: %w", mean.Columns[j], err)
		}
		errBars.LineStyle.Color = plotutil.Color(j)
		errBars.CapWidth = vg.Points(3)

		p.Add(line, errBars)
		p.Legend.Add(mean.Columns[j], line)
	}
	p.Legend.Top = true
	p.X.Label.Text = mean.IndexName
	return nil
}

// OverlayColumns draws every column of f as an unlabelled line in c
func OverlayColumns(p *plot.Plot, f *frame.Frame, c color.Color) error {
	_, cols := f.Dims()
	for j := 0; j < cols; j++ {
		line, err := plotter.NewLine(columnXYs(f, j))
		if err != nil {
			return fmt.Errorf("column %q: %w", f.Columns[j], err)
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
	}
	return nil
}

// AddColumn draws a single named column as a labelled line
func AddColumn(p *plot.Plot, f *frame.Frame, name string, c color.Color) error {
	j := f.ColumnIndex(name)
	if j < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	line, err := plotter.NewLine(columnXYs(f, j))
	if err != nil {
		return err
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
