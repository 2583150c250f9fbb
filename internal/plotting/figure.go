// Package plotting builds and renders the analysis charts with gonum/plot.
package plotting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Default figure size, matching the usual 6.4x4.8 inch chart
const (
	DefaultWidth  = 6.4 * vg.Inch
	DefaultHeight = 4.8 * vg.Inch
)

// Figure is a rendered-on-demand chart made of vertically stacked panels
type Figure struct {
	Name   string
	Panels []*plot.Plot
}

// NewFigure creates a figure with n empty panels
func NewFigure(name string, n int) *Figure {
	panels := make([]*plot.Plot, n)
	for i := range panels {
		panels[i] = plot.New()
	}
	return &Figure{Name: name, Panels: panels}
}

// Panel returns panel i
func (f *Figure) Panel(i int) *plot.Plot {
	return f.Panels[i]
}

// Figures maps figure names to figures
type Figures map[string]*Figure

// Names returns figure names in sorted order
func (fs Figures) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newCanvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch strings.ToLower(format) {
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.New(w, h)}, nil
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	default:
		return nil, fmt.Errorf("unsupported figure format %q", format)
	}
}

// Render draws every panel onto one canvas and writes it in the given format
func (f *Figure) Render(w io.Writer, format string, width, height vg.Length) error {
	if len(f.Panels) == 0 {
		return fmt.Errorf("figure %s has no panels", f.Name)
	}
	c, err := newCanvas(format, width, height)
	if err != nil {
		return err
	}
	dc := draw.New(c)

	if len(f.Panels) == 1 {
		f.Panels[0].Draw(dc)
	} else {
		grid := make([][]*plot.Plot, len(f.Panels))
		for i, p := range f.Panels {
			grid[i] = []*plot.Plot{p}
		}
		tiles := draw.Tiles{
			Rows:      len(f.Panels),
			Cols:      1,
			PadX:      vg.Millimeter,
			PadY:      3 * vg.Millimeter,
			PadTop:    vg.Points(2),
			PadBottom: vg.Points(2),
			PadLeft:   vg.Points(2),
			PadRight:  vg.Points(2),
		}
		canvases := plot.Align(grid, tiles, dc)
		for i := range grid {
			grid[i][0].Draw(canvases[i][0])
		}
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}

// Save renders to path, taking the format from the file extension
func (f *Figure) Save(path string, width, height vg.Length) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Render(out, format, width, height); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
