// Package frame holds the labelled numeric tables produced by an experiment run.
//
// A Frame is indexed by a continuous parameter axis (rows) and carries labelled
// iteration columns plus the "Exact" reference column. Every operation returns a
// new Frame; inputs are never modified.
package frame

import (
	"fmt"
	"math"

	"alre/domain/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ExactColumn is the ground-truth reference column present in every result table
const ExactColumn = "Exact"

// DefaultIndexName labels the row axis when a table does not name it
const DefaultIndexName = "theta"

// Frame is a two-dimensional numeric table with a float row index and named columns
type Frame struct {
	IndexName string
	Index     []float64
	Columns   []string
	data      *mat.Dense
}

// New builds a frame from a dense matrix. The matrix is copied.
func New(indexName string, index []float64, columns []string, data mat.Matrix) (*Frame, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil data", core.ErrInvalidTable)
	}
	r, c := data.Dims()
	if r != len(index) {
		return nil, fmt.Errorf("%w: %d rows but %d index values", core.ErrInvalidTable, r, len(index))
	}
	if c != len(columns) {
		return nil, fmt.Errorf("%w: %d columns but %d labels", core.ErrInvalidTable, c, len(columns))
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col] {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrInvalidTable, col)
		}
		seen[col] = true
	}
	if indexName == "" {
		indexName = DefaultIndexName
	}
	return &Frame{
		IndexName: indexName,
		Index:     append([]float64(nil), index...),
		Columns:   append([]string(nil), columns...),
		data:      mat.DenseCopyOf(data),
	}, nil
}

// FromRows builds a frame from row-major values
func FromRows(index []float64, columns []string, rows [][]float64) (*Frame, error) {
	if len(rows) == 0 || len(columns) == 0 {
		return nil, fmt.Errorf("%w: table must have at least one row and one column", core.ErrInvalidTable)
	}
	flat := make([]float64, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d",
				core.ErrInvalidTable, i, len(row), len(columns))
		}
		flat = append(flat, row...)
	}
	return New(DefaultIndexName, index, columns, mat.NewDense(len(rows), len(columns), flat))
}

// FromColumns builds a frame from column vectors of equal length
func FromColumns(indexName string, index []float64, columns []string, cols [][]float64) (*Frame, error) {
	if len(cols) == 0 || len(index) == 0 {
		return nil, fmt.Errorf("%w: table must have at least one row and one column", core.ErrInvalidTable)
	}
	if len(cols) != len(columns) {
		return nil, fmt.Errorf("%w: %d column vectors but %d labels", core.ErrInvalidTable, len(cols), len(columns))
	}
	d := mat.NewDense(len(index), len(cols), nil)
	for j, col := range cols {
		if len(col) != len(index) {
			return nil, fmt.Errorf("%w: column %q has %d values, expected %d",
				core.ErrInvalidTable, columns[j], len(col), len(index))
		}
		d.SetCol(j, col)
	}
	return New(indexName, index, columns, d)
}

// Dims returns rows and columns
func (f *Frame) Dims() (int, int) {
	return f.data.Dims()
}

// At returns the value at row i, column j
func (f *Frame) At(i, j int) float64 {
	return f.data.At(i, j)
}

// Matrix exposes a read-only view of the values
func (f *Frame) Matrix() mat.Matrix {
	return f.data
}

// ColumnIndex returns the position of a column, or -1
func (f *Frame) ColumnIndex(name string) int {
	for j, c := range f.Columns {
		if c == name {
			return j
		}
	}
	return -1
}

// HasColumn reports whether the frame has the named column
func (f *Frame) HasColumn(name string) bool {
	return f.ColumnIndex(name) >= 0
}

// HasExact reports whether the frame carries the reference column
func (f *Frame) HasExact() bool {
	return f.HasColumn(ExactColumn)
}

// ColAt returns a copy of column j
func (f *Frame) ColAt(j int) []float64 {
	return mat.Col(nil, j, f.data)
}

// Col returns a copy of the named column
func (f *Frame) Col(name string) ([]float64, error) {
	j := f.ColumnIndex(name)
	if j < 0 {
		return nil, core.NewColumnNotFoundError(name)
	}
	return f.ColAt(j), nil
}

// Select keeps the named columns in the given order
func (f *Frame) Select(names ...string) (*Frame, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no columns selected", core.ErrInvalidTable)
	}
	cols := make([][]float64, len(names))
	for i, name := range names {
		c, err := f.Col(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return FromColumns(f.IndexName, f.Index, names, cols)
}

// Drop removes a column. Dropping the last remaining column fails with ErrNoIterations.
func (f *Frame) Drop(name string) (*Frame, error) {
	j := f.ColumnIndex(name)
	if j < 0 {
		return nil, core.NewColumnNotFoundError(name)
	}
	if len(f.Columns) == 1 {
		return nil, fmt.Errorf("%w: dropping %q leaves an empty table", core.ErrNoIterations, name)
	}
	keep := make([]string, 0, len(f.Columns)-1)
	for _, c := range f.Columns {
		if c != name {
			keep = append(keep, c)
		}
	}
	return f.Select(keep...)
}

// SubtractColumn subtracts the named column from every column, row by row.
// The named column itself becomes zero.
func (f *Frame) SubtractColumn(name string) (*Frame, error) {
	ref, err := f.Col(name)
	if err != nil {
		return nil, err
	}
	out := f.clone()
	out.data.Apply(func(i, _ int, v float64) float64 {
		return v - ref[i]
	}, f.data)
	return out, nil
}

// ColMins returns the minimum of each column over rows
func (f *Frame) ColMins() []float64 {
	_, c := f.Dims()
	mins := make([]float64, c)
	for j := range mins {
		mins[j] = floats.Min(f.ColAt(j))
	}
	return mins
}

// ColMeans returns the mean of each column over rows
func (f *Frame) ColMeans() []float64 {
	r, c := f.Dims()
	means := make([]float64, c)
	for j := range means {
		means[j] = floats.Sum(f.ColAt(j)) / float64(r)
	}
	return means
}

// SubtractColumnMins shifts every column so its minimum over rows is zero
func (f *Frame) SubtractColumnMins() *Frame {
	mins := f.ColMins()
	out := f.clone()
	out.data.Apply(func(_, j int, v float64) float64 {
		return v - mins[j]
	}, f.data)
	return out
}

// Map applies fn to every value
func (f *Frame) Map(fn func(v float64) float64) *Frame {
	out := f.clone()
	out.data.Apply(func(_, _ int, v float64) float64 {
		return fn(v)
	}, f.data)
	return out
}

// Abs returns elementwise absolute values
func (f *Frame) Abs() *Frame {
	return f.Map(math.Abs)
}

// Scale multiplies every value by s
func (f *Frame) Scale(s float64) *Frame {
	out := f.clone()
	out.data.Scale(s, f.data)
	return out
}

// WithIndex returns a copy with a replaced row index
func (f *Frame) WithIndex(name string, index []float64) (*Frame, error) {
	return New(name, index, f.Columns, f.data)
}

// SameShape reports whether g has identical dimensions and column labels
func (f *Frame) SameShape(g *Frame) bool {
	fr, fc := f.Dims()
	gr, gc := g.Dims()
	if fr != gr || fc != gc {
		return false
	}
	for j := range f.Columns {
		if f.Columns[j] != g.Columns[j] {
			return false
		}
	}
	return true
}

// IterationColumns returns every column except Exact, in table order
func (f *Frame) IterationColumns() []string {
	out := make([]string, 0, len(f.Columns))
	for _, c := range f.Columns {
		if c != ExactColumn {
			out = append(out, c)
		}
	}
	return out
}

// HStack places frames side by side. All frames must share the row count;
// the row index is taken from the first frame.
func HStack(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, core.ErrEmptyEnsemble
	}
	first := frames[0]
	rows, _ := first.Dims()
	var names []string
	var cols [][]float64
	for _, fr := range frames {
		r, c := fr.Dims()
		if r != rows {
			return nil, fmt.Errorf("%w: cannot stack %d rows onto %d", core.ErrShapeMismatch, r, rows)
		}
		for j := 0; j < c; j++ {
			names = append(names, fr.Columns[j])
			cols = append(cols, fr.ColAt(j))
		}
	}
	return FromColumns(first.IndexName, first.Index, names, cols)
}

func (f *Frame) clone() *Frame {
	return &Frame{
		IndexName: f.IndexName,
		Index:     append([]float64(nil), f.Index...),
		Columns:   append([]string(nil), f.Columns...),
		data:      mat.DenseCopyOf(f.data),
	}
}

// Named pairs a table with a label, e.g. a workbook sheet name
type Named struct {
	Name  string
	Frame *Frame
}
