package frame

import (
	"fmt"

	"alre/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ensemble is an ordered collection of same-shaped tables, one per random restart
type Ensemble []*Frame

// Validate checks the ensemble is non-empty and every restart matches restart 0
func (e Ensemble) Validate() error {
	if len(e) == 0 {
		return core.ErrEmptyEnsemble
	}
	for i, fr := range e {
		if fr == nil {
			return fmt.Errorf("%w: restart %d is nil", core.ErrInvalidTable, i)
		}
	}
	wantR, wantC := e[0].Dims()
	for i := 1; i < len(e); i++ {
		if !e[0].SameShape(e[i]) {
			gotR, gotC := e[i].Dims()
			return core.NewShapeMismatchError(i, wantR, wantC, gotR, gotC)
		}
	}
	return nil
}

// RequireExact checks every restart carries the Exact column
func (e Ensemble) RequireExact(set string) error {
	if len(e) == 0 {
		return fmt.Errorf("%w: %s", core.ErrEmptyEnsemble, set)
	}
	for i, fr := range e {
		if fr == nil || !fr.HasExact() {
			return core.NewMissingExactError(set, i)
		}
	}
	return nil
}

// Aggregate reduces the ensemble along the restart axis. For each cell it returns
// the mean and the standard error of the mean (sample standard deviation / sqrt(n)).
// A single restart yields a zero standard error.
func (e Ensemble) Aggregate() (mean, stderr *Frame, err error) {
	if err := e.Validate(); err != nil {
		return nil, nil, err
	}
	r, c := e[0].Dims()
	n := float64(len(e))
	means := mat.NewDense(r, c, nil)
	errs := mat.NewDense(r, c, nil)
	cell := make([]float64, len(e))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			for k, fr := range e {
				cell[k] = fr.At(i, j)
			}
			if len(e) == 1 {
				means.Set(i, j, cell[0])
				continue
			}
			m, sd := stat.MeanStdDev(cell, nil)
			means.Set(i, j, m)
			errs.Set(i, j, stat.StdErr(sd, n))
		}
	}
	first := e[0]
	mean, err = New(first.IndexName, first.Index, first.Columns, means)
	if err != nil {
		return nil, nil, err
	}
	stderr, err = New(first.IndexName, first.Index, first.Columns, errs)
	if err != nil {
		return nil, nil, err
	}
	return mean, stderr, nil
}

// Column collects the named column from every restart into one frame,
// one column per restart labelled by restart number.
func (e Ensemble) Column(name string) (*Frame, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	cols := make([][]float64, len(e))
	labels := make([]string, len(e))
	for k, fr := range e {
		c, err := fr.Col(name)
		if err != nil {
			return nil, fmt.Errorf("restart %d: %w", k, err)
		}
		cols[k] = c
		labels[k] = fmt.Sprintf("%d", k)
	}
	return FromColumns(e[0].IndexName, e[0].Index, labels, cols)
}
