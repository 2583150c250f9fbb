package analysis

import (
	"fmt"

	"alre/domain/core"
	"alre/domain/frame"
	"alre/internal/plotting"
)

// IterationColumn names the column holding estimates after iteration n
func IterationColumn(n int) string {
	return fmt.Sprintf("Iteration %d", n)
}

// DebugFigure plots selected iterations of an averaged NLLR table with their
// spread, one panel per iteration, each against the Exact curve.
func DebugFigure(nllr, std *frame.Frame, iterations []int) (*plotting.Figure, error) {
	if len(iterations) == 0 {
		return nil, fmt.Errorf("%w: no iterations requested", core.ErrNoIterations)
	}
	if !nllr.HasExact() {
		return nil, core.NewMissingExactError("nllr", 0)
	}

	fig := plotting.NewFigure(FigureDebug, len(iterations))
	for i, it := range iterations {
		column := IterationColumn(it)
		mean, err := nllr.Select(column)
		if err != nil {
			return nil, err
		}
		spread, err := std.Select(column)
		if err != nil {
			return nil, err
		}
		p := fig.Panel(i)
		if err := plotting.LineGraphWithErrors(p, mean, spread); err != nil {
			return nil, err
		}
		if err := plotting.AddColumn(p, nllr, frame.ExactColumn, plotting.EstimColor); err != nil {
			return nil, err
		}
	}
	return fig, nil
}
