package analysis

import (
	"alre/domain/frame"
	"alre/internal/plotting"
)

// MLEError computes the absolute error of every restart's estimates against the
// Exact column. Exact is dropped from the output, so each returned table holds
// only iteration columns. Aggregate the result to get mean and standard error
// along the restart axis.
func MLEError(tables []*frame.Frame) (frame.Ensemble, error) {
	ens := frame.Ensemble(tables)
	if err := ens.RequireExact(KeyMLE); err != nil {
		return nil, err
	}
	if err := ens.Validate(); err != nil {
		return nil, err
	}

	out := make(frame.Ensemble, len(ens))
	for i, t := range ens {
		diff, err := t.SubtractColumn(frame.ExactColumn)
		if err != nil {
			return nil, err
		}
		dropped, err := diff.Drop(frame.ExactColumn)
		if err != nil {
			return nil, err
		}
		out[i] = dropped.Abs()
	}
	return out, nil
}

// PlotMLEError draws mean absolute error per iteration against the parameter axis
func PlotMLEError(errs frame.Ensemble) (*plotting.Figure, error) {
	mean, stderr, err := errs.Aggregate()
	if err != nil {
		return nil, err
	}
	fig := plotting.NewFigure(FigureMLEErr, 1)
	p := fig.Panel(0)
	if err := plotting.LineGraphWithErrors(p, mean, stderr); err != nil {
		return nil, err
	}
	p.Title.Text = "MAE on MLE estimate"
	return fig, nil
}
