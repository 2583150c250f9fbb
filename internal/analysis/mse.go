package analysis

import (
	"fmt"

	"alre/domain/core"
	"alre/domain/frame"
	"alre/internal/plotting"
)

// IterationIndexName labels the active-learning iteration axis
const IterationIndexName = "iteration"

// RestartMSE reduces each restart to one squared error per iteration:
// (ts - ts[Exact])^2 averaged over rows, with Exact dropped. Each returned
// frame is indexed by iteration 0..n-1 and has a single column named policy.
func RestartMSE(policy string, testStats []*frame.Frame) (frame.Ensemble, error) {
	ens := frame.Ensemble(testStats)
	if err := ens.RequireExact(policy); err != nil {
		return nil, err
	}
	if err := ens.Validate(); err != nil {
		return nil, err
	}

	out := make(frame.Ensemble, len(ens))
	for k, ts := range ens {
		diff, err := ts.SubtractColumn(frame.ExactColumn)
		if err != nil {
			return nil, err
		}
		sq, err := diff.Map(func(v float64) float64 { return v * v }).Drop(frame.ExactColumn)
		if err != nil {
			return nil, err
		}
		perIter := sq.ColMeans()
		iters := make([]float64, len(perIter))
		for i := range iters {
			iters[i] = float64(i)
		}
		out[k], err = frame.FromColumns(IterationIndexName, iters, []string{policy}, [][]float64{perIter})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TotalMSE aggregates the per-restart MSE of both policies. The returned frames
// are indexed by iteration and have columns UCB and Random.
func TotalMSE(ucb, random []*frame.Frame) (mean, stderr *frame.Frame, err error) {
	ucbMSE, err := RestartMSE(PolicyUCB, ucb)
	if err != nil {
		return nil, nil, err
	}
	randomMSE, err := RestartMSE(PolicyRandom, random)
	if err != nil {
		return nil, nil, err
	}

	ur, _ := ucbMSE[0].Dims()
	rr, _ := randomMSE[0].Dims()
	if ur != rr {
		return nil, nil, fmt.Errorf("%w: %s has %d iterations, %s has %d",
			core.ErrPolicyLength, PolicyUCB, ur, PolicyRandom, rr)
	}

	ucbMean, ucbErr, err := ucbMSE.Aggregate()
	if err != nil {
		return nil, nil, err
	}
	randomMean, randomErr, err := randomMSE.Aggregate()
	if err != nil {
		return nil, nil, err
	}

	if mean, err = frame.HStack(ucbMean, randomMean); err != nil {
		return nil, nil, err
	}
	if stderr, err = frame.HStack(ucbErr, randomErr); err != nil {
		return nil, nil, err
	}
	return mean, stderr, nil
}

// PlotTotalMSE draws the convergence of both policies over iterations
func PlotTotalMSE(ucbTestStat, randomTestStat []*frame.Frame) (*plotting.Figure, error) {
	mean, stderr, err := TotalMSE(ucbTestStat, randomTestStat)
	if err != nil {
		return nil, err
	}
	fig := plotting.NewFigure(FigureMSE, 1)
	p := fig.Panel(0)
	if err := plotting.LineGraphWithErrors(p, mean, stderr); err != nil {
		return nil, err
	}
	p.Title.Text = "Total MSE"
	p.X.Label.Text = "Active learning iteration"
	return fig, nil
}
