package analysis

import (
	"fmt"

	"alre/domain/core"
	"alre/domain/frame"
	"alre/internal/plotting"
)

// Axis labels for test-statistic charts
const (
	TestStatLabel = "t(θ)"
	ThetaLabel    = "θ"
)

// FinalIteration collects, across restarts, the Exact test statistic and the
// test statistic of the last estimated iteration. Both frames have one column
// per restart. The final iteration is the last non-Exact column.
func FinalIteration(policy string, testStats []*frame.Frame) (exact, final *frame.Frame, err error) {
	ens := frame.Ensemble(testStats)
	if err := ens.RequireExact(policy); err != nil {
		return nil, nil, err
	}
	if err := ens.Validate(); err != nil {
		return nil, nil, err
	}
	iters := ens[0].IterationColumns()
	if len(iters) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", core.ErrNoIterations, policy)
	}

	if exact, err = ens.Column(frame.ExactColumn); err != nil {
		return nil, nil, err
	}
	if final, err = ens.Column(iters[len(iters)-1]); err != nil {
		return nil, nil, err
	}
	return exact, final, nil
}

// PlotFinalIterationTestStat overlays every restart's exact (blue) and
// final-iteration (red) test statistic, one panel per policy.
func PlotFinalIterationTestStat(ucbTestStat, randomTestStat []*frame.Frame) (*plotting.Figure, error) {
	fig := plotting.NewFigure(FigureTestStat, 2)
	policies := []struct {
		name  string
		stats []*frame.Frame
	}{
		{PolicyUCB, ucbTestStat},
		{PolicyRandom, randomTestStat},
	}

	for i, pol := range policies {
		exact, final, err := FinalIteration(pol.name, pol.stats)
		if err != nil {
			return nil, err
		}
		p := fig.Panel(i)
		if err := plotting.OverlayColumns(p, exact, plotting.WithAlpha(plotting.ExactColor, plotting.OverlayAlpha)); err != nil {
			return nil, err
		}
		if err := plotting.OverlayColumns(p, final, plotting.WithAlpha(plotting.EstimColor, plotting.OverlayAlpha)); err != nil {
			return nil, err
		}
		p.Title.Text = pol.name
		p.Y.Label.Text = TestStatLabel
	}
	fig.Panel(len(policies) - 1).X.Label.Text = ThetaLabel
	return fig, nil
}
