package analysis_test

import (
	"bytes"
	"testing"

	"alre/domain/core"
	"alre/domain/frame"
	"alre/internal/analysis"
	"alre/internal/plotting"
	"alre/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var iterExact = []string{"Iter1", "Iter2", "Exact"}

// Two identical restarts: Exact=[0,0], Iter1=[1,1], Iter2=[0.5,0.5]
func TestMLEError_IdenticalRestarts(t *testing.T) {
	table := func() *frame.Frame {
		return testkit.Table(iterExact, []float64{1, 0.5, 0}, []float64{1, 0.5, 0})
	}

	errs, err := analysis.MLEError([]*frame.Frame{table(), table()})
	require.NoError(t, err)

	mean, stderr, err := errs.Aggregate()
	require.NoError(t, err)

	assert.Equal(t, []string{"Iter1", "Iter2"}, mean.Columns)
	assert.Equal(t, []float64{1, 1}, mean.ColAt(0))
	assert.Equal(t, []float64{0.5, 0.5}, mean.ColAt(1))
	for j := range stderr.Columns {
		for _, v := range stderr.ColAt(j) {
			assert.Zero(t, v)
		}
	}
}

func TestMLEError_AbsoluteAndExactDropped(t *testing.T) {
	tbl := testkit.Table(iterExact, []float64{-1, 3, 1}, []float64{2, 2, 4})

	errs, err := analysis.MLEError([]*frame.Frame{tbl})
	require.NoError(t, err)

	assert.False(t, errs[0].HasExact())
	assert.Equal(t, []float64{2, 2}, errs[0].ColAt(0))
	assert.Equal(t, []float64{2, 2}, errs[0].ColAt(1))
}

// Mean over the restart axis equals the mean of independently computed errors
func TestMLEError_AggregationOrderCommutes(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)

	errs, err := analysis.MLEError(exp.MLE)
	require.NoError(t, err)
	mean, _, err := errs.Aggregate()
	require.NoError(t, err)

	rows, cols := mean.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var sum float64
			for _, tbl := range exp.MLE {
				exact, err := tbl.Col(frame.ExactColumn)
				require.NoError(t, err)
				d := tbl.At(i, j) - exact[i]
				if d < 0 {
					d = -d
				}
				sum += d
			}
			assert.InDelta(t, sum/float64(len(exp.MLE)), mean.At(i, j), 1e-12)
		}
	}
}

func TestMLEError_Errors(t *testing.T) {
	_, err := analysis.MLEError(nil)
	assert.ErrorIs(t, err, core.ErrEmptyEnsemble)

	noExact := testkit.Table([]string{"Iter1", "Iter2"}, []float64{1, 2})
	_, err = analysis.MLEError([]*frame.Frame{noExact})
	assert.ErrorIs(t, err, core.ErrMissingExact)

	a := testkit.Table(iterExact, []float64{1, 2, 3})
	b := testkit.Table(iterExact, []float64{1, 2, 3}, []float64{4, 5, 6})
	_, err = analysis.MLEError([]*frame.Frame{a, b})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestTestStatistics_ColumnMinimumIsZero(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)

	stats, err := analysis.TestStatistics(exp.UCBNLLR)
	require.NoError(t, err)
	require.Len(t, stats, len(exp.UCBNLLR))

	for _, ts := range stats {
		for _, m := range ts.ColMins() {
			assert.Zero(t, m)
		}
	}
}

func TestTestStatistics_TwiceDeviation(t *testing.T) {
	nllr := testkit.Table(iterExact,
		[]float64{3, 1, 5},
		[]float64{2, 4, 1},
		[]float64{6, 2, 2},
	)
	stats, err := analysis.TestStatistics([]*frame.Frame{nllr})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 0, 8}, stats[0].ColAt(0))
	assert.Equal(t, []float64{0, 6, 2}, stats[0].ColAt(1))
	assert.Equal(t, []float64{8, 0, 2}, stats[0].ColAt(2))
	// input untouched
	assert.Equal(t, []float64{3, 2, 6}, nllr.ColAt(0))
}

func TestTestStatistics_Errors(t *testing.T) {
	_, err := analysis.TestStatistics(nil)
	assert.ErrorIs(t, err, core.ErrEmptyEnsemble)

	_, err = analysis.TestStatistics([]*frame.Frame{testkit.Table([]string{"Iter1"}, []float64{1})})
	assert.ErrorIs(t, err, core.ErrMissingExact)
}

func TestTotalMSE_Values(t *testing.T) {
	// restart 0: Iter1 off by (1, 1) -> 1, Iter2 off by (0, 2) -> 2
	ucb := []*frame.Frame{
		testkit.Table(iterExact, []float64{1, 0, 0}, []float64{2, 3, 1}),
	}
	random := []*frame.Frame{
		testkit.Table(iterExact, []float64{2, 0, 0}, []float64{1, 1, 1}),
		testkit.Table(iterExact, []float64{0, 0, 0}, []float64{1, 1, 1}),
	}

	mean, stderr, err := analysis.TotalMSE(ucb, random)
	require.NoError(t, err)

	assert.Equal(t, []string{analysis.PolicyUCB, analysis.PolicyRandom}, mean.Columns)
	assert.Equal(t, []float64{0, 1}, mean.Index)
	assert.Equal(t, analysis.IterationIndexName, mean.IndexName)

	ucbMean, _ := mean.Col(analysis.PolicyUCB)
	assert.InDeltaSlice(t, []float64{1, 2}, ucbMean, 1e-12)

	// random restarts: Iter1 MSE 2 and 0 -> mean 1, sem 1
	randMean, _ := mean.Col(analysis.PolicyRandom)
	randErr, _ := stderr.Col(analysis.PolicyRandom)
	assert.InDeltaSlice(t, []float64{1, 0}, randMean, 1e-12)
	assert.InDeltaSlice(t, []float64{1, 0}, randErr, 1e-12)
}

// Doubling every deviation from Exact quadruples the squared error
func TestTotalMSE_ScaleConsistent(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)
	ucb, err := analysis.TestStatistics(exp.UCBNLLR)
	require.NoError(t, err)
	random, err := analysis.TestStatistics(exp.RandomNLLR)
	require.NoError(t, err)

	doubled := func(in []*frame.Frame) []*frame.Frame {
		out := make([]*frame.Frame, len(in))
		for k, ts := range in {
			diff, err := ts.SubtractColumn(frame.ExactColumn)
			require.NoError(t, err)
			exact, err := ts.Col(frame.ExactColumn)
			require.NoError(t, err)
			scaled := diff.Scale(2)
			cols := make([][]float64, len(ts.Columns))
			for j, name := range ts.Columns {
				col := scaled.ColAt(j)
				for i := range col {
					col[i] += exact[i]
				}
				if name == frame.ExactColumn {
					col = exact
				}
				cols[j] = col
			}
			out[k], err = frame.FromColumns(ts.IndexName, ts.Index, ts.Columns, cols)
			require.NoError(t, err)
		}
		return out
	}

	base, _, err := analysis.TotalMSE(ucb, random)
	require.NoError(t, err)
	scaled, _, err := analysis.TotalMSE(doubled(ucb), doubled(random))
	require.NoError(t, err)

	rows, cols := base.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.InEpsilon(t, 4*base.At(i, j), scaled.At(i, j), 1e-9)
		}
	}
}

func TestTotalMSE_PolicyLengthMismatch(t *testing.T) {
	ucb := []*frame.Frame{testkit.Table(iterExact, []float64{1, 0, 0})}
	random := []*frame.Frame{testkit.Table([]string{"Iter1", "Exact"}, []float64{1, 0})}

	_, _, err := analysis.TotalMSE(ucb, random)
	assert.ErrorIs(t, err, core.ErrPolicyLength)
}

func TestTotalMSE_EmptyPolicy(t *testing.T) {
	ucb := []*frame.Frame{testkit.Table(iterExact, []float64{1, 0, 0})}
	_, _, err := analysis.TotalMSE(ucb, nil)
	assert.ErrorIs(t, err, core.ErrEmptyEnsemble)
}

func TestFinalIteration_UsesLastIterationAndExact(t *testing.T) {
	// Exact deliberately not last: lookup is by name
	cols := []string{"Iteration 1", "Exact", "Iteration 2"}
	a := testkit.Table(cols, []float64{1, 2, 3}, []float64{4, 5, 6})
	b := testkit.Table(cols, []float64{7, 8, 9}, []float64{10, 11, 12})

	exact, final, err := analysis.FinalIteration(analysis.PolicyUCB, []*frame.Frame{a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, exact.Columns)
	assert.Equal(t, []float64{2, 5}, exact.ColAt(0))
	assert.Equal(t, []float64{8, 11}, exact.ColAt(1))
	assert.Equal(t, []float64{3, 6}, final.ColAt(0))
	assert.Equal(t, []float64{9, 12}, final.ColAt(1))
}

func TestFinalIteration_NoIterations(t *testing.T) {
	only := testkit.Table([]string{"Exact"}, []float64{1})
	_, _, err := analysis.FinalIteration(analysis.PolicyUCB, []*frame.Frame{only})
	assert.ErrorIs(t, err, core.ErrNoIterations)
}

func TestAnalyse_BuildsThreeFigures(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)

	figs, err := analysis.AnalyseMap(exp.Map(), map[string]any{"unused": 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"mle_err", "mse", "test_stat"}, figs.Names())
	assert.Len(t, figs[analysis.FigureTestStat].Panels, 2)
	assert.Equal(t, "Total MSE", figs[analysis.FigureMSE].Panel(0).Title.Text)
	assert.Equal(t, analysis.ThetaLabel, figs[analysis.FigureTestStat].Panel(1).X.Label.Text)

	for _, name := range figs.Names() {
		var buf bytes.Buffer
		require.NoError(t, figs[name].Render(&buf, "svg", plotting.DefaultWidth, plotting.DefaultHeight))
		assert.NotZero(t, buf.Len(), name)
	}
}

func TestAnalyse_FreshFiguresPerCall(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)

	a, err := analysis.AnalyseMap(exp.Map(), nil)
	require.NoError(t, err)
	b, err := analysis.AnalyseMap(exp.Map(), nil)
	require.NoError(t, err)
	assert.NotSame(t, a[analysis.FigureMSE], b[analysis.FigureMSE])
}

func TestAnalyse_Errors(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)

	t.Run("missing key", func(t *testing.T) {
		m := exp.Map()
		delete(m, analysis.KeyRandomNLLR)
		_, err := analysis.AnalyseMap(m, nil)
		assert.ErrorIs(t, err, core.ErrMissingResult)
	})

	t.Run("missing exact", func(t *testing.T) {
		m := exp.Map()
		dropped, err := m[analysis.KeyUCBNLLR][1].Drop(frame.ExactColumn)
		require.NoError(t, err)
		ucb := append([]*frame.Frame(nil), m[analysis.KeyUCBNLLR]...)
		ucb[1] = dropped
		m[analysis.KeyUCBNLLR] = ucb
		figs, err := analysis.AnalyseMap(m, nil)
		assert.ErrorIs(t, err, core.ErrMissingExact)
		assert.Nil(t, figs)
	})

	t.Run("empty restarts", func(t *testing.T) {
		m := exp.Map()
		m[analysis.KeyMLE] = nil
		_, err := analysis.AnalyseMap(m, nil)
		assert.ErrorIs(t, err, core.ErrEmptyEnsemble)
	})
}

func TestResultsValidate(t *testing.T) {
	exp, err := testkit.Generate(testkit.DefaultMixtureConfig())
	require.NoError(t, err)
	r, err := analysis.ResultsFromMap(exp.Map())
	require.NoError(t, err)
	assert.NoError(t, r.Validate())

	r.RandomNLLR = nil
	assert.ErrorIs(t, r.Validate(), core.ErrEmptyEnsemble)
}

func TestDebugFigure(t *testing.T) {
	cols := []string{analysis.IterationColumn(1), analysis.IterationColumn(2), frame.ExactColumn}
	nllr := testkit.Table(cols, []float64{1, 2, 3}, []float64{2, 1, 0})
	std := testkit.Table(cols, []float64{0.1, 0.2, 0}, []float64{0.1, 0.1, 0})

	fig, err := analysis.DebugFigure(nllr, std, []int{1, 2})
	require.NoError(t, err)
	assert.Len(t, fig.Panels, 2)

	_, err = analysis.DebugFigure(nllr, std, []int{3})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	_, err = analysis.DebugFigure(nllr, std, nil)
	assert.ErrorIs(t, err, core.ErrNoIterations)
}

func TestSummarise(t *testing.T) {
	cfg := testkit.DefaultMixtureConfig()
	exp, err := testkit.Generate(cfg)
	require.NoError(t, err)
	r, err := analysis.ResultsFromMap(exp.Map())
	require.NoError(t, err)

	s, err := analysis.Summarise(r)
	require.NoError(t, err)

	require.Len(t, s.Policies, 2)
	require.NotNil(t, s.Comparison)
	assert.GreaterOrEqual(t, s.Comparison.PermutationP, 0.0)
	assert.LessOrEqual(t, s.Comparison.PermutationP, 1.0)
	for _, p := range s.Policies {
		assert.Equal(t, cfg.Restarts, p.Restarts)
		assert.Equal(t, cfg.Iterations, p.Iterations)
		assert.GreaterOrEqual(t, p.Mean, 0.0)
		assert.LessOrEqual(t, p.P5, p.P95)
	}
	require.Len(t, s.MLE, cfg.Iterations)
	assert.Equal(t, "Iteration 1", s.MLE[0].Iteration)
}

func TestCurves(t *testing.T) {
	cfg := testkit.DefaultMixtureConfig()
	exp, err := testkit.Generate(cfg)
	require.NoError(t, err)
	r, err := analysis.ResultsFromMap(exp.Map())
	require.NoError(t, err)

	curves, err := analysis.Curves(r)
	require.NoError(t, err)
	require.Len(t, curves, 4)

	names := make([]string, len(curves))
	for i, c := range curves {
		names[i] = c.Name
	}
	assert.Equal(t, []string{
		analysis.CurveMLEErrMean, analysis.CurveMLEErrStdErr,
		analysis.CurveMSEMean, analysis.CurveMSEStdErr,
	}, names)

	assert.NotContains(t, curves[0].Frame.Columns, frame.ExactColumn)
	rows, cols := curves[2].Frame.Dims()
	assert.Equal(t, cfg.Iterations, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{analysis.PolicyUCB, analysis.PolicyRandom}, curves[2].Frame.Columns)
}

func TestComparePolicies(t *testing.T) {
	ucb := []float64{1.0, 1.2, 0.9, 1.1, 1.0}
	random := []float64{2.0, 2.3, 1.9, 2.1, 2.2}

	cmp := analysis.ComparePolicies(ucb, random, 500, 7)
	require.NotNil(t, cmp)
	assert.InDelta(t, -1.06, cmp.Diff, 1e-9)
	assert.Less(t, cmp.TStat, 0.0)
	assert.Less(t, cmp.PValue, 0.001)
	assert.Less(t, cmp.EffectSize, 0.0)
	// only the observed split and its mirror are this extreme
	assert.Less(t, cmp.PermutationP, 0.05)
	assert.Equal(t, 500, cmp.Shuffles)

	again := analysis.ComparePolicies(ucb, random, 500, 7)
	assert.Equal(t, cmp.PermutationP, again.PermutationP)
}

func TestComparePolicies_NoDifference(t *testing.T) {
	same := []float64{1, 1, 1}
	cmp := analysis.ComparePolicies(same, same, 100, 1)
	require.NotNil(t, cmp)
	assert.Zero(t, cmp.Diff)
	assert.Equal(t, 1.0, cmp.PValue)
	assert.Equal(t, 1.0, cmp.PermutationP)

	assert.Nil(t, analysis.ComparePolicies([]float64{1}, same, 100, 1))
}
