package analysis

import (
	"alre/domain/frame"
	"alre/internal"
	"alre/internal/plotting"
)

// Analyse builds the three summary figures of a mixtures active-learning run:
// "mle_err", "mse" and "test_stat". config is reserved; no option is read.
// Malformed input returns an error and no figures.
func Analyse(results Results, config map[string]any) (plotting.Figures, error) {
	logger := internal.DefaultLogger
	for key := range config {
		logger.Debug("ignoring unrecognised analysis option %q", key)
	}

	mleErr, err := MLEError(results.MLE)
	if err != nil {
		return nil, err
	}
	mleErrFig, err := PlotMLEError(mleErr)
	if err != nil {
		return nil, err
	}

	ucbTestStat, err := TestStatistics(results.UCBNLLR)
	if err != nil {
		return nil, err
	}
	randomTestStat, err := TestStatistics(results.RandomNLLR)
	if err != nil {
		return nil, err
	}

	mseFig, err := PlotTotalMSE(ucbTestStat, randomTestStat)
	if err != nil {
		return nil, err
	}

	testStatFig, err := PlotFinalIterationTestStat(ucbTestStat, randomTestStat)
	if err != nil {
		return nil, err
	}

	logger.Debug("built figures from %d mle, %d ucb and %d random restarts",
		len(results.MLE), len(results.UCBNLLR), len(results.RandomNLLR))

	return plotting.Figures{
		FigureMLEErr:   mleErrFig,
		FigureMSE:      mseFig,
		FigureTestStat: testStatFig,
	}, nil
}

// AnalyseMap is Analyse over the harness' string-keyed results mapping
func AnalyseMap(results map[string][]*frame.Frame, config map[string]any) (plotting.Figures, error) {
	r, err := ResultsFromMap(results)
	if err != nil {
		return nil, err
	}
	return Analyse(r, config)
}
