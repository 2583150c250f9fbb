package analysis

import "alre/domain/frame"

// Curve sheet names
const (
	CurveMLEErrMean   = "mle_err_mean"
	CurveMLEErrStdErr = "mle_err_stderr"
	CurveMSEMean      = "mse_mean"
	CurveMSEStdErr    = "mse_stderr"
)

// Curves returns the aggregated series behind the "mle_err" and "mse" figures
// as named tables, ready to be exported as workbook sheets.
func Curves(results Results) ([]frame.Named, error) {
	mleErr, err := MLEError(results.MLE)
	if err != nil {
		return nil, err
	}
	errMean, errStdErr, err := mleErr.Aggregate()
	if err != nil {
		return nil, err
	}

	ucb, err := TestStatistics(results.UCBNLLR)
	if err != nil {
		return nil, err
	}
	random, err := TestStatistics(results.RandomNLLR)
	if err != nil {
		return nil, err
	}
	mseMean, mseStdErr, err := TotalMSE(ucb, random)
	if err != nil {
		return nil, err
	}

	return []frame.Named{
		{Name: CurveMLEErrMean, Frame: errMean},
		{Name: CurveMLEErrStdErr, Frame: errStdErr},
		{Name: CurveMSEMean, Frame: mseMean},
		{Name: CurveMSEStdErr, Frame: mseStdErr},
	}, nil
}
