package analysis

import (
	"alre/domain/frame"
)

// TestStatistics turns each negative log-likelihood-ratio table into a
// likelihood-ratio test statistic: 2 * (value - column minimum over rows).
// Every column of a returned table therefore has minimum exactly zero. The
// Exact column is transformed like any other column.
func TestStatistics(nllrs []*frame.Frame) ([]*frame.Frame, error) {
	if err := frame.Ensemble(nllrs).RequireExact("nllr"); err != nil {
		return nil, err
	}
	out := make([]*frame.Frame, len(nllrs))
	for i, nllr := range nllrs {
		out[i] = nllr.SubtractColumnMins().Scale(2)
	}
	return out, nil
}
