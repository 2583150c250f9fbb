// Package analysis aggregates active-learning likelihood-ratio results into
// summary figures: MLE error curves, total MSE per sampling policy and the
// final-iteration test-statistic overlay.
package analysis

import (
	"alre/domain/core"
	"alre/domain/frame"
)

// Result set keys as supplied by the experiment harness
const (
	KeyMLE        = "mle"
	KeyUCBNLLR    = "ucb_nllr"
	KeyRandomNLLR = "random_nllr"
)

// Sampling policy labels
const (
	PolicyUCB    = "UCB"
	PolicyRandom = "Random"
)

// Figure names in the output mapping
const (
	FigureMLEErr   = "mle_err"
	FigureMSE      = "mse"
	FigureTestStat = "test_stat"
	FigureDebug    = "debug"
)

// Results holds the restart tables of one experiment
type Results struct {
	MLE        []*frame.Frame
	UCBNLLR    []*frame.Frame
	RandomNLLR []*frame.Frame
}

// ResultSetKeys lists the keys a results mapping must provide
var ResultSetKeys = []string{KeyMLE, KeyUCBNLLR, KeyRandomNLLR}

// ResultsFromMap converts the harness' string-keyed mapping
func ResultsFromMap(m map[string][]*frame.Frame) (Results, error) {
	for _, key := range ResultSetKeys {
		if _, ok := m[key]; !ok {
			return Results{}, core.NewMissingResultError(key)
		}
	}
	return Results{
		MLE:        m[KeyMLE],
		UCBNLLR:    m[KeyUCBNLLR],
		RandomNLLR: m[KeyRandomNLLR],
	}, nil
}

// Sets returns the result sets keyed like the harness mapping
func (r Results) Sets() map[string][]*frame.Frame {
	return map[string][]*frame.Frame{
		KeyMLE:        r.MLE,
		KeyUCBNLLR:    r.UCBNLLR,
		KeyRandomNLLR: r.RandomNLLR,
	}
}

// Validate checks every set is non-empty, carries Exact and is shape-consistent
func (r Results) Validate() error {
	sets := r.Sets()
	for _, key := range ResultSetKeys {
		ens := frame.Ensemble(sets[key])
		if err := ens.RequireExact(key); err != nil {
			return err
		}
		if err := ens.Validate(); err != nil {
			return err
		}
	}
	return nil
}
