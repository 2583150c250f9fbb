package testkit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"alre/domain/frame"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// MixtureConfig controls the synthetic experiment produced by Generate
type MixtureConfig struct {
	Restarts   int
	Iterations int
	Points     int
	ThetaMin   float64
	ThetaMax   float64
	TrueTheta  float64
	Curvature  float64 // scale of the exact NLLR parabola
	Noise      float64 // estimate noise at iteration 1
	UCBDecay   float64 // per-iteration noise decay under UCB sampling
	RandDecay  float64 // per-iteration noise decay under random sampling
	Seed       uint64
}

// DefaultMixtureConfig returns a small but realistic experiment
func DefaultMixtureConfig() MixtureConfig {
	return MixtureConfig{
		Restarts:   5,
		Iterations: 6,
		Points:     25,
		ThetaMin:   0,
		ThetaMax:   1,
		TrueTheta:  0.5,
		Curvature:  40,
		Noise:      1.0,
		UCBDecay:   0.6,
		RandDecay:  0.85,
		Seed:       42,
	}
}

// Experiment holds generated restart tables for each result set
type Experiment struct {
	MLE        []*frame.Frame
	UCBNLLR    []*frame.Frame
	RandomNLLR []*frame.Frame
}

// Map returns the experiment keyed the way the experiment harness keys results
func (e *Experiment) Map() map[string][]*frame.Frame {
	return map[string][]*frame.Frame{
		"mle":         e.MLE,
		"ucb_nllr":    e.UCBNLLR,
		"random_nllr": e.RandomNLLR,
	}
}

// Generate builds a deterministic synthetic experiment. Estimates scatter around
// the Exact column with Gaussian noise that shrinks with every iteration.
func Generate(cfg MixtureConfig) (*Experiment, error) {
	if cfg.Restarts < 1 || cfg.Iterations < 1 || cfg.Points < 2 {
		return nil, fmt.Errorf("need at least one restart, one iteration and two points")
	}
	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	theta := make([]float64, cfg.Points)
	floats.Span(theta, cfg.ThetaMin, cfg.ThetaMax)

	columns := IterationColumns(cfg.Iterations)

	exp := &Experiment{}
	for r := 0; r < cfg.Restarts; r++ {
		mle, err := build(theta, columns, cfg.Iterations, cfg.Noise*0.1, cfg.UCBDecay, noise,
			func(t float64) float64 { return t })
		if err != nil {
			return nil, err
		}
		exactNLLR := func(t float64) float64 {
			d := t - cfg.TrueTheta
			return cfg.Curvature * d * d
		}
		ucb, err := build(theta, columns, cfg.Iterations, cfg.Noise, cfg.UCBDecay, noise, exactNLLR)
		if err != nil {
			return nil, err
		}
		random, err := build(theta, columns, cfg.Iterations, cfg.Noise, cfg.RandDecay, noise, exactNLLR)
		if err != nil {
			return nil, err
		}
		exp.MLE = append(exp.MLE, mle)
		exp.UCBNLLR = append(exp.UCBNLLR, ucb)
		exp.RandomNLLR = append(exp.RandomNLLR, random)
	}
	return exp, nil
}

// IterationColumns returns "Iteration 1".."Iteration n" followed by Exact
func IterationColumns(n int) []string {
	cols := make([]string, 0, n+1)
	for i := 1; i <= n; i++ {
		cols = append(cols, fmt.Sprintf("Iteration %d", i))
	}
	return append(cols, frame.ExactColumn)
}

func build(theta []float64, columns []string, iterations int, sigma, decay float64,
	noise distuv.Normal, exact func(float64) float64) (*frame.Frame, error) {

	cols := make([][]float64, len(columns))
	ref := make([]float64, len(theta))
	for i, t := range theta {
		ref[i] = exact(t)
	}
	for k := 0; k < iterations; k++ {
		s := sigma * math.Pow(decay, float64(k))
		col := make([]float64, len(theta))
		for i := range theta {
			col[i] = ref[i] + s*noise.Rand()
		}
		cols[k] = col
	}
	cols[iterations] = ref
	return frame.FromColumns(frame.DefaultIndexName, theta, columns, cols)
}

// Table builds a frame from rows with index 0..n-1; it panics on malformed input
// and is meant for hand-written test fixtures.
func Table(columns []string, rows ...[]float64) *frame.Frame {
	index := make([]float64, len(rows))
	for i := range index {
		index[i] = float64(i)
	}
	f, err := frame.FromRows(index, columns, rows)
	if err != nil {
		panic(err)
	}
	return f
}
