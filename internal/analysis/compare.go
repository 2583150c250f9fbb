package analysis

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Permutation test defaults
const (
	DefaultShuffles        = 2000
	DefaultPermutationSeed = 1
)

// PolicyComparison tests whether UCB and Random reach different final-iteration
// MSE across restarts. Diff is UCB minus Random, so negative favours UCB.
type PolicyComparison struct {
	Diff         float64 `json:"diff"`
	TStat        float64 `json:"t_stat"`
	DF           float64 `json:"df"`
	PValue       float64 `json:"p_value"`
	EffectSize   float64 `json:"effect_size"`
	PermutationP float64 `json:"permutation_p"`
	Shuffles     int     `json:"shuffles"`
}

// ComparePolicies runs Welch's t-test and a two-sided permutation test on the
// difference of means. Both samples need at least two restarts; otherwise nil
// is returned.
func ComparePolicies(ucb, random []float64, shuffles int, seed uint64) *PolicyComparison {
	if len(ucb) < 2 || len(random) < 2 {
		return nil
	}
	if shuffles < 1 {
		shuffles = DefaultShuffles
	}

	m1, v1 := stat.MeanVariance(ucb, nil)
	m2, v2 := stat.MeanVariance(random, nil)
	n1, n2 := float64(len(ucb)), float64(len(random))

	cmp := &PolicyComparison{Diff: m1 - m2, PValue: 1, Shuffles: shuffles}

	a, b := v1/n1, v2/n2
	if se := math.Sqrt(a + b); se > 0 {
		cmp.TStat = cmp.Diff / se
		cmp.DF = (a + b) * (a + b) / (a*a/(n1-1) + b*b/(n2-1))
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: cmp.DF}
		cmp.PValue = 2 * t.Survival(math.Abs(cmp.TStat))
	}

	if pooled := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)); pooled > 0 {
		cmp.EffectSize = cmp.Diff / pooled
	}

	cmp.PermutationP = permutationP(ucb, random, cmp.Diff, shuffles, seed)
	return cmp
}

func permutationP(x, y []float64, observed float64, shuffles int, seed uint64) float64 {
	pool := make([]float64, 0, len(x)+len(y))
	pool = append(pool, x...)
	pool = append(pool, y...)
	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))

	// tolerance keeps exact ties counted despite float summation order
	threshold := math.Abs(observed) - 1e-12
	extreme := 0
	for s := 0; s < shuffles; s++ {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		d := stat.Mean(pool[:len(x)], nil) - stat.Mean(pool[len(x):], nil)
		if math.Abs(d) >= threshold {
			extreme++
		}
	}
	return float64(extreme+1) / float64(shuffles+1)
}
