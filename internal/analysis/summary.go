package analysis

import (
	"math"

	"alre/domain/frame"

	"github.com/montanaflynn/stats"
)

// PolicySummary describes the spread of final-iteration MSE across restarts
type PolicySummary struct {
	Policy     string  `json:"policy"`
	Restarts   int     `json:"restarts"`
	Iterations int     `json:"iterations"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std_dev"`
	P5         float64 `json:"p5"`
	P95        float64 `json:"p95"`
}

// IterationError is the mean absolute MLE error of one iteration, averaged
// over the parameter axis and over restarts
type IterationError struct {
	Iteration string  `json:"iteration"`
	MAE       float64 `json:"mae"`
	StdErr    float64 `json:"std_err"`
}

// Summary is the tabular digest of one run
type Summary struct {
	Policies   []PolicySummary   `json:"policies"`
	Comparison *PolicyComparison `json:"comparison,omitempty"`
	MLE        []IterationError  `json:"mle"`
}

// Summarise computes final-iteration MSE statistics per policy and the MLE
// error per iteration.
func Summarise(results Results) (*Summary, error) {
	summary := &Summary{}
	finals := make(map[string]stats.Float64Data, 2)

	policies := []struct {
		name  string
		nllrs []*frame.Frame
	}{
		{PolicyUCB, results.UCBNLLR},
		{PolicyRandom, results.RandomNLLR},
	}
	for _, pol := range policies {
		testStats, err := TestStatistics(pol.nllrs)
		if err != nil {
			return nil, err
		}
		restartMSE, err := RestartMSE(pol.name, testStats)
		if err != nil {
			return nil, err
		}
		final := finalMSE(restartMSE)
		ps, err := summarisePolicy(pol.name, final)
		if err != nil {
			return nil, err
		}
		ps.Iterations, _ = restartMSE[0].Dims()
		summary.Policies = append(summary.Policies, ps)
		finals[pol.name] = final
	}
	summary.Comparison = ComparePolicies(finals[PolicyUCB], finals[PolicyRandom],
		DefaultShuffles, DefaultPermutationSeed)

	mleErr, err := MLEError(results.MLE)
	if err != nil {
		return nil, err
	}
	perRestart := make([][]float64, len(mleErr))
	for k, e := range mleErr {
		perRestart[k] = e.ColMeans()
	}
	for j, name := range mleErr[0].Columns {
		sample := make(stats.Float64Data, len(perRestart))
		for k := range perRestart {
			sample[k] = perRestart[k][j]
		}
		mae, err := sample.Mean()
		if err != nil {
			return nil, err
		}
		summary.MLE = append(summary.MLE, IterationError{
			Iteration: name,
			MAE:       mae,
			StdErr:    standardError(sample),
		})
	}
	return summary, nil
}

// finalMSE takes the last iteration's MSE of every restart
func finalMSE(restartMSE frame.Ensemble) stats.Float64Data {
	final := make(stats.Float64Data, len(restartMSE))
	for k, fr := range restartMSE {
		iterations, _ := fr.Dims()
		final[k] = fr.At(iterations-1, 0)
	}
	return final
}

func summarisePolicy(name string, final stats.Float64Data) (PolicySummary, error) {
	ps := PolicySummary{Policy: name, Restarts: len(final)}
	var err error
	if ps.Mean, err = stats.Mean(final); err != nil {
		return ps, err
	}
	if ps.Median, err = stats.Median(final); err != nil {
		return ps, err
	}
	if ps.P5, err = stats.PercentileNearestRank(final, 5); err != nil {
		return ps, err
	}
	if ps.P95, err = stats.PercentileNearestRank(final, 95); err != nil {
		return ps, err
	}
	ps.StdDev = sampleStdDev(final)
	return ps, nil
}

// sampleStdDev is zero for fewer than two observations
func sampleStdDev(data stats.Float64Data) float64 {
	if len(data) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(data)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd
}

func standardError(data stats.Float64Data) float64 {
	if len(data) < 2 {
		return 0
	}
	return sampleStdDev(data) / math.Sqrt(float64(len(data)))
}
