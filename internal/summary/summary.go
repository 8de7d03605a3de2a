package summary

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gollh/domain/run"
)

// Summarize reduces a test-statistic distribution to the stats persisted
// with a sweep summary.
func Summarize(values []float64) (run.TSStats, error) {
	if len(values) == 0 {
		return run.TSStats{}, fmt.Errorf("cannot summarize empty distribution")
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return run.TSStats{}, err
	}
	median, err := stats.Median(values)
	if err != nil {
		return run.TSStats{}, err
	}
	min, err := stats.Min(values)
	if err != nil {
		return run.TSStats{}, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return run.TSStats{}, err
	}
	p90, err := stats.Percentile(values, 90)
	if err != nil {
		p90 = max
	}
	p95, err := stats.Percentile(values, 95)
	if err != nil {
		p95 = max
	}
	p99, err := stats.Percentile(values, 99)
	if err != nil {
		p99 = max
	}
	stdDev := 0.0
	if len(values) > 1 {
		stdDev, _ = stats.StandardDeviationSample(values)
	}

	return run.TSStats{
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		P90:    p90,
		P95:    p95,
		P99:    p99,
	}, nil
}

// ChiSquaredPValue approximates the tail probability of an observed test
// statistic against a chi-squared reference with the given degrees of
// freedom. Useful as a quick significance estimate when the null
// distribution is approximately chi-squared (Wilks' regime); the empirical
// trial distribution remains the authoritative reference.
func ChiSquaredPValue(observed float64, dof float64) float64 {
	if observed <= 0 {
		return 1.0
	}
	dist := distuv.ChiSquared{K: dof}
	p := 1 - dist.CDF(observed)
	if p < 0 {
		p = 0
	}
	return p
}

// EmpiricalPValue is the fraction of null-trial statistics at or above the
// observed value.
func EmpiricalPValue(observed float64, nullDistribution []float64) float64 {
	if len(nullDistribution) == 0 {
		return 1.0
	}
	count := 0
	for _, v := range nullDistribution {
		if v >= observed {
			count++
		}
	}
	return float64(count) / float64(len(nullDistribution))
}
