package bench

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/exascience/parsort/history"
)

// Summarize returns the statistics of durations, in seconds. The standard
// deviation of fewer than two trials is 0.
func Summarize(durations []float64) history.Stats {
	if len(durations) == 0 {
		return history.Stats{}
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)
	s := history.Stats{
		Mean:   stat.Mean(sorted, nil),
		Median: median(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

func median(sorted []float64) float64 {
	if n := len(sorted); n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
