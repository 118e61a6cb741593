package genetics

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

type summary struct {
	Mean, Min, P25, Median, P75, Max, StdDev float64
}

func summarize(values []float64) summary {
	if len(values) == 0 {
		return summary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return summary{
		Mean:   stat.Mean(sorted, nil),
		Min:    sorted[0],
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		StdDev: stat.StdDev(sorted, nil),
	}
}
