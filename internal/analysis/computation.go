package analysis

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"zmean/domain/core"
)

// SummaryStats describes one ingested sample column.
type SummaryStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
	Count  int     `json:"count"`
}

// SummarizeSample computes descriptive statistics for a raw sample column.
// StdDev is the sample standard deviation (n-1 denominator), the estimate
// the study falls back to when no population sigma is supplied.
func SummarizeSample(values []float64) (SummaryStats, error) {
	if len(values) == 0 {
		return SummaryStats{}, fmt.Errorf("%w: empty sample", core.ErrInsufficientData)
	}

	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviationSample(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	median, _ := stats.Median(values)
	q25, _ := stats.Percentile(values, 25)
	q75, _ := stats.Percentile(values, 75)

	return SummaryStats{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    q25,
		Q75:    q75,
		Count:  len(values),
	}, nil
}
