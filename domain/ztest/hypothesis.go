package ztest

import (
	"fmt"
	"math"
)

// Frame writes out the null/alternative hypothesis pair a study tests.
// The null is always the point hypothesis μ = μ0; the alternative's
// direction follows the tail mode.
func Frame(in Inputs, tail Tail) Hypotheses {
	return Hypotheses{
		Null:        fmt.Sprintf("μ = %.4f", in.NullMean),
		Alternative: fmt.Sprintf("μ %s %.4f", tail.Comparator(), in.NullMean),
	}
}

// Describe summarizes an evaluated result in one sentence, for logs and
// CLI output.
func Describe(in Inputs, res Result) string {
	direction := "above"
	if res.Z < 0 {
		direction = "below"
	}
	return fmt.Sprintf(
		"Sample mean %.4f sits %.4f standard errors %s the hypothesized mean %.4f (n=%d, σ=%.4f)",
		in.SampleMean, math.Abs(res.Z), direction, in.NullMean, in.SampleSize, in.PopulationSD,
	)
}
