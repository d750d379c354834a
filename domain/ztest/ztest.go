package ztest

import (
	"fmt"
	"math"

	"zmean/domain/core"
)

// StandardNormalCDF returns Φ(z), the probability that a standard normal
// variable is ≤ z, via the error function:
//
//	Φ(z) = 0.5 * (1 + erf(z / √2))
//
// Monotonically non-decreasing with Φ(0) = 0.5. Saturates to exactly 0 or 1
// for very large |z| at float64 precision, which callers treat as normal.
func StandardNormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt(2)))
}

// Evaluate computes the z-statistic for the inputs and derives the p-value
// for the requested tail:
//
//	z = (x̄ - μ0) / (σ / sqrt(n))
//	right: p = 1 - Φ(z)    left: p = Φ(z)    two: p = 2 * (1 - Φ(|z|))
//
// Invalid inputs or an unknown tail fail before any arithmetic runs.
func Evaluate(in Inputs, tail Tail) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if !tail.Valid() {
		return Result{}, fmt.Errorf("%w: %q", core.ErrUnknownTail, tail)
	}

	se := in.StandardError()
	z := (in.SampleMean - in.NullMean) / se
	cdf := StandardNormalCDF(z)

	var p float64
	switch tail {
	case TailRight:
		p = 1 - cdf
	case TailLeft:
		p = cdf
	case TailTwo:
		p = 2 * (1 - StandardNormalCDF(math.Abs(z)))
	}

	return Result{
		Z:        z,
		StdError: se,
		CDF:      cdf,
		PValue:   p,
		Tail:     tail,
	}, nil
}

// Decide compares a result's p-value against the significance level.
// The null hypothesis is rejected iff p < α.
func Decide(res Result, alpha float64) (Decision, error) {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return Decision{}, fmt.Errorf("%w: got %v", core.ErrAlphaOutOfRange, alpha)
	}

	reject := res.PValue < alpha
	var conclusion string
	if reject {
		conclusion = fmt.Sprintf("Reject the null hypothesis (p=%.6f < α=%.3f)", res.PValue, alpha)
	} else {
		conclusion = fmt.Sprintf("Fail to reject the null hypothesis (p=%.6f >= α=%.3f)", res.PValue, alpha)
	}

	return Decision{
		Alpha:      alpha,
		RejectNull: reject,
		Conclusion: conclusion,
	}, nil
}
