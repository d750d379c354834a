package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"zmean/domain/core"
	"zmean/domain/ztest"
)

// StatisticalDistributions provides unified access to the standard normal
// machinery the study needs beyond the domain's own CDF: densities for
// plotting and quantiles for critical values.
type StatisticalDistributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *StatisticalDistributions {
	return &StatisticalDistributions{}
}

// NormalCDF computes the cumulative distribution function for the standard normal
func (sd *StatisticalDistributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalPDF computes the density of the standard normal at x
func (sd *StatisticalDistributions) NormalPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// NormalQuantile computes the quantile function for the standard normal (inverse CDF)
func (sd *StatisticalDistributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// CriticalZ returns the rejection boundary on the z scale for the given
// significance level and tail mode: Quantile(1-alpha) for right-tailed,
// Quantile(alpha) for left-tailed, Quantile(1-alpha/2) for two-tailed.
// For left-tailed tests the boundary is negative; callers compare z < boundary.
func (sd *StatisticalDistributions) CriticalZ(alpha float64, tail ztest.Tail) (float64, error) {
	if !(alpha > 0 && alpha < 1) {
		return 0, fmt.Errorf("%w: got %v", core.ErrAlphaOutOfRange, alpha)
	}

	switch tail {
	case ztest.TailRight:
		return distuv.UnitNormal.Quantile(1 - alpha), nil
	case ztest.TailLeft:
		return distuv.UnitNormal.Quantile(alpha), nil
	case ztest.TailTwo:
		return distuv.UnitNormal.Quantile(1 - alpha/2), nil
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownTail, tail)
	}
}
