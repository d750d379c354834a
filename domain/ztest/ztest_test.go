package ztest

import (
	"errors"
	"math"
	"testing"

	"zmean/domain/core"
)

// aeq reports whether expect and actual agree to 11 significant figures.
func aeq(expect, actual float64) bool {
	if expect < 0 && actual < 0 {
		expect, actual = -expect, -actual
	}
	return expect*(1-1e-11) <= actual && actual <= expect*(1+1e-11)
}

func TestEvaluate_WorkedExample(t *testing.T) {
	in := MustNewInputs(103, 100, 16, 40)

	res, err := Evaluate(in, TailRight)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if !aeq(1.1858541225631423, res.Z) {
		t.Errorf("z = %.16f, want 1.1858541225631423", res.Z)
	}
	if !aeq(0.8821600432854813, res.CDF) {
		t.Errorf("Φ(z) = %.16f, want 0.8821600432854813", res.CDF)
	}
	if !aeq(0.11783995671451875, res.PValue) {
		t.Errorf("p = %.17f, want 0.11783995671451875", res.PValue)
	}
	if !aeq(16/math.Sqrt(40), res.StdError) {
		t.Errorf("standard error = %.16f, want %.16f", res.StdError, 16/math.Sqrt(40))
	}

	t.Logf("worked example: z=%.6f Φ=%.6f p=%.6f se=%.6f", res.Z, res.CDF, res.PValue, res.StdError)
}

func TestEvaluate_TailModes(t *testing.T) {
	in := MustNewInputs(103, 100, 16, 40)

	tests := []struct {
		name string
		tail Tail
		want func(cdf float64) float64
	}{
		{"right", TailRight, func(cdf float64) float64 { return 1 - cdf }},
		{"left", TailLeft, func(cdf float64) float64 { return cdf }},
		{"two", TailTwo, func(cdf float64) float64 { return 2 * (1 - cdf) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Evaluate(in, tc.tail)
			if err != nil {
				t.Fatalf("evaluate(%s): %v", tc.tail, err)
			}
			// z > 0 here, so Φ(|z|) == Φ(z) and each tail is a closed form of the CDF.
			want := tc.want(StandardNormalCDF(res.Z))
			if !aeq(want, res.PValue) {
				t.Errorf("p = %.16f, want %.16f", res.PValue, want)
			}
			if res.PValue < 0 || res.PValue > 1 {
				t.Errorf("p = %v outside [0,1]", res.PValue)
			}
			if res.Tail != tc.tail {
				t.Errorf("result tail = %s, want %s", res.Tail, tc.tail)
			}
		})
	}
}

func TestEvaluate_TwoTailedDoublesSmallerTail(t *testing.T) {
	// A sample mean below the null lands in the lower tail; two-tailed p must
	// double the left tail there, not the right.
	in := MustNewInputs(97, 100, 16, 40)

	left, err := Evaluate(in, TailLeft)
	if err != nil {
		t.Fatalf("evaluate left: %v", err)
	}
	two, err := Evaluate(in, TailTwo)
	if err != nil {
		t.Fatalf("evaluate two: %v", err)
	}

	if !aeq(2*left.PValue, two.PValue) {
		t.Errorf("two-tailed p = %.16f, want 2*left = %.16f", two.PValue, 2*left.PValue)
	}
}

func TestStandardNormalCDF_CenterAndSymmetry(t *testing.T) {
	if got := StandardNormalCDF(0); math.Abs(got-0.5) > 1e-15 {
		t.Errorf("Φ(0) = %v, want 0.5", got)
	}

	for _, z := range []float64{0.1, 0.5, 1, 1.1858541225631423, 2, 3.5, 6} {
		left := StandardNormalCDF(-z)
		right := StandardNormalCDF(z)
		if math.Abs(left-(1-right)) > 1e-12 {
			t.Errorf("symmetry broken at z=%v: Φ(-z)=%v, 1-Φ(z)=%v", z, left, 1-right)
		}
	}
}

func TestStandardNormalCDF_Monotonic(t *testing.T) {
	prev := StandardNormalCDF(-8)
	for z := -8.0; z <= 8.0; z += 0.01 {
		cur := StandardNormalCDF(z)
		if cur < prev {
			t.Fatalf("Φ decreased between %v and %v: %v -> %v", z-0.01, z, prev, cur)
		}
		prev = cur
	}
}

func TestStandardNormalCDF_Boundary(t *testing.T) {
	// Saturation at float64 precision is expected behavior at the extremes.
	if got := StandardNormalCDF(40); got < 1-1e-12 {
		t.Errorf("Φ(40) = %v, want ~1", got)
	}
	if got := StandardNormalCDF(-40); got > 1e-12 {
		t.Errorf("Φ(-40) = %v, want ~0", got)
	}
}

func TestNewInputs_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mean    float64
		mu      float64
		sigma   float64
		n       int
		wantErr error
	}{
		{"zero sigma", 103, 100, 0, 40, core.ErrNonPositiveStdDev},
		{"negative sigma", 103, 100, -2, 40, core.ErrNonPositiveStdDev},
		{"zero n", 103, 100, 16, 0, core.ErrNonPositiveSampleSize},
		{"negative n", 103, 100, 16, -5, core.ErrNonPositiveSampleSize},
		{"nan mean", math.NaN(), 100, 16, 40, core.ErrNonFiniteInput},
		{"inf null mean", 103, math.Inf(1), 16, 40, core.ErrNonFiniteInput},
		{"nan sigma", 103, 100, math.NaN(), 40, core.ErrNonFiniteInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInputs(tc.mean, tc.mu, tc.sigma, tc.n)
			if err == nil {
				t.Fatal("expected validation error, got none")
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
			if !core.IsValidationError(err) {
				t.Errorf("expected a validation-class error, got %v", err)
			}
		})
	}

	if _, err := NewInputs(103, 100, 16, 40); err != nil {
		t.Errorf("valid inputs rejected: %v", err)
	}
}

func TestEvaluate_UnknownTail(t *testing.T) {
	in := MustNewInputs(103, 100, 16, 40)
	_, err := Evaluate(in, Tail("sideways"))
	if !errors.Is(err, core.ErrUnknownTail) {
		t.Errorf("error = %v, want %v", err, core.ErrUnknownTail)
	}
}

func TestParseTail(t *testing.T) {
	tests := []struct {
		in      string
		want    Tail
		wantErr bool
	}{
		{"right", TailRight, false},
		{"greater", TailRight, false},
		{"UPPER", TailRight, false},
		{"right_tailed", TailRight, false},
		{"left", TailLeft, false},
		{"less", TailLeft, false},
		{"two", TailTwo, false},
		{"two-tailed", TailTwo, false},
		{"both", TailTwo, false},
		{"", "", true},
		{"diagonal", "", true},
	}

	for _, tc := range tests {
		got, err := ParseTail(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTail(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTail(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTail(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDecide(t *testing.T) {
	in := MustNewInputs(103, 100, 16, 40)
	res, err := Evaluate(in, TailRight)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	// p ≈ 0.1178 at α=0.05: the worked example fails to reject.
	dec, err := Decide(res, 0.05)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if dec.RejectNull {
		t.Errorf("expected fail-to-reject at α=0.05, got reject (p=%v)", res.PValue)
	}

	// The same evidence clears a looser threshold.
	dec, err = Decide(res, 0.15)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !dec.RejectNull {
		t.Errorf("expected reject at α=0.15 (p=%v)", res.PValue)
	}

	for _, alpha := range []float64{0, 1, -0.05, 1.5, math.NaN()} {
		if _, err := Decide(res, alpha); !errors.Is(err, core.ErrAlphaOutOfRange) {
			t.Errorf("Decide(α=%v): error = %v, want %v", alpha, err, core.ErrAlphaOutOfRange)
		}
	}
}

func TestFrame(t *testing.T) {
	in := MustNewInputs(103, 100, 16, 40)

	tests := []struct {
		tail    Tail
		wantAlt string
	}{
		{TailRight, "μ > 100.0000"},
		{TailLeft, "μ < 100.0000"},
		{TailTwo, "μ ≠ 100.0000"},
	}

	for _, tc := range tests {
		h := Frame(in, tc.tail)
		if h.Null != "μ = 100.0000" {
			t.Errorf("null = %q, want %q", h.Null, "μ = 100.0000")
		}
		if h.Alternative != tc.wantAlt {
			t.Errorf("alternative = %q, want %q", h.Alternative, tc.wantAlt)
		}
	}
}

func TestEvaluate_RightPValueAlwaysInUnitInterval(t *testing.T) {
	// Sweep a wide grid of inputs; the right-tailed p must stay in [0,1]
	// even where the CDF saturates.
	for _, mean := range []float64{-1e6, -103, 0, 99.999, 100, 103, 1e6} {
		for _, sigma := range []float64{1e-6, 1, 16, 1e6} {
			for _, n := range []int{1, 40, 100000} {
				in := MustNewInputs(mean, 100, sigma, n)
				res, err := Evaluate(in, TailRight)
				if err != nil {
					t.Fatalf("evaluate(%v, %v, %d): %v", mean, sigma, n, err)
				}
				if res.PValue < 0 || res.PValue > 1 {
					t.Fatalf("p = %v outside [0,1] for mean=%v sigma=%v n=%d", res.PValue, mean, sigma, n)
				}
			}
		}
	}
}
