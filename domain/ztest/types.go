package ztest

import (
	"fmt"
	"math"
	"strings"

	"zmean/domain/core"
)

// Tail selects which alternative hypothesis the p-value answers.
type Tail string

const (
	// TailRight tests Ha: μ > μ0 (upper-tail area).
	TailRight Tail = "right_tailed"
	// TailLeft tests Ha: μ < μ0 (lower-tail area).
	TailLeft Tail = "left_tailed"
	// TailTwo tests Ha: μ ≠ μ0 (both tails).
	TailTwo Tail = "two_tailed"
)

// ParseTail normalizes user-facing spellings into a Tail
func ParseTail(s string) (Tail, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "upper", "greater", string(TailRight):
		return TailRight, nil
	case "left", "lower", "less", string(TailLeft):
		return TailLeft, nil
	case "two", "both", "two_sided", "two-tailed", string(TailTwo):
		return TailTwo, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownTail, s)
	}
}

// Valid reports whether t is one of the three tail modes
func (t Tail) Valid() bool {
	return t == TailRight || t == TailLeft || t == TailTwo
}

// String returns the canonical name
func (t Tail) String() string {
	return string(t)
}

// Comparator returns the alternative-hypothesis comparison symbol
func (t Tail) Comparator() string {
	switch t {
	case TailRight:
		return ">"
	case TailLeft:
		return "<"
	case TailTwo:
		return "≠"
	default:
		return "?"
	}
}

// Inputs holds the four scalars of a one-sample z-test.
// INVARIANTS:
// - PopulationSD strictly > 0 (the standard error is undefined otherwise)
// - SampleSize strictly > 0
// - SampleMean and NullMean finite
type Inputs struct {
	SampleMean   float64 `json:"sample_mean"`
	NullMean     float64 `json:"null_mean"`
	PopulationSD float64 `json:"population_sd"`
	SampleSize   int     `json:"sample_size"`
}

// NewInputs creates validated z-test inputs
func NewInputs(sampleMean, nullMean, populationSD float64, sampleSize int) (Inputs, error) {
	in := Inputs{
		SampleMean:   sampleMean,
		NullMean:     nullMean,
		PopulationSD: populationSD,
		SampleSize:   sampleSize,
	}
	if err := in.Validate(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// MustNewInputs creates inputs and panics on invalid values.
// Use only in tests and development - production code should handle validation errors
func MustNewInputs(sampleMean, nullMean, populationSD float64, sampleSize int) Inputs {
	in, err := NewInputs(sampleMean, nullMean, populationSD, sampleSize)
	if err != nil {
		panic(err)
	}
	return in
}

// Validate checks the input invariants, failing fast instead of letting
// a later division produce NaN or Inf.
func (in Inputs) Validate() error {
	if math.IsNaN(in.SampleMean) || math.IsInf(in.SampleMean, 0) {
		return fmt.Errorf("%w: sample mean", core.ErrNonFiniteInput)
	}
	if math.IsNaN(in.NullMean) || math.IsInf(in.NullMean, 0) {
		return fmt.Errorf("%w: null mean", core.ErrNonFiniteInput)
	}
	if math.IsNaN(in.PopulationSD) || math.IsInf(in.PopulationSD, 0) {
		return fmt.Errorf("%w: population standard deviation", core.ErrNonFiniteInput)
	}
	if in.PopulationSD <= 0 {
		return fmt.Errorf("%w: got %v", core.ErrNonPositiveStdDev, in.PopulationSD)
	}
	if in.SampleSize <= 0 {
		return fmt.Errorf("%w: got %d", core.ErrNonPositiveSampleSize, in.SampleSize)
	}
	return nil
}

// StandardError returns σ / sqrt(n). Call Validate first; a non-positive
// σ or n makes this meaningless.
func (in Inputs) StandardError() float64 {
	return in.PopulationSD / math.Sqrt(float64(in.SampleSize))
}

// Result contains the evaluated test statistic and its p-value.
// INVARIANTS:
// - CDF in (0, 1) up to floating-point saturation at the extremes
// - PValue in [0.0, 1.0]
type Result struct {
	Z        float64 `json:"z"`
	StdError float64 `json:"std_error"`
	CDF      float64 `json:"cdf"`
	PValue   float64 `json:"p_value"`
	Tail     Tail    `json:"tail"`
}

// Decision is the α-threshold verdict for a result
type Decision struct {
	Alpha      float64 `json:"alpha"`
	RejectNull bool    `json:"reject_null"`
	Conclusion string  `json:"conclusion"`
}

// Hypotheses carries the framed null/alternative pair for a study
type Hypotheses struct {
	Null        string `json:"null"`
	Alternative string `json:"alternative"`
}
