package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrRunNotFound      = fmt.Errorf("%w: run", ErrNotFound)
	ErrArtifactNotFound = fmt.Errorf("%w: artifact", ErrNotFound)
	ErrColumnNotFound   = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrInvalidField          = errors.New("validation failed")
	ErrNonPositiveStdDev     = errors.New("population standard deviation must be > 0")
	ErrNonPositiveSampleSize = errors.New("sample size must be > 0")
	ErrNonFiniteInput        = errors.New("input is not a finite number")
	ErrUnknownTail           = errors.New("unknown tail mode")
	ErrAlphaOutOfRange       = errors.New("significance level must be in (0, 1)")
	ErrInsufficientData      = errors.New("insufficient data for analysis")

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrInvalidField, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrNonPositiveStdDev) ||
		errors.Is(err, ErrNonPositiveSampleSize) ||
		errors.Is(err, ErrNonFiniteInput) ||
		errors.Is(err, ErrUnknownTail) ||
		errors.Is(err, ErrAlphaOutOfRange)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}
