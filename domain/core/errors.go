package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors - raised eagerly, before any trial runs
	ErrUnresolvedParameter = errors.New("unresolved parameter binding")
	ErrShapeMismatch       = errors.New("parameter vector shape mismatch")
	ErrDuplicateParameter  = errors.New("duplicate parameter name")
	ErrInvalidBounds       = errors.New("invalid parameter bounds")
	ErrMissingField        = errors.New("event sample missing required field")
	ErrLengthMismatch      = errors.New("column length mismatch")
	ErrNotConfigured       = errors.New("generator not configured")

	// Sampling errors - raised at the failing draw
	ErrEmptyDistribution      = errors.New("empty distribution")
	ErrDegenerateDistribution = errors.New("degenerate distribution: all weights zero")
	ErrNegativeWeight         = errors.New("negative weight")

	// Stale state errors - precondition violations that must fail loudly
	ErrStaleTrial = errors.New("trial context superseded by a newer trial")

	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrSweepNotFound = fmt.Errorf("%w: sweep", ErrNotFound)
)

// Error constructors with context

func NewUnresolvedParameterError(srcIdx int, name string) error {
	return fmt.Errorf("%w: source %d requires %q", ErrUnresolvedParameter, srcIdx, name)
}

func NewShapeMismatchError(got, want int) error {
	return fmt.Errorf("%w: got %d values, want %d", ErrShapeMismatch, got, want)
}

func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %q", ErrMissingField, field)
}

func NewNegativeWeightError(index int, weight float64) error {
	return fmt.Errorf("%w: weight[%d] = %g", ErrNegativeWeight, index, weight)
}

// Error checking helpers

// IsConfigurationError reports whether err is a misconfiguration that should
// have been caught before trial generation started.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnresolvedParameter) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrDuplicateParameter) ||
		errors.Is(err, ErrInvalidBounds) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrNotConfigured)
}

// IsSamplingError reports whether err came from a failing weighted draw.
// A trial failing this way is abandoned, never silently skipped.
func IsSamplingError(err error) bool {
	return errors.Is(err, ErrEmptyDistribution) ||
		errors.Is(err, ErrDegenerateDistribution) ||
		errors.Is(err, ErrNegativeWeight)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
