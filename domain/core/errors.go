package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrRunNotFound   = fmt.Errorf("%w: run", ErrNotFound)
	ErrEventNotFound = fmt.Errorf("%w: event", ErrNotFound)

	// Validation errors
	ErrInvalidBinEdges  = errors.New("invalid bin edges")
	ErrInvalidBootstrap = errors.New("invalid bootstrap configuration")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrShapeMismatch    = errors.New("matrix shape mismatch")
	ErrValueOutOfRange  = errors.New("psi value outside [0, 1]")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewBinEdgeError(excludedMax, includedMin float64) error {
	return fmt.Errorf("%w: require 0 <= excluded_max (%g) < included_min (%g) <= 1",
		ErrInvalidBinEdges, excludedMax, includedMin)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidBinEdges) ||
		errors.Is(err, ErrInvalidBootstrap)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrValueOutOfRange)
}
