package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrAnalysisNotFound  = fmt.Errorf("%w: analysis", ErrNotFound)
	ErrProcedureNotFound = fmt.Errorf("%w: procedure", ErrNotFound)
	ErrColumnNotFound    = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrDegenerateData   = errors.New("degenerate data")
	ErrLengthMismatch   = errors.New("input lengths differ")
)

// NewNotFoundError names the missing key under one of the not-found sentinels.
func NewNotFoundError(kind error, key string) error {
	return fmt.Errorf("%w: %s", kind, key)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// NewInsufficientDataError reports that fewer than need observations remain
// after missing values were dropped.
func NewInsufficientDataError(procedure string, have, need int) error {
	return fmt.Errorf("%w: %s needs at least %d observations, got %d", ErrInsufficientData, procedure, need, have)
}

func NewUnknownMethodError(kind, method string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownMethod, kind, method)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrDegenerateData) ||
		errors.Is(err, ErrLengthMismatch)
}

// IsDegenerateError reports data the statistic is undefined for.
func IsDegenerateError(err error) bool {
	return errors.Is(err, ErrDegenerateData)
}

// NewDegenerateError reports data for which a statistic is undefined,
// such as zero variance or an empty margin.
func NewDegenerateError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateData, reason)
}
