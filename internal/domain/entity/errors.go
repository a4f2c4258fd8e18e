package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrEmptyCaption indicates that a digest was built with an empty caption
	ErrEmptyCaption = errors.New("digest caption is empty")

	// ErrCaptionTooLong indicates that a digest caption exceeds MaxCaptionRunes
	ErrCaptionTooLong = errors.New("digest caption exceeds maximum length")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
