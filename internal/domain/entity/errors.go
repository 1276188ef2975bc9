package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrArticleIDNotResolved indicates that a freshly inserted article row
	// could not be found again inside the same transaction.
	ErrArticleIDNotResolved = errors.New("inserted article id not resolved")

	// ErrArticleIDAmbiguous indicates that more than one row matched the
	// values of a freshly inserted article.
	ErrArticleIDAmbiguous = errors.New("inserted article id ambiguous")
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

// Unwrap lets callers match any ValidationError with errors.Is(err, ErrValidationFailed).
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// UnexpectedError wraps any storage failure surfaced by the persistence layer.
// Description names the operation and the fields identifying the call;
// Cause is the original error.
type UnexpectedError struct {
	Description string
	Cause       error
}

// NewUnexpected builds an UnexpectedError.
func NewUnexpected(cause error, format string, args ...any) *UnexpectedError {
	return &UnexpectedError{
		Description: fmt.Sprintf(format, args...),
		Cause:       cause,
	}
}

func (e *UnexpectedError) Error() string {
	if e.Cause == nil {
		return e.Description
	}
	return e.Description + ": " + e.Cause.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Cause
}

// IsUnexpected reports whether err is, or wraps, an UnexpectedError.
func IsUnexpected(err error) bool {
	var u *UnexpectedError
	return errors.As(err, &u)
}
