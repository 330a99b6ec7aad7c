// Package domain holds the error model shared by all fintrack services.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four error kinds surfaced to callers.
// Services return *Error values; errors.Is against these sentinels
// matches on the kind.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation error")
	ErrUpstream   = errors.New("upstream error")
)

// Error is a structured error with a field-keyed message, so rejected
// operations can surface which input field caused the rejection.
type Error struct {
	kind    error
	Field   string
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is reports whether target matches this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// NotFound builds a NotFound error for the given field.
func NotFound(field, message string) *Error {
	return &Error{kind: ErrNotFound, Field: field, Message: message}
}

// Forbidden builds a Forbidden error for the given field.
func Forbidden(field, message string) *Error {
	return &Error{kind: ErrForbidden, Field: field, Message: message}
}

// Validation builds a Validation error for the given field.
func Validation(field, message string) *Error {
	return &Error{kind: ErrValidation, Field: field, Message: message}
}

// Upstream wraps a collaborator failure (rate source, bank feed).
func Upstream(field string, err error) *Error {
	return &Error{kind: ErrUpstream, Field: field, Message: err.Error(), wrapped: err}
}
