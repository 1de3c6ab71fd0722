// Package apperr defines the error taxonomy surfaced by the reconciliation
// engine. Callers map these to transport-level responses.
package apperr

import (
	"fmt"
)

// ConflictError means a requested creation collides with existing state.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflictf builds a ConflictError.
func Conflictf(format string, args ...any) *ConflictError {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError means a document is structurally sound but semantically
// illegal: an illegal mutation of a published field, a dangling or
// mistyped reference, or mutually exclusive fields both set.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced parent entity is absent.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...any) *NotFoundError {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidInputError means a required argument was empty or malformed before
// any reconciliation began.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

// InvalidInputf builds an InvalidInputError.
func InvalidInputf(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}
