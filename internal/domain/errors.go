package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "VALIDATION_ERROR"
	ErrorKindConflict          ErrorKind = "CONFLICT"
	ErrorKindNotFound          ErrorKind = "NOT_FOUND"
	ErrorKindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	ErrorKindStorage           ErrorKind = "STORAGE_ERROR"
	ErrorKindUnauthorized      ErrorKind = "UNAUTHORIZED"
	ErrorKindForbidden         ErrorKind = "FORBIDDEN"
)

// Error is the typed error returned across the service boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func NewInvalidTransitionError(entity string, from, to any) *Error {
	return &Error{Kind: ErrorKindInvalidTransition, Message: fmt.Sprintf("%s cannot move from %v to %v", entity, from, to)}
}

func NewStorageError(message string, err error) *Error {
	return &Error{Kind: ErrorKindStorage, Message: message, Err: err}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: ErrorKindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: ErrorKindForbidden, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
