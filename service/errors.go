package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these onto HTTP status codes; nothing else about
// an error should be needed to classify it.
const (
	KindValidation        = "validation_error"
	KindNotFound          = "not_found"
	KindInvalidTransition = "invalid_transition"
	KindDetectionFailure  = "detection_failure"
	KindConflict          = "conflict"
)

// Error is a structured service error with a stable kind
type Error struct {
	Kind    string
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

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidTransitionError(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func detectionFailure(msg string, err error) *Error {
	return &Error{Kind: KindDetectionFailure, Message: msg, Err: err}
}

func conflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// ErrorKind returns the kind of a service error, or "" for any other error
func ErrorKind(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
