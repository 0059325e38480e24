package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUnavailable        = New("UNAVAILABLE", http.StatusServiceUnavailable, "service unavailable")
	ErrNoData             = New("NO_DATA", http.StatusUnprocessableEntity, "no scores to aggregate")
	ErrInvalidTarget      = New("INVALID_TARGET", http.StatusUnprocessableEntity, "planned hours must be positive")
	ErrInvalidWeight      = New("INVALID_WEIGHT", http.StatusBadRequest, "coefficient must be positive")
	ErrInvalidScale       = New("INVALID_SCALE", http.StatusUnprocessableEntity, "invalid grading scale")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromEngine translates grade book engine sentinels into typed errors. Unknown errors become internal errors.
func FromEngine(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gradebook.ErrNoData):
		return Wrap(err, ErrNoData.Code, ErrNoData.Status, ErrNoData.Message)
	case errors.Is(err, gradebook.ErrInvalidTarget):
		return Wrap(err, ErrInvalidTarget.Code, ErrInvalidTarget.Status, ErrInvalidTarget.Message)
	case errors.Is(err, gradebook.ErrInvalidWeight):
		return Wrap(err, ErrInvalidWeight.Code, ErrInvalidWeight.Status, ErrInvalidWeight.Message)
	case errors.Is(err, gradebook.ErrInvalidScale):
		return Wrap(err, ErrInvalidScale.Code, ErrInvalidScale.Status, ErrInvalidScale.Message)
	default:
		return FromError(err)
	}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
