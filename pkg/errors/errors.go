package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode int

const (
	ErrUnauthenticated ErrorCode = iota + 1000
	ErrForbidden
	ErrNotFoundOrUnauthorized
	ErrValidation
	ErrConflict
	ErrInvalidTransition
	ErrStorage
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Fields  []string  `json:"fields,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status. The error handler
// middleware relies on this.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFoundOrUnauthorized:
		return http.StatusNotFound
	case ErrValidation, ErrInvalidTransition:
		return http.StatusBadRequest
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Code: ErrUnauthenticated, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: ErrForbidden, Message: message}
}

// NotFoundOrUnauthorized deliberately collapses "does not exist" and "not
// yours" into one answer so callers cannot enumerate other users' resources.
func NotFoundOrUnauthorized(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFoundOrUnauthorized,
		Message: fmt.Sprintf("%s not found or you are not authorized to access it", resource),
	}
}

// Validation carries every failed check; callers surface all of them at once.
func Validation(fields ...string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

func Conflict(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("cannot transition appointment from %s to %s", from, to),
	}
}

func Storage(err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: "storage unavailable",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// ValidationBuilder accumulates field-level failures so every problem is
// reported before any mutation is attempted.
type ValidationBuilder struct {
	fields []string
}

func (b *ValidationBuilder) Add(message string) {
	b.fields = append(b.fields, message)
}

func (b *ValidationBuilder) Addf(format string, args ...interface{}) {
	b.fields = append(b.fields, fmt.Sprintf(format, args...))
}

func (b *ValidationBuilder) Empty() bool {
	return len(b.fields) == 0
}

// Err returns the accumulated validation error, or nil if nothing failed.
func (b *ValidationBuilder) Err() error {
	if len(b.fields) == 0 {
		return nil
	}
	return Validation(b.fields...)
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// From extracts the AppError from err's chain, if any.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
