package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeInvalidAge     = "INVALID_AGE"
	ErrCodeDuplicate      = "DUPLICATE_PROFILE"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeAgeRestriction = "AGE_RESTRICTION"
	ErrCodePersistence    = "PERSISTENCE_ERROR"
	ErrCodeTransient      = "TRANSIENT"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "INVALID_AGE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidInputError reports a missing or unparsable field.
func NewInvalidInputError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInvalidAgeError reports an age outside [0,150].
func NewInvalidAgeError(age int) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidAge,
		Message: fmt.Sprintf("age %d is out of range (0-150)", age),
		Status:  http.StatusBadRequest,
	}
}

// NewDuplicateProfileError reports a case-insensitive username collision.
func NewDuplicateProfileError(username string) *AppError {
	return &AppError{
		Code:    ErrCodeDuplicate,
		Message: fmt.Sprintf("profile %q already exists", username),
		Status:  http.StatusConflict,
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewAgeRestrictionError reports a match range rejected by the adult policy.
func NewAgeRestrictionError(seekerAge, minAge, maxAge int) *AppError {
	return &AppError{
		Code:    ErrCodeAgeRestriction,
		Message: fmt.Sprintf("seekers aged %d may only match ranges of 18 and over, got %d-%d", seekerAge, minAge, maxAge),
		Status:  http.StatusUnprocessableEntity,
	}
}

// NewPersistenceError wraps a failed durable store operation.
func NewPersistenceError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodePersistence,
		Message: fmt.Sprintf("%s failed", op),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewTransientError wraps a connection-level failure that is safe to retry.
func NewTransientError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeTransient,
		Message: fmt.Sprintf("%s temporarily unavailable", op),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternal for anything else.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
