package error

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an error class in API responses and logs.
type ErrorCode string

const (
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeTokenExpired      ErrorCode = "TOKEN_EXPIRED"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInvalidState      ErrorCode = "INVALID_STATE"
	CodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// AppError is a structured application error carrying the HTTP status it
// maps to, optional field-level validation messages, and the wrapped cause.
type AppError struct {
	Code       ErrorCode           `json:"code"`
	Message    string              `json:"message"`
	Status     int                 `json:"-"`
	Details    string              `json:"details,omitempty"`
	Fields     map[string][]string `json:"fields,omitempty"`
	RetryAfter time.Duration       `json:"-"`
	Cause      error               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func NewTokenExpired(message string) *AppError {
	return &AppError{Code: CodeTokenExpired, Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

// NewValidationFailed carries a field -> messages map describing every
// rejected input field.
func NewValidationFailed(fields map[string][]string) *AppError {
	return &AppError{
		Code:    CodeValidationFailed,
		Message: "Request validation failed",
		Status:  http.StatusBadRequest,
		Fields:  fields,
	}
}

// NewRateLimited reports how long the caller should wait before retrying.
func NewRateLimited(retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "Too many requests. Please try again later.",
		Status:     http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Status: http.StatusNotFound}
}

func NewInvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message, Status: http.StatusBadRequest}
}

func NewInsufficientFunds(message string) *AppError {
	return &AppError{Code: CodeInsufficientFunds, Message: message, Status: http.StatusInternalServerError}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

func NewInternal(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Status: http.StatusInternalServerError, Cause: cause}
}

// Map coerces any error into an AppError. Unexpected failures become a
// generic internal error so their raw message never leaks to callers.
func Map(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("An unexpected error occurred", err)
}
