package common

import (
	"errors"
	"net/http"
)

// Error codes shared across packages. Domain packages add their own (PROMO_INVALID, STEP_INCOMPLETE, ...).
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRateLimited      = "RATE_LIMITED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeInternal         = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// NewError builds an AppError. An empty message falls back to the cause's text.
func NewError(status int, code, message string, err error) *AppError {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// BadRequest reports a malformed parameter.
func BadRequest(field, message string, err error) *AppError {
	return NewError(http.StatusBadRequest, CodeBadRequest, message, err).WithDetails(map[string]any{"field": field})
}

// InvalidInput reports values the pricing engine refused.
func InvalidInput(err error) *AppError {
	return NewError(http.StatusBadRequest, CodeInvalidInput, "", err)
}

// NotFound reports a missing resource.
func NotFound(message string, err error) *AppError {
	return NewError(http.StatusNotFound, CodeNotFound, message, err)
}

// Unprocessable reports a well-formed request the domain rejects.
func Unprocessable(code, message string, err error) *AppError {
	return NewError(http.StatusUnprocessableEntity, code, message, err)
}

// NotConfigured is returned by handlers mounted without their service.
func NotConfigured(component string) *AppError {
	return NewError(http.StatusInternalServerError, CodeInternal, component+" not configured", nil)
}

// WithDetails sets the details payload and returns e.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
