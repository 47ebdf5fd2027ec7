// Package errors provides standardized domain errors with codes for the PartLogic API.
//
// Usage:
//
//	// In services - return typed errors
//	if source == nil {
//	    return errors.NotFoundf("source not found: %s", domain)
//	}
//
//	// In the orchestration layer - classify connector outcomes
//	if errors.Is(err, errors.ErrConnectorTimeout) {
//	    result.Status = domain.StatusError
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeConnectorTimeout:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound    Code = "NOT_FOUND"
	CodeValidation  Code = "VALIDATION"
	CodeConflict    Code = "CONFLICT"
	CodeInternal    Code = "INTERNAL"
	CodeUnavailable Code = "UNAVAILABLE"

	// Pipeline codes. These never surface as HTTP failures on the search
	// path: connector and provider errors degrade to warnings, cache errors
	// degrade to direct fetches.
	CodeConnectorTimeout  Code = "CONNECTOR_TIMEOUT"
	CodeConnectorFailure  Code = "CONNECTOR_FAILURE"
	CodeCacheUnavailable  Code = "CACHE_UNAVAILABLE"
	CodeProviderFailure   Code = "PROVIDER_FAILURE"
	CodeAnalysisAmbiguous Code = "ANALYSIS_AMBIGUOUS"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
	ErrUnavailable       = &Error{Code: CodeUnavailable, Message: "unavailable"}
	ErrConnectorTimeout  = &Error{Code: CodeConnectorTimeout, Message: "connector timed out"}
	ErrConnectorFailure  = &Error{Code: CodeConnectorFailure, Message: "connector failed"}
	ErrCacheUnavailable  = &Error{Code: CodeCacheUnavailable, Message: "cache unavailable"}
	ErrProviderFailure   = &Error{Code: CodeProviderFailure, Message: "cross-reference provider failed"}
	ErrAnalysisAmbiguous = &Error{Code: CodeAnalysisAmbiguous, Message: "query analysis ambiguous"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Unavailable creates an unavailable error.
func Unavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg}
}

// ConnectorTimeout creates a connector timeout error.
func ConnectorTimeout(msg string) *Error {
	return &Error{Code: CodeConnectorTimeout, Message: msg}
}

// ConnectorTimeoutf creates a connector timeout error with formatted message.
func ConnectorTimeoutf(format string, args ...any) *Error {
	return &Error{Code: CodeConnectorTimeout, Message: fmt.Sprintf(format, args...)}
}

// ConnectorFailure creates a connector failure error.
func ConnectorFailure(msg string) *Error {
	return &Error{Code: CodeConnectorFailure, Message: msg}
}

// ConnectorFailuref creates a connector failure error with formatted message.
func ConnectorFailuref(format string, args ...any) *Error {
	return &Error{Code: CodeConnectorFailure, Message: fmt.Sprintf(format, args...)}
}

// CacheUnavailable creates a cache unavailable error.
func CacheUnavailable(msg string) *Error {
	return &Error{Code: CodeCacheUnavailable, Message: msg}
}

// ProviderFailure creates a provider failure error.
func ProviderFailure(msg string) *Error {
	return &Error{Code: CodeProviderFailure, Message: msg}
}

// ProviderFailuref creates a provider failure error with formatted message.
func ProviderFailuref(format string, args ...any) *Error {
	return &Error{Code: CodeProviderFailure, Message: fmt.Sprintf(format, args...)}
}

// AnalysisAmbiguous creates an analysis ambiguous error.
func AnalysisAmbiguous(msg string) *Error {
	return &Error{Code: CodeAnalysisAmbiguous, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
