// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, amounts, configuration and versions
//   - Transport errors (200-299): Failed requests, unauthorized responses, undecodable bodies
//   - Session errors (300-399): Missing credentials and credential store failures
//   - Stream errors (400-499): Log stream dial failures, closed sockets, malformed entries
//   - Export and archive errors (500-599): Transcript/CSV export and log archive failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidAmount, "amount must be positive")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeStreamDial, "failed to dial log stream", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeUnauthorized) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// APIError is returned when the backend answers with a non-2xx status.
// Detail carries the human-readable "detail" field of the backend error envelope.
type APIError struct {
	StatusCode int
	Detail     string
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, detail string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Detail:     detail,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

// IsAPIError checks if an error is an APIError.
// It uses errors.As to check the error chain.
func IsAPIError(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr)
}

// IsUnauthorized reports whether err represents a rejected session,
// either as an ErrCodeUnauthorized error or an APIError with status 401.
func IsUnauthorized(err error) bool {
	if HasCode(err, ErrCodeUnauthorized) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}

	return false
}
