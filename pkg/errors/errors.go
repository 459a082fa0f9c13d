// Package errors provides structured error types for topoviz.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into a few groups:
//   - INVALID_*, DATA_SHAPE: input validation failures
//   - PATH_*: path query outcomes
//   - LAYOUT_*: layout resolution
//   - STALE_RESULT, INVALID_STATE: selection state machine
//   - NOT_FOUND, NETWORK_ERROR, INTERNAL_ERROR: infrastructure
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDataShape, "topology payload has no edge list")
//	if errors.Is(err, errors.ErrCodeDataShape) {
//	    // abort the layout pass
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePathQuery, origErr, "query %s -> %s", src, dst)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidVariant    Code = "INVALID_VARIANT"
	ErrCodeInvalidConstraint Code = "INVALID_CONSTRAINT"
	ErrCodeDataShape         Code = "DATA_SHAPE"

	// Path query outcomes
	ErrCodePathNotFound Code = "PATH_NOT_FOUND"
	ErrCodePathQuery    Code = "PATH_QUERY_FAILED"

	// Layout resolution
	ErrCodeLayoutUnresolvable Code = "LAYOUT_UNRESOLVABLE"

	// Selection state machine
	ErrCodeStale        Code = "STALE_RESULT"
	ErrCodeInvalidState Code = "INVALID_STATE"

	// Resource not found errors
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeCollectionNotFound Code = "COLLECTION_NOT_FOUND"
	ErrCodeSessionNotFound    Code = "SESSION_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// Only the outermost *Error is considered.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Has reports whether any *Error in the chain carries code.
func Has(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
