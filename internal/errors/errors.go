// Package errors provides domain-specific error types for the hosts generator.
//
// This package defines structured errors with error codes, making it easier to
// handle and test different error conditions consistently across the application.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeSource indicates an error related to source operations (metadata, download, caching).
	ErrCodeSource ErrorCode = "SOURCE_ERROR"

	// ErrCodeMerge indicates an error in the merge/dedup pipeline.
	ErrCodeMerge ErrorCode = "MERGE_ERROR"

	// ErrCodeOutput indicates an error while writing the final hosts file or readme.
	ErrCodeOutput ErrorCode = "OUTPUT_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewSourceError creates a new source operation error.
func NewSourceError(message string, cause error) *Error {
	return Wrap(ErrCodeSource, message, cause)
}

// NewMergeError creates a new merge pipeline error.
func NewMergeError(message string, cause error) *Error {
	return Wrap(ErrCodeMerge, message, cause)
}

// NewOutputError creates a new output error.
func NewOutputError(message string, cause error) *Error {
	return Wrap(ErrCodeOutput, message, cause)
}
