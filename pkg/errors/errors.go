// Package errors provides structured error types for the imposition engine.
//
// Every fatal condition of an imposition run carries a machine-readable code
// so that the CLI and the HTTP preview API can report it consistently:
//
//   - DEGENERATE_SETTINGS: negative or zero dimensions, non-positive usable area
//   - EMPTY_BATCH: no front images supplied
//   - SCHEME_MISMATCH: front/back counts violate the matching scheme (strict mode)
//   - NO_FEASIBLE_LAYOUT: the card does not fit the usable area in any orientation
//   - UNRESOLVED_IMAGE: an image could not be loaded (non-fatal, reported per item)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyBatch, "no front images in %d parties", n)
//	if errors.Is(err, errors.ErrCodeEmptyBatch) {
//	    // reject the batch
//	}
//
//	// Wrap a sentinel so both errors.Is(err, sentinel) and Is(err, code) hold
//	err := errors.Wrap(errors.ErrCodeNoFeasibleLayout, layout.ErrNoFeasibleLayout, "usable area %gx%g mm", w, h)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Batch and settings errors
	ErrCodeDegenerateSettings Code = "DEGENERATE_SETTINGS"
	ErrCodeEmptyBatch         Code = "EMPTY_BATCH"
	ErrCodeSchemeMismatch     Code = "SCHEME_MISMATCH"
	ErrCodeNoFeasibleLayout   Code = "NO_FEASIBLE_LAYOUT"
	ErrCodeUnresolvedImage    Code = "UNRESOLVED_IMAGE"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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

// Fatal reports whether an error with this code aborts a run.
// UNRESOLVED_IMAGE is the only per-item code; it is reported, not raised.
func (c Code) Fatal() bool {
	return c != ErrCodeUnresolvedImage
}
