// Package kverrors defines the categorized error type returned by the engine
// and its internal components, so callers can distinguish an I/O failure
// from a corrupt frame from a bad argument without parsing message text.
package kverrors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies the failure a *Error carries.
type ErrorCode string

const (
	// ErrorCodeIO covers file-system failures: open, append, sync, mmap, close.
	ErrorCodeIO ErrorCode = "io_error"
	// ErrorCodeCorrupt covers truncated or malformed record frames.
	ErrorCodeCorrupt ErrorCode = "corrupt_frame"
	// ErrorCodeInvalidArgument covers bad caller input: non-positive
	// threshold, empty directory path, and similar.
	ErrorCodeInvalidArgument ErrorCode = "invalid_argument"
)

// ErrNotFound is returned by Get for a key with no value — a result, not an
// error, but represented as a sentinel so callers can use errors.Is.
var ErrNotFound = errors.New("kverrors: key not found")

// ErrClosed is returned by any engine operation invoked after Close.
var ErrClosed = errors.New("kverrors: engine closed")

// Error is the categorized error type wrapped around an underlying cause.
type Error struct {
	Code ErrorCode
	Op   string
	Path string
	err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Code, e.Path, e.err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// New wraps err into a categorized Error tagged with the failing operation.
func New(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, err: err}
}

// WithPath attaches the file path involved in the failure.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// Code extracts the ErrorCode from err's chain, or "" if err carries none.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
