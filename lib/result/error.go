// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package result

import (
	"errors"
	"fmt"
)

// Error is a coded failure. Reason is the human-readable explanation;
// the code travels separately so callers never parse Reason.
//
// Error optionally wraps an underlying cause so errors.Is and errors.As
// still reach sentinel errors from lower layers.
type Error struct {
	// Code classifies the failure.
	Code Code

	// Reason is the message shown to the caller.
	Reason string

	// Cause is the lower-level error this failure was derived from.
	// May be nil.
	Cause error
}

// Error returns the reason text. The code is not included.
func (e *Error) Error() string { return e.Reason }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted reason.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error whose reason is prefix followed by cause's
// message, keeping cause reachable through errors.Is.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	reason := fmt.Sprintf(format, args...)
	if cause != nil {
		reason += ": " + cause.Error()
	}
	return &Error{Code: code, Reason: reason, Cause: cause}
}

// Invalid creates an InvalidArgs error.
func Invalid(format string, args ...any) *Error {
	return New(InvalidArgs, format, args...)
}

// Denied creates a PermissionDenied error.
func Denied(format string, args ...any) *Error {
	return New(PermissionDenied, format, args...)
}

// Missing creates a NotFound error.
func Missing(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

// Internal creates an InternalError error.
func Internal(format string, args ...any) *Error {
	return New(InternalError, format, args...)
}

// CodeOf returns the code carried by err. A nil error is None. An error
// that is not (and does not wrap) an [*Error] is InternalError: an
// uncoded failure escaping a component is a bug in that component.
func CodeOf(err error) Code {
	if err == nil {
		return None
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return InternalError
}

// Prefix returns a copy of err with prefix prepended to its reason,
// preserving the code. Non-coded errors become InternalError.
func Prefix(prefix string, err error) *Error {
	var coded *Error
	if errors.As(err, &coded) {
		return &Error{Code: coded.Code, Reason: prefix + coded.Reason, Cause: coded.Cause}
	}
	return &Error{Code: InternalError, Reason: prefix + err.Error(), Cause: err}
}
