// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package result

// Code is an error token. The constants below form the closed set used
// by netsim components. Simulated commands may report additional codes
// of their own; those pass through unchanged on execution failure.
type Code string

const (
	// None is the code of every successful result.
	None Code = "None"

	// InvalidArgs covers malformed arguments, unsupported option keys,
	// unrecognized handle shapes, and failed identity validation.
	// Always detected before any state is touched.
	InvalidArgs Code = "InvalidArgs"

	// PermissionDenied means the resolved endpoint user lacks the
	// privilege the operation needs.
	PermissionDenied Code = "PermissionDenied"

	// NotFound means a path or referenced identity does not exist.
	NotFound Code = "NotFound"

	// NotDirectory means a directory was required but the entry is a
	// file, or a directory that must be empty is not.
	NotDirectory Code = "NotDirectory"

	// IsDirectory means a file was required but the entry is a
	// directory.
	IsDirectory Code = "IsDirectory"

	// NotTextFile means a text read targeted a non-text file.
	NotTextFile Code = "NotTextFile"

	// AlreadyExists means a create would replace an existing entry and
	// the caller did not opt into overwriting.
	AlreadyExists Code = "AlreadyExists"

	// TooLarge means the operation would have succeeded but its payload
	// exceeds the caller's size cap. Nothing is applied or returned.
	TooLarge Code = "TooLarge"

	// InternalError means the execution context is missing or invalid,
	// or a collaborator failed unexpectedly. Distinct from every
	// user-facing code.
	InternalError Code = "InternalError"
)

var knownCodes = map[Code]bool{
	None:             true,
	InvalidArgs:      true,
	PermissionDenied: true,
	NotFound:         true,
	NotDirectory:     true,
	IsDirectory:      true,
	NotTextFile:      true,
	AlreadyExists:    true,
	TooLarge:         true,
	InternalError:    true,
}

// Known reports whether code belongs to the closed set defined by this
// package. Codes reported by simulated commands may be unknown.
func (code Code) Known() bool {
	return knownCodes[code]
}

// String returns the token text.
func (code Code) String() string {
	return string(code)
}
