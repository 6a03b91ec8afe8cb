// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/netsim/lib/result"
)

var (
	// ErrNotFound: nothing visible at the path.
	ErrNotFound = errors.New("no such file or directory")

	// ErrInvalid: the mutation would break an overlay invariant (parent
	// not a directory, directory over a file, deleting the root or a
	// non-empty directory) or the path is not canonical.
	ErrInvalid = errors.New("invalid overlay operation")

	// ErrNotEmpty is the [ErrInvalid] reported when deleting a
	// directory that still has visible children.
	ErrNotEmpty = fmt.Errorf("%w: directory not empty", ErrInvalid)

	// ErrNotDirectory: a directory was required.
	ErrNotDirectory = errors.New("not a directory")

	// ErrIsDirectory: a file was required.
	ErrIsDirectory = errors.New("is a directory")

	// ErrNotText: a text read targeted a non-text file.
	ErrNotText = errors.New("not a text file")
)

// CodeError maps an overlay error onto the result codes, keeping the
// original as the cause. A non-empty directory is NotDirectory: there
// is no dedicated code for it. Errors that are not overlay errors keep
// whatever code they already carry. CodeError(nil) is nil.
func CodeError(err error) error {
	var code result.Code
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		code = result.NotFound
	case errors.Is(err, ErrNotEmpty), errors.Is(err, ErrNotDirectory):
		code = result.NotDirectory
	case errors.Is(err, ErrIsDirectory):
		code = result.IsDirectory
	case errors.Is(err, ErrNotText):
		code = result.NotTextFile
	case errors.Is(err, ErrInvalid):
		code = result.InvalidArgs
	default:
		code = result.CodeOf(err)
	}
	return &result.Error{Code: code, Reason: err.Error(), Cause: err}
}
