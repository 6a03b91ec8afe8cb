// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package vpath normalizes path expressions inside the simulated
// filesystem. Every path stored or compared by netsim is canonical:
// absolute, "/"-separated, no "." or ".." segments, no trailing slash
// (except the root itself), no empty segments.
//
// Simulated paths are unrelated to the host filesystem, so this
// package builds on the slash-only "path" package rather than
// "path/filepath".
package vpath

import (
	"fmt"
	"path"
	"strings"
)

// Root is the canonical root path.
const Root = "/"

// Resolve turns expr into a canonical absolute path. Absolute
// expressions are cleaned as-is; relative expressions are interpreted
// against cwd, which must itself be absolute. ".." above the root stays
// at the root. "~" and "~/rest" expand to home when home is non-empty.
//
// Returns an error for an empty expression, a NUL byte in either
// argument, or a relative cwd.
func Resolve(cwd, home, expr string) (string, error) {
	if expr == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.IndexByte(expr, 0) >= 0 {
		return "", fmt.Errorf("path %q contains a NUL byte", expr)
	}

	if home != "" && (expr == "~" || strings.HasPrefix(expr, "~/")) {
		if !IsAbs(home) {
			return "", fmt.Errorf("home directory %q is not absolute", home)
		}
		expr = home + expr[1:]
	}

	if IsAbs(expr) {
		return path.Clean(expr), nil
	}

	if !IsAbs(cwd) {
		return "", fmt.Errorf("working directory %q is not absolute", cwd)
	}
	if strings.IndexByte(cwd, 0) >= 0 {
		return "", fmt.Errorf("working directory contains a NUL byte")
	}
	return path.Join(cwd, expr), nil
}

// IsAbs reports whether p starts at the root.
func IsAbs(p string) bool {
	return strings.HasPrefix(p, "/")
}

// IsCanonical reports whether p is already in canonical form.
func IsCanonical(p string) bool {
	return IsAbs(p) && path.Clean(p) == p
}

// IsRoot reports whether p is the canonical root.
func IsRoot(p string) bool {
	return p == Root
}

// Parent returns the parent of a canonical path. The parent of the root
// is the root.
func Parent(p string) string {
	return path.Dir(p)
}

// Base returns the final segment of a canonical path, or "/" for the
// root.
func Base(p string) string {
	return path.Base(p)
}

// Join appends name to a canonical directory path.
func Join(directory, name string) string {
	return path.Join(directory, name)
}

// Ancestors returns the strict ancestors of a canonical path from the
// root downwards, excluding p itself:
//
//	Ancestors("/a/b/c") == []string{"/", "/a", "/a/b"}
//
// The root has no ancestors.
func Ancestors(p string) []string {
	if IsRoot(p) {
		return nil
	}
	var ancestors []string
	for current := Parent(p); ; current = Parent(current) {
		ancestors = append(ancestors, current)
		if IsRoot(current) {
			break
		}
	}
	for left, right := 0, len(ancestors)-1; left < right; left, right = left+1, right-1 {
		ancestors[left], ancestors[right] = ancestors[right], ancestors[left]
	}
	return ancestors
}

// IsWithin reports whether p equals directory or lies beneath it.
func IsWithin(p, directory string) bool {
	if IsRoot(directory) {
		return true
	}
	return p == directory || strings.HasPrefix(p, directory+"/")
}
