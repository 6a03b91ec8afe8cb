// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import "fmt"

// CommitMode says whether an operation's mutations persist. There is
// no usable zero value: callers must choose.
type CommitMode uint8

const (
	// DryRun performs every check and reports what would happen
	// without changing any overlay or emitting events.
	DryRun CommitMode = iota + 1

	// Real commits mutations and emits their events.
	Real
)

// String returns "dry-run" or "real".
func (m CommitMode) String() string {
	switch m {
	case DryRun:
		return "dry-run"
	case Real:
		return "real"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// Valid reports whether m is DryRun or Real.
func (m CommitMode) Valid() bool {
	return m == DryRun || m == Real
}

// ParseCommitMode parses "dry-run" or "real".
func ParseCommitMode(name string) (CommitMode, error) {
	switch name {
	case "dry-run", "dryRun":
		return DryRun, nil
	case "real":
		return Real, nil
	default:
		return 0, fmt.Errorf("unknown commit mode %q (want real or dry-run)", name)
	}
}

// Target returns the overlay a mode-dependent operation should act on:
// o itself for Real, a discarded fork for DryRun.
func (m CommitMode) Target(o *Overlay) *Overlay {
	if m == Real {
		return o
	}
	return o.Fork()
}
