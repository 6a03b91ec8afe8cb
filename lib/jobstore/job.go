// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobstore

import (
	"errors"
	"fmt"
	"time"
)

// State is a job's lifecycle position. Jobs move Pending → Running →
// Completed or Failed; a job may also fail straight from Pending.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether s is Completed or Failed.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// ParseState parses a state name.
func ParseState(name string) (State, error) {
	switch state := State(name); state {
	case StatePending, StateRunning, StateCompleted, StateFailed:
		return state, nil
	default:
		return "", fmt.Errorf("unknown job state %q", name)
	}
}

// Job is one row of the ledger.
type Job struct {
	ID          string
	NodeID      string
	UserID      string
	Cwd         string
	CommandLine string
	State       State

	// ExitCode is set once the job is Completed.
	ExitCode int

	// ErrorCode is the result code of a Failed job.
	ErrorCode string

	Output []string

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

var (
	// ErrNotFound: no job with that id.
	ErrNotFound = errors.New("job not found")

	// ErrTransition: the job is not in a state that allows the
	// requested change.
	ErrTransition = errors.New("invalid job state transition")

	// ErrDuplicate: a job with that id already exists.
	ErrDuplicate = errors.New("job already exists")
)
