// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package execengine

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

// TerminalSessionID tags one ephemeral terminal session.
type TerminalSessionID uint64

// String returns "term-<n>".
func (id TerminalSessionID) String() string {
	return fmt.Sprintf("term-%d", uint64(id))
}

// JobID identifies a scheduled background job. Opaque to callers.
type JobID string

// Request is one command line to run at a node.
type Request struct {
	NodeID            string
	UserID            string
	Cwd               string
	CommandLine       string
	TerminalSessionID TerminalSessionID
	Mode              vfs.CommitMode
}

// Result is a command's outcome as reported by the world. Code is the
// command's own code when OK is false.
type Result struct {
	OK    bool
	Code  result.Code
	Lines []string
}

// World is the simulation the engine runs commands in.
type World interface {
	// AllocateTerminalSessionID reserves a fresh terminal session.
	AllocateTerminalSessionID() TerminalSessionID

	// CleanupTerminalSessionConnections closes every connection the
	// terminal session opened and releases it.
	CleanupTerminalSessionConnections(id TerminalSessionID)

	// ExecuteSystemCall runs the request to completion.
	ExecuteSystemCall(ctx context.Context, request Request) Result

	// TryStartAsyncExecJob schedules the request as a background job.
	// The job must not depend on request.TerminalSessionID staying
	// open. Errors carry the scheduler's result code.
	TryStartAsyncExecJob(ctx context.Context, request Request) (JobID, error)
}
