// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package world is the in-memory simulated network: nodes with their
// overlay filesystems and user accounts, live login sessions, ephemeral
// terminal sessions, a simulated shell, a background job scheduler, and
// the file-acquire event fan-out.
//
// A [World] implements the collaborator interfaces the core packages
// consume: [endpoint.Directory] for resolution, [execengine.World] for
// command execution, and [fsops.Events] for write notifications.
//
// # Shell
//
// Command lines are split with POSIX shell quoting rules and run as one
// built-in: pwd, whoami, hostname, echo, ls, cat, stat, mkdir [-p],
// touch, rm, write, sleep and ssh. Any built-in's output may be
// redirected to a file with "> path" or appended with ">> path".
// "ssh user@node password command..." logs into another node, records
// the connection on the caller's terminal session, and runs the
// command there. A failing command's first output line is
// "error: <reason>" and its result carries a result code.
//
// Dry-run commands execute against forks of the node overlays they
// touch, so nothing they write persists.
package world
