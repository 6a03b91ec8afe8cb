// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsops implements the filesystem verbs (list, read, write,
// delete, stat) against resolved endpoints.
//
// Every operation runs the same pipeline: validate options, resolve the
// endpoint, check privilege (Read for list, read and stat; Write for
// write and delete), normalize the path against the endpoint's working
// directory, then act on the node's overlay. Failures are
// [*result.Error] values carrying one of the closed result codes.
//
// Write and delete take a [vfs.CommitMode]. DryRun runs the same checks
// against a fork of the overlay and reports the would-be outcome; only
// Real mutates the node and emits a file-acquire event.
package fsops
