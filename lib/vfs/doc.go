// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package vfs implements the per-node overlay filesystem.
//
// An [Overlay] layers edits over an immutable [Base] built from
// scenario content:
//
//   - mutations: files written and directories created since the base
//     was built, in creation order
//   - tombstones: paths deleted since the base was built
//
// Resolution checks, for each path segment from the root down: a
// tombstone hides anything at that path; otherwise a mutation shadows
// the base entry; otherwise the base entry is used. An entry is only
// visible when every ancestor is a visible directory, and "/" always
// exists. A directory re-created where a base directory was deleted is
// opaque: the deleted directory's base descendants stay hidden beneath
// it.
//
// File bytes are not stored in the overlay. Entries carry a
// [contentid.ID]; the bytes live in a shared [blobstore.Store].
// A transaction stages the content it writes and stores it only when
// it publishes. A [Overlay.Fork] keeps its content in a private
// scratch store, so dry-run writes leave the shared store untouched.
//
// # Concurrency
//
// Mutations are serialized per overlay by a mutex. Each mutation
// builds a new immutable layer state and publishes it with a single
// atomic pointer store, so readers load one consistent state and never
// observe a half-applied write. [Overlay.Update] groups several
// mutations into one publish: a write that first creates missing
// parent directories is seen entirely or not at all.
//
// [Overlay.View] returns a read snapshot which stays consistent however
// long the caller holds it.
package vfs
