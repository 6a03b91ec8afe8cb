// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobstore holds the bytes of simulated files, addressed by
// content ID.
//
// Overlay entries reference content by [contentid.ID] only; the bytes
// live here, shared by every node of a world. Writing the same content
// twice (one motd copied to fifty nodes, a file rewritten unchanged)
// stores it once.
//
// Blobs are kept compressed in memory. The caller supplies a [Hint]
// describing the content: text compresses with zstd, binary with LZ4
// block mode. Blobs below [MinCompressSize] bytes, and blobs that do
// not shrink, are stored raw.
//
// A Store is safe for concurrent use.
package blobstore
