// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package contentid computes the content identity of simulated files.
//
// A content ID is the BLAKE3 keyed hash of a file's bytes under a fixed
// netsim domain key. It depends only on the bytes: the same content at
// two paths, on two nodes, or written twice yields the same ID, so
// downstream systems detect identical files without comparing bytes.
// The keyed domain keeps these IDs from colliding with BLAKE3 digests
// computed for any other purpose over the same input.
package contentid

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// ID is a 32-byte BLAKE3 digest identifying file content.
type ID [32]byte

// Size is the byte length of an ID.
const Size = 32

// domainKey is the BLAKE3 key for content hashing: the ASCII domain
// name zero-padded to 32 bytes. Changing it changes every content ID.
var domainKey = [32]byte{
	'n', 'e', 't', 's', 'i', 'm', '.', 'c', 'o', 'n', 't', 'e', 'n', 't',
}

// Of returns the content ID of data.
func Of(data []byte) ID {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("contentid: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var id ID
	copy(id[:], hasher.Sum(nil))
	return id
}

// OfString returns the content ID of the UTF-8 bytes of text.
func OfString(text string) ID {
	return Of([]byte(text))
}

// IsZero reports whether id is the zero value (no content recorded).
func (id ID) IsZero() bool {
	return id == ID{}
}

// String returns the 64-character hex form. This is the canonical form
// in events, envelopes, and logs.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns "cid-" followed by the first 12 hex characters, for
// human-facing output where the full digest is noise.
func (id ID) Short() string {
	return "cid-" + hex.EncodeToString(id[:6])
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as
// hex strings in JSON and YAML.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse parses the 64-character hex form of an ID.
func Parse(hexString string) (ID, error) {
	var id ID
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return id, fmt.Errorf("parsing content id: %w", err)
	}
	if len(decoded) != Size {
		return id, fmt.Errorf("content id is %d bytes, want %d", len(decoded), Size)
	}
	copy(id[:], decoded)
	return id, nil
}
