// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bureau-foundation/netsim/lib/contentid"
)

// MinCompressSize is the smallest blob worth compressing. Below this
// the frame overhead outweighs any saving.
const MinCompressSize = 64

// Hint describes content so the store can pick a compression.
type Hint uint8

const (
	// HintText marks human-readable content.
	HintText Hint = iota

	// HintBinary marks opaque content.
	HintBinary
)

// ErrNotFound is returned by Get for an unknown content ID.
var ErrNotFound = errors.New("blob not found")

type blob struct {
	compression Compression
	size        int
	stored      []byte
}

// Store is an in-memory content-addressed blob store.
type Store struct {
	mu    sync.RWMutex
	blobs map[contentid.ID]*blob

	storedBytes int64
	rawBytes    int64
}

// Stats summarizes store contents.
type Stats struct {
	// Blobs is the number of distinct contents held.
	Blobs int

	// RawBytes is the total uncompressed size of all blobs.
	RawBytes int64

	// StoredBytes is the total size after compression.
	StoredBytes int64
}

// New returns an empty store.
func New() *Store {
	return &Store{blobs: make(map[contentid.ID]*blob)}
}

// Put stores data and returns its content ID. Storing content that is
// already present is a no-op apart from the hash.
func (s *Store) Put(data []byte, hint Hint) (contentid.ID, error) {
	id := contentid.Of(data)

	s.mu.RLock()
	_, exists := s.blobs[id]
	s.mu.RUnlock()
	if exists {
		return id, nil
	}

	compression := CompressionNone
	if len(data) >= MinCompressSize {
		compression = CompressionZstd
		if hint == HintBinary {
			compression = CompressionLZ4
		}
	}

	stored, err := compress(data, compression)
	if errors.Is(err, errIncompressible) {
		compression = CompressionNone
		stored = data
	} else if err != nil {
		return contentid.ID{}, fmt.Errorf("blobstore: storing %s: %w", id.Short(), err)
	}
	if compression == CompressionNone {
		stored = append([]byte(nil), data...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent Put of the same content may have won the race.
	if _, exists := s.blobs[id]; exists {
		return id, nil
	}
	s.blobs[id] = &blob{compression: compression, size: len(data), stored: stored}
	s.rawBytes += int64(len(data))
	s.storedBytes += int64(len(stored))
	return id, nil
}

// Get returns a copy of the content stored under id.
func (s *Store) Get(id contentid.ID) ([]byte, error) {
	s.mu.RLock()
	entry, exists := s.blobs[id]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("blobstore: %s: %w", id.Short(), ErrNotFound)
	}

	data, err := decompress(entry.stored, entry.compression, entry.size)
	if err != nil {
		return nil, fmt.Errorf("blobstore: reading %s: %w", id.Short(), err)
	}
	return data, nil
}

// Has reports whether content with the given ID is stored.
func (s *Store) Has(id contentid.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.blobs[id]
	return exists
}

// Compression reports how the blob under id is stored.
func (s *Store) Compression(id contentid.ID) (Compression, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.blobs[id]
	if !exists {
		return CompressionNone, false
	}
	return entry.compression, true
}

// Stats returns a summary of the store.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Blobs:       len(s.blobs),
		RawBytes:    s.rawBytes,
		StoredBytes: s.storedBytes,
	}
}
