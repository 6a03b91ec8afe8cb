// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/netsim/lib/contentid"
)

func TestPutGetRoundtrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		hint Hint
		want Compression
	}{
		{"small text stays raw", []byte("hi\n"), HintText, CompressionNone},
		{"empty", nil, HintText, CompressionNone},
		{"repetitive text uses zstd", []byte(strings.Repeat("GET /index.html 200\n", 40)), HintText, CompressionZstd},
		{"repetitive binary uses lz4", bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 64), HintBinary, CompressionLZ4},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			store := New()
			id, err := store.Put(test.data, test.hint)
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if id != contentid.Of(test.data) {
				t.Errorf("Put returned %s, want content ID of data", id.Short())
			}
			got, err := store.Get(id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !bytes.Equal(got, test.data) {
				t.Errorf("Get = %q, want %q", got, test.data)
			}
			compression, ok := store.Compression(id)
			if !ok || compression != test.want {
				t.Errorf("Compression = %v (%v), want %v", compression, ok, test.want)
			}
		})
	}
}

func TestIncompressibleStoredRaw(t *testing.T) {
	t.Parallel()

	// A byte ramp has no repetition LZ4 can exploit at this length.
	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i * 7)
	}
	store := New()
	id, err := store.Put(data, HintBinary)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("incompressible blob did not round-trip")
	}
}

func TestDeduplication(t *testing.T) {
	t.Parallel()

	store := New()
	content := []byte(strings.Repeat("welcome to the lab\n", 10))
	first, err := store.Put(content, HintText)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	second, err := store.Put(append([]byte(nil), content...), HintText)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if first != second {
		t.Error("identical content got different IDs")
	}
	stats := store.Stats()
	if stats.Blobs != 1 || stats.RawBytes != int64(len(content)) {
		t.Errorf("Stats = %+v, want one blob of %d bytes", stats, len(content))
	}
	if stats.StoredBytes >= stats.RawBytes {
		t.Errorf("StoredBytes = %d, expected compression below %d", stats.StoredBytes, stats.RawBytes)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := New()
	id, err := store.Put([]byte("abc"), HintText)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := store.Get(id)
	got[0] = 'X'
	again, _ := store.Get(id)
	if string(again) != "abc" {
		t.Errorf("mutating a Get result changed the stored blob: %q", again)
	}
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()

	store := New()
	_, err := store.Get(contentid.OfString("never stored"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
	if store.Has(contentid.OfString("never stored")) {
		t.Error("Has reported an unknown blob")
	}
}

func TestConcurrentPut(t *testing.T) {
	t.Parallel()

	store := New()
	content := []byte(strings.Repeat("same content ", 20))
	var wait sync.WaitGroup
	for range 16 {
		wait.Add(1)
		go func() {
			defer wait.Done()
			if _, err := store.Put(content, HintText); err != nil {
				t.Errorf("Put: %v", err)
			}
		}()
	}
	wait.Wait()
	if stats := store.Stats(); stats.Blobs != 1 {
		t.Errorf("Blobs = %d after concurrent identical puts, want 1", stats.Blobs)
	}
}
