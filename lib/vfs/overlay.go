// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/netsim/lib/blobstore"
)

// Overlay is one node's filesystem: an immutable base plus mutation and
// tombstone layers. Safe for concurrent use.
type Overlay struct {
	base    *Base
	content content

	// writeMu serializes Update calls. Readers never take it.
	writeMu sync.Mutex
	current atomic.Pointer[state]
}

// New returns an overlay over base with no edits. A nil base is the
// empty tree.
func New(base *Base, blobs *blobstore.Store) *Overlay {
	if base == nil {
		base = EmptyBase()
	}
	overlay := &Overlay{base: base, content: sharedContent(blobs)}
	overlay.current.Store(emptyState())
	return overlay
}

// View returns a read snapshot of the current state.
func (o *Overlay) View() View {
	return View{base: o.base, state: o.current.Load(), content: o.content}
}

// Blobs returns the shared store holding committed file content. A
// fork's content stays in its private scratch store.
func (o *Overlay) Blobs() *blobstore.Store {
	return o.content.shared()
}

// Fork returns an independent overlay starting from the current state.
// Edits to either overlay are invisible to the other, and content the
// fork writes is kept out of the shared blob store. Used for dry-run
// execution, where commands run against scratch state that is then
// discarded.
func (o *Overlay) Fork() *Overlay {
	fork := &Overlay{base: o.base, content: o.content.fork()}
	fork.current.Store(o.current.Load())
	return fork
}

// Update runs fn against a transaction over the current state. If fn
// returns nil and made changes, the result and its file content are
// published atomically; otherwise nothing changes, in the blob store
// included. Updates on one overlay run one at a time.
func (o *Overlay) Update(fn func(*Txn) error) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	tx := &Txn{view: o.View()}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.dirty {
		if err := tx.view.content.flush(); err != nil {
			return fmt.Errorf("publishing content: %w", err)
		}
		tx.view.state.generation++
		o.current.Store(tx.view.state)
	}
	return nil
}

// ResolveEntry returns the entry visible at p in the current state.
func (o *Overlay) ResolveEntry(p string) (Entry, error) {
	return o.View().ResolveEntry(p)
}

// ListChildren returns the names of p's visible children.
func (o *Overlay) ListChildren(p string) []string {
	return o.View().ListChildren(p)
}

// ReadFileText returns the text of the text file at p.
func (o *Overlay) ReadFileText(p string) (string, error) {
	return o.View().ReadFileText(p)
}

// WriteFile creates or replaces the file at p.
func (o *Overlay) WriteFile(p string, data []byte, kind FileKind) (Entry, error) {
	var entry Entry
	err := o.Update(func(tx *Txn) error {
		var err error
		entry, err = tx.WriteFile(p, data, kind)
		return err
	})
	return entry, err
}

// AddDirectory creates the directory at p.
func (o *Overlay) AddDirectory(p string) error {
	return o.Update(func(tx *Txn) error {
		return tx.AddDirectory(p)
	})
}

// AddTombstone deletes the entry at p.
func (o *Overlay) AddTombstone(p string) error {
	return o.Update(func(tx *Txn) error {
		return tx.AddTombstone(p)
	})
}
