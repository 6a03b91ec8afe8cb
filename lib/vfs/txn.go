// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"fmt"

	"github.com/bureau-foundation/netsim/lib/vpath"
)

// Txn is a set of overlay mutations applied atomically by
// [Overlay.Update]. Reads through a Txn see its own earlier writes.
// A Txn must not be used after its Update returns.
type Txn struct {
	view  View
	dirty bool
}

// View returns the transaction's current view, including its own
// uncommitted writes. The view is only valid until the next mutation.
func (tx *Txn) View() View {
	return tx.view
}

// ResolveEntry resolves p against the transaction state.
func (tx *Txn) ResolveEntry(p string) (Entry, error) {
	return tx.view.ResolveEntry(p)
}

// mutable returns the state to modify, cloning the published one on
// first use.
func (tx *Txn) mutable() *state {
	if !tx.dirty {
		tx.view.state = tx.view.state.clone()
		tx.dirty = true
	}
	return tx.view.state
}

// requireParentDirectory checks that p's parent is a visible directory.
func (tx *Txn) requireParentDirectory(p string) error {
	parent := vpath.Parent(p)
	r, _, ok := tx.view.resolve(parent)
	if !ok {
		return fmt.Errorf("%s: %w: parent %s does not exist", p, ErrInvalid, parent)
	}
	if r.kind != KindDir {
		return fmt.Errorf("%s: %w: parent %s is not a directory", p, ErrInvalid, parent)
	}
	return nil
}

// WriteFile creates or replaces the file at p. The parent must be a
// visible directory. Replacing a directory is refused with
// ErrIsDirectory.
func (tx *Txn) WriteFile(p string, data []byte, kind FileKind) (Entry, error) {
	if !vpath.IsCanonical(p) || vpath.IsRoot(p) {
		return Entry{}, fmt.Errorf("%q: %w: not a canonical file path", p, ErrInvalid)
	}
	if !kind.valid() {
		return Entry{}, fmt.Errorf("%s: %w: unknown file kind %d", p, ErrInvalid, kind)
	}
	if err := tx.requireParentDirectory(p); err != nil {
		return Entry{}, err
	}
	if existing, _, ok := tx.view.resolve(p); ok && existing.kind == KindDir {
		return Entry{}, fmt.Errorf("%s: %w", p, ErrIsDirectory)
	}

	s := tx.mutable()
	id := tx.view.content.stage(data, kind.hint())
	previous, replaced := s.mutations[p]
	r := record{kind: KindFile, fileKind: kind, size: int64(len(data)), content: id}
	if replaced {
		r.seq = previous.seq
	} else {
		r.seq = s.nextSeq
		s.nextSeq++
	}
	s.mutations[p] = r
	delete(s.tombstones, p)
	s.addChild(vpath.Parent(p), vpath.Base(p))
	return r.entry(p), nil
}

// AddDirectory creates the directory at p. The parent must be a
// visible directory. An existing directory is left as is; an existing
// file is ErrInvalid.
func (tx *Txn) AddDirectory(p string) error {
	if !vpath.IsCanonical(p) {
		return fmt.Errorf("%q: %w: path is not canonical", p, ErrInvalid)
	}
	if vpath.IsRoot(p) {
		return nil
	}
	if err := tx.requireParentDirectory(p); err != nil {
		return err
	}
	if existing, _, ok := tx.view.resolve(p); ok {
		if existing.kind == KindDir {
			return nil
		}
		return fmt.Errorf("%s: %w: a file exists at this path", p, ErrInvalid)
	}

	s := tx.mutable()
	_, tombstoned := s.tombstones[p]
	s.mutations[p] = record{kind: KindDir, opaque: tombstoned, seq: s.nextSeq}
	s.nextSeq++
	delete(s.tombstones, p)
	s.addChild(vpath.Parent(p), vpath.Base(p))
	return nil
}

// AddTombstone deletes the entry at p, hiding any base or mutation
// entry there. The root and non-empty directories are refused with
// ErrInvalid (ErrNotEmpty for the latter).
func (tx *Txn) AddTombstone(p string) error {
	if !vpath.IsCanonical(p) {
		return fmt.Errorf("%q: %w: path is not canonical", p, ErrInvalid)
	}
	if vpath.IsRoot(p) {
		return fmt.Errorf("%w: the root directory cannot be deleted", ErrInvalid)
	}
	existing, _, ok := tx.view.resolve(p)
	if !ok {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if existing.kind == KindDir && len(tx.view.ListChildren(p)) > 0 {
		return fmt.Errorf("%s: %w", p, ErrNotEmpty)
	}

	s := tx.mutable()
	delete(s.mutations, p)
	s.tombstones[p] = struct{}{}
	s.removeChild(vpath.Parent(p), vpath.Base(p))
	return nil
}
