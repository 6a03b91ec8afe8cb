// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"fmt"

	"github.com/bureau-foundation/netsim/lib/vpath"
)

// View is a consistent read snapshot of an overlay. Views are cheap,
// immutable, and safe for concurrent use.
type View struct {
	base    *Base
	state   *state
	content content
}

// Generation counts the mutations published before this view was
// taken.
func (v View) Generation() uint64 {
	return v.state.generation
}

// lookupAt returns the record at p ignoring ancestors. baseHidden is
// true when an opaque ancestor hides the base layer.
func (v View) lookupAt(p string, baseHidden bool) (record, bool) {
	if _, dead := v.state.tombstones[p]; dead {
		return record{}, false
	}
	if r, exists := v.state.mutations[p]; exists {
		return r, true
	}
	if baseHidden {
		return record{}, false
	}
	r, exists := v.base.records[p]
	return r, exists
}

// resolve walks p from the root. It returns the record at p and
// whether base descendants of p are hidden.
func (v View) resolve(p string) (record, bool, bool) {
	if vpath.IsRoot(p) {
		return rootRecord, false, true
	}
	hidden := false
	var current record
	chain := append(vpath.Ancestors(p)[1:], p)
	for i, segment := range chain {
		r, ok := v.lookupAt(segment, hidden)
		if !ok {
			return record{}, false, false
		}
		if i < len(chain)-1 && r.kind != KindDir {
			return record{}, false, false
		}
		if r.opaque {
			hidden = true
		}
		current = r
	}
	return current, hidden, true
}

// ResolveEntry returns the entry visible at p. p must be canonical.
func (v View) ResolveEntry(p string) (Entry, error) {
	if !vpath.IsCanonical(p) {
		return Entry{}, fmt.Errorf("%q: %w: path is not canonical", p, ErrInvalid)
	}
	r, _, ok := v.resolve(p)
	if !ok {
		return Entry{}, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return r.entry(p), nil
}

// Exists reports whether anything is visible at p.
func (v View) Exists(p string) bool {
	_, err := v.ResolveEntry(p)
	return err == nil
}

// ListChildren returns the names of p's visible children: base children
// in lexical order, then children created in the mutation layer in
// creation order. Empty for unknown paths and files.
func (v View) ListChildren(p string) []string {
	if !vpath.IsCanonical(p) {
		return nil
	}
	r, hidden, ok := v.resolve(p)
	if !ok || r.kind != KindDir {
		return nil
	}

	var names []string
	seen := make(map[string]struct{})
	visible := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		if _, ok := v.lookupAt(vpath.Join(p, name), hidden); !ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if !hidden {
		for _, name := range v.base.children[p] {
			visible(name)
		}
	}
	for _, name := range v.state.order[p] {
		visible(name)
	}
	return names
}

// List returns p's visible children as entries, in ListChildren order.
func (v View) List(p string) ([]Entry, error) {
	entry, err := v.ResolveEntry(p)
	if err != nil {
		return nil, err
	}
	if !entry.IsDir() {
		return nil, fmt.Errorf("%s: %w", p, ErrNotDirectory)
	}
	names := v.ListChildren(p)
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		child, err := v.ResolveEntry(vpath.Join(p, name))
		if err != nil {
			return nil, err
		}
		entries = append(entries, child)
	}
	return entries, nil
}

// ReadFile returns the bytes of the file at p with its entry.
func (v View) ReadFile(p string) ([]byte, Entry, error) {
	entry, err := v.ResolveEntry(p)
	if err != nil {
		return nil, Entry{}, err
	}
	if entry.IsDir() {
		return nil, entry, fmt.Errorf("%s: %w", p, ErrIsDirectory)
	}
	data, err := v.content.get(entry.ContentID)
	if err != nil {
		return nil, entry, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, entry, nil
}

// ReadFileText returns the text of the text file at p.
func (v View) ReadFileText(p string) (string, error) {
	entry, err := v.ResolveEntry(p)
	if err != nil {
		return "", err
	}
	if entry.IsDir() {
		return "", fmt.Errorf("%s: %w", p, ErrIsDirectory)
	}
	if !entry.IsText() {
		return "", fmt.Errorf("%s: %w", p, ErrNotText)
	}
	data, _, err := v.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
