// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"fmt"
	"slices"

	"github.com/bureau-foundation/netsim/lib/blobstore"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// Base is an immutable base layer: the scenario content a node starts
// with. Children list in lexical order.
type Base struct {
	records  map[string]record
	children map[string][]string
}

// EmptyBase returns a base layer containing only the root.
func EmptyBase() *Base {
	return &Base{records: map[string]record{}, children: map[string][]string{}}
}

// Len returns the number of base entries, excluding the root.
func (b *Base) Len() int {
	return len(b.records)
}

// BaseBuilder assembles a Base. Parent directories are created
// implicitly. A BuildBase call finalizes it; the builder must not be
// used afterwards.
type BaseBuilder struct {
	blobs   *blobstore.Store
	records map[string]record
}

// NewBaseBuilder returns a builder storing file content in blobs.
func NewBaseBuilder(blobs *blobstore.Store) *BaseBuilder {
	return &BaseBuilder{blobs: blobs, records: map[string]record{}}
}

// AddDirectory adds a directory and any missing ancestors.
func (b *BaseBuilder) AddDirectory(p string) error {
	if !vpath.IsCanonical(p) {
		return fmt.Errorf("base directory %q: %w: path is not canonical", p, ErrInvalid)
	}
	if vpath.IsRoot(p) {
		return nil
	}
	for _, ancestor := range append(vpath.Ancestors(p), p) {
		if vpath.IsRoot(ancestor) {
			continue
		}
		existing, exists := b.records[ancestor]
		if !exists {
			b.records[ancestor] = record{kind: KindDir}
			continue
		}
		if existing.kind != KindDir {
			return fmt.Errorf("base directory %q: %w: %s is a file", p, ErrInvalid, ancestor)
		}
	}
	return nil
}

// AddFile adds a file, creating missing ancestor directories. A second
// AddFile for the same path replaces the first.
func (b *BaseBuilder) AddFile(p string, data []byte, kind FileKind) error {
	if !vpath.IsCanonical(p) || vpath.IsRoot(p) {
		return fmt.Errorf("base file %q: %w: path is not a canonical file path", p, ErrInvalid)
	}
	if !kind.valid() {
		return fmt.Errorf("base file %q: %w: file kind %d", p, ErrInvalid, kind)
	}
	if existing, exists := b.records[p]; exists && existing.kind == KindDir {
		return fmt.Errorf("base file %q: %w", p, ErrIsDirectory)
	}
	if err := b.AddDirectory(vpath.Parent(p)); err != nil {
		return err
	}
	id, err := b.blobs.Put(data, kind.hint())
	if err != nil {
		return fmt.Errorf("base file %q: %w", p, err)
	}
	b.records[p] = record{kind: KindFile, fileKind: kind, size: int64(len(data)), content: id}
	return nil
}

// Build finalizes the base layer.
func (b *BaseBuilder) Build() *Base {
	children := make(map[string][]string)
	for p := range b.records {
		parent := vpath.Parent(p)
		children[parent] = append(children[parent], vpath.Base(p))
	}
	for _, names := range children {
		slices.Sort(names)
	}
	base := &Base{records: b.records, children: children}
	b.records = nil
	return base
}
