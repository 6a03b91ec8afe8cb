// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"maps"
	"slices"
)

// state is one published generation of an overlay's mutable layers.
// A published state is never modified; a Txn works on a clone.
type state struct {
	mutations  map[string]record
	tombstones map[string]struct{}

	// order lists, per directory, the names of children created in
	// the mutation layer in creation order.
	order map[string][]string

	generation uint64
	nextSeq    uint64
}

func emptyState() *state {
	return &state{
		mutations:  map[string]record{},
		tombstones: map[string]struct{}{},
		order:      map[string][]string{},
	}
}

func (s *state) clone() *state {
	order := make(map[string][]string, len(s.order))
	for directory, names := range s.order {
		order[directory] = slices.Clone(names)
	}
	return &state{
		mutations:  maps.Clone(s.mutations),
		tombstones: maps.Clone(s.tombstones),
		order:      order,
		generation: s.generation,
		nextSeq:    s.nextSeq,
	}
}

func (s *state) addChild(directory, name string) {
	if slices.Contains(s.order[directory], name) {
		return
	}
	s.order[directory] = append(s.order[directory], name)
}

func (s *state) removeChild(directory, name string) {
	names := s.order[directory]
	index := slices.Index(names, name)
	if index < 0 {
		return
	}
	names = slices.Delete(names, index, index+1)
	if len(names) == 0 {
		delete(s.order, directory)
		return
	}
	s.order[directory] = names
}
