// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bureau-foundation/netsim/lib/codec"
	"github.com/bureau-foundation/netsim/lib/contentid"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// SnapshotVersion is the snapshot format version written by Encode.
const SnapshotVersion = 1

// Snapshot is the serialized form of an overlay's mutable layers. The
// base is not included; it is rebuilt from scenario content.
type Snapshot struct {
	Version    int              `cbor:"version"`
	Mutations  []SnapshotRecord `cbor:"mutations"`
	Tombstones []string         `cbor:"tombstones"`
}

// SnapshotRecord is one mutation. Files carry their bytes so a snapshot
// restores into a fresh blob store.
type SnapshotRecord struct {
	Path      string       `cbor:"path"`
	Dir       bool         `cbor:"dir,omitempty"`
	Opaque    bool         `cbor:"opaque,omitempty"`
	FileKind  string       `cbor:"file_kind,omitempty"`
	ContentID contentid.ID `cbor:"content_id,omitempty"`
	Data      []byte       `cbor:"data,omitempty"`
}

// Snapshot captures the overlay's mutation and tombstone layers.
// Mutations are listed in creation order so a restore reproduces the
// listing order.
func (v View) Snapshot() (Snapshot, error) {
	paths := make([]string, 0, len(v.state.mutations))
	for p := range v.state.mutations {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, func(a, b string) int {
		return cmp.Compare(v.state.mutations[a].seq, v.state.mutations[b].seq)
	})

	snapshot := Snapshot{Version: SnapshotVersion, Mutations: make([]SnapshotRecord, 0, len(paths))}
	for _, p := range paths {
		r := v.state.mutations[p]
		item := SnapshotRecord{Path: p, Dir: r.kind == KindDir, Opaque: r.opaque}
		if r.kind == KindFile {
			data, err := v.content.get(r.content)
			if err != nil {
				return Snapshot{}, fmt.Errorf("snapshot of %s: %w", p, err)
			}
			item.FileKind = r.fileKind.String()
			item.ContentID = r.content
			item.Data = data
		}
		snapshot.Mutations = append(snapshot.Mutations, item)
	}
	for p := range v.state.tombstones {
		snapshot.Tombstones = append(snapshot.Tombstones, p)
	}
	slices.Sort(snapshot.Tombstones)
	return snapshot, nil
}

// EncodeSnapshot returns the deterministic CBOR encoding of the
// overlay's current layers.
func (o *Overlay) EncodeSnapshot() ([]byte, error) {
	snapshot, err := o.View().Snapshot()
	if err != nil {
		return nil, err
	}
	data, err := codec.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encoding overlay snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := codec.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decoding overlay snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("overlay snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return snapshot, nil
}

// Restore replaces the overlay's layers with the snapshot's. File
// content is verified against the recorded content IDs.
func (o *Overlay) Restore(snapshot Snapshot) error {
	restored := emptyState()
	for _, item := range snapshot.Mutations {
		if !vpath.IsCanonical(item.Path) || vpath.IsRoot(item.Path) {
			return fmt.Errorf("restoring %q: %w: invalid mutation path", item.Path, ErrInvalid)
		}
		r := record{kind: KindDir, opaque: item.Opaque, seq: restored.nextSeq}
		if !item.Dir {
			kind, err := ParseFileKind(item.FileKind)
			if err != nil {
				return fmt.Errorf("restoring %s: %w: %v", item.Path, ErrInvalid, err)
			}
			id, err := o.content.stores[0].Put(item.Data, kind.hint())
			if err != nil {
				return fmt.Errorf("restoring %s: %w", item.Path, err)
			}
			if id != item.ContentID {
				return fmt.Errorf("restoring %s: content id mismatch (%s, recorded %s)", item.Path, id.Short(), item.ContentID.Short())
			}
			r = record{kind: KindFile, fileKind: kind, size: int64(len(item.Data)), content: id, seq: restored.nextSeq}
		}
		restored.nextSeq++
		restored.mutations[item.Path] = r
		restored.addChild(vpath.Parent(item.Path), vpath.Base(item.Path))
	}
	for _, p := range snapshot.Tombstones {
		restored.tombstones[p] = struct{}{}
	}

	o.writeMu.Lock()
	defer o.writeMu.Unlock()
	restored.generation = o.current.Load().generation + 1
	o.current.Store(restored)
	return nil
}
