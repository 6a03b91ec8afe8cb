// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"fmt"

	"github.com/bureau-foundation/netsim/lib/blobstore"
	"github.com/bureau-foundation/netsim/lib/contentid"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// EntryKind distinguishes files from directories.
type EntryKind uint8

const (
	// KindFile is a regular file.
	KindFile EntryKind = iota + 1

	// KindDir is a directory.
	KindDir
)

// String returns "file" or "dir".
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FileKind classifies file content.
type FileKind uint8

const (
	// FileText is UTF-8 text readable with ReadFileText.
	FileText FileKind = iota + 1

	// FileBinary is opaque content.
	FileBinary
)

// String returns "text" or "binary".
func (k FileKind) String() string {
	switch k {
	case FileText:
		return "text"
	case FileBinary:
		return "binary"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k FileKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FileKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFileKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseFileKind parses "text" or "binary". The empty string is text.
func ParseFileKind(name string) (FileKind, error) {
	switch name {
	case "", "text":
		return FileText, nil
	case "binary":
		return FileBinary, nil
	default:
		return 0, fmt.Errorf("unknown file kind %q (want text or binary)", name)
	}
}

func (k FileKind) valid() bool {
	return k == FileText || k == FileBinary
}

func (k FileKind) hint() blobstore.Hint {
	if k == FileBinary {
		return blobstore.HintBinary
	}
	return blobstore.HintText
}

// Entry is a visible filesystem entry. FileKind, Size and ContentID are
// zero for directories.
type Entry struct {
	Path      string
	Kind      EntryKind
	FileKind  FileKind
	Size      int64
	ContentID contentid.ID
}

// Name is the final path segment ("/" for the root).
func (e Entry) Name() string {
	return vpath.Base(e.Path)
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}

// IsText reports whether the entry is a text file.
func (e Entry) IsText() bool {
	return e.Kind == KindFile && e.FileKind == FileText
}

// record is an entry as stored in a layer.
type record struct {
	kind     EntryKind
	fileKind FileKind
	size     int64
	content  contentid.ID

	// opaque directories hide base-layer descendants.
	opaque bool

	// seq orders mutations by creation for snapshots.
	seq uint64
}

func (r record) entry(p string) Entry {
	return Entry{
		Path:      p,
		Kind:      r.kind,
		FileKind:  r.fileKind,
		Size:      r.size,
		ContentID: r.content,
	}
}

var rootRecord = record{kind: KindDir}
