// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

// DirEntry is one child in a listing.
type DirEntry struct {
	Name      string `json:"name"`
	EntryKind string `json:"entryKind"`
}

// List returns the children of the directory at pathExpr in overlay
// order: base children, then children created since.
func (o *Ops) List(ambient endpoint.Context, h endpoint.Handle, pathExpr string) ([]DirEntry, error) {
	resolved, p, err := o.target(ambient, h, accessRead, pathExpr)
	if err != nil {
		return nil, err
	}
	entries, err := resolved.Server.FS().View().List(p)
	if err != nil {
		return nil, vfs.CodeError(err)
	}
	listing := make([]DirEntry, len(entries))
	for i, entry := range entries {
		listing[i] = DirEntry{Name: entry.Name(), EntryKind: entry.Kind.String()}
	}
	return listing, nil
}

// ReadOptions bounds a read. MaxBytes of zero is unlimited.
type ReadOptions struct {
	MaxBytes int64
}

// ReadResult is the content of a text file.
type ReadResult struct {
	Path      string `json:"path"`
	Text      string `json:"text"`
	Size      int64  `json:"size"`
	ContentID string `json:"contentId"`
}

// Read returns the text of the file at pathExpr. Only text files are
// readable. A file whose byte length exceeds MaxBytes is TooLarge and
// no content is returned.
func (o *Ops) Read(ambient endpoint.Context, h endpoint.Handle, pathExpr string, options ReadOptions) (ReadResult, error) {
	if options.MaxBytes < 0 {
		return ReadResult{}, result.Invalid("maxBytes must be >= 0, got %d", options.MaxBytes)
	}
	resolved, p, err := o.target(ambient, h, accessRead, pathExpr)
	if err != nil {
		return ReadResult{}, err
	}

	view := resolved.Server.FS().View()
	entry, err := view.ResolveEntry(p)
	if err != nil {
		return ReadResult{}, vfs.CodeError(err)
	}
	if !entry.IsText() {
		if entry.IsDir() {
			return ReadResult{}, result.New(result.NotTextFile, "%s is a directory", p)
		}
		return ReadResult{}, result.New(result.NotTextFile, "%s is a %s file", p, entry.FileKind)
	}
	if options.MaxBytes > 0 && entry.Size > options.MaxBytes {
		return ReadResult{}, result.New(result.TooLarge, "%s is %d bytes, limit is %d", p, entry.Size, options.MaxBytes)
	}
	text, err := view.ReadFileText(p)
	if err != nil {
		return ReadResult{}, vfs.CodeError(err)
	}
	return ReadResult{Path: p, Text: text, Size: entry.Size, ContentID: entry.ContentID.String()}, nil
}

// StatInfo describes an entry. The file-only fields are nil for
// directories so an empty file and a directory stay distinguishable.
type StatInfo struct {
	Path      string  `json:"path"`
	Name      string  `json:"name"`
	EntryKind string  `json:"entryKind"`
	FileKind  *string `json:"fileKind"`
	Size      *int64  `json:"size"`
	ContentID *string `json:"contentId"`
}

// Stat returns metadata for the entry at pathExpr.
func (o *Ops) Stat(ambient endpoint.Context, h endpoint.Handle, pathExpr string) (StatInfo, error) {
	resolved, p, err := o.target(ambient, h, accessRead, pathExpr)
	if err != nil {
		return StatInfo{}, err
	}
	entry, err := resolved.Server.FS().ResolveEntry(p)
	if err != nil {
		return StatInfo{}, vfs.CodeError(err)
	}
	return statInfo(entry), nil
}

func statInfo(entry vfs.Entry) StatInfo {
	info := StatInfo{Path: entry.Path, Name: entry.Name(), EntryKind: entry.Kind.String()}
	if entry.Kind == vfs.KindFile {
		fileKind := entry.FileKind.String()
		size := entry.Size
		id := entry.ContentID.String()
		info.FileKind = &fileKind
		info.Size = &size
		info.ContentID = &id
	}
	return info
}
