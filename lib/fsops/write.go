// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// WriteOptions controls a write.
type WriteOptions struct {
	// Overwrite allows replacing an existing file.
	Overwrite bool

	// CreateParents creates missing ancestor directories.
	CreateParents bool

	// FileKind of the written file. Zero is text.
	FileKind vfs.FileKind

	// MaxBytes caps the content length. Zero is unlimited.
	MaxBytes int64

	Mode vfs.CommitMode
}

// WriteResult describes the file written, or in DryRun the file that
// would have been.
type WriteResult struct {
	Stat StatInfo `json:"stat"`

	// Created is false when an existing file was replaced.
	Created bool `json:"created"`

	// CreatedDirectories lists ancestors created by CreateParents.
	CreatedDirectories []string `json:"createdDirectories,omitempty"`

	Mode string `json:"mode"`
}

// Write stores content at pathExpr. Checks run in order: the target
// must not be a directory (IsDirectory) or, without Overwrite, an
// existing file (AlreadyExists); each ancestor must be a directory
// (NotDirectory) or, without CreateParents, exist (NotFound); content
// longer than MaxBytes is TooLarge. Created ancestors and the file
// publish in one overlay update.
func (o *Ops) Write(ambient endpoint.Context, h endpoint.Handle, pathExpr, content string, options WriteOptions) (WriteResult, error) {
	if !options.Mode.Valid() {
		return WriteResult{}, result.Invalid("commit mode is not set")
	}
	if options.MaxBytes < 0 {
		return WriteResult{}, result.Invalid("maxBytes must be >= 0, got %d", options.MaxBytes)
	}
	kind := options.FileKind
	if kind == 0 {
		kind = vfs.FileText
	}
	if kind != vfs.FileText && kind != vfs.FileBinary {
		return WriteResult{}, result.Invalid("unknown file kind %d", kind)
	}

	resolved, p, err := o.target(ambient, h, accessWrite, pathExpr)
	if err != nil {
		return WriteResult{}, err
	}
	if vpath.IsRoot(p) {
		return WriteResult{}, result.New(result.IsDirectory, "/ is a directory")
	}

	var written WriteResult
	var fileEntry vfs.Entry
	overlay := options.Mode.Target(resolved.Server.FS())
	err = overlay.Update(func(tx *vfs.Txn) error {
		written = WriteResult{Created: true, Mode: options.Mode.String()}
		if existing, err := tx.ResolveEntry(p); err == nil {
			if existing.IsDir() {
				return result.New(result.IsDirectory, "%s is a directory", p)
			}
			if !options.Overwrite {
				return result.New(result.AlreadyExists, "%s already exists", p)
			}
			written.Created = false
		}

		for _, ancestor := range vpath.Ancestors(p)[1:] {
			entry, err := tx.ResolveEntry(ancestor)
			if err == nil {
				if !entry.IsDir() {
					return result.New(result.NotDirectory, "%s is not a directory", ancestor)
				}
				continue
			}
			if !options.CreateParents {
				return result.Missing("parent directory %s does not exist", ancestor)
			}
			if err := tx.AddDirectory(ancestor); err != nil {
				return vfs.CodeError(err)
			}
			written.CreatedDirectories = append(written.CreatedDirectories, ancestor)
		}

		if options.MaxBytes > 0 && int64(len(content)) > options.MaxBytes {
			return result.New(result.TooLarge, "content is %d bytes, limit is %d", len(content), options.MaxBytes)
		}
		entry, err := tx.WriteFile(p, []byte(content), kind)
		if err != nil {
			return vfs.CodeError(err)
		}
		written.Stat = statInfo(entry)
		fileEntry = entry
		return nil
	})
	if err != nil {
		return WriteResult{}, err
	}

	if options.Mode == vfs.Real {
		o.logger.Debug("file written",
			"node", resolved.NodeID,
			"user", resolved.UserKey,
			"path", p,
			"size", fileEntry.Size,
		)
		o.emitAcquire(resolved, fileEntry)
	}
	return written, nil
}

func (o *Ops) emitAcquire(resolved endpoint.Endpoint, entry vfs.Entry) {
	if o.events == nil {
		return
	}
	o.events.EmitFileAcquire(FileAcquire{
		NodeID:         resolved.NodeID,
		UserKey:        resolved.UserKey,
		FileName:       entry.Name(),
		RemotePath:     entry.Path,
		LocalPath:      entry.Path,
		SizeBytes:      entry.Size,
		ContentID:      entry.ContentID,
		TransferMethod: "write",
	})
}

// DeleteOptions controls a delete.
type DeleteOptions struct {
	Mode vfs.CommitMode
}

// DeleteResult describes the removed entry.
type DeleteResult struct {
	Path      string `json:"path"`
	EntryKind string `json:"entryKind"`
	Mode      string `json:"mode"`
}

// Delete removes the entry at pathExpr. The root is InvalidArgs; a
// directory with children is NotDirectory.
func (o *Ops) Delete(ambient endpoint.Context, h endpoint.Handle, pathExpr string, options DeleteOptions) (DeleteResult, error) {
	if !options.Mode.Valid() {
		return DeleteResult{}, result.Invalid("commit mode is not set")
	}
	resolved, p, err := o.target(ambient, h, accessWrite, pathExpr)
	if err != nil {
		return DeleteResult{}, err
	}
	if vpath.IsRoot(p) {
		return DeleteResult{}, result.Invalid("the root directory cannot be deleted")
	}

	var deleted DeleteResult
	overlay := options.Mode.Target(resolved.Server.FS())
	err = overlay.Update(func(tx *vfs.Txn) error {
		entry, err := tx.ResolveEntry(p)
		if err != nil {
			return vfs.CodeError(err)
		}
		if entry.IsDir() && len(tx.View().ListChildren(p)) > 0 {
			return result.New(result.NotDirectory, "%s: directory not empty", p)
		}
		if err := tx.AddTombstone(p); err != nil {
			return vfs.CodeError(err)
		}
		deleted = DeleteResult{Path: p, EntryKind: entry.Kind.String(), Mode: options.Mode.String()}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	if options.Mode == vfs.Real {
		o.logger.Debug("entry deleted", "node", resolved.NodeID, "user", resolved.UserKey, "path", p)
	}
	return deleted, nil
}
