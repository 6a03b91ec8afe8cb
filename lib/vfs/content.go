// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"bytes"
	"fmt"

	"github.com/bureau-foundation/netsim/lib/blobstore"
	"github.com/bureau-foundation/netsim/lib/contentid"
)

// content resolves file content for one overlay. stores[0] receives
// committed writes; reads fall through the rest in order. A Real
// overlay has only the shared store. A fork pushes a private scratch
// store in front, so dry-run content never reaches the shared one.
//
// staged holds blobs written by an open transaction. They move into
// stores[0] when the transaction publishes and are dropped otherwise.
type content struct {
	stores []*blobstore.Store
	staged map[contentid.ID]stagedBlob
}

type stagedBlob struct {
	data []byte
	hint blobstore.Hint
}

func sharedContent(shared *blobstore.Store) content {
	return content{stores: []*blobstore.Store{shared}}
}

// fork returns a content layer with a fresh scratch store over c's.
func (c content) fork() content {
	stores := make([]*blobstore.Store, 0, len(c.stores)+1)
	stores = append(stores, blobstore.New())
	return content{stores: append(stores, c.stores...)}
}

func (c content) shared() *blobstore.Store {
	return c.stores[len(c.stores)-1]
}

func (c content) has(id contentid.ID) bool {
	if _, ok := c.staged[id]; ok {
		return true
	}
	for _, store := range c.stores {
		if store.Has(id) {
			return true
		}
	}
	return false
}

func (c content) get(id contentid.ID) ([]byte, error) {
	if blob, ok := c.staged[id]; ok {
		return bytes.Clone(blob.data), nil
	}
	for _, store := range c.stores[:len(c.stores)-1] {
		if store.Has(id) {
			return store.Get(id)
		}
	}
	return c.shared().Get(id)
}

// stage records data for the next flush and returns its ID. Content
// already stored is not staged again.
func (c *content) stage(data []byte, hint blobstore.Hint) contentid.ID {
	id := contentid.Of(data)
	if c.has(id) {
		return id
	}
	if c.staged == nil {
		c.staged = make(map[contentid.ID]stagedBlob)
	}
	c.staged[id] = stagedBlob{data: bytes.Clone(data), hint: hint}
	return id
}

// flush stores every staged blob in stores[0].
func (c content) flush() error {
	for id, blob := range c.staged {
		stored, err := c.stores[0].Put(blob.data, blob.hint)
		if err != nil {
			return err
		}
		if stored != id {
			return fmt.Errorf("blob %s stored as %s", id.Short(), stored.Short())
		}
	}
	return nil
}
