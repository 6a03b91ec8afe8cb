// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"log/slog"

	"github.com/bureau-foundation/netsim/lib/contentid"
	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/result"
)

// FileAcquire records that a user obtained a file on a node.
type FileAcquire struct {
	NodeID         string
	UserKey        string
	FileName       string
	RemotePath     string
	LocalPath      string
	SizeBytes      int64
	ContentID      contentid.ID
	TransferMethod string
}

// Events receives file-acquire notifications. Emission must not block
// or fail the operation that caused it.
type Events interface {
	EmitFileAcquire(FileAcquire)
}

// Ops runs filesystem operations. Safe for concurrent use.
type Ops struct {
	resolver *endpoint.Resolver
	events   Events
	logger   *slog.Logger
}

// New returns Ops resolving endpoints with resolver and reporting
// writes to events. A nil events discards them; a nil logger discards
// logs.
func New(resolver *endpoint.Resolver, events Events, logger *slog.Logger) *Ops {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ops{resolver: resolver, events: events, logger: logger}
}

// access names the privilege an operation needs.
type access uint8

const (
	accessRead access = iota
	accessWrite
)

// target resolves h, checks privilege and normalizes pathExpr.
func (o *Ops) target(ambient endpoint.Context, h endpoint.Handle, need access, pathExpr string) (endpoint.Endpoint, string, error) {
	resolved, err := o.resolver.Resolve(ambient, h)
	if err != nil {
		return endpoint.Endpoint{}, "", err
	}
	switch need {
	case accessRead:
		if !resolved.User.Privilege.Read {
			return endpoint.Endpoint{}, "", result.Denied("%s on %s lacks read privilege", resolved.UserKey, resolved.NodeID)
		}
	case accessWrite:
		if !resolved.User.Privilege.Write {
			return endpoint.Endpoint{}, "", result.Denied("%s on %s lacks write privilege", resolved.UserKey, resolved.NodeID)
		}
	}
	p, err := resolved.Path(pathExpr)
	if err != nil {
		return endpoint.Endpoint{}, "", err
	}
	return resolved, p, nil
}
