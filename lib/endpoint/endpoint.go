// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package endpoint resolves a session-or-route [Handle] to the concrete
// [Endpoint] an operation runs against: the node's server, the user,
// and the working directory.
//
// Resolution is all or nothing. A Route whose last session fails
// validation is InvalidArgs and never falls back to the ambient
// execution context; a Session is re-checked against live world state
// through [Directory.CanonicalSession] rather than trusted as held by
// the script.
package endpoint

import (
	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// Server is one simulated node.
type Server interface {
	// ID returns the node id.
	ID() string

	// FS returns the node's filesystem.
	FS() *vfs.Overlay
}

// Directory is the live world state the resolver checks against.
type Directory interface {
	// Server returns the node with the given id.
	Server(nodeID string) (Server, bool)

	// User returns the current account for userID on nodeID.
	User(nodeID, userID string) (identity.UserConfig, bool)

	// CanonicalSession returns the live session matching s, or an
	// InvalidArgs error when s no longer refers to one (closed
	// session, removed user, mismatched identity fields).
	CanonicalSession(s identity.Session) (identity.Session, error)
}

// Context is the ambient execution context: where the calling script
// itself runs. The zero Context means there is none.
type Context struct {
	NodeID string
	UserID string
	Cwd    string
}

// IsZero reports whether no context is set.
func (c Context) IsZero() bool {
	return c == Context{}
}

// Endpoint is a resolved execution target. Derived per call and never
// stored.
type Endpoint struct {
	Server  Server
	NodeID  string
	UserKey string
	Cwd     string
	User    identity.UserConfig
}

// Path resolves a path expression against the endpoint's working
// directory and home. Failures are InvalidArgs.
func (e Endpoint) Path(expr string) (string, error) {
	p, err := vpath.Resolve(e.Cwd, e.User.Home, expr)
	if err != nil {
		return "", &result.Error{Code: result.InvalidArgs, Reason: err.Error(), Cause: err}
	}
	return p, nil
}

// Resolver turns handles into endpoints.
type Resolver struct {
	directory Directory
}

// NewResolver returns a resolver over directory.
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve returns the endpoint for h. An absent handle uses ambient,
// whose absence is InternalError; every handle-derived failure is
// InvalidArgs.
func (r *Resolver) Resolve(ambient Context, h Handle) (Endpoint, error) {
	switch h.Kind() {
	case HandleAbsent:
		return r.resolveAmbient(ambient)
	case HandleRoute:
		route, _ := h.Route()
		if err := route.Validate(); err != nil {
			return Endpoint{}, err
		}
		endpoint, err := r.resolveSession(route.LastSession)
		if err != nil {
			return Endpoint{}, result.Prefix("route.lastSession: ", err)
		}
		return endpoint, nil
	case HandleSession:
		session, _ := h.Session()
		if err := session.Validate(); err != nil {
			return Endpoint{}, err
		}
		return r.resolveSession(session)
	default:
		return Endpoint{}, result.Invalid("unsupported handle kind %s", h.Kind())
	}
}

func (r *Resolver) resolveAmbient(ambient Context) (Endpoint, error) {
	if ambient.IsZero() {
		return Endpoint{}, result.Internal("no execution context")
	}
	if !vpath.IsCanonical(ambient.Cwd) {
		return Endpoint{}, result.Internal("execution context cwd %q is not canonical", ambient.Cwd)
	}
	server, ok := r.directory.Server(ambient.NodeID)
	if !ok {
		return Endpoint{}, result.Internal("execution context node %q does not exist", ambient.NodeID)
	}
	user, ok := r.directory.User(ambient.NodeID, ambient.UserID)
	if !ok {
		return Endpoint{}, result.Internal("execution context user %q does not exist on %s", ambient.UserID, ambient.NodeID)
	}
	return Endpoint{
		Server:  server,
		NodeID:  ambient.NodeID,
		UserKey: ambient.UserID,
		Cwd:     ambient.Cwd,
		User:    user,
	}, nil
}

// resolveSession canonicalizes a structurally valid session against
// live state.
func (r *Resolver) resolveSession(session identity.Session) (Endpoint, error) {
	canonical, err := r.directory.CanonicalSession(session)
	if err != nil {
		return Endpoint{}, asInvalid(err)
	}
	server, ok := r.directory.Server(canonical.NodeID)
	if !ok {
		return Endpoint{}, result.Invalid("session %s: node %q does not exist", canonical.ID, canonical.NodeID)
	}
	user, ok := r.directory.User(canonical.NodeID, canonical.UserID)
	if !ok {
		return Endpoint{}, result.Invalid("session %s: user %q no longer exists on %s", canonical.ID, canonical.UserID, canonical.NodeID)
	}
	return Endpoint{
		Server:  server,
		NodeID:  canonical.NodeID,
		UserKey: canonical.UserID,
		Cwd:     canonical.Cwd,
		User:    user,
	}, nil
}

// asInvalid forces a session failure into InvalidArgs, keeping the
// reason.
func asInvalid(err error) error {
	if result.CodeOf(err) == result.InvalidArgs {
		return err
	}
	return &result.Error{Code: result.InvalidArgs, Reason: err.Error(), Cause: err}
}
