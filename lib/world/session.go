// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"errors"

	"github.com/google/uuid"

	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/result"
)

// Login authenticates userID on nodeID and registers a live session
// whose cwd is the user's home. An unknown node is NotFound; an
// unknown user or a wrong password is PermissionDenied with the same
// reason, so callers cannot probe for accounts.
func (w *World) Login(nodeID, userID, password string) (identity.Session, error) {
	user, ok := w.User(nodeID, userID)
	if !ok {
		if _, exists := w.Node(nodeID); !exists {
			return identity.Session{}, result.Missing("node %q does not exist", nodeID)
		}
		return identity.Session{}, result.Denied("authentication failed for %s@%s", userID, nodeID)
	}
	if err := user.CheckPassword(password); err != nil {
		if errors.Is(err, identity.ErrBadPassword) {
			return identity.Session{}, result.Denied("authentication failed for %s@%s", userID, nodeID)
		}
		return identity.Session{}, result.Wrap(result.InternalError, err, "login %s@%s", userID, nodeID)
	}

	session := identity.Session{
		ID:        "ssh-" + uuid.NewString(),
		NodeID:    nodeID,
		UserID:    userID,
		Privilege: user.Privilege,
		Cwd:       user.Home,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// The account may have been removed between the lookup and now.
	node, ok := w.nodes[nodeID]
	if !ok {
		return identity.Session{}, result.Missing("node %q does not exist", nodeID)
	}
	if _, ok := node.users[userID]; !ok {
		return identity.Session{}, result.Denied("authentication failed for %s@%s", userID, nodeID)
	}
	w.sessions[session.ID] = session
	w.logger.Info("session opened", "session", session.ID, "node", nodeID, "user", userID)
	return session, nil
}

// CloseSession ends a live session. Closing an unknown session is a
// no-op.
func (w *World) CloseSession(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sessions[id]; ok {
		delete(w.sessions, id)
		w.logger.Info("session closed", "session", id)
	}
}

// LiveSessions returns the number of open sessions.
func (w *World) LiveSessions() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.sessions)
}

// CanonicalSession implements endpoint.Directory. The returned session
// carries the live record's identity and privilege with the caller's
// cwd.
func (w *World) CanonicalSession(s identity.Session) (identity.Session, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	live, ok := w.sessions[s.ID]
	if !ok {
		return identity.Session{}, result.Invalid("session %s is not live", s.ID)
	}
	if live.NodeID != s.NodeID || live.UserID != s.UserID {
		return identity.Session{}, result.Invalid("session %s does not belong to %s@%s", s.ID, s.UserID, s.NodeID)
	}
	if _, ok := w.nodes[live.NodeID].users[live.UserID]; !ok {
		return identity.Session{}, result.Invalid("session %s: user %q no longer exists on %s", s.ID, live.UserID, live.NodeID)
	}
	live.Cwd = s.Cwd
	return live, nil
}

// Route builds a route through hops, which must all be live. The last
// hop becomes the route's live endpoint.
func (w *World) Route(hops ...identity.Session) (identity.Route, error) {
	if len(hops) == 0 {
		return identity.Route{}, result.Invalid("route needs at least one hop")
	}
	canonical := make([]identity.Session, len(hops))
	for index, hop := range hops {
		live, err := w.CanonicalSession(hop)
		if err != nil {
			return identity.Route{}, err
		}
		canonical[index] = live
	}
	return identity.Route{Hops: canonical, LastSession: canonical[len(canonical)-1]}, nil
}
