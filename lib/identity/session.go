// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"fmt"

	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// Kind markers carried in handle maps.
const (
	KindSession = "sshSession"
	KindRoute   = "sshRoute"
)

// Session is a user authenticated at a node. The privilege is a
// snapshot taken at login; endpoint resolution uses the live
// UserConfig instead.
type Session struct {
	ID        string
	NodeID    string
	UserID    string
	Privilege Privilege
	Cwd       string
}

// Validate checks the session's structural integrity. It does not
// consult world state. Failures are InvalidArgs.
func (s Session) Validate() error {
	if s.ID == "" {
		return result.Invalid("session id is empty")
	}
	if err := ValidateName("node", s.NodeID); err != nil {
		return invalidName(err)
	}
	if err := ValidateName("user", s.UserID); err != nil {
		return invalidName(err)
	}
	if !vpath.IsCanonical(s.Cwd) {
		return result.Invalid("session cwd %q is not a canonical absolute path", s.Cwd)
	}
	return nil
}

// Route is a saved multi-hop chain. Hops lists the sessions in the
// order they were opened; LastSession is the live endpoint.
type Route struct {
	Hops        []Session
	LastSession Session
}

// Validate checks the route. LastSession failures are reported with a
// "route.lastSession: " prefix.
func (r Route) Validate() error {
	if err := r.LastSession.Validate(); err != nil {
		return result.Prefix("route.lastSession: ", err)
	}
	for i, hop := range r.Hops {
		if err := hop.Validate(); err != nil {
			return result.Prefix(fmt.Sprintf("route.hops[%d]: ", i), err)
		}
	}
	if n := len(r.Hops); n > 0 && r.Hops[n-1].ID != r.LastSession.ID {
		return result.Invalid("route.lastSession: session %s is not the final hop (%s)", r.LastSession.ID, r.Hops[n-1].ID)
	}
	return nil
}

// ToMap returns the script-facing map form of the session.
func (s Session) ToMap() map[string]any {
	return map[string]any{
		"kind":   KindSession,
		"id":     s.ID,
		"nodeId": s.NodeID,
		"userId": s.UserID,
		"cwd":    s.Cwd,
		"privilege": map[string]any{
			"read":  s.Privilege.Read,
			"write": s.Privilege.Write,
		},
	}
}

// ToMap returns the script-facing map form of the route.
func (r Route) ToMap() map[string]any {
	hops := make([]any, len(r.Hops))
	for i, hop := range r.Hops {
		hops[i] = hop.ToMap()
	}
	return map[string]any{
		"kind":        KindRoute,
		"hops":        hops,
		"lastSession": r.LastSession.ToMap(),
	}
}

// SessionFromMap decodes a session map. The kind marker, when present,
// must be KindSession. Missing or mistyped fields are InvalidArgs; the
// result is not validated.
func SessionFromMap(m map[string]any) (Session, error) {
	if kind, present := m["kind"]; present && kind != KindSession {
		return Session{}, result.Invalid("kind %v is not %s", kind, KindSession)
	}
	var s Session
	var err error
	if s.ID, err = stringField(m, "id"); err != nil {
		return Session{}, err
	}
	if s.NodeID, err = stringField(m, "nodeId"); err != nil {
		return Session{}, err
	}
	if s.UserID, err = stringField(m, "userId"); err != nil {
		return Session{}, err
	}
	if s.Cwd, err = stringField(m, "cwd"); err != nil {
		return Session{}, err
	}
	if raw, present := m["privilege"]; present && raw != nil {
		privilege, ok := raw.(map[string]any)
		if !ok {
			return Session{}, result.Invalid("privilege: expected a map, got %T", raw)
		}
		if s.Privilege.Read, err = boolField(privilege, "read"); err != nil {
			return Session{}, result.Prefix("privilege.", err)
		}
		if s.Privilege.Write, err = boolField(privilege, "write"); err != nil {
			return Session{}, result.Prefix("privilege.", err)
		}
	}
	return s, nil
}

// RouteFromMap decodes a route map.
func RouteFromMap(m map[string]any) (Route, error) {
	if kind, present := m["kind"]; present && kind != KindRoute {
		return Route{}, result.Invalid("kind %v is not %s", kind, KindRoute)
	}
	var r Route
	raw, ok := m["lastSession"].(map[string]any)
	if !ok {
		return Route{}, result.Invalid("route.lastSession: expected a session map, got %T", m["lastSession"])
	}
	last, err := SessionFromMap(raw)
	if err != nil {
		return Route{}, result.Prefix("route.lastSession: ", err)
	}
	r.LastSession = last

	if rawHops, present := m["hops"]; present && rawHops != nil {
		hops, ok := rawHops.([]any)
		if !ok {
			return Route{}, result.Invalid("route.hops: expected a list, got %T", rawHops)
		}
		for i, rawHop := range hops {
			hopMap, ok := rawHop.(map[string]any)
			if !ok {
				return Route{}, result.Invalid("route.hops[%d]: expected a session map, got %T", i, rawHop)
			}
			hop, err := SessionFromMap(hopMap)
			if err != nil {
				return Route{}, result.Prefix(fmt.Sprintf("route.hops[%d]: ", i), err)
			}
			r.Hops = append(r.Hops, hop)
		}
	}
	return r, nil
}

func invalidName(err error) error {
	return &result.Error{Code: result.InvalidArgs, Reason: err.Error(), Cause: err}
}

func stringField(m map[string]any, key string) (string, error) {
	raw, present := m[key]
	if !present {
		return "", result.Invalid("%s: missing", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", result.Invalid("%s: expected a string, got %T", key, raw)
	}
	return value, nil
}

func boolField(m map[string]any, key string) (bool, error) {
	raw, present := m[key]
	if !present {
		return false, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, result.Invalid("%s: expected a bool, got %T", key, raw)
	}
	return value, nil
}
