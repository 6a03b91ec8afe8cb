// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package endpoint

import (
	"strings"
	"testing"

	"github.com/bureau-foundation/netsim/lib/blobstore"
	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

type fakeServer struct {
	id string
	fs *vfs.Overlay
}

func (s *fakeServer) ID() string       { return s.id }
func (s *fakeServer) FS() *vfs.Overlay { return s.fs }

// fakeDirectory holds one node "gateway" with users ana and bob, and
// the live sessions listed in sessions.
type fakeDirectory struct {
	servers  map[string]*fakeServer
	users    map[string]identity.UserConfig
	sessions map[string]identity.Session
}

func newFakeDirectory() *fakeDirectory {
	blobs := blobstore.New()
	return &fakeDirectory{
		servers: map[string]*fakeServer{
			"gateway": {id: "gateway", fs: vfs.New(nil, blobs)},
			"db":      {id: "db", fs: vfs.New(nil, blobs)},
		},
		users: map[string]identity.UserConfig{
			"gateway/ana": {Name: "ana", Home: "/home/ana", Privilege: identity.Privilege{Read: true, Write: true}},
			"db/bob":      {Name: "bob", Home: "/home/bob", Privilege: identity.Privilege{Read: true}},
		},
		sessions: map[string]identity.Session{},
	}
}

func (d *fakeDirectory) Server(nodeID string) (Server, bool) {
	server, ok := d.servers[nodeID]
	if !ok {
		return nil, false
	}
	return server, true
}

func (d *fakeDirectory) User(nodeID, userID string) (identity.UserConfig, bool) {
	user, ok := d.users[nodeID+"/"+userID]
	return user, ok
}

func (d *fakeDirectory) CanonicalSession(s identity.Session) (identity.Session, error) {
	live, ok := d.sessions[s.ID]
	if !ok || live.NodeID != s.NodeID || live.UserID != s.UserID {
		return identity.Session{}, result.Invalid("session %s is no longer valid", s.ID)
	}
	return live, nil
}

func bobSession() identity.Session {
	return identity.Session{ID: "ses-7", NodeID: "db", UserID: "bob", Cwd: "/tmp"}
}

func TestResolveAmbient(t *testing.T) {
	t.Parallel()
	resolver := NewResolver(newFakeDirectory())

	endpoint, err := resolver.Resolve(Context{NodeID: "gateway", UserID: "ana", Cwd: "/home/ana"}, Absent())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if endpoint.NodeID != "gateway" || endpoint.UserKey != "ana" || endpoint.Cwd != "/home/ana" {
		t.Errorf("endpoint = %+v", endpoint)
	}
	if endpoint.Server.ID() != "gateway" || !endpoint.User.Privilege.Write {
		t.Errorf("endpoint server/user = %s/%+v", endpoint.Server.ID(), endpoint.User)
	}

	if _, err := resolver.Resolve(Context{}, Absent()); result.CodeOf(err) != result.InternalError {
		t.Errorf("zero context code = %s, want InternalError", result.CodeOf(err))
	}
	if _, err := resolver.Resolve(Context{NodeID: "nowhere", UserID: "ana", Cwd: "/"}, Absent()); result.CodeOf(err) != result.InternalError {
		t.Errorf("unknown ambient node code = %s, want InternalError", result.CodeOf(err))
	}
}

func TestResolveSession(t *testing.T) {
	t.Parallel()
	directory := newFakeDirectory()
	directory.sessions["ses-7"] = bobSession()
	resolver := NewResolver(directory)

	endpoint, err := resolver.Resolve(Context{}, FromSession(bobSession()))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if endpoint.NodeID != "db" || endpoint.UserKey != "bob" || endpoint.Cwd != "/tmp" {
		t.Errorf("endpoint = %+v", endpoint)
	}
}

func TestResolveUsesLiveState(t *testing.T) {
	t.Parallel()
	directory := newFakeDirectory()
	directory.sessions["ses-7"] = bobSession()
	resolver := NewResolver(directory)

	// The script holds a stale privilege snapshot; the live UserConfig wins.
	held := bobSession()
	held.Privilege = identity.Privilege{Read: true, Write: true}
	endpoint, err := resolver.Resolve(Context{}, FromSession(held))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if endpoint.User.Privilege.Write {
		t.Error("endpoint trusted the session's privilege snapshot")
	}

	delete(directory.sessions, "ses-7")
	if _, err := resolver.Resolve(Context{}, FromSession(held)); result.CodeOf(err) != result.InvalidArgs {
		t.Errorf("closed session code = %s, want InvalidArgs", result.CodeOf(err))
	}

	directory.sessions["ses-7"] = bobSession()
	delete(directory.users, "db/bob")
	if _, err := resolver.Resolve(Context{}, FromSession(held)); result.CodeOf(err) != result.InvalidArgs {
		t.Errorf("removed user code = %s, want InvalidArgs", result.CodeOf(err))
	}
}

func TestResolveRoute(t *testing.T) {
	t.Parallel()
	directory := newFakeDirectory()
	directory.sessions["ses-7"] = bobSession()
	resolver := NewResolver(directory)

	route := identity.Route{Hops: []identity.Session{bobSession()}, LastSession: bobSession()}
	endpoint, err := resolver.Resolve(Context{}, FromRoute(route))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if endpoint.NodeID != "db" {
		t.Errorf("NodeID = %q, want db", endpoint.NodeID)
	}
}

func TestRouteNeverFallsBackToAmbient(t *testing.T) {
	t.Parallel()
	directory := newFakeDirectory()
	resolver := NewResolver(directory)
	ambient := Context{NodeID: "gateway", UserID: "ana", Cwd: "/home/ana"}

	broken := bobSession()
	broken.Cwd = "relative"
	tests := []struct {
		name  string
		route identity.Route
	}{
		{"structurally invalid lastSession", identity.Route{LastSession: broken}},
		{"empty lastSession", identity.Route{}},
		{"lastSession not live", identity.Route{LastSession: bobSession()}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			endpoint, err := resolver.Resolve(ambient, FromRoute(test.route))
			if result.CodeOf(err) != result.InvalidArgs {
				t.Fatalf("code = %s (endpoint %+v), want InvalidArgs", result.CodeOf(err), endpoint)
			}
			if !strings.HasPrefix(err.Error(), "route.lastSession: ") {
				t.Errorf("reason = %q, want route.lastSession prefix", err.Error())
			}
			if endpoint.Server != nil {
				t.Error("failed resolution returned a partial endpoint")
			}
		})
	}
}

func TestParseHandle(t *testing.T) {
	t.Parallel()

	session := bobSession()
	route := identity.Route{LastSession: session}
	tests := []struct {
		name     string
		value    any
		wantKind HandleKind
		wantCode result.Code
	}{
		{"nil", nil, HandleAbsent, result.None},
		{"session value", session, HandleSession, result.None},
		{"route value", route, HandleRoute, result.None},
		{"session map", session.ToMap(), HandleSession, result.None},
		{"route map", route.ToMap(), HandleRoute, result.None},
		{"options map without kind", map[string]any{"overwrite": true}, HandleAbsent, result.None},
		{"session map without kind", withoutKind(session.ToMap()), HandleAbsent, result.InvalidArgs},
		{"route map without kind", withoutKind(route.ToMap()), HandleAbsent, result.InvalidArgs},
		{"broken route map without kind", map[string]any{"lastSession": map[string]any{"cwd": "relative"}}, HandleAbsent, result.InvalidArgs},
		{"bare node id", map[string]any{"nodeId": "db"}, HandleAbsent, result.InvalidArgs},
		{"unknown kind", map[string]any{"kind": "telnet"}, HandleAbsent, result.InvalidArgs},
		{"kind with bad fields", map[string]any{"kind": identity.KindSession, "id": 3}, HandleAbsent, result.InvalidArgs},
		{"string", "ses-7", HandleAbsent, result.InvalidArgs},
		{"number", 42, HandleAbsent, result.InvalidArgs},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			handle, err := ParseHandle(test.value)
			if code := result.CodeOf(err); code != test.wantCode {
				t.Fatalf("ParseHandle code = %s (%v), want %s", code, err, test.wantCode)
			}
			if err == nil && handle.Kind() != test.wantKind {
				t.Errorf("kind = %s, want %s", handle.Kind(), test.wantKind)
			}
		})
	}
}

func withoutKind(m map[string]any) map[string]any {
	delete(m, "kind")
	return m
}

func TestEndpointPath(t *testing.T) {
	t.Parallel()
	endpoint := Endpoint{Cwd: "/var/log", User: identity.UserConfig{Home: "/home/ana"}}

	for expr, want := range map[string]string{
		"syslog":      "/var/log/syslog",
		"../../..":    "/",
		"~/notes":     "/home/ana/notes",
		"/etc//hosts": "/etc/hosts",
	} {
		got, err := endpoint.Path(expr)
		if err != nil || got != want {
			t.Errorf("Path(%q) = %q, %v; want %q", expr, got, err, want)
		}
	}
	if _, err := endpoint.Path(""); result.CodeOf(err) != result.InvalidArgs {
		t.Errorf("Path(\"\") code = %s, want InvalidArgs", result.CodeOf(err))
	}
}
