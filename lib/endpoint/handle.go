// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package endpoint

import (
	"fmt"

	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/result"
)

// HandleKind tags a [Handle].
type HandleKind uint8

const (
	// HandleAbsent means "the ambient execution context".
	HandleAbsent HandleKind = iota

	// HandleSession carries a session.
	HandleSession

	// HandleRoute carries a route.
	HandleRoute
)

// String returns "absent", "session" or "route".
func (k HandleKind) String() string {
	switch k {
	case HandleAbsent:
		return "absent"
	case HandleSession:
		return "session"
	case HandleRoute:
		return "route"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Handle is the optional session-or-route argument of every verb. The
// zero Handle is absent.
type Handle struct {
	kind    HandleKind
	session identity.Session
	route   identity.Route
}

// Absent returns the absent handle.
func Absent() Handle { return Handle{} }

// FromSession wraps a session.
func FromSession(s identity.Session) Handle {
	return Handle{kind: HandleSession, session: s}
}

// FromRoute wraps a route.
func FromRoute(r identity.Route) Handle {
	return Handle{kind: HandleRoute, route: r}
}

// Kind returns the handle's tag.
func (h Handle) Kind() HandleKind { return h.kind }

// Session returns the carried session.
func (h Handle) Session() (identity.Session, bool) {
	return h.session, h.kind == HandleSession
}

// Route returns the carried route.
func (h Handle) Route() (identity.Route, bool) {
	return h.route, h.kind == HandleRoute
}

// handleKeys are the map keys that only a session or route carries.
var handleKeys = []string{"id", "nodeId", "userId", "lastSession", "hops"}

// ParseHandle converts a script-supplied value into a Handle:
//
//   - nil is absent
//   - a Handle, Session or Route value is wrapped as is
//   - a map without a "kind" key is absent when it carries none of the
//     session or route fields (it is some other options map), and
//     InvalidArgs when it does
//   - a map whose kind is sshSession or sshRoute is decoded
//   - a map with any other kind, and any other value, is InvalidArgs
func ParseHandle(value any) (Handle, error) {
	switch v := value.(type) {
	case nil:
		return Absent(), nil
	case Handle:
		return v, nil
	case identity.Session:
		return FromSession(v), nil
	case identity.Route:
		return FromRoute(v), nil
	case map[string]any:
		kind, present := v["kind"]
		if !present {
			for _, key := range handleKeys {
				if _, found := v[key]; found {
					return Handle{}, result.Invalid("handle map has %q but no kind (want %s or %s)", key, identity.KindSession, identity.KindRoute)
				}
			}
			return Absent(), nil
		}
		switch kind {
		case identity.KindSession:
			s, err := identity.SessionFromMap(v)
			if err != nil {
				return Handle{}, result.Prefix("session: ", err)
			}
			return FromSession(s), nil
		case identity.KindRoute:
			r, err := identity.RouteFromMap(v)
			if err != nil {
				return Handle{}, err
			}
			return FromRoute(r), nil
		default:
			return Handle{}, result.Invalid("unsupported handle kind %v (want %s or %s)", kind, identity.KindSession, identity.KindRoute)
		}
	default:
		return Handle{}, result.Invalid("session or route expected, got %T", value)
	}
}
