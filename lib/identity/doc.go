// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity defines who is acting where: users and their
// privileges, sessions (an authenticated user at a node), and routes
// (a saved chain of sessions across simulated SSH hops whose live end
// is the last session).
//
// Sessions and routes travel through scripts as plain maps tagged with
// a "kind" marker ([KindSession], [KindRoute]). Values coming back from
// a script are never trusted: [Session.Validate] and [Route.Validate]
// check structure, and the endpoint resolver re-checks sessions against
// live world state before use.
package identity
