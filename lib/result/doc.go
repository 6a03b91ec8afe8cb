// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package result defines the uniform success/failure protocol shared by
// every netsim operation.
//
// Components return ordinary Go errors. At the component boundary those
// errors are always [*Error] values carrying a [Code] from a closed set
// (plus whatever code a simulated command reports about itself), so
// callers can branch on the code without parsing message text:
//
//	entries, err := service.List(ctx, handle, "/etc")
//	if result.CodeOf(err) == result.NotDirectory {
//	    ...
//	}
//
// The script-facing layer wraps values and errors into an [Envelope],
// the {ok, code, err, data} shape delivered to callers:
//
//	envelope := result.From(entries, err)
//
// No operation panics across a component boundary. Failures are data.
package result
