// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package verbs is the script-facing surface of netsim: a fixed set of
// named verbs (fs.read, exec.run, session.login, ...) dispatched from
// a [Registry] built once at startup and handed to whatever embeds the
// simulator.
//
// Every call returns a [result.Envelope]. Arguments are checked before
// anything else runs: a wrong positional count, an option key the verb
// does not declare, or an option value of the wrong type is
// InvalidArgs and touches no state.
package verbs
