// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the netsim binary.
//
// A [Command] tree dispatches on the first positional argument and
// parses pflag flag sets built lazily by each command. Typos get a
// "did you mean" suggestion from edit distance. Flags are usually
// declared as tagged struct fields and bound with [FlagsFromParams].
//
// Output goes through [Printer], which renders verb envelopes for
// people, or [WriteJSON] for machines. [NewLogger] picks slog's text
// handler on a terminal and JSON elsewhere.
package cli
