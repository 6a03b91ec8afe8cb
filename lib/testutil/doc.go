// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for netsim packages.
//
// [RequireReceive] bounds channel waits so a broken event fan-out fails
// the test instead of hanging it. [RequireCode] asserts the result code
// of an operation's error.
package testutil
