// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time so simulated delays and job timestamps
// are testable. Production code takes a [Clock] and is given [Real];
// tests use [Fake], which stands still until [FakeClock.Advance].
//
// A goroutine waiting on a FakeClock registers its waiter when it calls
// After. Tests call [FakeClock.WaitForTimers] before advancing so the
// advance cannot race ahead of the registration:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go func() { <-c.After(5 * time.Second); close(done) }()
//	c.WaitForTimers(1)
//	c.Advance(5 * time.Second)
package clock
