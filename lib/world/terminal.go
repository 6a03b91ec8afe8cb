// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"sync"

	"github.com/bureau-foundation/netsim/lib/execengine"
)

// TerminalStats counts terminal-session bookkeeping since the world
// was created.
type TerminalStats struct {
	Allocated         uint64
	Released          uint64
	Open              int
	ConnectionsOpened uint64
	ConnectionsClosed uint64
	UnknownCleanups   uint64
}

// terminals tracks open terminal sessions and the ssh connections each
// one opened.
type terminals struct {
	mu    sync.Mutex
	next  uint64
	open  map[execengine.TerminalSessionID][]string
	stats TerminalStats
}

func newTerminals() *terminals {
	return &terminals{open: map[execengine.TerminalSessionID][]string{}}
}

func (t *terminals) allocate() execengine.TerminalSessionID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	id := execengine.TerminalSessionID(t.next)
	t.open[id] = nil
	t.stats.Allocated++
	return id
}

// connect records a connection (a session id) opened under terminal.
// It reports false when the terminal session is not open.
func (t *terminals) connect(terminal execengine.TerminalSessionID, sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	connections, ok := t.open[terminal]
	if !ok {
		return false
	}
	t.open[terminal] = append(connections, sessionID)
	t.stats.ConnectionsOpened++
	return true
}

// release closes terminal and returns its connections.
func (t *terminals) release(terminal execengine.TerminalSessionID) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	connections, ok := t.open[terminal]
	if !ok {
		t.stats.UnknownCleanups++
		return nil
	}
	delete(t.open, terminal)
	t.stats.Released++
	t.stats.ConnectionsClosed += uint64(len(connections))
	return connections
}

func (t *terminals) snapshot() TerminalStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.stats
	stats.Open = len(t.open)
	return stats
}

// AllocateTerminalSessionID implements execengine.World.
func (w *World) AllocateTerminalSessionID() execengine.TerminalSessionID {
	return w.terminals.allocate()
}

// CleanupTerminalSessionConnections implements execengine.World. Every
// ssh session opened under the terminal session is closed.
func (w *World) CleanupTerminalSessionConnections(id execengine.TerminalSessionID) {
	for _, sessionID := range w.terminals.release(id) {
		w.CloseSession(sessionID)
	}
}

// TerminalStats returns the terminal-session counters.
func (w *World) TerminalStats() TerminalStats {
	return w.terminals.snapshot()
}
