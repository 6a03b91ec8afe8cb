// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/netsim/lib/fsops"
)

// eventHub fans file-acquire events out to subscribers. A subscriber
// whose buffer is full misses the event; emitters never block.
type eventHub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	closed      bool
	dropped     atomic.Uint64
}

type subscriber struct {
	events chan fsops.FileAcquire
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: map[*subscriber]struct{}{}}
}

// Subscribe returns a channel receiving every file-acquire event from
// now on, and a function that ends the subscription and closes the
// channel. buffer below 1 is 1.
func (w *World) Subscribe(buffer int) (<-chan fsops.FileAcquire, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{events: make(chan fsops.FileAcquire, buffer)}
	hub := w.events

	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		close(sub.events)
		return sub.events, func() {}
	}
	hub.subscribers[sub] = struct{}{}
	hub.mu.Unlock()

	var once sync.Once
	return sub.events, func() {
		once.Do(func() {
			hub.mu.Lock()
			defer hub.mu.Unlock()
			if _, ok := hub.subscribers[sub]; ok {
				delete(hub.subscribers, sub)
				close(sub.events)
			}
		})
	}
}

// EmitFileAcquire implements fsops.Events.
func (w *World) EmitFileAcquire(event fsops.FileAcquire) {
	w.logger.Info("file acquired",
		"node", event.NodeID,
		"user", event.UserKey,
		"path", event.RemotePath,
		"size", event.SizeBytes,
		"content_id", event.ContentID.Short(),
		"method", event.TransferMethod,
	)

	hub := w.events
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for sub := range hub.subscribers {
		select {
		case sub.events <- event:
		default:
			hub.dropped.Add(1)
		}
	}
}

// DroppedEvents counts events a full subscriber missed.
func (w *World) DroppedEvents() uint64 {
	return w.events.dropped.Load()
}

func (hub *eventHub) close() {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.closed = true
	for sub := range hub.subscribers {
		close(sub.events)
		delete(hub.subscribers, sub)
	}
}
