// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/bureau-foundation/netsim/lib/blobstore"
	"github.com/bureau-foundation/netsim/lib/clock"
	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/fsops"
	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/jobstore"
	"github.com/bureau-foundation/netsim/lib/scenario"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

var (
	_ endpoint.Directory = (*World)(nil)
	_ execengine.World   = (*World)(nil)
	_ fsops.Events       = (*World)(nil)
)

// Config configures a World.
type Config struct {
	// Jobs is the job ledger. Nil opens a private in-memory ledger
	// owned (and closed) by the World.
	Jobs *jobstore.Store

	// Workers is the number of job worker goroutines. Zero is 4.
	Workers int

	// QueueDepth bounds jobs waiting for a worker. Zero is 64.
	QueueDepth int

	// PasswordCost is the bcrypt cost for scenario passwords. Zero is
	// bcrypt.DefaultCost.
	PasswordCost int

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to discarding.
	Logger *slog.Logger
}

// World is the simulated network. Safe for concurrent use.
type World struct {
	blobs  *blobstore.Store
	clock  clock.Clock
	logger *slog.Logger
	config Config

	// mu guards nodes, users and sessions. Node filesystems have
	// their own serialization.
	mu       sync.RWMutex
	nodes    map[string]*Node
	sessions map[string]identity.Session

	terminals *terminals
	events    *eventHub
	scheduler *scheduler
	ownsJobs  bool

	closeOnce sync.Once
	closeErr  error
}

// New returns an empty world with its scheduler running. Call Close to
// stop it.
func New(config Config) (*World, error) {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.QueueDepth <= 0 {
		config.QueueDepth = 64
	}

	world := &World{
		blobs:     blobstore.New(),
		clock:     config.Clock,
		logger:    config.Logger,
		config:    config,
		nodes:     map[string]*Node{},
		sessions:  map[string]identity.Session{},
		terminals: newTerminals(),
		events:    newEventHub(),
	}

	jobs := config.Jobs
	if jobs == nil {
		var err error
		jobs, err = jobstore.Open(jobstore.Config{Path: jobstore.MemoryPath, Logger: config.Logger})
		if err != nil {
			return nil, fmt.Errorf("opening job ledger: %w", err)
		}
		world.ownsJobs = true
	}
	world.scheduler = newScheduler(world, jobs, config.Workers, config.QueueDepth)
	return world, nil
}

// Load builds a world from a scenario.
func Load(s *scenario.Scenario, config Config) (*World, error) {
	world, err := New(config)
	if err != nil {
		return nil, err
	}
	if err := world.Apply(s); err != nil {
		world.Close()
		return nil, err
	}
	return world, nil
}

// Apply adds the scenario's nodes and users.
func (w *World) Apply(s *scenario.Scenario) error {
	for _, node := range s.Nodes {
		base, err := node.Base(w.blobs)
		if err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}
		if _, err := w.AddNode(node.ID, node.Hostname, base); err != nil {
			return err
		}
		for _, user := range node.Users {
			config := identity.UserConfig{Name: user.Name, Home: user.HomeOf(), Privilege: user.Privilege}
			switch {
			case user.PasswordHash != "":
				config.PasswordHash = []byte(user.PasswordHash)
			case user.Password != "":
				config.PasswordHash, err = identity.HashPassword(user.Password, w.config.PasswordCost)
				if err != nil {
					return fmt.Errorf("node %s user %s: %w", node.ID, user.Name, err)
				}
			}
			if err := w.AddUser(node.ID, config); err != nil {
				return err
			}
		}
	}
	w.logger.Info("scenario loaded", "scenario", s.Name, "nodes", len(s.Nodes))
	return nil
}

// Close stops the scheduler, waiting for running jobs, and closes the
// job ledger if the world opened it.
func (w *World) Close() error {
	w.closeOnce.Do(func() {
		w.scheduler.close()
		w.events.close()
		if w.ownsJobs {
			w.closeErr = w.scheduler.jobs.Close()
		}
	})
	return w.closeErr
}

// Blobs returns the content store shared by every node.
func (w *World) Blobs() *blobstore.Store {
	return w.blobs
}

// Jobs returns the job ledger.
func (w *World) Jobs() *jobstore.Store {
	return w.scheduler.jobs
}

// Node is one simulated machine.
type Node struct {
	id       string
	hostname string
	fs       *vfs.Overlay

	// users is guarded by the owning World's mu.
	users map[string]identity.UserConfig
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Hostname returns the name the hostname command prints.
func (n *Node) Hostname() string { return n.hostname }

// FS returns the node's filesystem.
func (n *Node) FS() *vfs.Overlay { return n.fs }

// AddNode creates a node over base. An empty hostname is the id.
func (w *World) AddNode(id, hostname string, base *vfs.Base) (*Node, error) {
	if err := identity.ValidateName("node", id); err != nil {
		return nil, err
	}
	if hostname == "" {
		hostname = id
	}
	node := &Node{id: id, hostname: hostname, fs: vfs.New(base, w.blobs), users: map[string]identity.UserConfig{}}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.nodes[id]; exists {
		return nil, fmt.Errorf("node %q already exists", id)
	}
	w.nodes[id] = node
	return node, nil
}

// Node returns the node with the given id.
func (w *World) Node(id string) (*Node, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	node, ok := w.nodes[id]
	return node, ok
}

// NodeIDs returns every node id in lexical order.
func (w *World) NodeIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Sorted(maps.Keys(w.nodes))
}

// Server implements endpoint.Directory.
func (w *World) Server(nodeID string) (endpoint.Server, bool) {
	node, ok := w.Node(nodeID)
	if !ok {
		return nil, false
	}
	return node, true
}

// AddUser creates or replaces an account on a node.
func (w *World) AddUser(nodeID string, user identity.UserConfig) error {
	if err := identity.ValidateName("user", user.Name); err != nil {
		return err
	}
	if user.Home == "" {
		user.Home = "/home/" + user.Name
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	node, ok := w.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %q does not exist", nodeID)
	}
	node.users[user.Name] = user
	return nil
}

// User implements endpoint.Directory.
func (w *World) User(nodeID, userID string) (identity.UserConfig, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	node, ok := w.nodes[nodeID]
	if !ok {
		return identity.UserConfig{}, false
	}
	user, ok := node.users[userID]
	return user, ok
}

// RemoveUser deletes an account and invalidates its live sessions.
func (w *World) RemoveUser(nodeID, userID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	node, ok := w.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %q does not exist", nodeID)
	}
	if _, ok := node.users[userID]; !ok {
		return fmt.Errorf("user %q does not exist on %s", userID, nodeID)
	}
	delete(node.users, userID)
	closed := 0
	for id, session := range w.sessions {
		if session.NodeID == nodeID && session.UserID == userID {
			delete(w.sessions, id)
			closed++
		}
	}
	w.logger.Info("user removed", "node", nodeID, "user", userID, "sessions_closed", closed)
	return nil
}
