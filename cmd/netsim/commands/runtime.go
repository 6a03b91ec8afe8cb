// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/lib/config"
	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/fsops"
	"github.com/bureau-foundation/netsim/lib/jobstore"
	"github.com/bureau-foundation/netsim/lib/scenario"
	"github.com/bureau-foundation/netsim/lib/verbs"
	"github.com/bureau-foundation/netsim/lib/vfs"
	"github.com/bureau-foundation/netsim/lib/world"
)

// snapshotExtension names node snapshot files under --state.
const snapshotExtension = ".snapshot"

// loadConfig reads path, else $NETSIM_CONFIG, else the defaults.
func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

// runtime is a loaded world with the registry built over it.
type runtime struct {
	config   *config.Config
	logger   *slog.Logger
	jobs     *jobstore.Store
	world    *world.World
	registry *verbs.Registry
	state    string
}

func openRuntime(params worldParams, streams IO) (*runtime, error) {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return nil, err
	}
	logger := cli.NewLogger(streams.Err, cfg.Logging)

	path := params.Scenario
	if path == "" {
		path = cfg.Scenario
	}
	if path == "" {
		return nil, fmt.Errorf("no scenario: pass --scenario or set scenario in the configuration")
	}
	s, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}

	rt := &runtime{config: cfg, logger: logger, state: params.State}
	if cfg.Jobs.Database != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Jobs.Database), 0o755); err != nil {
			return nil, fmt.Errorf("creating job database directory: %w", err)
		}
		rt.jobs, err = jobstore.Open(jobstore.Config{Path: cfg.Jobs.Database, Logger: logger})
		if err != nil {
			return nil, err
		}
	}

	rt.world, err = world.Load(s, world.Config{
		Jobs:       rt.jobs,
		Workers:    cfg.Jobs.Workers,
		QueueDepth: cfg.Jobs.QueueDepth,
		Logger:     logger,
	})
	if err != nil {
		rt.closeJobs()
		return nil, err
	}

	if rt.state != "" {
		if err := restoreState(rt.world, rt.state); err != nil {
			rt.world.Close()
			rt.closeJobs()
			return nil, err
		}
	}

	rt.registry, err = newRegistry(rt.world, verbs.Limits{
		MaxReadBytes:   cfg.Limits.MaxReadBytes,
		MaxWriteBytes:  cfg.Limits.MaxWriteBytes,
		MaxOutputBytes: cfg.Limits.MaxOutputBytes,
	}, logger)
	if err != nil {
		rt.world.Close()
		rt.closeJobs()
		return nil, err
	}
	return rt, nil
}

func newRegistry(w *world.World, limits verbs.Limits, logger *slog.Logger) (*verbs.Registry, error) {
	resolver := endpoint.NewResolver(w)
	return verbs.New(verbs.Deps{
		FS:       fsops.New(resolver, w, logger),
		Engine:   execengine.New(w, resolver, logger),
		Sessions: w,
		Jobs:     w,
		Limits:   limits,
		Logger:   logger,
	})
}

// Close stops the world, saves --state snapshots and closes the job
// database.
func (rt *runtime) Close() error {
	err := rt.world.Close()
	if rt.state != "" {
		err = errors.Join(err, saveState(rt.world, rt.state))
	}
	return errors.Join(err, rt.closeJobs())
}

func (rt *runtime) closeJobs() error {
	if rt.jobs == nil {
		return nil
	}
	return rt.jobs.Close()
}

// restoreState loads each node's snapshot from directory. Nodes
// without a snapshot keep their scenario content.
func restoreState(w *world.World, directory string) error {
	for _, id := range w.NodeIDs() {
		node, _ := w.Node(id)
		data, err := os.ReadFile(filepath.Join(directory, id+snapshotExtension))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading state of %s: %w", id, err)
		}
		snapshot, err := vfs.DecodeSnapshot(data)
		if err != nil {
			return fmt.Errorf("state of %s: %w", id, err)
		}
		if err := node.FS().Restore(snapshot); err != nil {
			return fmt.Errorf("state of %s: %w", id, err)
		}
	}
	return nil
}

// saveState writes every node's snapshot to directory. Each file is
// replaced atomically.
func saveState(w *world.World, directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	for _, id := range w.NodeIDs() {
		node, _ := w.Node(id)
		data, err := node.FS().EncodeSnapshot()
		if err != nil {
			return fmt.Errorf("state of %s: %w", id, err)
		}
		if err := writeFileAtomic(filepath.Join(directory, id+snapshotExtension), data); err != nil {
			return fmt.Errorf("saving state of %s: %w", id, err)
		}
	}
	return nil
}

// writeFileAtomic writes data beside path, syncs it and renames it
// into place. Readers never see a partial snapshot.
func writeFileAtomic(path string, data []byte) error {
	file, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	temporary := file.Name()
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporary)
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporary)
		return fmt.Errorf("syncing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporary)
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		os.Remove(temporary)
		return fmt.Errorf("renaming into place: %w", err)
	}
	if directory, err := os.Open(filepath.Dir(path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}
