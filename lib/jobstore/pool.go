// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobstore

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// MemoryPath opens a private in-memory ledger.
const MemoryPath = ":memory:"

// pool is a fixed-size set of SQLite connections with the ledger's
// pragmas applied. Connections are not safe for concurrent use; each
// goroutine takes its own and puts it back.
type pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// openPool opens path with size connections. Every connection is
// prepared with the standard pragmas and then onConnect.
//
// MemoryPath becomes a uniquely named shared-cache URI, so each ledger
// is private and lives as long as the pool holds its connection. It
// gets exactly one connection: shared-cache writers lock whole tables
// and busy_timeout does not apply to those locks.
func openPool(path string, size int, logger *slog.Logger, onConnect func(*sqlite.Conn) error) (*pool, error) {
	if path == "" {
		return nil, fmt.Errorf("jobstore: database path is required")
	}
	uri := path
	flags := sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL | sqlite.OpenURI
	memory := path == MemoryPath
	if memory {
		uri = memoryURI()
		flags &^= sqlite.OpenWAL
		size = 1
	}
	if size <= 0 {
		size = max(runtime.NumCPU(), 4)
	}

	inner, err := sqlitex.NewPool(uri, sqlitex.PoolOptions{
		Flags:    flags,
		PoolSize: size,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, memory, onConnect)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jobstore: opening %s: %w", path, err)
	}
	logger.Info("job ledger opened", "path", path, "pool_size", size)
	return &pool{inner: inner, logger: logger, path: path}, nil
}

func (p *pool) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("jobstore: take connection: %w", err)
	}
	return conn, nil
}

func (p *pool) put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

func (p *pool) close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("job ledger close failed", "path", p.path, "error", err)
		return fmt.Errorf("jobstore: closing %s: %w", p.path, err)
	}
	p.logger.Info("job ledger closed", "path", p.path)
	return nil
}

// memoryURI names a fresh in-memory database. The name keeps two
// ledgers in one process from sharing a cache.
func memoryURI() string {
	return "file:netsim-" + uuid.NewString() + "?mode=memory&cache=shared"
}

// prepareConnection applies the pragmas, then onConnect. Runs once per
// connection, on first use. Memory databases have no journal to switch.
func prepareConnection(conn *sqlite.Conn, memory bool, onConnect func(*sqlite.Conn) error) error {
	var pragmas []string
	if !memory {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	pragmas = append(pragmas,
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-4096",
		"PRAGMA temp_store=MEMORY",
	)
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("jobstore: %s: %w", pragma, err)
		}
	}
	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return fmt.Errorf("jobstore: preparing connection: %w", err)
		}
	}
	return nil
}
