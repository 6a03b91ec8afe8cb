// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jobstore is the SQLite ledger of background jobs. The
// scheduler records each job when it is queued and updates it as it
// runs; callers inspect jobs by id after the call that started them has
// returned.
//
// Output is stored as a CBOR-encoded list of lines. Timestamps are Unix
// nanoseconds; zero means "not yet".
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/netsim/lib/codec"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	node         TEXT NOT NULL,
	user         TEXT NOT NULL,
	cwd          TEXT NOT NULL,
	command      TEXT NOT NULL,
	state        TEXT NOT NULL,
	exit_code    INTEGER NOT NULL DEFAULT 0,
	error_code   TEXT NOT NULL DEFAULT '',
	output       BLOB,
	created_ns   INTEGER NOT NULL,
	started_ns   INTEGER NOT NULL DEFAULT 0,
	finished_ns  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS jobs_node_created ON jobs (node, created_ns);
CREATE INDEX IF NOT EXISTS jobs_state ON jobs (state);
`

const selectColumns = "SELECT id, node, user, cwd, command, state, exit_code, error_code, output, created_ns, started_ns, finished_ns FROM jobs"

// Config opens a Store.
type Config struct {
	// Path is the database file, or MemoryPath.
	Path string

	// PoolSize defaults to max(NumCPU, 4). Ignored for MemoryPath.
	PoolSize int

	// Logger defaults to discarding.
	Logger *slog.Logger
}

// Store is the job ledger. Safe for concurrent use.
type Store struct {
	pool   *pool
	logger *slog.Logger
}

// Open opens or creates the ledger.
func Open(config Config) (*Store, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p, err := openPool(config.Path, config.PoolSize, logger, func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteScript(conn, schema, nil)
	})
	if err != nil {
		return nil, err
	}
	return &Store{pool: p, logger: logger}, nil
}

// Close closes the ledger. Blocks until borrowed connections return.
func (s *Store) Close() error {
	return s.pool.close()
}

// Insert records a new job. State defaults to Pending.
func (s *Store) Insert(ctx context.Context, job Job) error {
	if job.ID == "" {
		return fmt.Errorf("jobstore: insert: job id is empty")
	}
	if job.State == "" {
		job.State = StatePending
	}
	output, err := encodeOutput(job.Output)
	if err != nil {
		return err
	}

	conn, err := s.pool.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO jobs (id, node, user, cwd, command, state, exit_code, error_code, output, created_ns, started_ns, finished_ns) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{
			job.ID, job.NodeID, job.UserID, job.Cwd, job.CommandLine, string(job.State),
			job.ExitCode, job.ErrorCode, output,
			unixNanos(job.CreatedAt), unixNanos(job.StartedAt), unixNanos(job.FinishedAt),
		}},
	)
	if err != nil && sqlite.ErrCode(err).ToPrimary() == sqlite.ResultConstraint {
		return fmt.Errorf("jobstore: insert %s: %w", job.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("jobstore: insert %s: %w", job.ID, err)
	}
	return nil
}

// MarkRunning moves a Pending job to Running.
func (s *Store) MarkRunning(ctx context.Context, id string, at time.Time) error {
	return s.transition(ctx, id, []State{StatePending},
		"UPDATE jobs SET state = ?, started_ns = ? WHERE id = ? AND state = ?",
		func(from State) []any {
			return []any{string(StateRunning), unixNanos(at), id, string(from)}
		})
}

// Complete moves a Running job to Completed.
func (s *Store) Complete(ctx context.Context, id string, exitCode int, output []string, at time.Time) error {
	encoded, err := encodeOutput(output)
	if err != nil {
		return err
	}
	return s.transition(ctx, id, []State{StateRunning},
		"UPDATE jobs SET state = ?, exit_code = ?, output = ?, finished_ns = ? WHERE id = ? AND state = ?",
		func(from State) []any {
			return []any{string(StateCompleted), exitCode, encoded, unixNanos(at), id, string(from)}
		})
}

// Fail moves a Pending or Running job to Failed with errorCode.
func (s *Store) Fail(ctx context.Context, id, errorCode string, output []string, at time.Time) error {
	encoded, err := encodeOutput(output)
	if err != nil {
		return err
	}
	return s.transition(ctx, id, []State{StatePending, StateRunning},
		"UPDATE jobs SET state = ?, error_code = ?, output = ?, finished_ns = ? WHERE id = ? AND state = ?",
		func(from State) []any {
			return []any{string(StateFailed), errorCode, encoded, unixNanos(at), id, string(from)}
		})
}

// transition applies query to job id if it is currently in one of
// from. The whole check-and-update runs in one IMMEDIATE transaction.
func (s *Store) transition(ctx context.Context, id string, from []State, query string, args func(State) []any) (err error) {
	conn, err := s.pool.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("jobstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	current, found, err := getJob(conn, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("jobstore: %s: %w", id, ErrNotFound)
	}
	for _, state := range from {
		if current.State != state {
			continue
		}
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args(state)}); err != nil {
			return fmt.Errorf("jobstore: update %s: %w", id, err)
		}
		return nil
	}
	return fmt.Errorf("jobstore: %s is %s: %w", id, current.State, ErrTransition)
}

// Get returns job id.
func (s *Store) Get(ctx context.Context, id string) (Job, error) {
	conn, err := s.pool.take(ctx)
	if err != nil {
		return Job{}, err
	}
	defer s.pool.put(conn)

	job, found, err := getJob(conn, id)
	if err != nil {
		return Job{}, err
	}
	if !found {
		return Job{}, fmt.Errorf("jobstore: %s: %w", id, ErrNotFound)
	}
	return job, nil
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	NodeID string
	State  State

	// Limit caps the number of jobs returned. Zero is 100.
	Limit int
}

// List returns jobs matching filter, oldest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Job, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	conn, err := s.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.put(conn)

	query := selectColumns + " WHERE (? = '' OR node = ?) AND (? = '' OR state = ?) ORDER BY created_ns, id LIMIT ?"
	var jobs []Job
	var scanErr error
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{filter.NodeID, filter.NodeID, string(filter.State), string(filter.State), limit},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			job, err := scanJob(stmt)
			if err != nil {
				scanErr = err
				return err
			}
			jobs = append(jobs, job)
			return nil
		},
	})
	if scanErr != nil {
		return nil, scanErr
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: list: %w", err)
	}
	return jobs, nil
}

func getJob(conn *sqlite.Conn, id string) (Job, bool, error) {
	var job Job
	found := false
	err := sqlitex.Execute(conn, selectColumns+" WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			job, err = scanJob(stmt)
			found = err == nil
			return err
		},
	})
	if err != nil {
		return Job{}, false, fmt.Errorf("jobstore: get %s: %w", id, err)
	}
	return job, found, nil
}

// scanJob reads one row of selectColumns.
func scanJob(stmt *sqlite.Stmt) (Job, error) {
	// Columns: id(0), node(1), user(2), cwd(3), command(4), state(5),
	// exit_code(6), error_code(7), output(8), created_ns(9),
	// started_ns(10), finished_ns(11)
	job := Job{
		ID:          stmt.ColumnText(0),
		NodeID:      stmt.ColumnText(1),
		UserID:      stmt.ColumnText(2),
		Cwd:         stmt.ColumnText(3),
		CommandLine: stmt.ColumnText(4),
		State:       State(stmt.ColumnText(5)),
		ExitCode:    stmt.ColumnInt(6),
		ErrorCode:   stmt.ColumnText(7),
		CreatedAt:   fromUnixNanos(stmt.ColumnInt64(9)),
		StartedAt:   fromUnixNanos(stmt.ColumnInt64(10)),
		FinishedAt:  fromUnixNanos(stmt.ColumnInt64(11)),
	}
	if !stmt.ColumnIsNull(8) && stmt.ColumnLen(8) > 0 {
		blob := make([]byte, stmt.ColumnLen(8))
		stmt.ColumnBytes(8, blob)
		if err := codec.Unmarshal(blob, &job.Output); err != nil {
			return Job{}, fmt.Errorf("jobstore: decoding output of %s: %w", job.ID, err)
		}
	}
	return job, nil
}

// encodeOutput returns the output column value: NULL for no output,
// otherwise the CBOR encoding of lines.
func encodeOutput(lines []string) (any, error) {
	if lines == nil {
		return nil, nil
	}
	encoded, err := codec.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("jobstore: encoding output: %w", err)
	}
	return encoded, nil
}

func unixNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNanos(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
