// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/jobstore"
	"github.com/bureau-foundation/netsim/lib/result"
)

// scheduler runs background jobs on a fixed set of workers fed by a
// bounded queue. Each job records its lifecycle in the ledger and runs
// under a terminal session of its own.
type scheduler struct {
	world *World
	jobs  *jobstore.Store

	// ctx is cancelled by close; running jobs observe it.
	ctx    context.Context
	cancel context.CancelFunc

	// mu orders enqueues against close and is held for every send on
	// queue, so a capacity check under mu is exact.
	mu     sync.Mutex
	closed bool
	queue  chan queuedJob
	done   map[execengine.JobID]chan struct{}

	workers sync.WaitGroup
}

type queuedJob struct {
	id      execengine.JobID
	request execengine.Request
}

func newScheduler(world *World, jobs *jobstore.Store, workers, depth int) *scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &scheduler{
		world:  world,
		jobs:   jobs,
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan queuedJob, depth),
		done:   map[execengine.JobID]chan struct{}{},
	}
	for range workers {
		s.workers.Add(1)
		go func() {
			defer s.workers.Done()
			for job := range s.queue {
				s.runJob(job)
			}
		}()
	}
	return s
}

// TryStartAsyncExecJob implements execengine.World. The job is recorded
// as pending before this returns.
func (w *World) TryStartAsyncExecJob(ctx context.Context, request execengine.Request) (execengine.JobID, error) {
	words, err := shellquote.Split(request.CommandLine)
	if err != nil {
		return "", &result.Error{Code: result.InvalidArgs, Reason: "parsing command line: " + err.Error(), Cause: err}
	}
	if len(words) == 0 {
		return "", result.Invalid("empty command line")
	}
	if !KnownProgram(words[0]) {
		return "", result.Invalid("unknown program %q", words[0])
	}
	return w.scheduler.submit(ctx, request)
}

func (s *scheduler) submit(ctx context.Context, request execengine.Request) (execengine.JobID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", result.Internal("job scheduler is closed")
	}
	if len(s.queue) >= cap(s.queue) {
		return "", result.Internal("job queue full")
	}

	id := execengine.JobID("job-" + uuid.NewString())
	err := s.jobs.Insert(ctx, jobstore.Job{
		ID:          string(id),
		NodeID:      request.NodeID,
		UserID:      request.UserID,
		Cwd:         request.Cwd,
		CommandLine: request.CommandLine,
		State:       jobstore.StatePending,
		CreatedAt:   s.world.clock.Now(),
	})
	if err != nil {
		return "", result.Wrap(result.InternalError, err, "recording job")
	}

	// The caller's terminal session closes as soon as we return.
	request.TerminalSessionID = 0
	s.done[id] = make(chan struct{})
	s.queue <- queuedJob{id: id, request: request}
	s.world.logger.Info("job queued", "job", id, "node", request.NodeID, "user", request.UserID)
	return id, nil
}

func (s *scheduler) runJob(job queuedJob) {
	logger := s.world.logger.With("job", job.id)
	// Ledger writes finish even while the scheduler shuts down.
	ledger := context.WithoutCancel(s.ctx)
	defer s.finish(job.id)

	if s.ctx.Err() != nil {
		if err := s.jobs.Fail(ledger, string(job.id), string(result.InternalError), nil, s.world.clock.Now()); err != nil {
			logger.Error("recording job failure", "error", err)
		}
		logger.Info("job abandoned at shutdown")
		return
	}
	if err := s.jobs.MarkRunning(ledger, string(job.id), s.world.clock.Now()); err != nil {
		logger.Error("marking job running", "error", err)
		return
	}

	outcome := s.execute(job.request)

	now := s.world.clock.Now()
	var err error
	if outcome.OK {
		err = s.jobs.Complete(ledger, string(job.id), 0, outcome.Lines, now)
		logger.Info("job completed", "lines", len(outcome.Lines))
	} else {
		err = s.jobs.Fail(ledger, string(job.id), string(outcome.Code), outcome.Lines, now)
		logger.Info("job failed", "code", outcome.Code)
	}
	if err != nil {
		logger.Error("recording job outcome", "error", err)
	}
}

// execute runs request under a fresh terminal session, released on
// every path.
func (s *scheduler) execute(request execengine.Request) (outcome execengine.Result) {
	terminal := s.world.AllocateTerminalSessionID()
	defer s.world.CleanupTerminalSessionConnections(terminal)
	defer func() {
		if recovered := recover(); recovered != nil {
			s.world.logger.Error("job panicked", "panic", recovered)
			outcome = failure(result.Internal("job panicked: %v", recovered))
		}
	}()
	request.TerminalSessionID = terminal
	return s.world.ExecuteSystemCall(s.ctx, request)
}

func (s *scheduler) finish(id execengine.JobID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if done, ok := s.done[id]; ok {
		close(done)
		delete(s.done, id)
	}
}

// close refuses new jobs, cancels running ones, drains the queue and
// waits for the workers.
func (s *scheduler) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.cancel()
	s.workers.Wait()
}

// Job returns the ledger record of a job. An unknown id is NotFound.
func (w *World) Job(ctx context.Context, id execengine.JobID) (jobstore.Job, error) {
	job, err := w.scheduler.jobs.Get(ctx, string(id))
	if err != nil {
		if jobstore.IsNotFound(err) {
			return jobstore.Job{}, result.Missing("job %s does not exist", id)
		}
		return jobstore.Job{}, result.Wrap(result.InternalError, err, "reading job %s", id)
	}
	return job, nil
}

// WaitJob blocks until the job reaches a terminal state or ctx ends,
// and returns its record.
func (w *World) WaitJob(ctx context.Context, id execengine.JobID) (jobstore.Job, error) {
	w.scheduler.mu.Lock()
	done, pending := w.scheduler.done[id]
	w.scheduler.mu.Unlock()
	if pending {
		select {
		case <-done:
		case <-ctx.Done():
			return jobstore.Job{}, result.Wrap(result.InternalError, ctx.Err(), "waiting for job %s", id)
		}
	}
	return w.Job(ctx, id)
}
