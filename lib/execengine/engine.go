// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package execengine runs command lines against resolved endpoints,
// either to completion ([Engine.Run]) or as a background job
// ([Engine.Start]).
//
// Every invocation that gets past validation, resolution and the
// privilege check allocates one ephemeral terminal session from the
// [World] and releases it exactly once before returning: on success,
// on failure, and when the world panics. For background jobs the
// session only scopes the scheduling call and is released as soon as
// the job is queued or refused.
package execengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

// Options controls one invocation.
type Options struct {
	// MaxOutputBytes caps the combined output of a synchronous run.
	// Zero is unlimited. Exceeding it is TooLarge.
	MaxOutputBytes int64

	Mode vfs.CommitMode
}

// RunOutput is a completed synchronous run.
type RunOutput struct {
	Lines []string `json:"lines"`
	Mode  string   `json:"mode"`
}

// Output returns the lines joined with newlines.
func (o RunOutput) Output() string {
	return strings.Join(o.Lines, "\n")
}

// StartOutput is a scheduled job.
type StartOutput struct {
	JobID JobID  `json:"jobId"`
	Mode  string `json:"mode"`
}

// Engine executes commands. Safe for concurrent use.
type Engine struct {
	world    World
	resolver *endpoint.Resolver
	logger   *slog.Logger
}

// New returns an engine over world. A nil logger discards logs.
func New(world World, resolver *endpoint.Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{world: world, resolver: resolver, logger: logger}
}

// Run executes commandLine and waits for it. A command that reports
// failure becomes an error carrying the command's code; its reason is
// the text after "error:" on the first output line, or the first line
// itself.
func (e *Engine) Run(ctx context.Context, ambient endpoint.Context, h endpoint.Handle, commandLine string, options Options) (RunOutput, error) {
	request, err := e.prepare(ambient, h, commandLine, options)
	if err != nil {
		return RunOutput{}, err
	}

	var outcome Result
	err = e.withTerminalSession(&request, func() error {
		outcome = e.world.ExecuteSystemCall(ctx, request)
		return nil
	})
	if err != nil {
		return RunOutput{}, err
	}

	if !outcome.OK {
		code := outcome.Code
		if code == "" || code == result.None {
			code = result.InternalError
		}
		e.logger.Debug("command failed",
			"node", request.NodeID,
			"user", request.UserID,
			"code", code,
		)
		return RunOutput{}, result.New(code, "%s", failureReason(outcome.Lines))
	}

	output := RunOutput{Lines: outcome.Lines, Mode: options.Mode.String()}
	if output.Lines == nil {
		output.Lines = []string{}
	}
	if size := int64(len(output.Output())); options.MaxOutputBytes > 0 && size > options.MaxOutputBytes {
		return RunOutput{}, result.New(result.TooLarge, "output is %d bytes, limit is %d", size, options.MaxOutputBytes)
	}
	e.logger.Debug("command completed", "node", request.NodeID, "user", request.UserID, "lines", len(output.Lines))
	return output, nil
}

// Start schedules commandLine as a background job and returns as soon
// as it is queued. The outcome reflects scheduling only.
func (e *Engine) Start(ctx context.Context, ambient endpoint.Context, h endpoint.Handle, commandLine string, options Options) (StartOutput, error) {
	request, err := e.prepare(ambient, h, commandLine, options)
	if err != nil {
		return StartOutput{}, err
	}

	var jobID JobID
	err = e.withTerminalSession(&request, func() error {
		var err error
		jobID, err = e.world.TryStartAsyncExecJob(ctx, request)
		return err
	})
	if err != nil {
		var coded *result.Error
		if !errors.As(err, &coded) {
			err = result.Wrap(result.InternalError, err, "scheduling job")
		}
		return StartOutput{}, err
	}
	e.logger.Debug("job scheduled", "node", request.NodeID, "user", request.UserID, "job", jobID)
	return StartOutput{JobID: jobID, Mode: options.Mode.String()}, nil
}

// prepare validates options, resolves the endpoint and checks
// privilege. Nothing is allocated until it succeeds.
func (e *Engine) prepare(ambient endpoint.Context, h endpoint.Handle, commandLine string, options Options) (Request, error) {
	if strings.TrimSpace(commandLine) == "" {
		return Request{}, result.Invalid("command line is empty")
	}
	if strings.IndexByte(commandLine, 0) >= 0 {
		return Request{}, result.Invalid("command line contains a NUL byte")
	}
	if options.MaxOutputBytes < 0 {
		return Request{}, result.Invalid("maxOutputBytes must be >= 0, got %d", options.MaxOutputBytes)
	}
	if !options.Mode.Valid() {
		return Request{}, result.Invalid("commit mode is not set")
	}

	resolved, err := e.resolver.Resolve(ambient, h)
	if err != nil {
		return Request{}, err
	}
	if !resolved.User.Privilege.Read {
		return Request{}, result.Denied("%s on %s may not run commands", resolved.UserKey, resolved.NodeID)
	}
	return Request{
		NodeID:      resolved.NodeID,
		UserID:      resolved.UserKey,
		Cwd:         resolved.Cwd,
		CommandLine: commandLine,
		Mode:        options.Mode,
	}, nil
}

// withTerminalSession allocates a terminal session into request, runs
// fn, and releases the session exactly once however fn exits. A panic
// in fn becomes InternalError.
func (e *Engine) withTerminalSession(request *Request, fn func() error) (err error) {
	lease := e.acquire()
	request.TerminalSessionID = lease.id
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.Error("command execution panicked",
				"node", request.NodeID,
				"terminal_session", lease.id,
				"panic", fmt.Sprint(recovered),
			)
			err = result.Internal("command execution failed: %v", recovered)
		}
		lease.release()
	}()
	return fn()
}

// terminalLease is one allocated terminal session.
type terminalLease struct {
	world World
	id    TerminalSessionID
	once  sync.Once
}

func (e *Engine) acquire() *terminalLease {
	return &terminalLease{world: e.world, id: e.world.AllocateTerminalSessionID()}
}

func (l *terminalLease) release() {
	l.once.Do(func() {
		l.world.CleanupTerminalSessionConnections(l.id)
	})
}

// failureReason picks the human-readable reason from a failed
// command's output.
func failureReason(lines []string) string {
	if len(lines) == 0 {
		return "command failed"
	}
	first := lines[0]
	if after, found := strings.CutPrefix(first, "error:"); found {
		if reason := strings.TrimSpace(after); reason != "" {
			return reason
		}
	}
	return first
}
