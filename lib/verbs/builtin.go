// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package verbs

import (
	"context"
	"time"

	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/fsops"
	"github.com/bureau-foundation/netsim/lib/jobstore"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

// Option keys.
const (
	optionMaxBytes       = "maxBytes"
	optionOverwrite      = "overwrite"
	optionCreateParents  = "createParents"
	optionFileKind       = "fileKind"
	optionMaxOutputBytes = "maxOutputBytes"
)

func (r *Registry) builtinVerbs() []*verb {
	return []*verb{
		{
			name:        "fs.list",
			description: "list a directory's children in overlay order",
			args:        []string{"path"},
			run:         fsList,
		},
		{
			name:        "fs.read",
			description: "read a text file",
			args:        []string{"path"},
			minArgs:     1,
			options:     map[string]optionKind{optionMaxBytes: optionInt},
			run:         fsRead,
		},
		{
			name:        "fs.write",
			description: "create or replace a file",
			args:        []string{"path", "content"},
			minArgs:     2,
			options: map[string]optionKind{
				optionOverwrite:     optionBool,
				optionCreateParents: optionBool,
				optionFileKind:      optionString,
				optionMaxBytes:      optionInt,
			},
			mutates: true,
			run:     fsWrite,
		},
		{
			name:        "fs.delete",
			description: "delete a file or empty directory",
			args:        []string{"path"},
			minArgs:     1,
			mutates:     true,
			run:         fsDelete,
		},
		{
			name:        "fs.stat",
			description: "describe an entry",
			args:        []string{"path"},
			minArgs:     1,
			run:         fsStat,
		},
		{
			name:        "exec.run",
			description: "run a command line and wait for its output",
			args:        []string{"command"},
			minArgs:     1,
			options:     map[string]optionKind{optionMaxOutputBytes: optionInt},
			mutates:     true,
			run:         execRun,
		},
		{
			name:        "exec.start",
			description: "schedule a command line as a background job",
			args:        []string{"command"},
			minArgs:     1,
			mutates:     true,
			run:         execStart,
		},
		{
			name:        "job.get",
			description: "report a background job's state and output",
			args:        []string{"jobId"},
			minArgs:     1,
			run:         jobGet,
		},
		{
			name:        "session.login",
			description: "log into a node and return a session handle",
			args:        []string{"node", "user", "password"},
			minArgs:     3,
			run:         sessionLogin,
		},
	}
}

func fsList(_ context.Context, c *call) (any, error) {
	p := c.arg(0)
	if p == "" {
		p = "."
	}
	return c.registry.deps.FS.List(c.ambient, c.handle, p)
}

func fsRead(_ context.Context, c *call) (any, error) {
	maxBytes := c.intOption(optionMaxBytes, c.registry.deps.Limits.MaxReadBytes)
	return c.registry.deps.FS.Read(c.ambient, c.handle, c.arg(0), fsops.ReadOptions{MaxBytes: maxBytes})
}

func fsWrite(_ context.Context, c *call) (any, error) {
	kind := vfs.FileText
	if name := c.stringOption(optionFileKind); name != "" {
		parsed, err := vfs.ParseFileKind(name)
		if err != nil {
			return nil, &result.Error{Code: result.InvalidArgs, Reason: err.Error(), Cause: err}
		}
		kind = parsed
	}
	return c.registry.deps.FS.Write(c.ambient, c.handle, c.arg(0), c.arg(1), fsops.WriteOptions{
		Overwrite:     c.boolOption(optionOverwrite),
		CreateParents: c.boolOption(optionCreateParents),
		FileKind:      kind,
		MaxBytes:      c.intOption(optionMaxBytes, c.registry.deps.Limits.MaxWriteBytes),
		Mode:          c.mode,
	})
}

func fsDelete(_ context.Context, c *call) (any, error) {
	return c.registry.deps.FS.Delete(c.ambient, c.handle, c.arg(0), fsops.DeleteOptions{Mode: c.mode})
}

func fsStat(_ context.Context, c *call) (any, error) {
	return c.registry.deps.FS.Stat(c.ambient, c.handle, c.arg(0))
}

func execRun(ctx context.Context, c *call) (any, error) {
	return c.registry.deps.Engine.Run(ctx, c.ambient, c.handle, c.arg(0), execengine.Options{
		MaxOutputBytes: c.intOption(optionMaxOutputBytes, c.registry.deps.Limits.MaxOutputBytes),
		Mode:           c.mode,
	})
}

func execStart(ctx context.Context, c *call) (any, error) {
	return c.registry.deps.Engine.Start(ctx, c.ambient, c.handle, c.arg(0), execengine.Options{Mode: c.mode})
}

// JobInfo is the job.get payload.
type JobInfo struct {
	JobID      string     `json:"jobId"`
	State      string     `json:"state"`
	ExitCode   *int       `json:"exitCode,omitempty"`
	ErrorCode  string     `json:"errorCode,omitempty"`
	Output     []string   `json:"output"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func jobGet(ctx context.Context, c *call) (any, error) {
	job, err := c.registry.deps.Jobs.Job(ctx, execengine.JobID(c.arg(0)))
	if err != nil {
		return nil, err
	}
	return NewJobInfo(job), nil
}

// NewJobInfo converts a ledger row. ExitCode and FinishedAt are set
// only once the job is terminal; ExitCode only when it completed.
func NewJobInfo(job jobstore.Job) JobInfo {
	info := JobInfo{
		JobID:     job.ID,
		State:     string(job.State),
		ErrorCode: job.ErrorCode,
		Output:    job.Output,
		CreatedAt: job.CreatedAt,
	}
	if info.Output == nil {
		info.Output = []string{}
	}
	if job.State.Terminal() {
		finished := job.FinishedAt
		info.FinishedAt = &finished
		if job.ErrorCode == "" {
			exitCode := job.ExitCode
			info.ExitCode = &exitCode
		}
	}
	return info
}

// sessionLogin returns the session as a handle map, ready to pass back
// as a Request.Handle.
func sessionLogin(_ context.Context, c *call) (any, error) {
	session, err := c.registry.deps.Sessions.Login(c.arg(0), c.arg(1), c.arg(2))
	if err != nil {
		return nil, err
	}
	return session.ToMap(), nil
}
