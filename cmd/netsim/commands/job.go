// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/lib/jobstore"
	"github.com/bureau-foundation/netsim/lib/verbs"
)

func jobCommand(streams IO) *cli.Command {
	return &cli.Command{
		Name:    "job",
		Summary: "Inspect the background job database",
		Description: `Read jobs recorded by earlier runs. Jobs are only recorded across runs
when the configuration sets jobs.database.`,
		Subcommands: []*cli.Command{
			jobListCommand(streams),
			jobShowCommand(streams),
		},
	}
}

// databaseParams locate the job database.
type databaseParams struct {
	Config   string `flag:"config,c" desc:"configuration file (default: $NETSIM_CONFIG, else built-in defaults)"`
	Database string `flag:"database" desc:"job database file (overrides jobs.database)"`
}

func (p databaseParams) open() (*jobstore.Store, error) {
	path := p.Database
	if path == "" {
		cfg, err := loadConfig(p.Config)
		if err != nil {
			return nil, err
		}
		path = cfg.Jobs.Database
	}
	if path == "" {
		return nil, fmt.Errorf("no job database: pass --database or set jobs.database in the configuration")
	}
	return jobstore.Open(jobstore.Config{Path: path})
}

type jobListParams struct {
	databaseParams
	Node  string `flag:"node,n" desc:"only jobs on this node"`
	State string `flag:"state" desc:"only jobs in this state (pending, running, completed, failed)"`
	Limit int    `flag:"limit" desc:"maximum number of jobs" default:"100"`
	JSON  bool   `flag:"json" desc:"print jobs as JSON"`
}

func jobListCommand(streams IO) *cli.Command {
	var params jobListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List recorded jobs, oldest first",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			filter := jobstore.Filter{NodeID: params.Node, Limit: params.Limit}
			if params.State != "" {
				state, err := jobstore.ParseState(params.State)
				if err != nil {
					return err
				}
				filter.State = state
			}

			store, err := params.open()
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.List(context.Background(), filter)
			if err != nil {
				return err
			}
			infos := make([]verbs.JobInfo, len(jobs))
			for i, job := range jobs {
				infos[i] = verbs.NewJobInfo(job)
			}
			if params.JSON {
				return cli.WriteJSON(streams.Out, infos)
			}

			tw := tabwriter.NewWriter(streams.Out, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "JOB\tNODE\tUSER\tSTATE\tRESULT\tCOMMAND")
			for i, job := range jobs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", job.ID, job.NodeID, job.UserID, job.State, outcome(infos[i]), job.CommandLine)
			}
			return tw.Flush()
		},
	}
}

// outcome is the RESULT column: the exit code, the error code, or "-"
// while the job is live.
func outcome(info verbs.JobInfo) string {
	switch {
	case info.ExitCode != nil:
		return fmt.Sprintf("exit %d", *info.ExitCode)
	case info.ErrorCode != "":
		return info.ErrorCode
	default:
		return "-"
	}
}

type jobShowParams struct {
	databaseParams
	JSON bool `flag:"json" desc:"print the job as JSON"`
}

func jobShowCommand(streams IO) *cli.Command {
	var params jobShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Print one job and its output",
		Usage:   "netsim job show <job-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one job id, got %d arguments", len(args))
			}
			store, err := params.open()
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.Get(context.Background(), strings.TrimSpace(args[0]))
			if jobstore.IsNotFound(err) {
				return fmt.Errorf("job %q not found", args[0])
			}
			if err != nil {
				return err
			}
			info := verbs.NewJobInfo(job)
			if params.JSON {
				return cli.WriteJSON(streams.Out, info)
			}
			return streams.printer().Data(info)
		},
	}
}
