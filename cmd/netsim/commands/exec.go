// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
)

type execParams struct {
	worldParams
	targetParams
	Background     bool  `flag:"background,b" desc:"start the command as a background job"`
	Wait           bool  `flag:"wait" desc:"with --background, wait for the job and print it"`
	MaxOutputBytes int64 `flag:"max-output-bytes" desc:"output cap; 0 is unlimited, -1 the configured limit" default:"-1"`
}

func execCommand(streams IO) *cli.Command {
	var params execParams
	return &cli.Command{
		Name:    "exec",
		Summary: "Run a command line on a simulated node",
		Description: `Run a command line through the simulated shell. A single argument is
used as the command line verbatim, so redirects and quoting survive;
several arguments are quoted back into one line.`,
		Usage: "netsim exec [flags] -- <command line>",
		Examples: []cli.Example{
			{
				Description: "Hop to the database node and list a directory",
				Command:     "netsim exec -s lab.yaml -n gateway -u ana -- 'ssh bob@db ls /srv'",
			},
			{
				Description: "Run a background job and wait for it",
				Command:     "netsim exec -s lab.yaml -n gateway -u ana -b --wait -- 'sleep 1'",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("exec", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("command line required")
			}
			commandLine := args[0]
			if len(args) > 1 {
				commandLine = shellquote.Join(args...)
			}

			verb := "exec.run"
			var options []string
			if params.Background {
				verb = "exec.start"
			} else if params.MaxOutputBytes >= 0 {
				options = append(options, "maxOutputBytes="+strconv.FormatInt(params.MaxOutputBytes, 10))
			}

			return withRuntime(params.worldParams, streams, func(ctx context.Context, rt *runtime) error {
				request, err := rt.request(params.targetParams, []string{commandLine}, options, verb)
				if err != nil {
					return emitError(streams, params.JSON, err)
				}
				return emit(streams, params.JSON, rt.call(ctx, verb, request, params.Wait))
			})
		},
	}
}
