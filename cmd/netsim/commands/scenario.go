// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/lib/scenario"
	"github.com/bureau-foundation/netsim/lib/world"
)

func scenarioCommand(streams IO) *cli.Command {
	return &cli.Command{
		Name:    "scenario",
		Summary: "Inspect scenario files",
		Subcommands: []*cli.Command{
			scenarioCheckCommand(streams),
		},
	}
}

type scenarioCheckParams struct {
	JSON bool `flag:"json" desc:"print the summary as JSON"`
}

// NodeSummary is one row of 'netsim scenario check'.
type NodeSummary struct {
	ID          string `json:"id"`
	Hostname    string `json:"hostname"`
	Users       int    `json:"users"`
	Directories int    `json:"directories"`
	Files       int    `json:"files"`
}

func scenarioCheckCommand(streams IO) *cli.Command {
	var params scenarioCheckParams
	return &cli.Command{
		Name:    "check",
		Summary: "Validate a scenario and summarize its nodes",
		Description: `Parse the scenario, build every node's base filesystem and register
its users, then print one line per node. Any error is reported with
the node and path it concerns.`,
		Usage: "netsim scenario check <file> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("check", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one scenario file, got %d arguments", len(args))
			}
			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			// Building the world is the full check: base layers and
			// password hashes are only validated there.
			w, err := world.Load(s, world.Config{PasswordCost: bcrypt.MinCost})
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			w.Close()

			summaries := make([]NodeSummary, len(s.Nodes))
			for i, node := range s.Nodes {
				hostname := node.Hostname
				if hostname == "" {
					hostname = node.ID
				}
				summaries[i] = NodeSummary{
					ID:          node.ID,
					Hostname:    hostname,
					Users:       len(node.Users),
					Directories: len(node.Directories),
					Files:       len(node.Files),
				}
			}
			if params.JSON {
				return cli.WriteJSON(streams.Out, summaries)
			}

			tw := tabwriter.NewWriter(streams.Out, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "NODE\tHOSTNAME\tUSERS\tDIRS\tFILES")
			for _, summary := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", summary.ID, summary.Hostname, summary.Users, summary.Directories, summary.Files)
			}
			return tw.Flush()
		},
	}
}
