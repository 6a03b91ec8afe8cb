// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the netsim command tree.
package commands

import (
	"io"
	"os"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
)

// IO carries the streams commands read from and write to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StandardIO returns the process streams.
func StandardIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

func (s IO) printer() *cli.Printer {
	return cli.NewPrinter(s.Out, s.Err)
}

// Root returns the netsim command tree.
func Root(streams IO) *cli.Command {
	return &cli.Command{
		Name:    "netsim",
		Summary: "Simulated network of nodes with virtual filesystems",
		Description: `netsim loads a scenario of nodes, users and files and runs verbs and
command lines against it. Nothing touches the real network or disk
except the scenario, the optional job database and --state snapshots.`,
		Stderr: streams.Err,
		Subcommands: []*cli.Command{
			callCommand(streams),
			execCommand(streams),
			consoleCommand(streams),
			verbsCommand(streams),
			scenarioCommand(streams),
			jobCommand(streams),
			versionCommand(streams),
		},
	}
}
