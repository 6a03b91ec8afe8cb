// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// netsim runs verbs and command lines against a simulated network of
// nodes described by a scenario file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/cmd/netsim/commands"
)

func main() {
	if err := run(); err != nil {
		// Failed verbs have already been printed.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root(commands.StandardIO()).Execute(os.Args[1:])
}
