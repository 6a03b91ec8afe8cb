// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/lib/verbs"
	"github.com/bureau-foundation/netsim/lib/world"
)

func verbsCommand(streams IO) *cli.Command {
	return &cli.Command{
		Name:    "verbs",
		Summary: "List the verbs accepted by 'netsim call'",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			registry, closeRegistry, err := describeRegistry()
			if err != nil {
				return err
			}
			defer closeRegistry()
			for _, name := range registry.Names() {
				usage, _ := registry.Describe(name)
				fmt.Fprintln(streams.Out, usage)
			}
			return nil
		},
	}
}

// describeRegistry builds a registry over an empty world, enough to
// list verb declarations without a scenario.
func describeRegistry() (*verbs.Registry, func(), error) {
	w, err := world.New(world.Config{})
	if err != nil {
		return nil, nil, err
	}
	registry, err := newRegistry(w, verbs.Limits{}, nil)
	if err != nil {
		w.Close()
		return nil, nil, err
	}
	return registry, func() { w.Close() }, nil
}
