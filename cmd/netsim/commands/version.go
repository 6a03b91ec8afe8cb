// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/lib/version"
)

type versionParams struct {
	Short bool `flag:"short" desc:"print only the version number"`
	JSON  bool `flag:"json" desc:"print version fields as JSON"`
}

func versionCommand(streams IO) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(args []string) error {
			switch {
			case params.JSON:
				return cli.WriteJSON(streams.Out, map[string]any{
					"version":   version.Version,
					"commit":    version.Commit(),
					"buildTime": version.BuildTime,
				})
			case params.Short:
				fmt.Fprintln(streams.Out, version.Short())
			default:
				fmt.Fprintln(streams.Out, version.Full())
			}
			return nil
		},
	}
}
