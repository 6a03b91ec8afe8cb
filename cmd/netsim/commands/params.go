// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/vfs"
	"github.com/bureau-foundation/netsim/lib/world"
)

// worldParams select the configuration and scenario.
type worldParams struct {
	Config   string `flag:"config,c" desc:"configuration file (default: $NETSIM_CONFIG, else built-in defaults)"`
	Scenario string `flag:"scenario,s" desc:"scenario file, .yaml or .jsonc (overrides the configured scenario)"`
	State    string `flag:"state" desc:"directory of node snapshots, restored before and saved after the command"`
}

// contextParams are the ambient execution context.
type contextParams struct {
	Node string `flag:"node,n" desc:"node the command runs on"`
	User string `flag:"user,u" desc:"user the command runs as"`
	Cwd  string `flag:"cwd" desc:"working directory (default: the user's home)"`
}

// ambient returns the execution context, or the zero Context when no
// node and user are given.
func (p contextParams) ambient(w *world.World) (endpoint.Context, error) {
	if p.Node == "" && p.User == "" {
		if p.Cwd != "" {
			return endpoint.Context{}, fmt.Errorf("--cwd requires --node and --user")
		}
		return endpoint.Context{}, nil
	}
	if p.Node == "" || p.User == "" {
		return endpoint.Context{}, fmt.Errorf("--node and --user must be given together")
	}
	cwd := p.Cwd
	if cwd == "" {
		cwd = "/"
		if user, ok := w.User(p.Node, p.User); ok {
			cwd = user.Home
		}
	}
	return endpoint.Context{NodeID: p.Node, UserID: p.User, Cwd: cwd}, nil
}

// targetParams pick where and how a verb runs.
type targetParams struct {
	contextParams
	Handle string `flag:"handle" desc:"session or route handle as JSON, as printed by session.login"`
	DryRun bool   `flag:"dry-run" desc:"run mutating verbs against a throwaway fork"`
	JSON   bool   `flag:"json" desc:"print the result envelope as JSON"`
}

func (p targetParams) mode() vfs.CommitMode {
	if p.DryRun {
		return vfs.DryRun
	}
	return vfs.Real
}

// handle decodes --handle. An empty flag is no handle.
func (p targetParams) handle() (any, error) {
	if p.Handle == "" {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal([]byte(p.Handle), &value); err != nil {
		return nil, fmt.Errorf("--handle: %w", err)
	}
	return value, nil
}

// splitOptions turns key=value pairs into a map.
func splitOptions(pairs []string) (map[string]string, error) {
	options := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("option %q: want key=value", pair)
		}
		options[key] = value
	}
	return options, nil
}
