// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/verbs"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

type consoleParams struct {
	worldParams
	contextParams
	DryRun bool `flag:"dry-run" desc:"start with mutations going to throwaway forks"`
	JSON   bool `flag:"json" desc:"print every result as a JSON envelope"`
}

const consoleHelp = `Lines are command lines for the simulated shell, run in the current
context. Lines starting with ':' are directives:

  :login <node> <user> <password>   open a session and route through it
  :logout                           close the innermost session
  :dry-run on|off                   toggle throwaway mutations
  :wait <job-id>                    wait for a background job and print it
  :verbs                            list verbs
  :<verb> [args...] [--key=value]   call a verb, e.g. :fs.stat /etc/motd
  :help                             show this text
  :quit                             leave the console
`

func consoleCommand(streams IO) *cli.Command {
	var params consoleParams
	return &cli.Command{
		Name:    "console",
		Summary: "Interactive session against a loaded world",
		Description: `Read lines from stdin and run them against one world that lives for
the whole console, so sessions and background jobs persist between
lines.

` + consoleHelp,
		Examples: []cli.Example{
			{
				Description: "Explore the lab as ana",
				Command:     "netsim console -s lab.yaml -n gateway -u ana",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("console", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return withRuntime(params.worldParams, streams, func(ctx context.Context, rt *runtime) error {
				ambient, err := params.ambient(rt.world)
				if err != nil {
					return err
				}
				c := &console{
					rt:          rt,
					streams:     streams,
					ambient:     ambient,
					mode:        vfs.Real,
					json:        params.JSON,
					interactive: cli.IsTerminal(streams.In),
				}
				if params.DryRun {
					c.mode = vfs.DryRun
				}
				return c.loop(ctx)
			})
		},
	}
}

// console holds the state carried between lines: the open sessions,
// innermost last, and the commit mode.
type console struct {
	rt          *runtime
	streams     IO
	ambient     endpoint.Context
	hops        []identity.Session
	mode        vfs.CommitMode
	json        bool
	interactive bool
}

func (c *console) loop(ctx context.Context) error {
	scanner := bufio.NewScanner(c.streams.In)
	for {
		if c.interactive {
			fmt.Fprint(c.streams.Out, c.prompt())
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := c.handle(ctx, line)
		if err != nil {
			fmt.Fprintf(c.streams.Err, "error: %v\n", err)
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func (c *console) prompt() string {
	suffix := "> "
	if c.mode == vfs.DryRun {
		suffix = "(dry-run)> "
	}
	if len(c.hops) > 0 {
		last := c.hops[len(c.hops)-1]
		return last.UserID + "@" + last.NodeID + " " + suffix
	}
	if !c.ambient.IsZero() {
		return c.ambient.UserID + "@" + c.ambient.NodeID + " " + suffix
	}
	return "netsim" + suffix
}

// handle runs one line and reports whether the console should exit.
func (c *console) handle(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		return false, c.callVerb(ctx, "exec.run", []string{line}, nil)
	}
	words, err := shellquote.Split(line[1:])
	if err != nil {
		return false, err
	}
	if len(words) == 0 {
		return false, errors.New("empty directive; try :help")
	}

	switch directive, args := words[0], words[1:]; directive {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprint(c.streams.Out, consoleHelp)
	case "verbs":
		for _, name := range c.rt.registry.Names() {
			usage, _ := c.rt.registry.Describe(name)
			fmt.Fprintln(c.streams.Out, usage)
		}
	case "login":
		return false, c.login(ctx, args)
	case "logout":
		return false, c.logout()
	case "dry-run":
		return false, c.setDryRun(args)
	case "wait":
		if len(args) != 1 {
			return false, errors.New("usage: :wait <job-id>")
		}
		if _, err := c.rt.world.WaitJob(ctx, execengine.JobID(args[0])); err != nil {
			return false, err
		}
		return false, c.callVerb(ctx, "job.get", args, nil)
	default:
		var positional, options []string
		for _, word := range args {
			if option, ok := strings.CutPrefix(word, "--"); ok && strings.Contains(option, "=") {
				options = append(options, option)
				continue
			}
			positional = append(positional, word)
		}
		return false, c.callVerb(ctx, directive, positional, options)
	}
	return false, nil
}

// handleValue returns the current session or route, or nil with no open
// sessions.
func (c *console) handleValue() (any, error) {
	switch len(c.hops) {
	case 0:
		return nil, nil
	case 1:
		return c.hops[0], nil
	default:
		return c.rt.world.Route(c.hops...)
	}
}

func (c *console) request(verb string, args, rawOptions []string) (verbs.Request, error) {
	handle, err := c.handleValue()
	if err != nil {
		return verbs.Request{}, err
	}
	pairs, err := splitOptions(rawOptions)
	if err != nil {
		return verbs.Request{}, err
	}
	options, err := c.rt.registry.ParseOptions(verb, pairs)
	if err != nil {
		return verbs.Request{}, err
	}
	return verbs.Request{Context: c.ambient, Handle: handle, Mode: c.mode, Args: args, Options: options}, nil
}

func (c *console) callVerb(ctx context.Context, verb string, args, rawOptions []string) error {
	request, err := c.request(verb, args, rawOptions)
	if err != nil {
		return c.show(result.Failure(err))
	}
	return c.show(c.rt.registry.Call(ctx, verb, request))
}

// show prints envelope. A failed envelope is already reported, so it
// is not an error for the loop.
func (c *console) show(envelope result.Envelope) error {
	var err error
	if c.json {
		err = cli.WriteJSON(c.streams.Out, envelope)
	} else {
		err = c.streams.printer().Envelope(envelope)
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func (c *console) login(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: :login <node> <user> <password>")
	}
	envelope := c.rt.registry.Call(ctx, "session.login", verbs.Request{Args: args})
	if !envelope.OK {
		return c.show(envelope)
	}
	handle, _ := envelope.Data.(map[string]any)
	session, err := identity.SessionFromMap(handle)
	if err != nil {
		return err
	}
	c.hops = append(c.hops, session)
	fmt.Fprintf(c.streams.Out, "logged in as %s@%s (%s)\n", session.UserID, session.NodeID, session.ID)
	return nil
}

func (c *console) logout() error {
	if len(c.hops) == 0 {
		return errors.New("no open session")
	}
	last := c.hops[len(c.hops)-1]
	c.hops = c.hops[:len(c.hops)-1]
	c.rt.world.CloseSession(last.ID)
	fmt.Fprintf(c.streams.Out, "closed %s@%s\n", last.UserID, last.NodeID)
	return nil
}

func (c *console) setDryRun(args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return errors.New("usage: :dry-run on|off")
	}
	c.mode = vfs.Real
	if args[0] == "on" {
		c.mode = vfs.DryRun
	}
	return nil
}
