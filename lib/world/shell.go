// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"context"
	"errors"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// maxHops bounds nested ssh commands on one command line.
const maxHops = 16

// ExecuteSystemCall implements execengine.World.
func (w *World) ExecuteSystemCall(ctx context.Context, request execengine.Request) execengine.Result {
	if !request.Mode.Valid() {
		return failure(result.Internal("invalid commit mode %d", request.Mode))
	}
	node, ok := w.Node(request.NodeID)
	if !ok {
		return failure(result.Internal("node %q does not exist", request.NodeID))
	}
	user, ok := w.User(request.NodeID, request.UserID)
	if !ok {
		return failure(result.Internal("user %q does not exist on %s", request.UserID, request.NodeID))
	}

	sh := &shell{
		world:    w,
		ctx:      ctx,
		terminal: request.TerminalSessionID,
		mode:     request.Mode,
		forks:    map[string]*vfs.Overlay{},
	}
	lines, err := sh.run(location{node: node, user: user, cwd: request.Cwd}, request.CommandLine, 0)
	if err != nil {
		w.logger.Debug("command failed",
			"node", request.NodeID,
			"user", request.UserID,
			"terminal", request.TerminalSessionID,
			"code", result.CodeOf(err),
			"error", err,
		)
		return failure(err)
	}
	return execengine.Result{OK: true, Code: result.None, Lines: lines}
}

// failure renders err the way a shell prints it.
func failure(err error) execengine.Result {
	return execengine.Result{OK: false, Code: result.CodeOf(err), Lines: []string{"error: " + err.Error()}}
}

// shell is one command line's execution state.
type shell struct {
	world    *World
	ctx      context.Context
	terminal execengine.TerminalSessionID
	mode     vfs.CommitMode

	// forks holds the dry-run overlay of each node touched so far.
	forks map[string]*vfs.Overlay
}

// location is where a (possibly nested) command runs.
type location struct {
	node *Node
	user identity.UserConfig
	cwd  string
}

func (l location) path(expr string) (string, error) {
	p, err := vpath.Resolve(l.cwd, l.user.Home, expr)
	if err != nil {
		return "", &result.Error{Code: result.InvalidArgs, Reason: err.Error(), Cause: err}
	}
	return p, nil
}

func (l location) requireWrite() error {
	if !l.user.Privilege.Write {
		return result.Denied("%s on %s lacks write privilege", l.user.Name, l.node.id)
	}
	return nil
}

// fs returns the overlay commands at node operate on.
func (sh *shell) fs(node *Node) *vfs.Overlay {
	if sh.mode == vfs.Real {
		return node.fs
	}
	fork, ok := sh.forks[node.id]
	if !ok {
		fork = sh.mode.Target(node.fs)
		sh.forks[node.id] = fork
	}
	return fork
}

// run parses and executes one command line at at.
func (sh *shell) run(at location, commandLine string, depth int) ([]string, error) {
	if depth > maxHops {
		return nil, result.Invalid("too many nested ssh hops")
	}
	words, err := shellquote.Split(commandLine)
	if err != nil {
		return nil, &result.Error{Code: result.InvalidArgs, Reason: "parsing command line: " + err.Error(), Cause: err}
	}
	if len(words) == 0 {
		return nil, result.Invalid("empty command line")
	}
	if err := sh.ctx.Err(); err != nil {
		return nil, result.Wrap(result.InternalError, err, "command interrupted")
	}

	name, args := words[0], words[1:]
	if name == "ssh" {
		// The remote command's redirects belong to the remote node.
		return sh.ssh(at, args, depth)
	}
	builtin, ok := lookupBuiltin(name)
	if !ok {
		return nil, result.Missing("%s: command not found", name)
	}

	args, redirect, err := splitRedirect(args)
	if err != nil {
		return nil, err
	}
	lines, err := builtin(sh, at, args)
	if err != nil {
		return nil, err
	}
	if redirect.target == "" {
		return lines, nil
	}
	return nil, sh.redirectOutput(at, redirect, lines)
}

type redirect struct {
	target string
	append bool
}

// splitRedirect strips a trailing "> path" or ">> path".
func splitRedirect(args []string) ([]string, redirect, error) {
	for index, arg := range args {
		if arg != ">" && arg != ">>" {
			continue
		}
		if index != len(args)-2 {
			return nil, redirect{}, result.Invalid("%s must be followed by exactly one path at the end of the command", arg)
		}
		return args[:index], redirect{target: args[index+1], append: arg == ">>"}, nil
	}
	return args, redirect{}, nil
}

func (sh *shell) redirectOutput(at location, r redirect, lines []string) error {
	if err := at.requireWrite(); err != nil {
		return err
	}
	p, err := at.path(r.target)
	if err != nil {
		return err
	}
	var text strings.Builder
	for _, line := range lines {
		text.WriteString(line)
		text.WriteByte('\n')
	}
	return sh.fs(at.node).Update(func(tx *vfs.Txn) error {
		if r.append {
			existing, err := tx.View().ReadFileText(p)
			switch {
			case err == nil:
				return writeText(tx, p, existing+text.String())
			case !errors.Is(err, vfs.ErrNotFound):
				return vfs.CodeError(err)
			}
		}
		return writeText(tx, p, text.String())
	})
}

// writeText creates or replaces the text file at p, reporting a
// missing parent as NotFound.
func writeText(tx *vfs.Txn, p, text string) error {
	if vpath.IsRoot(p) {
		return result.New(result.IsDirectory, "/: is a directory")
	}
	parent, err := tx.ResolveEntry(vpath.Parent(p))
	if err != nil {
		return vfs.CodeError(err)
	}
	if !parent.IsDir() {
		return result.New(result.NotDirectory, "%s: not a directory", parent.Path)
	}
	_, err = tx.WriteFile(p, []byte(text), vfs.FileText)
	return vfs.CodeError(err)
}

// ssh logs into another node, records the connection on the terminal
// session, and runs the rest of the line there from the user's home.
func (sh *shell) ssh(at location, args []string, depth int) ([]string, error) {
	if len(args) < 2 {
		return nil, result.Invalid("usage: ssh user@node password [command...]")
	}
	userID, nodeID, ok := strings.Cut(args[0], "@")
	if !ok || userID == "" || nodeID == "" {
		return nil, result.Invalid("ssh: %q is not user@node", args[0])
	}
	session, err := sh.world.Login(nodeID, userID, args[1])
	if err != nil {
		return nil, err
	}
	if !sh.world.terminals.connect(sh.terminal, session.ID) {
		sh.world.CloseSession(session.ID)
		return nil, result.Internal("terminal session %s is not open", sh.terminal)
	}

	node, _ := sh.world.Node(nodeID)
	user, ok := sh.world.User(nodeID, userID)
	if node == nil || !ok {
		return nil, result.Internal("ssh: %s@%s vanished after login", userID, nodeID)
	}
	if !user.Privilege.Read {
		return nil, result.Denied("%s on %s lacks read privilege", userID, nodeID)
	}
	remote := location{node: node, user: user, cwd: session.Cwd}
	if len(args) == 2 {
		return []string{"Connected to " + node.hostname + "."}, nil
	}
	return sh.run(remote, shellquote.Join(args[2:]...), depth+1)
}
