// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// builtin runs one shell command at a location.
type builtin func(sh *shell, at location, args []string) ([]string, error)

func lookupBuiltin(name string) (builtin, bool) {
	switch name {
	case "pwd":
		return builtinPwd, true
	case "whoami":
		return builtinWhoami, true
	case "hostname":
		return builtinHostname, true
	case "echo":
		return builtinEcho, true
	case "ls":
		return builtinLs, true
	case "cat":
		return builtinCat, true
	case "stat":
		return builtinStat, true
	case "mkdir":
		return builtinMkdir, true
	case "touch":
		return builtinTouch, true
	case "rm":
		return builtinRm, true
	case "write":
		return builtinWrite, true
	case "sleep":
		return builtinSleep, true
	}
	return nil, false
}

// KnownProgram reports whether name is a shell built-in.
func KnownProgram(name string) bool {
	if name == "ssh" {
		return true
	}
	_, ok := lookupBuiltin(name)
	return ok
}

func builtinPwd(_ *shell, at location, args []string) ([]string, error) {
	if len(args) != 0 {
		return nil, result.Invalid("usage: pwd")
	}
	return []string{at.cwd}, nil
}

func builtinWhoami(_ *shell, at location, args []string) ([]string, error) {
	if len(args) != 0 {
		return nil, result.Invalid("usage: whoami")
	}
	return []string{at.user.Name}, nil
}

func builtinHostname(_ *shell, at location, args []string) ([]string, error) {
	if len(args) != 0 {
		return nil, result.Invalid("usage: hostname")
	}
	return []string{at.node.hostname}, nil
}

func builtinEcho(_ *shell, _ location, args []string) ([]string, error) {
	return []string{strings.Join(args, " ")}, nil
}

// builtinLs lists a directory, one name per line, directories with a
// trailing slash. A file operand lists itself.
func builtinLs(sh *shell, at location, args []string) ([]string, error) {
	operands := args
	if len(operands) == 0 {
		operands = []string{"."}
	}
	view := sh.fs(at.node).View()
	var lines []string
	for _, operand := range operands {
		p, err := at.path(operand)
		if err != nil {
			return nil, err
		}
		entry, err := view.ResolveEntry(p)
		if err != nil {
			return nil, result.Missing("ls: %s: no such file or directory", operand)
		}
		if !entry.IsDir() {
			lines = append(lines, entry.Name())
			continue
		}
		children, err := view.List(p)
		if err != nil {
			return nil, vfs.CodeError(err)
		}
		if len(operands) > 1 {
			lines = append(lines, p+":")
		}
		for _, child := range children {
			if child.IsDir() {
				lines = append(lines, child.Name()+"/")
			} else {
				lines = append(lines, child.Name())
			}
		}
	}
	return lines, nil
}

// builtinCat prints text files line by line.
func builtinCat(sh *shell, at location, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, result.Invalid("usage: cat path...")
	}
	view := sh.fs(at.node).View()
	var lines []string
	for _, operand := range args {
		p, err := at.path(operand)
		if err != nil {
			return nil, err
		}
		text, err := view.ReadFileText(p)
		if err != nil {
			return nil, vfs.CodeError(err)
		}
		if text == "" {
			continue
		}
		lines = append(lines, strings.Split(strings.TrimSuffix(text, "\n"), "\n")...)
	}
	return lines, nil
}

func builtinStat(sh *shell, at location, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, result.Invalid("usage: stat path...")
	}
	view := sh.fs(at.node).View()
	lines := make([]string, 0, len(args))
	for _, operand := range args {
		p, err := at.path(operand)
		if err != nil {
			return nil, err
		}
		entry, err := view.ResolveEntry(p)
		if err != nil {
			return nil, vfs.CodeError(err)
		}
		if entry.IsDir() {
			lines = append(lines, fmt.Sprintf("%s: directory", p))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s file, %d bytes, %s", p, entry.FileKind, entry.Size, entry.ContentID.Short()))
	}
	return lines, nil
}

// builtinMkdir creates directories. Without -p the parent must exist
// and the directory must not.
func builtinMkdir(sh *shell, at location, args []string) ([]string, error) {
	parents := false
	if len(args) > 0 && args[0] == "-p" {
		parents, args = true, args[1:]
	}
	if len(args) == 0 {
		return nil, result.Invalid("usage: mkdir [-p] path...")
	}
	if err := at.requireWrite(); err != nil {
		return nil, err
	}
	paths, err := resolveAll(at, args)
	if err != nil {
		return nil, err
	}
	return nil, sh.fs(at.node).Update(func(tx *vfs.Txn) error {
		for _, p := range paths {
			if parents {
				for _, ancestor := range append(vpath.Ancestors(p), p) {
					entry, err := tx.ResolveEntry(ancestor)
					if err == nil && !entry.IsDir() {
						return result.New(result.NotDirectory, "mkdir: %s: not a directory", ancestor)
					}
					if err := tx.AddDirectory(ancestor); err != nil {
						return vfs.CodeError(err)
					}
				}
				continue
			}
			if existing, err := tx.ResolveEntry(p); err == nil {
				return result.New(result.AlreadyExists, "mkdir: %s: %s exists", p, existing.Kind)
			}
			parent, err := tx.ResolveEntry(vpath.Parent(p))
			if err != nil {
				return result.Missing("mkdir: %s: no such file or directory", vpath.Parent(p))
			}
			if !parent.IsDir() {
				return result.New(result.NotDirectory, "mkdir: %s: not a directory", parent.Path)
			}
			if err := tx.AddDirectory(p); err != nil {
				return vfs.CodeError(err)
			}
		}
		return nil
	})
}

// builtinTouch creates empty text files. Existing entries are left
// alone.
func builtinTouch(sh *shell, at location, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, result.Invalid("usage: touch path...")
	}
	if err := at.requireWrite(); err != nil {
		return nil, err
	}
	paths, err := resolveAll(at, args)
	if err != nil {
		return nil, err
	}
	return nil, sh.fs(at.node).Update(func(tx *vfs.Txn) error {
		for _, p := range paths {
			if _, err := tx.ResolveEntry(p); err == nil {
				continue
			}
			if err := writeText(tx, p, ""); err != nil {
				return err
			}
		}
		return nil
	})
}

// builtinRm deletes files and empty directories.
func builtinRm(sh *shell, at location, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, result.Invalid("usage: rm path...")
	}
	if err := at.requireWrite(); err != nil {
		return nil, err
	}
	paths, err := resolveAll(at, args)
	if err != nil {
		return nil, err
	}
	return nil, sh.fs(at.node).Update(func(tx *vfs.Txn) error {
		for _, p := range paths {
			if vpath.IsRoot(p) {
				return result.Invalid("rm: refusing to remove /")
			}
			if err := tx.AddTombstone(p); err != nil {
				return vfs.CodeError(err)
			}
		}
		return nil
	})
}

// builtinWrite replaces a text file with the remaining arguments
// joined by spaces.
func builtinWrite(sh *shell, at location, args []string) ([]string, error) {
	if len(args) < 1 {
		return nil, result.Invalid("usage: write path [text...]")
	}
	if err := at.requireWrite(); err != nil {
		return nil, err
	}
	p, err := at.path(args[0])
	if err != nil {
		return nil, err
	}
	text := strings.Join(args[1:], " ")
	return nil, sh.fs(at.node).Update(func(tx *vfs.Txn) error {
		return writeText(tx, p, text)
	})
}

// builtinSleep waits on the world clock. The operand is a Go duration
// ("250ms") or a number of seconds.
func builtinSleep(sh *shell, _ location, args []string) ([]string, error) {
	if len(args) != 1 {
		return nil, result.Invalid("usage: sleep duration")
	}
	duration, err := parseSleep(args[0])
	if err != nil {
		return nil, err
	}
	select {
	case <-sh.world.clock.After(duration):
		return nil, nil
	case <-sh.ctx.Done():
		return nil, result.Wrap(result.InternalError, sh.ctx.Err(), "sleep interrupted")
	}
}

func parseSleep(operand string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(operand, 64); err == nil {
		if seconds < 0 {
			return 0, result.Invalid("sleep: negative duration %q", operand)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	duration, err := time.ParseDuration(operand)
	if err != nil {
		return 0, result.Invalid("sleep: invalid duration %q", operand)
	}
	if duration < 0 {
		return 0, result.Invalid("sleep: negative duration %q", operand)
	}
	return duration, nil
}

func resolveAll(at location, operands []string) ([]string, error) {
	paths := make([]string, len(operands))
	for index, operand := range operands {
		p, err := at.path(operand)
		if err != nil {
			return nil, err
		}
		paths[index] = p
	}
	return paths, nil
}
