// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func newTree(called *string, received *[]string) *Command {
	var verbose bool
	return &Command{
		Name:   "netsim",
		Stderr: &bytes.Buffer{},
		Subcommands: []*Command{
			{
				Name:    "call",
				Summary: "Run one verb",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("call", pflag.ContinueOnError)
					flagSet.BoolVarP(&verbose, "verbose", "v", false, "talk more")
					return flagSet
				},
				Run: func(args []string) error {
					*called = "call"
					*received = args
					return nil
				},
			},
			{
				Name:    "job",
				Summary: "Jobs",
				Subcommands: []*Command{
					{
						Name: "list",
						Run: func(args []string) error {
							*called = "job list"
							*received = args
							return nil
						},
					},
				},
			},
		},
	}
}

func TestExecuteDispatches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args     []string
		called   string
		received []string
	}{
		{[]string{"call", "fs.read", "/etc/motd"}, "call", []string{"fs.read", "/etc/motd"}},
		{[]string{"call", "-v", "fs.list"}, "call", []string{"fs.list"}},
		{[]string{"job", "list", "extra"}, "job list", []string{"extra"}},
	}
	for _, test := range tests {
		var called string
		var received []string
		if err := newTree(&called, &received).Execute(test.args); err != nil {
			t.Fatalf("Execute(%v): %v", test.args, err)
		}
		if called != test.called || strings.Join(received, " ") != strings.Join(test.received, " ") {
			t.Errorf("Execute(%v) ran %q with %v, want %q with %v", test.args, called, received, test.called, test.received)
		}
	}
}

func TestExecuteSuggestsCommand(t *testing.T) {
	t.Parallel()
	var called string
	var received []string
	err := newTree(&called, &received).Execute([]string{"cal"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "call"?`) {
		t.Fatalf("Execute(cal) error = %v, want a suggestion of call", err)
	}

	err = newTree(&called, &received).Execute([]string{"zzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("Execute(zzzzzzzz) error = %v, want no suggestion", err)
	}
}

func TestExecuteSuggestsFlag(t *testing.T) {
	t.Parallel()
	var called string
	var received []string
	err := newTree(&called, &received).Execute([]string{"call", "--verbos"})
	if err == nil || !strings.Contains(err.Error(), "did you mean --verbose?") {
		t.Fatalf("error = %v, want suggestion of --verbose", err)
	}
	if called != "" {
		t.Errorf("Run was called after a flag error")
	}
}

func TestExecuteRequiresSubcommand(t *testing.T) {
	t.Parallel()
	var called string
	var received []string
	root := newTree(&called, &received)
	if err := root.Execute(nil); err == nil || err.Error() != "subcommand required" {
		t.Fatalf("error = %v, want subcommand required", err)
	}
	help := root.Stderr.(*bytes.Buffer).String()
	if !strings.Contains(help, "Commands:") || !strings.Contains(help, "Run one verb") {
		t.Errorf("help output missing command listing:\n%s", help)
	}
}

func TestPrintHelp(t *testing.T) {
	t.Parallel()
	var called string
	var received []string
	root := newTree(&called, &received)
	call := root.Subcommands[0]
	call.parent = root
	call.Examples = []Example{{Description: "Read a file", Command: "netsim call fs.read /etc/motd"}}

	var buffer bytes.Buffer
	call.PrintHelp(&buffer)
	help := buffer.String()
	for _, want := range []string{"Usage:\n  netsim call [flags]", "--verbose", "# Read a file", "netsim call fs.read /etc/motd"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"call", "call", 0},
		{"call", "cal", 1},
		{"exec", "exce", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
		if got := levenshtein(test.b, test.a); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.b, test.a, got, test.want)
		}
	}
}

func TestClosest(t *testing.T) {
	t.Parallel()
	candidates := []string{"fs.read", "fs.list", "exec.run"}
	if got := Closest("fs.raed", candidates); got != "fs.read" {
		t.Errorf("Closest(fs.raed) = %q, want fs.read", got)
	}
	if got := Closest("session.login", candidates); got != "" {
		t.Errorf("Closest(session.login) = %q, want none", got)
	}
}
