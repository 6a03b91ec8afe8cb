// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/netsim/lib/clock"
	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

// runAs executes commandLine on gateway as user from cwd.
func runAs(t *testing.T, world *World, user, cwd string, mode vfs.CommitMode, commandLine string) execengine.Result {
	t.Helper()
	terminal := world.AllocateTerminalSessionID()
	defer world.CleanupTerminalSessionConnections(terminal)
	return world.ExecuteSystemCall(context.Background(), execengine.Request{
		NodeID:            "gateway",
		UserID:            user,
		Cwd:               cwd,
		CommandLine:       commandLine,
		TerminalSessionID: terminal,
		Mode:              mode,
	})
}

// mustRun runs as ana in Real mode and fails the test unless the
// command succeeds.
func mustRun(t *testing.T, world *World, commandLine string) []string {
	t.Helper()
	outcome := runAs(t, world, "ana", "/home/ana", vfs.Real, commandLine)
	if !outcome.OK {
		t.Fatalf("%q failed with %s: %q", commandLine, outcome.Code, outcome.Lines)
	}
	return outcome.Lines
}

func TestShellBuiltins(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	tests := []struct {
		command string
		want    []string
	}{
		{"pwd", []string{"/home/ana"}},
		{"whoami", []string{"ana"}},
		{"hostname", []string{"gw.lab"}},
		{"echo 'hello  world' again", []string{"hello  world again"}},
		{"echo", []string{""}},
		{"ls /", []string{"etc/", "home/", "opt/", "tmp/", "var/"}},
		{"ls /etc/motd", []string{"motd"}},
		{"ls /etc /var", []string{"/etc:", "motd", "/var:", "log/"}},
		{"cat /etc/motd", []string{"welcome to the lab"}},
		{"cat ~/../../etc/motd", []string{"welcome to the lab"}},
		{"stat /var/log", []string{"/var/log: directory"}},
	}
	for _, test := range tests {
		t.Run(test.command, func(t *testing.T) {
			t.Parallel()
			if got := mustRun(t, world, test.command); !slices.Equal(got, test.want) {
				t.Errorf("lines = %q, want %q", got, test.want)
			}
		})
	}
}

func TestShellStatFile(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	lines := mustRun(t, world, "stat /opt/firmware.bin")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "/opt/firmware.bin: binary file, 4 bytes, cid-") {
		t.Errorf("lines = %q", lines)
	}
}

func TestShellFailures(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	tests := []struct {
		command string
		user    string
		code    result.Code
	}{
		{"frobnicate", "ana", result.NotFound},
		{"cat /opt/firmware.bin", "ana", result.NotTextFile},
		{"cat /var", "ana", result.IsDirectory},
		{"cat", "ana", result.InvalidArgs},
		{"ls /missing", "ana", result.NotFound},
		{"mkdir /a/b", "ana", result.NotFound},
		{"mkdir /etc", "ana", result.AlreadyExists},
		{"mkdir /etc/motd/x", "ana", result.NotDirectory},
		{"mkdir -p /etc/motd/x", "ana", result.NotDirectory},
		{"rm /", "ana", result.InvalidArgs},
		{"rm /var", "ana", result.NotDirectory},
		{"rm /ghost", "ana", result.NotFound},
		{"write /var", "ana", result.IsDirectory},
		{"echo hi > /nope/x", "ana", result.NotFound},
		{"echo hi > /etc/motd/x", "ana", result.NotDirectory},
		{"echo x >> /opt/firmware.bin", "ana", result.NotTextFile},
		{"echo a > b c", "ana", result.InvalidArgs},
		{"echo 'unterminated", "ana", result.InvalidArgs},
		{"sleep forever", "ana", result.InvalidArgs},
		{"sleep -1", "ana", result.InvalidArgs},
		{"pwd extra", "ana", result.InvalidArgs},
		{"touch /tmp/x", "guest", result.PermissionDenied},
		{"echo hi > /tmp/x", "guest", result.PermissionDenied},
		{"ssh bob@db swordfish echo hi > /tmp/x", "ana", result.PermissionDenied},
		{"ssh bob@db wrong pwd", "ana", result.PermissionDenied},
		{"ssh db swordfish", "ana", result.InvalidArgs},
		{"ssh bob@nowhere swordfish", "ana", result.NotFound},
	}
	for _, test := range tests {
		t.Run(test.command, func(t *testing.T) {
			t.Parallel()
			outcome := runAs(t, world, test.user, "/tmp", vfs.Real, test.command)
			if outcome.OK {
				t.Fatalf("succeeded with %q", outcome.Lines)
			}
			if outcome.Code != test.code {
				t.Errorf("code = %s (%q), want %s", outcome.Code, outcome.Lines, test.code)
			}
			if len(outcome.Lines) != 1 || !strings.HasPrefix(outcome.Lines[0], "error: ") {
				t.Errorf("lines = %q, want a single error line", outcome.Lines)
			}
		})
	}

	gateway, _ := world.Node("gateway")
	if _, err := gateway.FS().ResolveEntry("/tmp/x"); err == nil {
		t.Error("a failed command created /tmp/x")
	}
}

func TestShellUnknownCommandReason(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	outcome := runAs(t, world, "ana", "/home/ana", vfs.Real, "frobnicate --now")
	if want := []string{"error: frobnicate: command not found"}; !slices.Equal(outcome.Lines, want) {
		t.Errorf("lines = %q, want %q", outcome.Lines, want)
	}
}

func TestShellMutations(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	mustRun(t, world, "mkdir -p /srv/app/conf")
	mustRun(t, world, "echo one > /srv/app/conf/a")
	mustRun(t, world, "echo two >> /srv/app/conf/a")
	if got := mustRun(t, world, "cat /srv/app/conf/a"); !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("appended file = %q", got)
	}

	mustRun(t, world, "write /srv/app/b hello there")
	mustRun(t, world, "touch /srv/app/b /srv/app/empty")
	if got := mustRun(t, world, "cat /srv/app/b"); !slices.Equal(got, []string{"hello there"}) {
		t.Errorf("touched file = %q", got)
	}
	if got := mustRun(t, world, "cat /srv/app/empty"); len(got) != 0 {
		t.Errorf("empty file = %q", got)
	}
	if got := mustRun(t, world, "ls /srv/app"); !slices.Equal(got, []string{"conf/", "b", "empty"}) {
		t.Errorf("ls = %q", got)
	}

	mustRun(t, world, "rm /srv/app/b /srv/app/empty")
	if got := mustRun(t, world, "ls /srv/app"); !slices.Equal(got, []string{"conf/"}) {
		t.Errorf("ls after rm = %q", got)
	}

	mustRun(t, world, "mkdir notes")
	if got := mustRun(t, world, "ls"); !slices.Equal(got, []string{"notes/"}) {
		t.Errorf("ls ~ = %q", got)
	}
}

func TestShellMultiOperandIsAtomic(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	outcome := runAs(t, world, "ana", "/home/ana", vfs.Real, "mkdir /first /missing/second")
	if outcome.Code != result.NotFound {
		t.Fatalf("code = %s, want NotFound", outcome.Code)
	}
	gateway, _ := world.Node("gateway")
	if _, err := gateway.FS().ResolveEntry("/first"); err == nil {
		t.Error("/first was created by a failed mkdir")
	}
}

func TestShellDryRun(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})
	gateway, _ := world.Node("gateway")
	before := gateway.FS().View().Generation()

	for _, command := range []string{"mkdir /scratch", "echo x > /etc/motd", "rm /etc/motd"} {
		outcome := runAs(t, world, "ana", "/home/ana", vfs.DryRun, command)
		if !outcome.OK {
			t.Fatalf("dry-run %q failed: %q", command, outcome.Lines)
		}
	}
	if got := gateway.FS().View().Generation(); got != before {
		t.Errorf("generation moved from %d to %d", before, got)
	}
	if got := mustRun(t, world, "cat /etc/motd"); !slices.Equal(got, []string{"welcome to the lab"}) {
		t.Errorf("motd = %q", got)
	}

	// Failures are still reported in dry-run.
	outcome := runAs(t, world, "ana", "/home/ana", vfs.DryRun, "rm /var")
	if outcome.Code != result.NotDirectory {
		t.Errorf("dry-run rm /var code = %s", outcome.Code)
	}
}

func TestShellSSH(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	if got := mustRun(t, world, "ssh bob@db swordfish"); !slices.Equal(got, []string{"Connected to db."}) {
		t.Errorf("bare ssh = %q", got)
	}
	if got := mustRun(t, world, "ssh bob@db swordfish pwd"); !slices.Equal(got, []string{"/home/bob"}) {
		t.Errorf("remote pwd = %q", got)
	}
	got := mustRun(t, world, "ssh bob@db swordfish ssh ana@gateway hunter2 'echo' \"two words\"")
	if !slices.Equal(got, []string{"two words"}) {
		t.Errorf("two hops = %q", got)
	}

	stats := world.TerminalStats()
	if stats.ConnectionsOpened != 4 || stats.ConnectionsClosed != 4 {
		t.Errorf("stats = %+v, want 4 connections opened and closed", stats)
	}
	if world.LiveSessions() != 0 {
		t.Errorf("LiveSessions = %d, want 0", world.LiveSessions())
	}
}

func TestShellSSHNeedsOpenTerminal(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	outcome := world.ExecuteSystemCall(context.Background(), execengine.Request{
		NodeID:            "gateway",
		UserID:            "ana",
		Cwd:               "/home/ana",
		CommandLine:       "ssh bob@db swordfish pwd",
		TerminalSessionID: 12345,
		Mode:              vfs.Real,
	})
	if outcome.Code != result.InternalError {
		t.Errorf("code = %s, want InternalError", outcome.Code)
	}
	if world.LiveSessions() != 0 {
		t.Errorf("login leaked a session")
	}
}

func TestShellUnknownContext(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{})

	tests := []execengine.Request{
		{NodeID: "nowhere", UserID: "ana", Cwd: "/", CommandLine: "pwd", Mode: vfs.Real},
		{NodeID: "gateway", UserID: "nobody", Cwd: "/", CommandLine: "pwd", Mode: vfs.Real},
		{NodeID: "gateway", UserID: "ana", Cwd: "/", CommandLine: "pwd"},
	}
	for _, request := range tests {
		if outcome := world.ExecuteSystemCall(context.Background(), request); outcome.Code != result.InternalError {
			t.Errorf("%+v: code = %s, want InternalError", request, outcome.Code)
		}
	}
}

func TestShellSleep(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(epoch)
	world := newTestWorld(t, Config{Clock: fake})

	done := make(chan execengine.Result, 1)
	go func() {
		done <- runAs(t, world, "ana", "/home/ana", vfs.Real, "sleep 2s")
	}()
	fake.WaitForTimers(1)
	select {
	case <-done:
		t.Fatal("sleep returned before the clock advanced")
	default:
	}
	fake.Advance(2 * time.Second)
	select {
	case outcome := <-done:
		if !outcome.OK {
			t.Errorf("sleep failed: %q", outcome.Lines)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sleep did not return after Advance")
	}
}

func TestShellCancelledContext(t *testing.T) {
	t.Parallel()
	world := newTestWorld(t, Config{Clock: clock.Fake(epoch)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome := world.ExecuteSystemCall(ctx, execengine.Request{
		NodeID: "gateway", UserID: "ana", Cwd: "/home/ana", CommandLine: "sleep 1", Mode: vfs.Real,
	})
	if outcome.Code != result.InternalError {
		t.Errorf("code = %s, want InternalError", outcome.Code)
	}
}

func TestParseSleep(t *testing.T) {
	t.Parallel()
	tests := []struct {
		operand string
		want    time.Duration
	}{
		{"1", time.Second},
		{"0.5", 500 * time.Millisecond},
		{"250ms", 250 * time.Millisecond},
		{"0", 0},
	}
	for _, test := range tests {
		got, err := parseSleep(test.operand)
		if err != nil {
			t.Errorf("parseSleep(%q): %v", test.operand, err)
			continue
		}
		if got != test.want {
			t.Errorf("parseSleep(%q) = %v, want %v", test.operand, got, test.want)
		}
	}
}
