// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vpath

import (
	"slices"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cwd  string
		home string
		expr string
		want string
	}{
		{"absolute", "/home/ada", "", "/etc/motd", "/etc/motd"},
		{"relative", "/home/ada", "", "notes.txt", "/home/ada/notes.txt"},
		{"dot", "/home/ada", "", ".", "/home/ada"},
		{"dotdot", "/home/ada", "", "../bob", "/home/bob"},
		{"dotdot above root", "/", "", "../../x", "/x"},
		{"absolute dotdot above root", "/home", "", "/../../etc", "/etc"},
		{"trailing slash", "/", "", "/var/log/", "/var/log"},
		{"double slash", "/", "", "//var//log", "/var/log"},
		{"tilde", "/tmp", "/home/ada", "~", "/home/ada"},
		{"tilde subpath", "/tmp", "/home/ada", "~/bin/run", "/home/ada/bin/run"},
		{"tilde without home", "/tmp", "", "~", "/tmp/~"},
		{"tilde in middle", "/tmp", "/home/ada", "a~/b", "/tmp/a~/b"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := Resolve(test.cwd, test.home, test.expr)
			if err != nil {
				t.Fatalf("Resolve(%q, %q, %q): %v", test.cwd, test.home, test.expr, err)
			}
			if got != test.want {
				t.Errorf("Resolve(%q, %q, %q) = %q, want %q", test.cwd, test.home, test.expr, got, test.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cwd  string
		expr string
	}{
		{"empty", "/", ""},
		{"nul", "/", "a\x00b"},
		{"relative cwd", "home", "x"},
		{"empty cwd", "", "x"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got, err := Resolve(test.cwd, "", test.expr); err == nil {
				t.Errorf("Resolve(%q, %q) = %q, want error", test.cwd, test.expr, got)
			}
		})
	}
}

func TestAncestors(t *testing.T) {
	t.Parallel()

	if got := Ancestors("/"); got != nil {
		t.Errorf("Ancestors(/) = %v, want nil", got)
	}
	if got, want := Ancestors("/a"), []string{"/"}; !slices.Equal(got, want) {
		t.Errorf("Ancestors(/a) = %v, want %v", got, want)
	}
	if got, want := Ancestors("/a/b/c"), []string{"/", "/a", "/a/b"}; !slices.Equal(got, want) {
		t.Errorf("Ancestors(/a/b/c) = %v, want %v", got, want)
	}
}

func TestCanonicalHelpers(t *testing.T) {
	t.Parallel()

	if !IsCanonical("/a/b") || IsCanonical("/a/b/") || IsCanonical("a/b") || IsCanonical("/a/../b") {
		t.Error("IsCanonical misclassified a path")
	}
	if Parent("/") != "/" || Parent("/a") != "/" || Parent("/a/b") != "/a" {
		t.Error("Parent returned an unexpected value")
	}
	if Base("/a/b") != "b" || Base("/") != "/" {
		t.Error("Base returned an unexpected value")
	}
	if !IsWithin("/a/b", "/a") || IsWithin("/ab", "/a") || !IsWithin("/x", "/") {
		t.Error("IsWithin misclassified a path")
	}
}
