// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/netsim/lib/blobstore"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

func TestLoadFormatsAgree(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"testdata/lab.yaml", "testdata/lab.jsonc"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			scenario, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if scenario.Name != "lab" || len(scenario.Nodes) != 2 {
				t.Fatalf("scenario = %+v", scenario)
			}
			gateway := scenario.Nodes[0]
			if gateway.Hostname != "gw.lab" || len(gateway.Users) != 2 {
				t.Errorf("gateway = %+v", gateway)
			}
			if !gateway.Users[0].Privilege.Write || gateway.Users[1].Privilege.Write {
				t.Errorf("privileges = %+v", gateway.Users)
			}
		})
	}
}

func TestNodeBase(t *testing.T) {
	t.Parallel()
	scenario, err := Load("testdata/lab.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	blobs := blobstore.New()
	base, err := scenario.Nodes[0].Base(blobs)
	if err != nil {
		t.Fatalf("Base: %v", err)
	}
	overlay := vfs.New(base, blobs)

	if got := overlay.ListChildren("/home"); !slices.Equal(got, []string{"ana"}) {
		t.Errorf("ListChildren(/home) = %v, want [ana]", got)
	}
	if text, err := overlay.ReadFileText("/etc/motd"); err != nil || text != "welcome to the lab\n" {
		t.Errorf("motd = %q, %v", text, err)
	}
	firmware, err := overlay.ResolveEntry("/opt/firmware.bin")
	if err != nil {
		t.Fatalf("ResolveEntry: %v", err)
	}
	if firmware.FileKind != vfs.FileBinary || firmware.Size != 4 {
		t.Errorf("firmware = %+v, want 4-byte binary", firmware)
	}
	if !overlay.View().Exists("/var/log") || !overlay.View().Exists("/tmp") {
		t.Error("declared directory or custom home missing")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad node name", "nodes: [{id: Gateway}]", "invalid character"},
		{"duplicate node", "nodes: [{id: a}, {id: a}]", "duplicate node"},
		{"duplicate user", "nodes: [{id: a, users: [{name: u}, {name: u}]}]", "duplicate user"},
		{"relative home", "nodes: [{id: a, users: [{name: u, home: home/u}]}]", "not a canonical"},
		{"both passwords", "nodes: [{id: a, users: [{name: u, password: x, password_hash: y}]}]", "mutually exclusive"},
		{"root file", "nodes: [{id: a, files: [{path: /}]}]", "not a canonical file path"},
		{"bad kind", "nodes: [{id: a, files: [{path: /f, kind: video}]}]", "unknown file kind"},
		{"bad base64", "nodes: [{id: a, files: [{path: /f, base64: '!!'}]}]", "decoding base64"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(test.yaml), FormatYAML)
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Parse error = %v, want containing %q", err, test.wantErr)
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()
	for path, want := range map[string]Format{"a.yaml": FormatYAML, "b.YML": FormatYAML, "c.json": FormatJSONC, "d.jsonc": FormatJSONC} {
		if got, err := FormatForPath(path); err != nil || got != want {
			t.Errorf("FormatForPath(%q) = %v, %v; want %v", path, got, err, want)
		}
	}
	if _, err := FormatForPath("scenario.toml"); err == nil {
		t.Error("FormatForPath accepted .toml")
	}
}
