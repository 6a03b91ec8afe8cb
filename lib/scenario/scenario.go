// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scenario loads the starting state of a simulated network:
// its nodes, each node's user accounts, and the base files every node
// boots with.
//
// Scenarios are authored as YAML (.yaml, .yml) or JSONC (.json,
// .jsonc: JSON with comments and trailing commas). Both formats use the
// same snake_case field names:
//
//	name: lab
//	nodes:
//	  - id: gateway
//	    users:
//	      - name: ana
//	        home: /home/ana
//	        password: hunter2
//	        privilege: {read: true, write: true}
//	    files:
//	      - path: /etc/motd
//	        content: "welcome\n"
package scenario

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/netsim/lib/blobstore"
	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/vfs"
	"github.com/bureau-foundation/netsim/lib/vpath"
)

// Scenario is a whole simulated network.
type Scenario struct {
	Name  string `yaml:"name" json:"name"`
	Nodes []Node `yaml:"nodes" json:"nodes"`
}

// Node is one simulated machine.
type Node struct {
	ID string `yaml:"id" json:"id"`

	// Hostname printed by the hostname command. Defaults to ID.
	Hostname string `yaml:"hostname" json:"hostname"`

	Users       []User   `yaml:"users" json:"users"`
	Directories []string `yaml:"directories" json:"directories"`
	Files       []File   `yaml:"files" json:"files"`
}

// User is an account on a node. Exactly one of Password and
// PasswordHash may be set; with neither, the account cannot be logged
// into remotely.
type User struct {
	Name         string             `yaml:"name" json:"name"`
	Home         string             `yaml:"home" json:"home"`
	Password     string             `yaml:"password" json:"password"`
	PasswordHash string             `yaml:"password_hash" json:"password_hash"`
	Privilege    identity.Privilege `yaml:"privilege" json:"privilege"`
}

// File is a base-layer file. Text files set Content; binary files set
// Base64.
type File struct {
	Path    string `yaml:"path" json:"path"`
	Kind    string `yaml:"kind" json:"kind"`
	Content string `yaml:"content" json:"content"`
	Base64  string `yaml:"base64" json:"base64"`
}

// Data returns the file's bytes and kind.
func (f File) Data() ([]byte, vfs.FileKind, error) {
	kind, err := vfs.ParseFileKind(f.Kind)
	if err != nil {
		return nil, 0, err
	}
	if f.Base64 != "" {
		if f.Content != "" {
			return nil, 0, fmt.Errorf("content and base64 are mutually exclusive")
		}
		data, err := base64.StdEncoding.DecodeString(f.Base64)
		if err != nil {
			return nil, 0, fmt.Errorf("decoding base64: %w", err)
		}
		if f.Kind == "" {
			kind = vfs.FileBinary
		}
		return data, kind, nil
	}
	return []byte(f.Content), kind, nil
}

// Format is a scenario file syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatJSONC
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSONC, nil
	default:
		return 0, fmt.Errorf("scenario %s: unrecognized extension (want .yaml, .yml, .json or .jsonc)", path)
	}
}

// Parse decodes and validates a scenario.
func Parse(data []byte, format Format) (*Scenario, error) {
	var scenario Scenario
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &scenario); err != nil {
			return nil, fmt.Errorf("parsing scenario YAML: %w", err)
		}
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &scenario); err != nil {
			return nil, fmt.Errorf("parsing scenario JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown scenario format %d", format)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	scenario, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

// Validate checks names, paths and uniqueness.
func (s *Scenario) Validate() error {
	seen := make(map[string]bool, len(s.Nodes))
	for i, node := range s.Nodes {
		if err := identity.ValidateName("node", node.ID); err != nil {
			return fmt.Errorf("nodes[%d]: %w", i, err)
		}
		if seen[node.ID] {
			return fmt.Errorf("nodes[%d]: duplicate node %q", i, node.ID)
		}
		seen[node.ID] = true
		if err := node.validate(); err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}
	}
	return nil
}

func (n Node) validate() error {
	users := make(map[string]bool, len(n.Users))
	for _, user := range n.Users {
		if err := identity.ValidateName("user", user.Name); err != nil {
			return err
		}
		if users[user.Name] {
			return fmt.Errorf("duplicate user %q", user.Name)
		}
		users[user.Name] = true
		if user.Home != "" && !vpath.IsCanonical(user.Home) {
			return fmt.Errorf("user %s: home %q is not a canonical absolute path", user.Name, user.Home)
		}
		if user.Password != "" && user.PasswordHash != "" {
			return fmt.Errorf("user %s: password and password_hash are mutually exclusive", user.Name)
		}
	}
	for _, directory := range n.Directories {
		if !vpath.IsCanonical(directory) {
			return fmt.Errorf("directory %q is not a canonical absolute path", directory)
		}
	}
	for _, file := range n.Files {
		if !vpath.IsCanonical(file.Path) || vpath.IsRoot(file.Path) {
			return fmt.Errorf("file %q is not a canonical file path", file.Path)
		}
		if _, _, err := file.Data(); err != nil {
			return fmt.Errorf("file %s: %w", file.Path, err)
		}
	}
	return nil
}

// HomeOf returns the user's home directory, defaulting to
// /home/<name>.
func (u User) HomeOf() string {
	if u.Home != "" {
		return u.Home
	}
	return "/home/" + u.Name
}

// Base builds the node's base layer: its directories, every user's
// home, then its files.
func (n Node) Base(blobs *blobstore.Store) (*vfs.Base, error) {
	builder := vfs.NewBaseBuilder(blobs)
	for _, directory := range n.Directories {
		if err := builder.AddDirectory(directory); err != nil {
			return nil, err
		}
	}
	for _, user := range n.Users {
		if err := builder.AddDirectory(user.HomeOf()); err != nil {
			return nil, fmt.Errorf("home of %s: %w", user.Name, err)
		}
	}
	for _, file := range n.Files {
		data, kind, err := file.Data()
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", file.Path, err)
		}
		if err := builder.AddFile(file.Path, data, kind); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}
