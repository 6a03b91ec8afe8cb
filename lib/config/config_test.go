// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes content to netsim.yaml in a fresh temp dir.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "netsim.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "auto" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Jobs.Workers != 4 || cfg.Jobs.QueueDepth != 64 || cfg.Jobs.Database != "" {
		t.Errorf("jobs = %+v", cfg.Jobs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoad_RequiresNetsimConfig(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when NETSIM_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "NETSIM_CONFIG environment variable not set") {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestLoad_WithNetsimConfig(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging
scenario: /srv/lab.yaml
`)
	t.Setenv(EnvVar, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Scenario != "/srv/lab.yaml" {
		t.Errorf("expected scenario=/srv/lab.yaml, got %s", cfg.Scenario)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	configPath := writeConfig(t, `
environment: staging

logging:
  level: debug
  format: text

limits:
  max_output_bytes: 4096
  max_read_bytes: 0

jobs:
  workers: 2
  database: ${CONFIG_DIR}/jobs.db
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Logging.SlogLevel() != slog.LevelDebug || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Limits.MaxOutputBytes != 4096 {
		t.Errorf("expected max_output_bytes=4096, got %d", cfg.Limits.MaxOutputBytes)
	}
	if cfg.Limits.MaxReadBytes != 0 {
		t.Errorf("expected max_read_bytes=0 (uncapped), got %d", cfg.Limits.MaxReadBytes)
	}
	if cfg.Limits.MaxWriteBytes != 1<<20 {
		t.Errorf("expected default max_write_bytes, got %d", cfg.Limits.MaxWriteBytes)
	}
	if cfg.Jobs.Workers != 2 || cfg.Jobs.QueueDepth != 64 {
		t.Errorf("jobs = %+v", cfg.Jobs)
	}
	if want := filepath.Join(filepath.Dir(configPath), "jobs.db"); cfg.Jobs.Database != want {
		t.Errorf("expected database=%s, got %s", want, cfg.Jobs.Database)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "logging: [unterminated"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad workers", "jobs:\n  workers: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := LoadFile(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadFile succeeded")
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Parallel()
	configPath := writeConfig(t, `
environment: production

scenario: /default/lab.yaml

logging:
  level: debug
  format: text

jobs:
  workers: 2

production:
  scenario: /prod/lab.yaml
  logging:
    level: warn
  jobs:
    workers: 16
    queue_depth: 1024
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Scenario != "/prod/lab.yaml" {
		t.Errorf("expected scenario=/prod/lab.yaml, got %s", cfg.Scenario)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level=warn, got %s", cfg.Logging.Level)
	}
	// Fields the override leaves empty keep the base value.
	if cfg.Logging.Format != "text" {
		t.Errorf("expected format=text, got %s", cfg.Logging.Format)
	}
	if cfg.Jobs.Workers != 16 || cfg.Jobs.QueueDepth != 1024 {
		t.Errorf("jobs = %+v", cfg.Jobs)
	}
}

func TestProductionDefaultsToJSON(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFile(writeConfig(t, "environment: production\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected format=json in production, got %s", cfg.Logging.Format)
	}
}

func TestOtherEnvironmentSectionsIgnored(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFile(writeConfig(t, `
environment: development
staging:
  jobs:
    workers: 99
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Jobs.Workers != 4 {
		t.Errorf("staging section applied in development: workers=%d", cfg.Jobs.Workers)
	}
}

func TestExpandVars(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/lab.yaml",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/lab.yaml",
		},
		{
			input:    "${NETSIM_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "negative limit",
			modify:  func(c *Config) { c.Limits.MaxReadBytes = -1 },
			wantErr: true,
		},
		{
			name:    "zero queue depth",
			modify:  func(c *Config) { c.Jobs.QueueDepth = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	} {
		if got := (LoggingConfig{Level: level}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}
