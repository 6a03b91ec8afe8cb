// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable [Load] reads the config path
// from.
const EnvVar = "NETSIM_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local experiments.
	Development Environment = "development"
	// Staging is for shared test rigs.
	Staging Environment = "staging"
	// Production is for long-running simulations.
	Production Environment = "production"
)

// Config is the simulator configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Scenario is the path of the scenario file to load at startup.
	Scenario string `yaml:"scenario"`

	Logging LoggingConfig `yaml:"logging"`
	Limits  LimitsConfig  `yaml:"limits"`
	Jobs    JobsConfig    `yaml:"jobs"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Scenario string         `yaml:"scenario,omitempty"`
	Logging  *LoggingConfig `yaml:"logging,omitempty"`
	Limits   *LimitsConfig  `yaml:"limits,omitempty"`
	Jobs     *JobsConfig    `yaml:"jobs,omitempty"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is text, json, or auto (text on a terminal, json
	// otherwise).
	// Default: auto
	Format string `yaml:"format"`
}

// LimitsConfig caps payload sizes. Zero disables a cap.
type LimitsConfig struct {
	// MaxOutputBytes caps synchronous command output.
	MaxOutputBytes int64 `yaml:"max_output_bytes"`

	// MaxReadBytes caps text file reads.
	MaxReadBytes int64 `yaml:"max_read_bytes"`

	// MaxWriteBytes caps file writes.
	MaxWriteBytes int64 `yaml:"max_write_bytes"`
}

// JobsConfig configures the background job scheduler.
type JobsConfig struct {
	// Workers is the number of concurrently running jobs.
	// Default: 4
	Workers int `yaml:"workers"`

	// QueueDepth bounds jobs waiting for a worker.
	// Default: 64
	QueueDepth int `yaml:"queue_depth"`

	// Database is the SQLite job ledger path. Empty keeps the ledger
	// in memory.
	Database string `yaml:"database"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Default returns the default configuration. The config file is
// decoded over it, so any field the file omits keeps its default.
func Default() *Config {
	return &Config{
		Environment: Development,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Limits: LimitsConfig{
			MaxOutputBytes: 1 << 20,
			MaxReadBytes:   1 << 20,
			MaxWriteBytes:  1 << 20,
		},
		Jobs: JobsConfig{
			Workers:    4,
			QueueDepth: 64,
		},
	}
}

// Load loads configuration from the file named by NETSIM_CONFIG.
// There is no fallback: an unset variable is an error.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your netsim.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// section for the configured environment, expands variables in path
// fields, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.expandVariables(filepath.Dir(absolute))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production logs are machine-read.
		if overrides == nil {
			overrides = &ConfigOverrides{Logging: &LoggingConfig{Format: "json"}}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Scenario != "" {
		c.Scenario = overrides.Scenario
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}

	if overrides.Limits != nil {
		if overrides.Limits.MaxOutputBytes != 0 {
			c.Limits.MaxOutputBytes = overrides.Limits.MaxOutputBytes
		}
		if overrides.Limits.MaxReadBytes != 0 {
			c.Limits.MaxReadBytes = overrides.Limits.MaxReadBytes
		}
		if overrides.Limits.MaxWriteBytes != 0 {
			c.Limits.MaxWriteBytes = overrides.Limits.MaxWriteBytes
		}
	}

	if overrides.Jobs != nil {
		if overrides.Jobs.Workers != 0 {
			c.Jobs.Workers = overrides.Jobs.Workers
		}
		if overrides.Jobs.QueueDepth != 0 {
			c.Jobs.QueueDepth = overrides.Jobs.QueueDepth
		}
		if overrides.Jobs.Database != "" {
			c.Jobs.Database = overrides.Jobs.Database
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields. ${CONFIG_DIR} is the directory holding the config file.
func (c *Config) expandVariables(configDir string) {
	vars := map[string]string{
		"CONFIG_DIR": configDir,
		"HOME":       os.Getenv("HOME"),
	}
	c.Scenario = expandVars(c.Scenario, vars)
	c.Jobs.Database = expandVars(c.Jobs.Database, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, consulting
// vars before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormats))
	}

	if c.Limits.MaxOutputBytes < 0 {
		errs = append(errs, fmt.Errorf("limits.max_output_bytes must be >= 0"))
	}
	if c.Limits.MaxReadBytes < 0 {
		errs = append(errs, fmt.Errorf("limits.max_read_bytes must be >= 0"))
	}
	if c.Limits.MaxWriteBytes < 0 {
		errs = append(errs, fmt.Errorf("limits.max_write_bytes must be >= 0"))
	}

	if c.Jobs.Workers < 1 {
		errs = append(errs, fmt.Errorf("jobs.workers must be >= 1"))
	}
	if c.Jobs.QueueDepth < 1 {
		errs = append(errs, fmt.Errorf("jobs.queue_depth must be >= 1"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel returns the configured level. Unknown names are info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
