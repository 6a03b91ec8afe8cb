// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for netsim.
//
// Configuration is loaded from a single file specified by either the
// NETSIM_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production without its own section
// logs JSON.
//
// ${HOME}, ${CONFIG_DIR} (the directory holding the config file) and
// ${VAR:-default} patterns are expanded in the scenario and job
// database paths after loading.
//
// This package depends on no other netsim packages.
package config
