// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config provides YAML configuration loading for the artifact
// tooling.
//
// Configuration is loaded from a single file specified by:
//   - the Q2_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// When neither is given, built-in defaults apply: the cache lives
// under <tmp>/qiime2/<user> and logging is info-level with automatic
// format selection. There is no config file discovery beyond
// Q2_CONFIG; a shared machine must not pick up another user's cache
// root by accident.
//
// The only substitution performed in the file is ${VAR} and
// ${VAR:-default} expansion inside path fields, so a shared config can
// say root: ${HOME}/.cache/qiime2 and work for every user.
package config
