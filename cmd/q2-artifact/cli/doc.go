// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cli provides the command-line framework for the q2-artifact
// tool.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/q2-artifact/main.go and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
//
// [NewLogger] builds the tool's slog.Logger from the logging section
// of the configuration: human-readable text when stderr is a terminal,
// JSON when output is piped, overridable either way.
//
// A command whose non-zero exit is an answer rather than a failure
// (validate reporting a dirty artifact) returns [ExitError] so main
// exits with the code but prints nothing extra.
package cli
