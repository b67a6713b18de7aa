// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/cafferychen777/qiime2/lib/config"
)

// NewLogger creates the structured logger for CLI operations from the
// logging configuration. Format "auto" uses slog.TextHandler when
// stderr is a terminal and slog.JSONHandler when output is piped or
// redirected (CI, scripts), so interactive runs stay readable and
// captured runs stay machine-parseable.
//
// Commands scope the logger with command-specific context via With():
//
//	logger := cli.NewLogger(cfg.Logging).With("command", "cache/gc")
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	options := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	format := cfg.Format
	if format == "auto" || format == "" {
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "text"
		} else {
			format = "json"
		}
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, options)
	} else {
		handler = slog.NewTextHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// parseLevel maps a configured level name to a slog.Level. Unknown
// names fall back to info; config.Validate rejects them before this
// runs, so the fallback only matters for loggers built from a
// hand-rolled config.
func parseLevel(level string) slog.Level {
	switch level {
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
