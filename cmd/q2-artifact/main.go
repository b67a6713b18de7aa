// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// q2-artifact inspects, validates, and manages QIIME 2 artifacts.
//
// Artifacts move between two on-disk forms: portable zip containers
// (.qza/.qzv) and expanded directory trees. Commands that only read
// an archive (peek, extract) work directly on either form; commands
// that need a working copy (validate, save, create) materialize the
// artifact through the configured cache first.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/cafferychen777/qiime2/cmd/q2-artifact/cli"
	"github.com/cafferychen777/qiime2/lib/archive"
	"github.com/cafferychen777/qiime2/lib/archiver"
	"github.com/cafferychen777/qiime2/lib/cache"
	"github.com/cafferychen777/qiime2/lib/config"
	"github.com/cafferychen777/qiime2/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like validate) return
		// an ExitError with the desired exit code. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "q2-artifact",
		Description: `q2-artifact: QIIME 2 artifact tooling.

Inspect, extract, validate, create, and repackage QIIME 2 artifacts
(.qza/.qzv archives), backed by a local artifact cache.`,
		Subcommands: []*cli.Command{
			peekCommand(),
			extractCommand(),
			validateCommand(),
			saveCommand(),
			createCommand(),
			cacheCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("q2-artifact %s\n", version.Info())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Print the identity of a saved artifact",
				Command:     "q2-artifact peek table.qza",
			},
			{
				Description: "Expand an artifact into the current directory",
				Command:     "q2-artifact extract table.qza",
			},
			{
				Description: "Check an artifact for corruption",
				Command:     "q2-artifact validate table.qza",
			},
			{
				Description: "Import a data directory as a new artifact",
				Command:     "q2-artifact create --type 'FeatureTable[Frequency]' --format BIOMV210DirFmt ./biom-data table.qza",
			},
			{
				Description: "Reclaim unreferenced cache space",
				Command:     "q2-artifact cache gc",
			},
		},
	}
}

// loadConfig loads and validates the tool configuration: an explicit
// --config path when given, otherwise Q2_CONFIG or built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openArchiver opens the configured cache and returns an archiver on
// it. Commands that materialize artifacts start here.
func openArchiver(configPath string) (*archiver.Archiver, *config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	pool, err := cache.Open(cfg.Cache.Root)
	if err != nil {
		return nil, nil, err
	}
	return archiver.New(pool), cfg, nil
}

// resolveHandle opens the named artifact. A canonical UUID names a
// tree resident in the cache; anything else is an archive path in
// either on-disk form.
func resolveHandle(a *archiver.Archiver, name string) (*archiver.Handle, error) {
	if archive.IsUUID4(name) {
		id, err := uuid.Parse(name)
		if err != nil {
			return nil, err
		}
		return a.LoadRaw(a.Cache().StablePath(id))
	}
	return a.Load(name)
}
