// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/pflag"

	"github.com/cafferychen777/qiime2/cmd/q2-artifact/cli"
)

func validateCommand() *cli.Command {
	var configPath string
	var quiet bool

	return &cli.Command{
		Name:    "validate",
		Summary: "Check an artifact against its checksum manifest",
		Usage:   "q2-artifact validate <archive|uuid> [flags]",
		Description: `Materialize an artifact and compare every file against the checksum
manifest it was written with.

Exits 0 when the artifact is intact and 1 when any file was added,
removed, or changed since the artifact was written. Artifacts older
than archive format 5 record no manifest and always validate clean.

The argument is an archive path (container or expanded directory), or
the UUID of an artifact already resident in the cache.`,
		Examples: []cli.Example{
			{
				Description: "Validate a saved artifact",
				Command:     "q2-artifact validate table.qza",
			},
			{
				Description: "Validate quietly, checking only the exit code",
				Command:     "q2-artifact validate table.qza --quiet",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("validate", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file (default: $Q2_CONFIG)")
			flagSet.BoolVar(&quiet, "quiet", false, "suppress per-path output")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("validate takes exactly one archive path or UUID")
			}
			a, cfg, err := openArchiver(configPath)
			if err != nil {
				return err
			}
			handle, err := resolveHandle(a, args[0])
			if err != nil {
				return err
			}
			defer handle.Close()
			logger := cli.NewLogger(cfg.Logging).With("command", "validate")
			logger.Debug("materialized artifact", "uuid", handle.UUID(), "root", handle.RootDir())

			diff, err := handle.ValidateChecksums()
			if err != nil {
				return err
			}
			if diff.Empty() {
				if !quiet {
					fmt.Printf("%s: ok\n", handle.UUID())
				}
				return nil
			}

			if !quiet {
				for _, path := range sortedKeys(diff.Added) {
					fmt.Printf("added:   %s\n", path)
				}
				for _, path := range sortedKeys(diff.Removed) {
					fmt.Printf("removed: %s\n", path)
				}
				changed := make([]string, 0, len(diff.Changed))
				for path := range diff.Changed {
					changed = append(changed, path)
				}
				sort.Strings(changed)
				for _, path := range changed {
					fmt.Printf("changed: %s\n", path)
				}
				total := len(diff.Added) + len(diff.Removed) + len(diff.Changed)
				fmt.Printf("%s: %d problem(s)\n", handle.UUID(), total)
			}
			return &cli.ExitError{Code: 1}
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
