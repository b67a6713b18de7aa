// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cafferychen777/qiime2/cmd/q2-artifact/cli"
)

func saveCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "save",
		Summary: "Write an artifact as a portable container",
		Usage:   "q2-artifact save <archive|uuid> <destination> [flags]",
		Description: `Serialize an artifact into a zip container at the destination path.

The source is an archive path (container or expanded directory), or
the UUID of an artifact already resident in the cache. Saving an
expanded directory repackages it; saving a cache-resident UUID exports
the cached working copy.

Hidden files and directories are never included in the container.`,
		Examples: []cli.Example{
			{
				Description: "Repackage an expanded artifact directory",
				Command:     "q2-artifact save ./770509e6-85f4-432c-9663-cdc04eb07db2 table.qza",
			},
			{
				Description: "Export a cache-resident artifact",
				Command:     "q2-artifact save 770509e6-85f4-432c-9663-cdc04eb07db2 table.qza",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("save", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file (default: $Q2_CONFIG)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("save takes an archive path or UUID and a destination")
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
			logger := cli.NewLogger(cfg.Logging).With("command", "save")
			logger.Debug("exporting artifact", "uuid", handle.UUID(), "destination", args[1])

			if err := handle.Save(args[1]); err != nil {
				return err
			}
			fmt.Println(args[1])
			return nil
		},
	}
}
