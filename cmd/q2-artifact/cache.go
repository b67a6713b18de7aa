// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cafferychen777/qiime2/cmd/q2-artifact/cli"
	"github.com/cafferychen777/qiime2/lib/cache"
	"github.com/cafferychen777/qiime2/lib/config"
)

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect and maintain the artifact cache",
		Description: `Operate on the configured artifact cache.

Artifacts materialized by validate, save, and create stay resident in
the cache after their references are released, so later loads of the
same artifact converge on the resident copy instead of unpacking
again. "cache gc" reclaims trees no alias references anymore, along
with working pools left behind by dead processes.`,
		Subcommands: []*cli.Command{
			cacheStatusCommand(),
			cacheGCCommand(),
		},
	}
}

// openCache opens the configured cache directly, without an archiver.
func openCache(configPath string) (*cache.Cache, *config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	pool, err := cache.Open(cfg.Cache.Root)
	if err != nil {
		return nil, nil, err
	}
	return pool, cfg, nil
}

func cacheStatusCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "status",
		Summary: "Print cache totals",
		Usage:   "q2-artifact cache status [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file (default: $Q2_CONFIG)")
			return flagSet
		},
		Run: func(args []string) error {
			pool, _, err := openCache(configPath)
			if err != nil {
				return err
			}
			status, err := pool.Status()
			if err != nil {
				return err
			}
			fmt.Printf("Root:      %s\n", status.Root)
			fmt.Printf("Artifacts: %d\n", status.Artifacts)
			fmt.Printf("Aliases:   %d\n", status.Aliases)
			fmt.Printf("Processes: %d\n", status.Processes)
			return nil
		},
	}
}

func cacheGCCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "gc",
		Summary: "Remove unreferenced artifacts and dead process pools",
		Usage:   "q2-artifact cache gc [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("gc", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file (default: $Q2_CONFIG)")
			return flagSet
		},
		Run: func(args []string) error {
			pool, cfg, err := openCache(configPath)
			if err != nil {
				return err
			}
			logger := cli.NewLogger(cfg.Logging).With("command", "cache/gc")

			removed, err := pool.GarbageCollect()
			if err != nil {
				return err
			}
			logger.Info("collected cache", "root", pool.Root(), "removed", len(removed))
			for _, id := range removed {
				fmt.Println(id)
			}
			fmt.Printf("removed %d artifact(s)\n", len(removed))
			return nil
		},
	}
}
