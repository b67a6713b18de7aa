// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cafferychen777/qiime2/cmd/q2-artifact/cli"
	"github.com/cafferychen777/qiime2/lib/archiver"
)

func extractCommand() *cli.Command {
	var output string

	return &cli.Command{
		Name:    "extract",
		Summary: "Expand an archive into a directory",
		Usage:   "q2-artifact extract <archive> [flags]",
		Description: `Expand an archive to <output>/<uuid> and print the resulting path.

Extraction is format-agnostic: it succeeds even for archives written
by a newer framework than this build, because it only relies on the
container layout. The cache is not touched.`,
		Examples: []cli.Example{
			{
				Description: "Expand into the current directory",
				Command:     "q2-artifact extract table.qza",
			},
			{
				Description: "Expand into a scratch directory",
				Command:     "q2-artifact extract table.qza --output /tmp/scratch",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flagSet.StringVar(&output, "output", ".", "directory to expand into")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("extract takes exactly one archive path")
			}
			root, err := archiver.Extract(args[0], output)
			if err != nil {
				return err
			}
			fmt.Println(root)
			return nil
		},
	}
}
