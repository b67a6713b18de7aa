// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/cafferychen777/qiime2/cmd/q2-artifact/cli"
	"github.com/cafferychen777/qiime2/lib/archiver"
)

func peekCommand() *cli.Command {
	return &cli.Command{
		Name:    "peek",
		Summary: "Print an archive's identity without unpacking it",
		Usage:   "q2-artifact peek <archive>",
		Description: `Read the UUID, semantic type, and view format of an archive.

Works on both saved containers (.qza/.qzv) and expanded directories.
Nothing is written: the archive is not unpacked and the cache is not
touched.`,
		Examples: []cli.Example{
			{
				Description: "Peek at a saved artifact",
				Command:     "q2-artifact peek table.qza",
			},
			{
				Description: "Peek at an expanded artifact directory",
				Command:     "q2-artifact peek ./770509e6-85f4-432c-9663-cdc04eb07db2",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("peek takes exactly one archive path")
			}
			metadata, err := archiver.Peek(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("UUID:   %s\n", metadata.UUID)
			fmt.Printf("Type:   %s\n", metadata.Type)
			if metadata.Format != "" {
				fmt.Printf("Format: %s\n", metadata.Format)
			}
			return nil
		},
	}
}
