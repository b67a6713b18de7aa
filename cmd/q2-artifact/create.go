// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cafferychen777/qiime2/cmd/q2-artifact/cli"
	"github.com/cafferychen777/qiime2/lib/cite"
	"github.com/cafferychen777/qiime2/lib/format"
	"github.com/cafferychen777/qiime2/lib/provenance"
)

func createCommand() *cli.Command {
	var configPath string
	var semanticType string
	var formatName string
	var citationsPath string

	return &cli.Command{
		Name:    "create",
		Summary: "Import a data directory as a new artifact",
		Usage:   "q2-artifact create --type <type> <data-dir> <destination> [flags]",
		Description: `Create a new artifact in the current archive format from the files in
a data directory, and save it as a container at the destination path.

The artifact gets a fresh UUID, import provenance, and a checksum
manifest over everything written. Hidden files and directories in the
data directory are not imported; they would not survive a save/load
round trip.`,
		Examples: []cli.Example{
			{
				Description: "Import a feature table",
				Command:     "q2-artifact create --type 'FeatureTable[Frequency]' --format BIOMV210DirFmt ./biom-data table.qza",
			},
			{
				Description: "Import with citations for the source tool",
				Command:     "q2-artifact create --type 'SampleData[Sequences]' --citations tool.bib ./seqs seqs.qza",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file (default: $Q2_CONFIG)")
			flagSet.StringVar(&semanticType, "type", "", "semantic type of the new artifact (required)")
			flagSet.StringVar(&formatName, "format", "", "view format of the data directory")
			flagSet.StringVar(&citationsPath, "citations", "", "BibTeX file recorded in provenance")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("create takes a data directory and a destination")
			}
			if semanticType == "" {
				return fmt.Errorf("--type is required")
			}
			source, destination := args[0], args[1]
			if info, err := os.Stat(source); err != nil {
				return err
			} else if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", source)
			}

			citations, err := loadCitations(citationsPath)
			if err != nil {
				return err
			}

			a, cfg, err := openArchiver(configPath)
			if err != nil {
				return err
			}
			logger := cli.NewLogger(cfg.Logging).With("command", "create", "type", semanticType)
			logger.Info("importing data directory", "source", source)

			handle, err := a.FromData(semanticType, formatName, copyInto(source), provenance.NewImportCapture(citations))
			if err != nil {
				return err
			}
			defer handle.Close()
			logger.Info("created artifact", "uuid", handle.UUID())

			if err := handle.Save(destination); err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", handle.UUID(), destination)
			return nil
		},
	}
}

// loadCitations parses the BibTeX file at path; an empty path means no
// citations.
func loadCitations(path string) (*cite.Citations, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	citations, err := cite.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return citations, nil
}

// copyInto returns an initializer that copies the contents of source
// into the artifact data directory, skipping hidden entries.
func copyInto(source string) format.DataInitializer {
	return func(dataDir string) error {
		return filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(source, path)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") {
				if entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			target := filepath.Join(dataDir, rel)
			if entry.IsDir() {
				return os.MkdirAll(target, 0o755)
			}
			return copyFile(path, target)
		})
	}
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
