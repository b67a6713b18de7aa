// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommandExecuteDispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "q2-artifact",
		Subcommands: []*Command{
			{
				Name: "peek",
				Run: func(args []string) error {
					called = "peek"
					return nil
				},
			},
			{
				Name: "extract",
				Run: func(args []string) error {
					called = "extract"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"extract"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "extract" {
		t.Errorf("dispatched to %q, want %q", called, "extract")
	}
}

func TestCommandExecuteNestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "q2-artifact",
		Subcommands: []*Command{
			{
				Name: "cache",
				Subcommands: []*Command{
					{
						Name: "gc",
						Run: func(args []string) error {
							called = "cache gc"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"cache", "gc", "extra-arg"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "cache gc" {
		t.Errorf("dispatched to %q, want %q", called, "cache gc")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommandExecuteFlagParsing(t *testing.T) {
	var output string
	var target string

	command := &Command{
		Name: "extract",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flagSet.StringVar(&output, "output", ".", "destination directory")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--output", "/tmp/out", "table.qza"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if output != "/tmp/out" {
		t.Errorf("output = %q, want %q", output, "/tmp/out")
	}
	if target != "table.qza" {
		t.Errorf("target = %q, want %q", target, "table.qza")
	}
}

func TestCommandExecuteRunFallback(t *testing.T) {
	// A command with both subcommands and Run: positional args that
	// match no subcommand go to Run.
	var ran []string

	command := &Command{
		Name: "cache",
		Subcommands: []*Command{
			{Name: "status", Run: func(args []string) error { return nil }},
		},
		Run: func(args []string) error {
			ran = args
			return nil
		},
	}

	if err := command.Execute([]string{"something-else"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(ran) != 1 || ran[0] != "something-else" {
		t.Errorf("fallback args = %v, want [something-else]", ran)
	}
}

func TestCommandExecuteUnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "validate",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("validate", pflag.ContinueOnError)
			flagSet.Bool("quiet", false, "suppress per-path output")
			flagSet.String("config", "", "config file path")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--qiuet"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --quiet") {
		t.Errorf("error = %q, want suggestion for '--quiet'", errStr)
	}
	if !strings.Contains(errStr, "qiuet") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommandExecuteUnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "validate",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("validate", pflag.ContinueOnError)
			flagSet.Bool("quiet", false, "suppress per-path output")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommandExecuteUnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "q2-artifact",
		Subcommands: []*Command{
			{Name: "peek"},
			{Name: "extract"},
			{Name: "validate"},
		},
	}

	err := root.Execute([]string{"exract"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"extract\"") {
		t.Errorf("error = %q, want suggestion for 'extract'", err.Error())
	}
}

func TestCommandExecuteUnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "q2-artifact",
		Subcommands: []*Command{
			{Name: "peek"},
			{Name: "extract"},
		},
	}

	err := root.Execute([]string{"zzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommandExecuteHelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "q2-artifact",
				Summary: "QIIME 2 artifact tooling",
				Subcommands: []*Command{
					{Name: "peek", Summary: "Print an archive's identity"},
				},
			}

			if err := root.Execute([]string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommandExecuteNoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "q2-artifact",
		Subcommands: []*Command{
			{Name: "peek", Summary: "Print an archive's identity"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommandPrintHelp(t *testing.T) {
	command := &Command{
		Name:        "q2-artifact",
		Description: "Inspect, validate, and manage QIIME 2 artifacts.",
		Subcommands: []*Command{
			{Name: "peek", Summary: "Print an archive's identity"},
			{Name: "validate", Summary: "Check an artifact against its checksums"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Print the identity of a saved artifact",
				Command:     "q2-artifact peek table.qza",
			},
			{
				Description: "Check an artifact for corruption",
				Command:     "q2-artifact validate table.qza",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Inspect, validate, and manage QIIME 2 artifacts.",
		"Usage:",
		"q2-artifact <command> [flags]",
		"Commands:",
		"peek",
		"Print an archive's identity",
		"validate",
		"Check an artifact against its checksums",
		"Examples:",
		"q2-artifact peek table.qza",
		"q2-artifact validate table.qza",
		"Run 'q2-artifact <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommandPrintHelpWithFlags(t *testing.T) {
	command := &Command{
		Name:    "extract",
		Summary: "Expand an archive to a directory",
		Usage:   "q2-artifact extract <archive> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flagSet.String("output", ".", "destination directory")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"q2-artifact extract <archive> [flags]",
		"Flags:",
		"output",
		"destination directory",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommandFullName(t *testing.T) {
	root := &Command{Name: "q2-artifact"}
	cache := &Command{Name: "cache", parent: root}
	gc := &Command{Name: "gc", parent: cache}

	if got := root.fullName(); got != "q2-artifact" {
		t.Errorf("root.fullName() = %q, want %q", got, "q2-artifact")
	}
	if got := cache.fullName(); got != "q2-artifact cache" {
		t.Errorf("cache.fullName() = %q, want %q", got, "q2-artifact cache")
	}
	if got := gc.fullName(); got != "q2-artifact cache gc" {
		t.Errorf("gc.fullName() = %q, want %q", got, "q2-artifact cache gc")
	}
}
