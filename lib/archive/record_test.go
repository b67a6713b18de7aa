// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestParseVersionContents(t *testing.T) {
	version, frameworkVersion, err := parseVersionContents("QIIME 2\narchive: 5\nframework: 2023.2.0\n")
	if err != nil {
		t.Fatalf("parseVersionContents: %v", err)
	}
	if version != "5" {
		t.Errorf("version = %q, want %q", version, "5")
	}
	if frameworkVersion != "2023.2.0" {
		t.Errorf("framework version = %q, want %q", frameworkVersion, "2023.2.0")
	}
}

func TestParseVersionContentsMalformed(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"empty", ""},
		{"missing line", "QIIME 2\narchive: 5\n"},
		{"extra line", "QIIME 2\narchive: 5\nframework: 2023.2.0\nextra: 1\n"},
		{"no trailing newline", "QIIME 2\narchive: 5\nframework: 2023.2.0"},
		{"wrong header", "QIIME 3\narchive: 5\nframework: 2023.2.0\n"},
		{"no archive colon", "QIIME 2\narchive 5\nframework: 2023.2.0\n"},
		{"wrong archive key", "QIIME 2\nversion: 5\nframework: 2023.2.0\n"},
		{"wrong framework key", "QIIME 2\narchive: 5\nplatform: 2023.2.0\n"},
		{"empty archive value", "QIIME 2\narchive:\nframework: 2023.2.0\n"},
		{"empty framework value", "QIIME 2\narchive: 5\nframework:   \n"},
		{"trailing garbage", "QIIME 2\narchive: 5\nframework: 2023.2.0\n\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := parseVersionContents(tc.contents)
			if !errors.Is(err, ErrMalformedVersionFile) {
				t.Errorf("parseVersionContents(%q) = %v, want ErrMalformedVersionFile", tc.contents, err)
			}
		})
	}
}

func TestParseVersionContentsTolerance(t *testing.T) {
	// The header line may carry surrounding whitespace and the values
	// are trimmed; these inputs are within the template's tolerance.
	version, frameworkVersion, err := parseVersionContents(" QIIME 2 \narchive:  5 \nframework:\t2023.2.0\n")
	if err != nil {
		t.Fatalf("parseVersionContents: %v", err)
	}
	if version != "5" || frameworkVersion != "2023.2.0" {
		t.Errorf("got (%q, %q), want (5, 2023.2.0)", version, frameworkVersion)
	}
}

func TestSetupWritesExactTemplate(t *testing.T) {
	id := uuid.MustParse("770509e6-85f4-432c-9663-cdc04eb07db2")
	root := filepath.Join(t.TempDir(), id.String())
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	record, err := Setup(id, root, "5", "2023.2.0")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	data, err := os.ReadFile(record.VersionFile)
	if err != nil {
		t.Fatalf("reading VERSION: %v", err)
	}
	want := "QIIME 2\narchive: 5\nframework: 2023.2.0\n"
	if string(data) != want {
		t.Errorf("VERSION contents = %q, want %q", data, want)
	}

	if record.Root != root {
		t.Errorf("record root = %q, want %q", record.Root, root)
	}
	if record.UUID != id {
		t.Errorf("record uuid = %s, want %s", record.UUID, id)
	}
	if record.Version != "5" || record.FrameworkVersion != "2023.2.0" {
		t.Errorf("record versions = (%q, %q), want (5, 2023.2.0)", record.Version, record.FrameworkVersion)
	}

	// The written resource must parse back to the same values.
	version, frameworkVersion, err := parseVersionContents(string(data))
	if err != nil {
		t.Fatalf("reparsing written VERSION: %v", err)
	}
	if version != "5" || frameworkVersion != "2023.2.0" {
		t.Errorf("reparse = (%q, %q), want (5, 2023.2.0)", version, frameworkVersion)
	}
}

func TestIsUUID4(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"770509e6-85f4-432c-9663-cdc04eb07db2", true},
		{"770509E6-85F4-432C-9663-CDC04EB07DB2", false}, // uppercase is not canonical
		{"f47ac10b-58cc-1372-a567-0e02b2c3d479", false}, // version 1
		{"770509e6-85f4-432c-0663-cdc04eb07db2", false}, // reserved variant bits
		{"{770509e6-85f4-432c-9663-cdc04eb07db2}", false},
		{"urn:uuid:770509e6-85f4-432c-9663-cdc04eb07db2", false},
		{"not-a-uuid", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsUUID4(tc.input); got != tc.want {
			t.Errorf("IsUUID4(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
