// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package checksum

import (
	"bytes"
	"strings"
	"testing"
)

const sampleDigest = "900150983cd24fb0d6963f7d28e17f72"

func TestToLinePlain(t *testing.T) {
	got := ToLine(Entry{Path: "data/table.biom", Digest: sampleDigest})
	want := sampleDigest + "  data/table.biom"
	if got != want {
		t.Errorf("ToLine = %q, want %q", got, want)
	}
}

func TestToLineEscapesBackslash(t *testing.T) {
	got := ToLine(Entry{Path: `data\table`, Digest: sampleDigest})
	want := `\` + sampleDigest + `  data\\table`
	if got != want {
		t.Errorf("ToLine = %q, want %q", got, want)
	}
}

func TestToLineEscapesNewline(t *testing.T) {
	got := ToLine(Entry{Path: "data\ntable", Digest: sampleDigest})
	want := `\` + sampleDigest + `  data\ntable`
	if got != want {
		t.Errorf("ToLine = %q, want %q", got, want)
	}
}

func TestLineRoundtrip(t *testing.T) {
	paths := []string{
		"VERSION",
		"data/table.biom",
		`data\back`,
		"data\nline",
		"a\\\nb",
		`tricky\nliteral`,
	}
	for _, path := range paths {
		entry := Entry{Path: path, Digest: sampleDigest}
		got, err := FromLine(ToLine(entry))
		if err != nil {
			t.Fatalf("FromLine(ToLine(%q)): %v", path, err)
		}
		if got != entry {
			t.Errorf("roundtrip of %q: got %+v, want %+v", path, got, entry)
		}
	}
}

func TestFromLineBinaryModeSeparator(t *testing.T) {
	got, err := FromLine(sampleDigest + " *data/table.biom")
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	want := Entry{Path: "data/table.biom", Digest: sampleDigest}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFromLineTrailingNewline(t *testing.T) {
	got, err := FromLine(sampleDigest + "  VERSION\n")
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if got.Path != "VERSION" {
		t.Errorf("path = %q, want VERSION", got.Path)
	}
}

func TestFromLineMalformed(t *testing.T) {
	for _, line := range []string{"", "no separator here", "  leading"} {
		if _, err := FromLine(line); err == nil {
			t.Errorf("FromLine(%q) succeeded, want error", line)
		}
	}
}

func TestManifestRoundtrip(t *testing.T) {
	entries := []Entry{
		{Path: "VERSION", Digest: "d41d8cd98f00b204e9800998ecf8427e"},
		{Path: "metadata.yaml", Digest: sampleDigest},
		{Path: `data\odd`, Digest: sampleDigest},
		{Path: "data/nested/x.txt", Digest: sampleDigest},
	}

	var buffer bytes.Buffer
	if err := WriteManifest(&buffer, entries); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	parsed, err := ParseManifest(&buffer)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(parsed) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(parsed), len(entries))
	}
	for i := range entries {
		if parsed[i] != entries[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, parsed[i], entries[i])
		}
	}
}

func TestParseManifestSkipsBlankLines(t *testing.T) {
	input := sampleDigest + "  a\n\n" + sampleDigest + "  b\n"
	parsed, err := ParseManifest(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("got %d entries, want 2", len(parsed))
	}
}

func TestParseManifestRejectsMalformedLine(t *testing.T) {
	input := sampleDigest + "  a\ngarbage\n"
	if _, err := ParseManifest(strings.NewReader(input)); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestCompare(t *testing.T) {
	expected := []Entry{
		{Path: "kept", Digest: "aa"},
		{Path: "gone", Digest: "bb"},
		{Path: "edited", Digest: "cc"},
	}
	observed := []Entry{
		{Path: "kept", Digest: "aa"},
		{Path: "edited", Digest: "dd"},
		{Path: "new", Digest: "ee"},
	}

	diff := Compare(expected, observed)

	if diff.Empty() {
		t.Fatal("diff should not be empty")
	}
	if got := diff.Added["new"]; got != "ee" {
		t.Errorf("Added[new] = %q, want ee", got)
	}
	if got := diff.Removed["gone"]; got != "bb" {
		t.Errorf("Removed[gone] = %q, want bb", got)
	}
	change, ok := diff.Changed["edited"]
	if !ok {
		t.Fatal("edited missing from Changed")
	}
	if change.Expected != "cc" || change.Observed != "dd" {
		t.Errorf("Changed[edited] = %+v, want {cc dd}", change)
	}
	if len(diff.Added) != 1 || len(diff.Removed) != 1 || len(diff.Changed) != 1 {
		t.Errorf("unexpected extra entries: %+v", diff)
	}
}

func TestCompareIdentical(t *testing.T) {
	entries := []Entry{{Path: "a", Digest: "aa"}, {Path: "b", Digest: "bb"}}
	diff := Compare(entries, entries)
	if !diff.Empty() {
		t.Errorf("diff of identical manifests not empty: %+v", diff)
	}
	if diff.Added == nil || diff.Removed == nil || diff.Changed == nil {
		t.Error("diff maps must be non-nil")
	}
}
