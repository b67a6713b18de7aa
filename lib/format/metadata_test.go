// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package format

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestMetadataRoundTrip(t *testing.T) {
	original := Metadata{
		UUID:   uuid.MustParse("770509e6-85f4-432c-9663-cdc04eb07db2"),
		Type:   "FeatureTable[Frequency]",
		Format: "BIOMV210DirFmt",
	}
	encoded, err := original.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	parsed, err := ParseMetadata(strings.NewReader(string(encoded)))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if *parsed != original {
		t.Errorf("round trip = %+v, want %+v", *parsed, original)
	}
}

func TestMetadataNullFormat(t *testing.T) {
	// Visualizations carry no view format; the wire key is null.
	source := "uuid: 770509e6-85f4-432c-9663-cdc04eb07db2\ntype: Visualization\nformat: null\n"
	parsed, err := ParseMetadata(strings.NewReader(source))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if parsed.Format != "" {
		t.Errorf("format = %q, want empty", parsed.Format)
	}

	encoded, err := parsed.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(encoded), "format: null") {
		t.Errorf("rendered metadata = %q, want a null format key", encoded)
	}
}

func TestParseMetadataFailures(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"not yaml", "uuid: [unclosed"},
		{"bad uuid", "uuid: nope\ntype: X\nformat: F\n"},
		{"missing type", "uuid: 770509e6-85f4-432c-9663-cdc04eb07db2\nformat: F\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseMetadata(strings.NewReader(tc.source)); err == nil {
				t.Error("ParseMetadata succeeded")
			}
		})
	}
}
