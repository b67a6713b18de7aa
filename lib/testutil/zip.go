// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package testutil

import (
	"os"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
)

// WriteZip builds a ZIP container at path. Keys are slash-separated
// entry names, values are entry contents; a key ending in "/" creates
// a directory entry. Entries are written in sorted order so fixtures
// are deterministic. Entry names are written exactly as given; tests
// for traversal handling depend on being able to store ".." segments.
func WriteZip(t *testing.T, path string, entries map[string]string) string {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating zip %s: %v", path, err)
	}
	defer out.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	writer := zip.NewWriter(out)
	for _, name := range names {
		target, err := writer.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := target.Write([]byte(entries[name])); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("finalizing zip %s: %v", path, err)
	}
	return path
}
