// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes contents to root/relative, creating parent
// directories as needed. The relative path uses forward slashes on all
// platforms.
func WriteFile(t *testing.T, root, relative, contents string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", relative, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", relative, err)
	}
	return path
}

// WriteTree materializes files under root. Keys are slash-separated
// relative paths, values are file contents. A key ending in "/" creates
// an empty directory.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relative, contents := range files {
		if len(relative) > 0 && relative[len(relative)-1] == '/' {
			if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(relative)), 0o755); err != nil {
				t.Fatalf("creating directory %s: %v", relative, err)
			}
			continue
		}
		WriteFile(t, root, relative, contents)
	}
}

// ReadFile reads the file at root/relative and returns its contents.
func ReadFile(t *testing.T, root, relative string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relative)))
	if err != nil {
		t.Fatalf("reading %s: %v", relative, err)
	}
	return string(data)
}
