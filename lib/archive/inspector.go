// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Inspector is a relaxed, read-only view of an expanded archive tree
// for metadata-inspection front-ends. It reads the same VERSION
// resource as the real backends but skips strict root discovery (the
// directory's name is taken as the identity without UUID validation),
// and it never participates in cache lifecycle management.
type Inspector struct {
	path             string
	name             string
	version          string
	frameworkVersion string
}

// NewInspector opens the expanded tree rooted at path. Only the
// VERSION resource is validated.
func NewInspector(path string) (*Inspector, error) {
	if !IsDirArchive(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotAnArchive)
	}

	inspector := &Inspector{
		path: filepath.Clean(path),
		name: filepath.Base(filepath.Clean(path)),
	}

	contents, err := os.ReadFile(filepath.Join(inspector.path, VersionFileName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformedVersionFile)
	}
	inspector.version, inspector.frameworkVersion, err = parseVersionContents(string(contents))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return inspector, nil
}

// Path returns the inspected directory.
func (i *Inspector) Path() string { return i.path }

// UUID returns the directory name, which for a well-formed tree is the
// artifact's UUID string. No validation is applied.
func (i *Inspector) UUID() string { return i.name }

// Version returns the archive format tag.
func (i *Inspector) Version() string { return i.version }

// FrameworkVersion returns the producing framework's version.
func (i *Inspector) FrameworkVersion() string { return i.frameworkVersion }

// ListEntries returns the sorted names under the root.
func (i *Inspector) ListEntries(prefix string) ([]string, error) {
	entries, err := os.ReadDir(i.path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", i.path, err)
	}
	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	return dedupeSorted(names), nil
}

// Open opens the named resource under the root.
func (i *Inspector) Open(relative string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(i.path, filepath.FromSlash(asZipPath(relative))))
}
