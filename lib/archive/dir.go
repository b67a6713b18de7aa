// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DirBackend reads an artifact that is already expanded on disk: the
// path is the UUID-named root directory itself, with VERSION directly
// beneath it. This is the representation of artifacts resident in a
// cache's data pool.
type DirBackend struct {
	path             string
	uuid             uuid.UUID
	version          string
	frameworkVersion string
}

var _ Backend = (*DirBackend)(nil)

// IsDirArchive reports whether path is a directory.
func IsDirArchive(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// NewDirBackend opens the expanded archive rooted at path. The
// directory's own name is the artifact identity and must be a
// canonical version 4 UUID; the VERSION resource directly beneath it
// must parse.
func NewDirBackend(path string) (*DirBackend, error) {
	if !IsDirArchive(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotAnArchive)
	}

	name := filepath.Base(filepath.Clean(path))
	if !IsUUID4(name) {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrInvalidUUIDRoot, name)
	}

	backend := &DirBackend{path: filepath.Clean(path), uuid: uuid.MustParse(name)}

	contents, err := os.ReadFile(filepath.Join(backend.path, VersionFileName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformedVersionFile)
	}
	backend.version, backend.frameworkVersion, err = parseVersionContents(string(contents))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return backend, nil
}

// Path returns the archive root directory.
func (b *DirBackend) Path() string { return b.path }

// UUID returns the artifact identity.
func (b *DirBackend) UUID() uuid.UUID { return b.uuid }

// Version returns the archive format tag.
func (b *DirBackend) Version() string { return b.version }

// FrameworkVersion returns the producing framework's version.
func (b *DirBackend) FrameworkVersion() string { return b.frameworkVersion }

// ListEntries returns the sorted names under the archive root that
// begin with prefix.
func (b *DirBackend) ListEntries(prefix string) ([]string, error) {
	entries, err := os.ReadDir(b.path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", b.path, err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	return dedupeSorted(names), nil
}

// Open opens the named resource under the archive root.
func (b *DirBackend) Open(relative string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(b.path, filepath.FromSlash(asZipPath(relative))))
}

// Extract copies the whole archive tree to destination, whose base
// name must be the artifact UUID.
func (b *DirBackend) Extract(destination string) (string, error) {
	destination = filepath.Clean(destination)
	if filepath.Base(destination) != b.uuid.String() {
		return "", fmt.Errorf("extract destination %s must be named by the archive UUID %s", destination, b.uuid)
	}
	if err := copyTree(b.path, destination); err != nil {
		return "", err
	}
	return destination, nil
}

// Mount materializes the archive at destination. A destination that
// already holds a VERSION resource is left untouched, and the
// backend's own root is by definition already materialized. Any other
// destination receives a copy of the tree: leaving it empty would let
// a later publish-to-stable step install an empty artifact.
func (b *DirBackend) Mount(destination string) (Record, error) {
	_, err := os.Stat(filepath.Join(destination, VersionFileName))
	mounted := err == nil

	if !mounted && filepath.Clean(destination) != b.path {
		if err := copyTree(b.path, destination); err != nil {
			return Record{}, err
		}
	}

	return Record{
		Root:             destination,
		VersionFile:      filepath.Join(destination, VersionFileName),
		UUID:             b.uuid,
		Version:          b.version,
		FrameworkVersion: b.frameworkVersion,
	}, nil
}

// copyTree copies the directory tree at src into dst, which may
// already exist. Regular files and directories only; an artifact tree
// contains nothing else.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, relative)

		switch {
		case entry.IsDir():
			return os.MkdirAll(target, 0o755)
		case entry.Type().IsRegular():
			return copyFile(path, target)
		default:
			return fmt.Errorf("copying %s: unsupported entry type %v", path, entry.Type())
		}
	})
}

// copyFile copies one regular file, preserving its permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}
