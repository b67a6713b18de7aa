// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archive

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Backend is the abstraction over an artifact's physical
// representation. [ZipBackend] reads compressed containers with random
// access; [DirBackend] reads already expanded directory trees. The
// variant set is closed: every archive is one or the other, and
// callers dispatch by sniffing with [IsZipArchive] and [IsDirArchive].
//
// A Backend's identity accessors never fail: construction already
// discovered the UUID and parsed the VERSION resource, so an invalid
// archive never becomes a Backend in the first place.
type Backend interface {
	// Path returns the container location this backend reads.
	Path() string

	// UUID returns the artifact identity discovered at construction.
	UUID() uuid.UUID

	// Version returns the archive format tag declared by VERSION.
	Version() string

	// FrameworkVersion returns the producing framework's version.
	FrameworkVersion() string

	// ListEntries returns the deduplicated, sorted top-level entry
	// names at the backend's path that begin with prefix. For a ZIP
	// container that level holds the UUID root directory itself; for
	// an expanded tree it holds the root's contents.
	ListEntries(prefix string) ([]string, error)

	// Open opens the named resource relative to the archive root (the
	// UUID directory) for reading. The path uses forward slashes.
	Open(relative string) (io.ReadCloser, error)

	// Extract copies every entry under the archive root into
	// destination's parent directory, such that the final path equals
	// destination. destination's base name must be the artifact UUID.
	// No entry can write outside destination's parent; an entry that
	// would do so fails the whole extraction with a
	// [PathTraversalError] before any byte is written.
	Extract(destination string) (string, error)

	// Mount materializes the archive at destination and returns its
	// Record. Mounting is idempotent: a destination that already
	// holds a VERSION resource is left untouched.
	Mount(destination string) (Record, error)
}

// discoverRootUUID applies the root discovery invariant to a set of
// top-level entry names: after dropping hidden entries exactly one
// must remain, and its name must be a canonical version 4 UUID.
func discoverRootUUID(names []string) (uuid.UUID, error) {
	var roots []string
	for _, name := range names {
		if !strings.HasPrefix(name, ".") {
			roots = append(roots, name)
		}
	}

	switch {
	case len(roots) == 0:
		return uuid.UUID{}, ErrMissingRoot
	case len(roots) > 1:
		sort.Strings(roots)
		return uuid.UUID{}, fmt.Errorf("%w: %s", ErrMultipleRoots, strings.Join(roots, ", "))
	}

	root := roots[0]
	if !IsUUID4(root) {
		return uuid.UUID{}, fmt.Errorf("%w: %q", ErrInvalidUUIDRoot, root)
	}
	return uuid.MustParse(root), nil
}

// underRoot reports whether a slash-separated container entry name is
// the root itself or lies beneath it. The comparison is on path
// segment boundaries: "770...db2-extra/file" is not under
// "770...db2".
func underRoot(name, root string) bool {
	return name == root || name == root+"/" || strings.HasPrefix(name, root+"/")
}

// asZipPath normalizes a relative path for container entry lookup.
// Container entries always use forward slashes, and the identity path
// "." maps to the empty string, which is the identity of a container
// entry name.
func asZipPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if path == "." {
		return ""
	}
	return path
}

// dedupeSorted returns the sorted unique values of names.
func dedupeSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var unique []string
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	sort.Strings(unique)
	return unique
}
