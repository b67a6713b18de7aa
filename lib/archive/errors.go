// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archive

import (
	"errors"
	"fmt"
)

// Construction-time failures. Backends wrap these with the offending
// path; match with errors.Is.
var (
	// ErrNotAnArchive reports that a path is neither a readable ZIP
	// container nor a directory.
	ErrNotAnArchive = errors.New("not an artifact archive")

	// ErrMissingRoot reports a container with no visible root
	// directory.
	ErrMissingRoot = errors.New("archive has no visible root directory")

	// ErrMultipleRoots reports a container with more than one visible
	// root directory.
	ErrMultipleRoots = errors.New("archive has multiple root directories")

	// ErrInvalidUUIDRoot reports a container whose sole root directory
	// is not named by a canonical version 4 UUID.
	ErrInvalidUUIDRoot = errors.New("archive root directory name is not a valid version 4 UUID")

	// ErrMalformedVersionFile reports any deviation of the VERSION
	// resource from its exact template: wrong header, wrong line
	// count, missing keys, or a missing file altogether. The parse is
	// deliberately all-or-nothing. A VERSION file that is almost
	// right gets no partial diagnostics, because acting on a half
	// parsed version invites dispatching to the wrong format handler.
	ErrMalformedVersionFile = errors.New("archive does not contain a correctly formatted VERSION file")
)

// PathTraversalError reports a container entry whose path would escape
// the extraction root. Extraction validates every entry before writing
// any byte, so this error guarantees the destination was not touched.
type PathTraversalError struct {
	// Entry is the offending container entry name.
	Entry string

	// Root is the directory extraction was confined to.
	Root string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("container entry %q escapes extraction root %s", e.Entry, e.Root)
}
