// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// VersionFileName is the name of the version resource directly under
// the archive root. The name and the template it holds must never
// change; see the package documentation.
const VersionFileName = "VERSION"

// versionTemplate is the exact contents of a VERSION resource. The
// two operands are the archive format version and the framework
// version that produced the artifact.
const versionTemplate = "QIIME 2\narchive: %s\nframework: %s\n"

// Record locates the fixed points of a materialized archive: where its
// root directory and VERSION resource live, and the identity and
// version information those declare. Records are produced by [Setup]
// and by [Backend.Mount] and are immutable values.
type Record struct {
	// Root is the artifact's root directory, named by its UUID.
	Root string

	// VersionFile is the path of the VERSION resource under Root.
	VersionFile string

	// UUID is the artifact identity.
	UUID uuid.UUID

	// Version is the archive format tag declared by VERSION.
	Version string

	// FrameworkVersion is the producing framework's version string.
	FrameworkVersion string
}

// Setup initializes path as the root of a new archive: it writes the
// VERSION resource for the given versions and returns the resulting
// Record. The directory must already exist; everything else inside it
// is the format handler's business.
func Setup(id uuid.UUID, path, version, frameworkVersion string) (Record, error) {
	versionFile := filepath.Join(path, VersionFileName)
	contents := fmt.Sprintf(versionTemplate, version, frameworkVersion)
	if err := os.WriteFile(versionFile, []byte(contents), 0o644); err != nil {
		return Record{}, fmt.Errorf("writing VERSION resource: %w", err)
	}

	return Record{
		Root:             path,
		VersionFile:      versionFile,
		UUID:             id,
		Version:          version,
		FrameworkVersion: frameworkVersion,
	}, nil
}

// parseVersionContents parses the body of a VERSION resource. Exactly
// three lines and a trailing newline, header "QIIME 2", then the
// archive and framework versions. Any deviation returns
// ErrMalformedVersionFile with no further diagnostics.
func parseVersionContents(contents string) (version, frameworkVersion string, err error) {
	segments := strings.Split(contents, "\n")
	if len(segments) != 4 || segments[3] != "" {
		return "", "", ErrMalformedVersionFile
	}
	if strings.TrimSpace(segments[0]) != "QIIME 2" {
		return "", "", ErrMalformedVersionFile
	}

	version, err = versionLineValue(segments[1], "archive")
	if err != nil {
		return "", "", err
	}
	frameworkVersion, err = versionLineValue(segments[2], "framework")
	if err != nil {
		return "", "", err
	}
	return version, frameworkVersion, nil
}

// versionLineValue extracts the value from a "key: value" line of the
// VERSION resource.
func versionLineValue(line, key string) (string, error) {
	gotKey, value, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(gotKey) != key {
		return "", ErrMalformedVersionFile
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrMalformedVersionFile
	}
	return value, nil
}

// IsUUID4 reports whether s is the canonical string form of a version
// 4 UUID. Canonical means exactly what [uuid.UUID.String] produces
// (lowercase hex, dash-separated, no URN prefix or braces), the only
// spelling accepted for archive root directory names.
func IsUUID4(s string) bool {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Version() == 4 &&
		parsed.Variant() == uuid.RFC4122 &&
		parsed.String() == s
}
