// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package archive reads and writes artifact containers independent of
// their archive format version.
//
// An artifact is a self-describing container of scientific data. On
// disk it is either a ZIP container (a .qza/.qzv file) or an already
// expanded directory tree. Both physical representations share one
// logical layout:
//
//	<container root>/
//	└── 770509e6-85f4-432c-9663-cdc04eb07db2/
//	    ├── VERSION
//	    └── <whatever the archive format defines>
//
// The root directory name is the artifact's version 4 UUID, and the
// VERSION resource directly beneath it declares which archive format
// wrote the rest:
//
//	QIIME 2
//	archive: <archive version>
//	framework: <framework version>
//
// VERSION is intentionally not YAML, INI, or any real format. A real
// format invites the situation where the archive format changes
// serialization and VERSION is updated with it "for consistency". The
// root structure and the VERSION resource are the fixed points that
// every format version shares; if they change, there is no longer a
// reliable way to dispatch an arbitrary archive to the format handler
// that understands it. Breaking that contract orphans every artifact
// ever written.
//
// [ZipBackend] and [DirBackend] implement [Backend] over the two
// physical representations. Construction discovers the UUID and parses
// the VERSION resource, so a successfully constructed backend is
// always a structurally valid archive; the error taxonomy in errors.go
// enumerates the ways construction can fail. [Inspector] is a relaxed
// read-only variant for tools that inspect metadata inside an expanded
// tree without lifecycle management.
//
// The ZIP codec is github.com/klauspost/compress/zip, which handles
// ZIP64 containers transparently; archives routinely carry entries
// beyond 4 GiB.
package archive
