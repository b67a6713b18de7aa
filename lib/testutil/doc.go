// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package testutil provides shared test helpers.
//
// [WriteTree] and [WriteFile] build on-disk file trees from literal
// maps. Archive and cache tests construct many small trees (a data
// directory to import, a malformed archive to reject), and inlining
// the MkdirAll/WriteFile/error-check dance at every site buries what
// the tree actually contains.
//
// [ReadFile] reads a file back as a string, failing the test on error.
// [WriteZip] builds ZIP containers the same way, including hostile
// fixtures whose entry names real writers would never produce.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no framework-internal dependencies.
package testutil
