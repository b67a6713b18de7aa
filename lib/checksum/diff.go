// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package checksum

// Change records a digest mismatch for one path.
type Change struct {
	Expected string
	Observed string
}

// Diff is the difference between a recorded manifest and the files
// actually on disk. Added holds paths present on disk but absent from
// the manifest (path to observed digest). Removed holds paths the
// manifest promises but disk lacks (path to expected digest). Changed
// holds paths present in both whose digests disagree.
type Diff struct {
	Added   map[string]string
	Removed map[string]string
	Changed map[string]Change
}

// Empty reports whether the manifest and disk agree exactly.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare diffs the expected manifest entries against the observed
// ones. All three maps are always non-nil so callers can index without
// guarding.
func Compare(expected, observed []Entry) Diff {
	expectedByPath := make(map[string]string, len(expected))
	for _, entry := range expected {
		expectedByPath[entry.Path] = entry.Digest
	}
	observedByPath := make(map[string]string, len(observed))
	for _, entry := range observed {
		observedByPath[entry.Path] = entry.Digest
	}

	diff := Diff{
		Added:   make(map[string]string),
		Removed: make(map[string]string),
		Changed: make(map[string]Change),
	}
	for path, digest := range observedByPath {
		if _, ok := expectedByPath[path]; !ok {
			diff.Added[path] = digest
		}
	}
	for path, want := range expectedByPath {
		got, ok := observedByPath[path]
		switch {
		case !ok:
			diff.Removed[path] = want
		case got != want:
			diff.Changed[path] = Change{Expected: want, Observed: got}
		}
	}
	return diff
}
