// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archiver

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cafferychen777/qiime2/lib/archive"
	"github.com/cafferychen777/qiime2/lib/cache"
	"github.com/cafferychen777/qiime2/lib/checksum"
	"github.com/cafferychen777/qiime2/lib/cite"
	"github.com/cafferychen777/qiime2/lib/format"
)

// Handle is a live, reference-counted view of a materialized
// artifact. Every handle owns one cache alias; the alias is released
// when the last reference closes, and exactly once. Copies of a
// handle share the count: duplicate with Retain, never by value.
type Handle struct {
	cache  *cache.Cache
	record archive.Record
	format format.Format
	alias  cache.Alias

	mu   sync.Mutex
	refs int
}

func newHandle(c *cache.Cache, record archive.Record, bound format.Format, alias cache.Alias) *Handle {
	return &Handle{cache: c, record: record, format: bound, alias: alias, refs: 1}
}

// UUID returns the artifact identity.
func (h *Handle) UUID() uuid.UUID { return h.record.UUID }

// Type returns the artifact's semantic type.
func (h *Handle) Type() string { return h.format.Type() }

// Format returns the artifact's view format name, or "" when the
// artifact records none.
func (h *Handle) Format() string { return h.format.FormatName() }

// Version returns the archive format tag the artifact was written
// with.
func (h *Handle) Version() string { return h.record.Version }

// FrameworkVersion returns the framework release that wrote the
// artifact.
func (h *Handle) FrameworkVersion() string { return h.record.FrameworkVersion }

// RootDir returns the materialized archive root.
func (h *Handle) RootDir() string { return h.record.Root }

// DataDir returns the payload directory.
func (h *Handle) DataDir() string { return h.format.DataDir() }

// ProvenanceDir returns the provenance directory and whether the
// artifact's format records provenance.
func (h *Handle) ProvenanceDir() (string, bool) { return h.format.ProvenanceDir() }

// Citations returns the citations recorded in the archive; empty for
// formats without citation support.
func (h *Handle) Citations() (*cite.Citations, error) {
	if err := h.guard(); err != nil {
		return nil, err
	}
	return h.format.Citations()
}

// Save writes the artifact as a zip container at destination.
func (h *Handle) Save(destination string) error {
	if err := h.guard(); err != nil {
		return err
	}
	if err := archive.SaveZip(h.record.Root, destination); err != nil {
		return fmt.Errorf("saving %s: %w", h.record.UUID, err)
	}
	return nil
}

// ValidateChecksums diffs the materialized tree against the integrity
// manifest the artifact was written with. Artifacts whose format
// records no manifest validate vacuously.
func (h *Handle) ValidateChecksums() (checksum.Diff, error) {
	if err := h.guard(); err != nil {
		return checksum.Diff{}, err
	}
	return format.ValidateChecksums(h.format)
}

// Retain adds a reference and returns h.
func (h *Handle) Retain() *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refs++
	return h
}

// Close drops one reference. The last close releases the cache alias;
// closing an already-closed handle is an error.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs == 0 {
		return fmt.Errorf("artifact handle for %s is already closed", h.record.UUID)
	}
	h.refs--
	if h.refs > 0 {
		return nil
	}
	return h.cache.Release(h.alias)
}

// guard rejects use of a closed handle.
func (h *Handle) guard() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs == 0 {
		return fmt.Errorf("artifact handle for %s is closed", h.record.UUID)
	}
	return nil
}
