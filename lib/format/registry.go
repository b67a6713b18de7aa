// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package format

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cafferychen777/qiime2/lib/archive"
	"github.com/cafferychen777/qiime2/lib/provenance"
)

// CurrentVersion is the format tag new archives are written with.
const CurrentVersion = "5"

// Entry is one registered archive format version.
type Entry struct {
	// Version is the frozen tag this entry serves.
	Version string

	// New binds the handler to a materialized archive tree.
	New func(record archive.Record) (Format, error)

	// LoadMetadata reads the identity triple through a backend
	// without materializing the archive.
	LoadMetadata func(backend archive.Backend) (*Metadata, error)

	// Write materializes a fresh archive at the record's root, which
	// already carries its VERSION resource.
	Write func(record archive.Record, semanticType, formatName string, data DataInitializer, capture provenance.Capture) error
}

// Registry maps frozen format tags to their handlers. Tags are
// append-only: registering a tag twice panics, because a published
// tag's meaning never changes.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an entry. It panics if the entry's tag is already
// registered.
func (r *Registry) Register(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[entry.Version]; exists {
		panic(fmt.Sprintf("format: version %q registered twice", entry.Version))
	}
	r.entries[entry.Version] = entry
}

// Resolve looks up the handler for a tag. A miss is not an error:
// the archive may simply come from a newer release, and the caller
// decides how to report that.
func (r *Registry) Resolve(version string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[version]
	return entry, ok
}

// Versions returns the registered tags in sorted order.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := make([]string, 0, len(r.entries))
	for version := range r.entries {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}

// defaultRegistry carries the complete published lineage, registered
// at package initialization.
var defaultRegistry = NewRegistry()

// Register adds an entry to the default registry.
func Register(entry Entry) { defaultRegistry.Register(entry) }

// Resolve looks up a tag in the default registry.
func Resolve(version string) (Entry, bool) { return defaultRegistry.Resolve(version) }

// Versions returns the default registry's tags in sorted order.
func Versions() []string { return defaultRegistry.Versions() }

// newEntry builds the Entry for one handlerSpec.
func newEntry(spec handlerSpec) Entry {
	return Entry{
		Version:      spec.version,
		New:          spec.newBound,
		LoadMetadata: spec.loadMetadata,
		Write:        spec.write,
	}
}

func init() {
	// The published lineage. v0 is the original bare layout; v1 added
	// the provenance tree; v2 and v3 revised the action record their
	// producers write; v4 added citations; v5 added the integrity
	// manifest.
	Register(newEntry(handlerSpec{version: "0"}))
	Register(newEntry(handlerSpec{version: "1", provenance: true}))
	Register(newEntry(handlerSpec{version: "2", provenance: true}))
	Register(newEntry(handlerSpec{version: "3", provenance: true}))
	Register(newEntry(handlerSpec{version: "4", provenance: true, citations: true}))
	Register(newEntry(handlerSpec{version: "5", provenance: true, citations: true, checksums: true}))
}
