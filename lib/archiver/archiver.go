// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package archiver manages artifact lifecycles: reading archives in
// either on-disk form, materializing them through a cache, creating
// new ones from raw data, and handing out reference-counted handles
// to the materialized trees.
//
// The lifecycle of a load is allocate, mount, promote, bind. A
// failure anywhere unwinds completely: the process allocation is
// removed, and once the tree has been promoted the failure path
// releases the alias instead, leaving at most an unreferenced stable
// tree for garbage collection to sweep. Callers either get a live
// handle or owe the cache nothing.
package archiver

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cafferychen777/qiime2/lib/archive"
	"github.com/cafferychen777/qiime2/lib/cache"
	"github.com/cafferychen777/qiime2/lib/format"
	"github.com/cafferychen777/qiime2/lib/provenance"
	"github.com/cafferychen777/qiime2/lib/version"
)

// FutureVersionError reports an archive written in a format this
// build does not know. The archive itself is well-formed; the reader
// is too old.
type FutureVersionError struct {
	// Path is the archive that could not be interpreted.
	Path string

	// Version is the archive format tag the archive declares.
	Version string

	// FrameworkVersion is the framework release that wrote it.
	FrameworkVersion string
}

func (e *FutureVersionError) Error() string {
	return fmt.Sprintf("%s was created by QIIME 2 %s; this build cannot interpret archive format %q (latest supported is %q)",
		e.Path, e.FrameworkVersion, e.Version, format.CurrentVersion)
}

// GetBackend opens the archive at path in whichever on-disk form it
// has: a zip container, or an expanded directory. Anything else fails
// with archive.ErrNotAnArchive.
func GetBackend(path string) (archive.Backend, error) {
	if archive.IsZipArchive(path) {
		return archive.NewZipBackend(path)
	}
	if archive.IsDirArchive(path) {
		return archive.NewDirBackend(path)
	}
	return nil, fmt.Errorf("%s: %w", path, archive.ErrNotAnArchive)
}

// Peek reads an archive's identity triple without materializing it:
// no cache is touched and nothing is extracted. An archive from a
// newer framework fails with *FutureVersionError.
func Peek(path string) (*format.Metadata, error) {
	backend, err := GetBackend(path)
	if err != nil {
		return nil, err
	}
	entry, ok := format.Resolve(backend.Version())
	if !ok {
		return nil, &FutureVersionError{
			Path:             path,
			Version:          backend.Version(),
			FrameworkVersion: backend.FrameworkVersion(),
		}
	}
	return entry.LoadMetadata(backend)
}

// Extract materializes the archive at path as destination/<uuid> and
// returns that root. Extraction is format-agnostic: it works for
// archives of any version, including ones newer than this build,
// because it only relies on the container layout.
func Extract(path, destination string) (string, error) {
	backend, err := GetBackend(path)
	if err != nil {
		return "", err
	}
	return backend.Extract(filepath.Join(destination, backend.UUID().String()))
}

// Archiver loads and creates artifacts through a cache.
type Archiver struct {
	cache *cache.Cache
}

// New returns an Archiver backed by the given cache.
func New(c *cache.Cache) *Archiver {
	return &Archiver{cache: c}
}

// Load materializes the archive at path into the cache and returns a
// handle on it. Loading the same artifact concurrently is safe: the
// first materialized copy wins and every loader's handle references
// it.
func (a *Archiver) Load(path string) (*Handle, error) {
	backend, err := GetBackend(path)
	if err != nil {
		return nil, err
	}
	id := backend.UUID()

	tmp, err := a.cache.Allocate(id)
	if err != nil {
		return nil, err
	}
	success := false
	defer func() {
		if !success {
			_ = a.cache.Remove(id)
		}
	}()

	entry, ok := format.Resolve(backend.Version())
	if !ok {
		return nil, &FutureVersionError{
			Path:             path,
			Version:          backend.Version(),
			FrameworkVersion: backend.FrameworkVersion(),
		}
	}

	record, err := backend.Mount(tmp)
	if err != nil {
		return nil, err
	}

	handle, err := a.promote(entry, record, tmp)
	if err != nil {
		return nil, err
	}
	success = true
	return handle, nil
}

// LoadRaw adopts a tree already resident in the cache's stable pool,
// identified by the expanded archive at path. No copying happens; the
// handle references the resident tree directly.
func (a *Archiver) LoadRaw(path string) (*Handle, error) {
	backend, err := archive.NewDirBackend(path)
	if err != nil {
		return nil, err
	}
	id := backend.UUID()

	alias, err := a.cache.AliasFor(id)
	if err != nil {
		return nil, err
	}
	success := false
	defer func() {
		if !success {
			_ = a.cache.Release(alias)
		}
	}()

	entry, ok := format.Resolve(backend.Version())
	if !ok {
		return nil, &FutureVersionError{
			Path:             path,
			Version:          backend.Version(),
			FrameworkVersion: backend.FrameworkVersion(),
		}
	}

	record, err := backend.Mount(a.cache.StablePath(id))
	if err != nil {
		return nil, err
	}

	bound, err := entry.New(record)
	if err != nil {
		return nil, err
	}

	success = true
	return newHandle(a.cache, record, bound, alias), nil
}

// FromData creates a fresh artifact in the current archive format:
// a new identity, the data directory populated by the initializer,
// and provenance recorded by the capture. The handle references the
// promoted tree.
func (a *Archiver) FromData(semanticType, formatName string, data format.DataInitializer, capture provenance.Capture) (*Handle, error) {
	if semanticType == "" {
		return nil, fmt.Errorf("artifact semantic type must not be empty")
	}

	entry, ok := format.Resolve(format.CurrentVersion)
	if !ok {
		return nil, fmt.Errorf("current archive format %q is not registered", format.CurrentVersion)
	}

	id := uuid.New()
	tmp, err := a.cache.Allocate(id)
	if err != nil {
		return nil, err
	}
	success := false
	defer func() {
		if !success {
			_ = a.cache.Remove(id)
		}
	}()

	record, err := archive.Setup(id, tmp, format.CurrentVersion, version.Framework)
	if err != nil {
		return nil, err
	}
	if err := entry.Write(record, semanticType, formatName, data, capture); err != nil {
		return nil, err
	}

	handle, err := a.promote(entry, record, tmp)
	if err != nil {
		return nil, err
	}
	success = true
	return handle, nil
}

// promote installs the materialized tree at tmp into the stable pool
// and binds the format handler there. The caller's allocation is
// consumed by the promotion; on a failure past that point the fresh
// alias is released so nothing stays referenced.
func (a *Archiver) promote(entry format.Entry, record archive.Record, tmp string) (*Handle, error) {
	alias, stable, err := a.cache.RenameToStable(record.UUID, tmp)
	if err != nil {
		return nil, err
	}
	success := false
	defer func() {
		if !success {
			_ = a.cache.Release(alias)
		}
	}()

	record = rebase(record, stable)
	bound, err := entry.New(record)
	if err != nil {
		return nil, err
	}

	success = true
	return newHandle(a.cache, record, bound, alias), nil
}

// rebase points a record at the same archive under a new root.
func rebase(record archive.Record, root string) archive.Record {
	record.Root = root
	record.VersionFile = filepath.Join(root, archive.VersionFileName)
	return record
}

// Cache returns the cache this archiver loads through.
func (a *Archiver) Cache() *cache.Cache { return a.cache }
