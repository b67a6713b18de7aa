// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package format dispatches archive format versions to their
// handlers.
//
// Every archive names the format version that wrote it in its VERSION
// resource. The registry maps that frozen tag to a handler describing
// how the version lays out an archive tree: where data lives, whether
// provenance and citations are recorded, and whether an integrity
// manifest is written. Published tags never change meaning; a new
// layout gets a new tag and a new entry.
package format

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cafferychen777/qiime2/lib/archive"
	"github.com/cafferychen777/qiime2/lib/checksum"
	"github.com/cafferychen777/qiime2/lib/cite"
	"github.com/cafferychen777/qiime2/lib/provenance"
)

// Resource names within an archive root.
const (
	MetadataFileName  = "metadata.yaml"
	CitationsFileName = "citations.bib"
	ChecksumFileName  = "checksums.md5"
	DataDirName       = "data"
	ProvenanceDirName = "provenance"
)

// DataInitializer populates a freshly created archive's data
// directory. It receives the absolute path of the directory, already
// created and empty.
type DataInitializer func(dataDir string) error

// Format is a handler bound to one materialized archive tree. All
// accessors are pure projections of the bound record and metadata.
type Format interface {
	UUID() uuid.UUID
	Type() string
	FormatName() string

	// Root returns the archive root directory.
	Root() string
	// DataDir returns the payload directory beneath the root.
	DataDir() string
	// ProvenanceDir returns the provenance directory and whether this
	// format version records provenance at all.
	ProvenanceDir() (string, bool)

	// Citations returns the citations recorded in the archive. Format
	// versions without citation support return an empty collection.
	Citations() (*cite.Citations, error)

	// ChecksumFile returns the name of the integrity manifest, or ""
	// when this format version records none.
	ChecksumFile() string
}

// handlerSpec describes what one format version lays down in an
// archive tree. v1 through v3 differ only in the action-record
// details their producers wrote, so their Go handlers share a shape;
// the tags stay distinct because published tags are frozen.
type handlerSpec struct {
	version    string
	provenance bool
	citations  bool
	checksums  bool
}

// boundFormat implements Format for every version in the lineage,
// specialized by its handlerSpec.
type boundFormat struct {
	spec     handlerSpec
	record   archive.Record
	metadata Metadata
}

var _ Format = (*boundFormat)(nil)

func (f *boundFormat) UUID() uuid.UUID    { return f.metadata.UUID }
func (f *boundFormat) Type() string       { return f.metadata.Type }
func (f *boundFormat) FormatName() string { return f.metadata.Format }
func (f *boundFormat) Root() string       { return f.record.Root }

func (f *boundFormat) DataDir() string {
	return filepath.Join(f.record.Root, DataDirName)
}

func (f *boundFormat) ProvenanceDir() (string, bool) {
	if !f.spec.provenance {
		return "", false
	}
	return filepath.Join(f.record.Root, ProvenanceDirName), true
}

func (f *boundFormat) Citations() (*cite.Citations, error) {
	if !f.spec.citations {
		return cite.New(), nil
	}
	file, err := os.Open(filepath.Join(f.record.Root, CitationsFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return cite.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening archive citations: %w", err)
	}
	defer file.Close()
	return cite.Parse(file)
}

func (f *boundFormat) ChecksumFile() string {
	if !f.spec.checksums {
		return ""
	}
	return ChecksumFileName
}

// newBound binds a handler to the materialized tree a record points
// at, verifying that the tree's metadata agrees with the record's
// identity.
func (s handlerSpec) newBound(record archive.Record) (Format, error) {
	file, err := os.Open(filepath.Join(record.Root, MetadataFileName))
	if err != nil {
		return nil, fmt.Errorf("opening archive metadata: %w", err)
	}
	defer file.Close()

	metadata, err := ParseMetadata(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", record.Root, err)
	}
	if metadata.UUID != record.UUID {
		return nil, fmt.Errorf("metadata uuid %s does not match archive uuid %s", metadata.UUID, record.UUID)
	}
	return &boundFormat{spec: s, record: record, metadata: *metadata}, nil
}

// loadMetadata reads the identity triple through a backend, without
// materializing the archive.
func (s handlerSpec) loadMetadata(backend archive.Backend) (*Metadata, error) {
	stream, err := backend.Open(MetadataFileName)
	if err != nil {
		return nil, fmt.Errorf("opening archive metadata: %w", err)
	}
	defer stream.Close()

	metadata, err := ParseMetadata(stream)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", backend.Path(), err)
	}
	if metadata.UUID != backend.UUID() {
		return nil, fmt.Errorf("metadata uuid %s does not match archive uuid %s", metadata.UUID, backend.UUID())
	}
	return metadata, nil
}

// write materializes a fresh archive at the record's root, which
// already carries its VERSION resource. The integrity manifest, when
// this version records one, is written last so it covers every other
// resource.
func (s handlerSpec) write(record archive.Record, semanticType, formatName string, data DataInitializer, capture provenance.Capture) error {
	metadata := Metadata{UUID: record.UUID, Type: semanticType, Format: formatName}
	encoded, err := metadata.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(record.Root, MetadataFileName), encoded, 0o644); err != nil {
		return fmt.Errorf("writing archive metadata: %w", err)
	}

	dataDir := filepath.Join(record.Root, DataDirName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if data != nil {
		if err := data(dataDir); err != nil {
			return fmt.Errorf("initializing data: %w", err)
		}
	}

	if s.provenance {
		if err := s.writeProvenance(record, metadata, capture); err != nil {
			return err
		}
	}

	if s.citations && capture != nil && capture.Citations().Len() > 0 {
		file, err := os.Create(filepath.Join(record.Root, CitationsFileName))
		if err != nil {
			return fmt.Errorf("writing archive citations: %w", err)
		}
		err = capture.Citations().Render(file)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("writing archive citations: %w", err)
		}
	}

	if s.checksums {
		entries, err := checksum.MD5SumDirectory(record.Root)
		if err != nil {
			return fmt.Errorf("hashing archive contents: %w", err)
		}
		file, err := os.Create(filepath.Join(record.Root, ChecksumFileName))
		if err != nil {
			return fmt.Errorf("writing checksum manifest: %w", err)
		}
		err = checksum.WriteManifest(file, entries)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("writing checksum manifest: %w", err)
		}
	}
	return nil
}

// writeProvenance lays down the provenance tree: copies of the
// archive's metadata and VERSION resources plus the capture's action
// record.
func (s handlerSpec) writeProvenance(record archive.Record, metadata Metadata, capture provenance.Capture) error {
	provenanceDir := filepath.Join(record.Root, ProvenanceDirName)
	if err := os.MkdirAll(provenanceDir, 0o755); err != nil {
		return fmt.Errorf("creating provenance directory: %w", err)
	}

	encoded, err := metadata.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(provenanceDir, MetadataFileName), encoded, 0o644); err != nil {
		return fmt.Errorf("writing provenance metadata: %w", err)
	}

	versionContents, err := os.ReadFile(record.VersionFile)
	if err != nil {
		return fmt.Errorf("copying version resource: %w", err)
	}
	versionName := filepath.Base(record.VersionFile)
	if err := os.WriteFile(filepath.Join(provenanceDir, versionName), versionContents, 0o644); err != nil {
		return fmt.Errorf("copying version resource: %w", err)
	}

	if capture == nil {
		capture = provenance.NoCapture{}
	}
	subject := provenance.Subject{UUID: record.UUID, Type: metadata.Type, Format: metadata.Format}
	if err := capture.Persist(provenanceDir, subject); err != nil {
		return fmt.Errorf("recording provenance: %w", err)
	}
	return nil
}

// ValidateChecksums diffs a materialized archive against its recorded
// manifest. The manifest file itself is excluded from the comparison.
// Archives whose format records no manifest validate vacuously.
func ValidateChecksums(f Format) (checksum.Diff, error) {
	manifestName := f.ChecksumFile()
	if manifestName == "" {
		return checksum.Compare(nil, nil), nil
	}

	file, err := os.Open(filepath.Join(f.Root(), manifestName))
	if err != nil {
		return checksum.Diff{}, fmt.Errorf("opening checksum manifest: %w", err)
	}
	defer file.Close()

	expected, err := checksum.ParseManifest(file)
	if err != nil {
		return checksum.Diff{}, fmt.Errorf("parsing checksum manifest: %w", err)
	}

	observed, err := checksum.MD5SumDirectory(f.Root())
	if err != nil {
		return checksum.Diff{}, fmt.Errorf("hashing archive contents: %w", err)
	}
	kept := observed[:0]
	for _, entry := range observed {
		if entry.Path != manifestName {
			kept = append(kept, entry)
		}
	}
	return checksum.Compare(expected, kept), nil
}
