// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package format

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Metadata is the identity triple every archive records in
// metadata.yaml: what the artifact is (semantic type), how its
// payload is laid out (view format), and which artifact it is.
type Metadata struct {
	UUID   uuid.UUID
	Type   string
	Format string
}

// metadataRecord is the wire shape. The format key is null, not "",
// when the artifact has no view format, so the field is a pointer.
type metadataRecord struct {
	UUID   string  `yaml:"uuid"`
	Type   string  `yaml:"type"`
	Format *string `yaml:"format"`
}

// ParseMetadata decodes a metadata.yaml stream.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var record metadataRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}

	id, err := uuid.Parse(record.UUID)
	if err != nil {
		return nil, fmt.Errorf("metadata uuid %q: %w", record.UUID, err)
	}
	if record.Type == "" {
		return nil, fmt.Errorf("metadata is missing the type key")
	}

	metadata := &Metadata{UUID: id, Type: record.Type}
	if record.Format != nil {
		metadata.Format = *record.Format
	}
	return metadata, nil
}

// Render encodes the metadata in its wire shape.
func (m Metadata) Render() ([]byte, error) {
	record := metadataRecord{UUID: m.UUID.String(), Type: m.Type}
	if m.Format != "" {
		record.Format = &m.Format
	}
	encoded, err := yaml.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return encoded, nil
}
