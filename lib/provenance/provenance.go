// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package provenance records how an artifact came to be.
//
// A Capture writes the action record beneath an archive's provenance
// directory. The archive format handlers own the rest of the
// provenance tree (the metadata and VERSION copies); captures own
// action/action.yaml and the citations the action contributes.
package provenance

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cafferychen777/qiime2/lib/cite"
	"github.com/cafferychen777/qiime2/lib/version"
)

// ActionFileName is the action record's path relative to the
// provenance directory.
const ActionFileName = "action/action.yaml"

// Subject identifies the artifact a capture describes.
type Subject struct {
	UUID   uuid.UUID
	Type   string
	Format string
}

// Capture records the origin of an artifact.
type Capture interface {
	// Kind identifies the capture variant, the value of the action
	// record's type field.
	Kind() string

	// Citations returns the citations this capture contributes to the
	// archive. Never nil; may be empty.
	Citations() *cite.Citations

	// Persist writes the action record beneath dir, the archive's
	// provenance directory.
	Persist(dir string, subject Subject) error
}

// actionRecord is the wire shape of action/action.yaml.
type actionRecord struct {
	Execution   executionSection   `yaml:"execution"`
	Action      actionSection      `yaml:"action"`
	Environment environmentSection `yaml:"environment"`
}

type executionSection struct {
	UUID    string         `yaml:"uuid"`
	Runtime runtimeSection `yaml:"runtime"`
}

type runtimeSection struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type actionSection struct {
	Type   string `yaml:"type"`
	Format string `yaml:"format,omitempty"`
}

type environmentSection struct {
	Platform  string `yaml:"platform"`
	Framework string `yaml:"framework"`
}

// ImportCapture describes a direct import of external data. It is the
// capture used by from-data creation: the action record carries type
// import, the execution identity, and the runtime environment.
type ImportCapture struct {
	execution uuid.UUID
	citations *cite.Citations

	// When is the action timestamp; the zero value means time.Now().
	When time.Time
}

var _ Capture = (*ImportCapture)(nil)

// NewImportCapture returns a capture for an import contributing the
// given citations. A nil citations is treated as empty.
func NewImportCapture(citations *cite.Citations) *ImportCapture {
	if citations == nil {
		citations = cite.New()
	}
	return &ImportCapture{execution: uuid.New(), citations: citations}
}

// Kind returns "import".
func (c *ImportCapture) Kind() string { return "import" }

// Citations returns the citations supplied at construction.
func (c *ImportCapture) Citations() *cite.Citations { return c.citations }

// Persist writes action/action.yaml and, when citations are present,
// action/citations.bib beneath dir.
func (c *ImportCapture) Persist(dir string, subject Subject) error {
	when := c.When
	if when.IsZero() {
		when = time.Now()
	}
	when = when.UTC()

	record := actionRecord{
		Execution: executionSection{
			UUID: c.execution.String(),
			Runtime: runtimeSection{
				Start: when.Format(time.RFC3339),
				End:   when.Format(time.RFC3339),
			},
		},
		Action: actionSection{
			Type:   "import",
			Format: subject.Format,
		},
		Environment: environmentSection{
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			Framework: version.Framework,
		},
	}

	actionDir := filepath.Join(dir, "action")
	if err := os.MkdirAll(actionDir, 0o755); err != nil {
		return fmt.Errorf("creating action directory: %w", err)
	}

	encoded, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding action record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(ActionFileName)), encoded, 0o644); err != nil {
		return fmt.Errorf("writing action record: %w", err)
	}

	if c.citations.Len() > 0 {
		file, err := os.Create(filepath.Join(actionDir, "citations.bib"))
		if err != nil {
			return fmt.Errorf("writing action citations: %w", err)
		}
		err = c.citations.Render(file)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("writing action citations: %w", err)
		}
	}
	return nil
}

// NoCapture writes the provenance skeleton without an action record.
// Tools that deliberately strip provenance use it so the archive
// still carries the directory shape readers expect.
type NoCapture struct{}

var _ Capture = NoCapture{}

// Kind returns "none".
func (NoCapture) Kind() string { return "none" }

// Citations returns an empty collection.
func (NoCapture) Citations() *cite.Citations { return cite.New() }

// Persist creates the action directory and nothing else.
func (NoCapture) Persist(dir string, _ Subject) error {
	if err := os.MkdirAll(filepath.Join(dir, "action"), 0o755); err != nil {
		return fmt.Errorf("creating action directory: %w", err)
	}
	return nil
}
