// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archiver

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/cafferychen777/qiime2/lib/cite"
	"github.com/cafferychen777/qiime2/lib/provenance"
)

func TestHandleReferenceCounting(t *testing.T) {
	a := newTestArchiver(t)
	handle := createArtifact(t, a)
	id := handle.UUID()

	shared := handle.Retain()
	if shared != handle {
		t.Fatal("Retain returned a different handle")
	}

	// The first close keeps the alias alive for the retained copy.
	if err := handle.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	referenced, err := a.Cache().Referenced()
	if err != nil {
		t.Fatal(err)
	}
	if referenced[id] != 1 {
		t.Errorf("reference count after first close = %d, want 1", referenced[id])
	}
	if _, err := shared.ValidateChecksums(); err != nil {
		t.Errorf("retained handle unusable after sibling close: %v", err)
	}

	// The last close releases, and only once.
	if err := shared.Close(); err != nil {
		t.Fatalf("last Close: %v", err)
	}
	referenced, err = a.Cache().Referenced()
	if err != nil {
		t.Fatal(err)
	}
	if len(referenced) != 0 {
		t.Errorf("references after last close: %v", referenced)
	}

	err = shared.Close()
	if err == nil || !strings.Contains(err.Error(), "already closed") {
		t.Errorf("extra Close = %v, want already-closed error", err)
	}
}

func TestHandleGuardsAfterClose(t *testing.T) {
	a := newTestArchiver(t)
	handle := createArtifact(t, a)
	if err := handle.Close(); err != nil {
		t.Fatal(err)
	}

	if err := handle.Save(filepath.Join(t.TempDir(), "late.qza")); err == nil {
		t.Error("Save on a closed handle succeeded")
	}
	if _, err := handle.ValidateChecksums(); err == nil {
		t.Error("ValidateChecksums on a closed handle succeeded")
	}
	if _, err := handle.Citations(); err == nil {
		t.Error("Citations on a closed handle succeeded")
	}
}

func TestHandleCitations(t *testing.T) {
	citations := cite.New()
	if err := citations.Add("framework", "@article{framework,\n title = {QIIME 2}\n}"); err != nil {
		t.Fatal(err)
	}

	a := newTestArchiver(t)
	handle, err := a.FromData("FeatureTable[Frequency]", "BIOMV210DirFmt", tableInitializer, provenance.NewImportCapture(citations))
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	defer handle.Close()

	got, err := handle.Citations()
	if err != nil {
		t.Fatalf("Citations: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("citation count = %d, want 1", got.Len())
	}
	block, ok := got.Get("framework")
	if !ok || !strings.Contains(block, "QIIME 2") {
		t.Errorf("citation block = %q", block)
	}
}
