// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/cafferychen777/qiime2/lib/codec"
)

// Alias is a live reference to a stable artifact tree. Every consumer
// of a tree holds its own alias; the tree is reclaimable once no
// alias records remain.
type Alias struct {
	// Name is the record's file name under keys/.
	Name string `cbor:"name"`

	// UUID names the referenced tree under data/.
	UUID uuid.UUID `cbor:"uuid"`

	// Created is the reference time in unix seconds.
	Created int64 `cbor:"created"`
}

// aliasRecord is the on-disk shape of one keys/ file: the alias plus
// a BLAKE3 digest of its deterministic encoding. The digest turns a
// torn or bit-rotted record into a skippable one instead of a
// believable lie about what is referenced.
type aliasRecord struct {
	Alias  Alias  `cbor:"alias"`
	Digest []byte `cbor:"digest"`
}

// aliasDigest computes the integrity digest of an alias.
func aliasDigest(alias Alias) ([]byte, error) {
	payload, err := codec.Marshal(alias)
	if err != nil {
		return nil, fmt.Errorf("encoding alias %s: %w", alias.Name, err)
	}
	digest := blake3.Sum256(payload)
	return digest[:], nil
}

// newAliasName returns a fresh record name for a reference to id. The
// artifact UUID prefix keeps a directory listing of keys/ readable.
func newAliasName(id uuid.UUID) (string, error) {
	var nonce [4]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generating alias name: %w", err)
	}
	return id.String() + "." + hex.EncodeToString(nonce[:]), nil
}

// saveAlias writes the record atomically into dir.
func saveAlias(dir string, alias Alias) error {
	digest, err := aliasDigest(alias)
	if err != nil {
		return err
	}
	encoded, err := codec.Marshal(aliasRecord{Alias: alias, Digest: digest})
	if err != nil {
		return fmt.Errorf("encoding alias record %s: %w", alias.Name, err)
	}

	tmp, err := os.CreateTemp(dir, ".alias-*")
	if err != nil {
		return fmt.Errorf("writing alias record: %w", err)
	}
	success := false
	defer func() {
		if !success {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("writing alias record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing alias record: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, alias.Name)); err != nil {
		return fmt.Errorf("installing alias record: %w", err)
	}
	success = true
	return nil
}

// loadAlias reads and verifies one record. A record that cannot be
// decoded or whose digest disagrees returns an error; callers treat
// such records as unreferenced.
func loadAlias(path string) (Alias, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return Alias{}, fmt.Errorf("reading alias record: %w", err)
	}

	var record aliasRecord
	if err := codec.Unmarshal(encoded, &record); err != nil {
		return Alias{}, fmt.Errorf("decoding alias record %s: %w", path, err)
	}

	digest, err := aliasDigest(record.Alias)
	if err != nil {
		return Alias{}, err
	}
	if !bytes.Equal(digest, record.Digest) {
		return Alias{}, fmt.Errorf("alias record %s failed its integrity check", path)
	}
	return record.Alias, nil
}
