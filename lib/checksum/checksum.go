// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package checksum computes and compares the md5sum-style integrity
// manifests recorded inside archives.
//
// Digests are MD5 because the manifest is wire-compatible with
// coreutils md5sum and with every earlier framework release. The
// manifest detects accidental corruption and post-write tampering of
// archive contents; it is not a security boundary.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one manifest row: a slash-separated path relative to the
// archive root and the hex digest of that file's contents.
type Entry struct {
	Path   string
	Digest string
}

// MD5Sum returns the hex MD5 digest of everything read from r.
func MD5Sum(r io.Reader) (string, error) {
	hash := md5.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// MD5SumFile returns the hex MD5 digest of the file at path.
func MD5SumFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	digest, err := MD5Sum(file)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// MD5SumDirectory hashes every visible file under root and returns the
// entries in manifest order: each directory's files sorted by name,
// followed by its subdirectories sorted by name. Hidden files and
// directories (leading dot) are excluded, matching what archive
// backends persist.
func MD5SumDirectory(root string) ([]Entry, error) {
	var entries []Entry
	var walk func(dir, prefix string) error
	walk = func(dir, prefix string) error {
		items, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.IsDir() || hidden(item.Name()) {
				continue
			}
			digest, err := MD5SumFile(filepath.Join(dir, item.Name()))
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Path: prefix + item.Name(), Digest: digest})
		}
		for _, item := range items {
			if !item.IsDir() || hidden(item.Name()) {
				continue
			}
			err := walk(filepath.Join(dir, item.Name()), prefix+item.Name()+"/")
			if err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, ""); err != nil {
		return nil, err
	}
	return entries, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
