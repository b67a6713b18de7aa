// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package checksum

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ToLine renders one manifest entry in md5sum's output format:
// the digest, two spaces, then the path. Paths containing a backslash
// or newline use md5sum's escape convention: the whole line gains a
// leading backslash and the path escapes '\' as `\\` and newline as
// `\n`.
func ToLine(entry Entry) string {
	path, digest := entry.Path, entry.Digest
	if strings.ContainsAny(path, "\\\n") {
		path = strings.ReplaceAll(path, `\`, `\\`)
		path = strings.ReplaceAll(path, "\n", `\n`)
		digest = `\` + digest
	}
	return digest + "  " + path
}

// FromLine parses one manifest line written by [ToLine] or by
// coreutils md5sum (both the "  " text-mode and " *" binary-mode
// separators are accepted).
func FromLine(line string) (Entry, error) {
	line = strings.TrimSuffix(line, "\n")
	digest, path, ok := strings.Cut(line, "  ")
	if !ok {
		digest, path, ok = strings.Cut(line, " *")
	}
	if !ok || digest == "" {
		return Entry{}, fmt.Errorf("malformed checksum line %q", line)
	}
	if digest[0] == '\\' {
		digest = digest[1:]
		// Unescape in a single pass: split on escaped backslashes so
		// that the `\n` replacement cannot consume the tail of a `\\`.
		chunks := strings.Split(path, `\\`)
		for i, chunk := range chunks {
			chunks[i] = strings.ReplaceAll(chunk, `\n`, "\n")
		}
		path = strings.Join(chunks, `\`)
	}
	return Entry{Path: path, Digest: digest}, nil
}

// WriteManifest writes entries to w, one line each, in the order
// given.
func WriteManifest(w io.Writer, entries []Entry) error {
	buffered := bufio.NewWriter(w)
	for _, entry := range entries {
		if _, err := buffered.WriteString(ToLine(entry) + "\n"); err != nil {
			return err
		}
	}
	return buffered.Flush()
}

// ParseManifest reads a manifest produced by [WriteManifest]. Blank
// lines are ignored. A malformed line fails the whole parse; a
// truncated or edited manifest is indistinguishable from tampering and
// must not half-validate.
func ParseManifest(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if scanner.Text() == "" {
			continue
		}
		entry, err := FromLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
