// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cite collects the BibTeX citations attached to artifacts.
//
// Entries are kept as verbatim source blocks in insertion order,
// keyed by their citation key. The collection round-trips through the
// citations.bib resource of archives: parsing keeps each @type{key,
// ...} block exactly as written and rendering emits the blocks
// separated by blank lines. Merging collections rewrites colliding
// keys under a caller-supplied namespace, the scheme provenance
// tooling uses to index citations by their origin (for example
// "framework|qiime2:2023.2.0").
package cite

import (
	"fmt"
	"io"
	"strings"
)

// Citations is an insertion-ordered collection of BibTeX entries. The
// zero value is an empty collection ready for use.
type Citations struct {
	keys   []string
	blocks map[string]string
}

// New returns an empty collection.
func New() *Citations { return &Citations{} }

// Len returns the number of entries.
func (c *Citations) Len() int { return len(c.keys) }

// Keys returns the citation keys in insertion order.
func (c *Citations) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Get returns the entry stored under key.
func (c *Citations) Get(key string) (string, bool) {
	block, ok := c.blocks[key]
	return block, ok
}

// Add stores a BibTeX block under key. If the block's own citation
// key differs it is rewritten to match, so that rendering and
// re-parsing the collection reproduces the same keys.
func (c *Citations) Add(key, block string) error {
	if key == "" {
		return fmt.Errorf("citation key is empty")
	}
	if strings.ContainsAny(key, "{}(), \t\n") {
		return fmt.Errorf("citation key %q contains reserved characters", key)
	}
	if _, exists := c.blocks[key]; exists {
		return fmt.Errorf("duplicate citation key %q", key)
	}
	if embeddedKey(block) != key {
		block = rewriteKey(block, key)
	}
	c.add(key, block)
	return nil
}

// add inserts an entry whose key is known to be valid and free.
func (c *Citations) add(key, block string) {
	if c.blocks == nil {
		c.blocks = make(map[string]string)
	}
	c.keys = append(c.keys, key)
	c.blocks[key] = block
}

// Merge appends every entry of other. A key already present in the
// receiver is rewritten to "<namespace>:<key>"; should that also be
// taken, a "|n" counter disambiguates.
func (c *Citations) Merge(namespace string, other *Citations) {
	for _, key := range other.keys {
		merged := key
		if _, taken := c.blocks[merged]; taken {
			merged = namespace + ":" + key
		}
		for n := 2; ; n++ {
			if _, taken := c.blocks[merged]; !taken {
				break
			}
			merged = fmt.Sprintf("%s:%s|%d", namespace, key, n)
		}
		block := other.blocks[key]
		if embeddedKey(block) != merged {
			block = rewriteKey(block, merged)
		}
		c.add(merged, block)
	}
}

// Render writes the collection as a .bib stream, entries separated by
// blank lines.
func (c *Citations) Render(w io.Writer) error {
	for i, key := range c.keys {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, c.blocks[key]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Parse reads a BibTeX stream. Text outside entries is ignored, as
// are @comment, @preamble and @string directives. Every other entry
// is kept verbatim under its citation key.
func Parse(r io.Reader) (*Citations, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading citations: %w", err)
	}

	citations := New()
	src := string(data)
	for i := 0; i < len(src); {
		if src[i] != '@' {
			i++
			continue
		}
		block, key, kind, next, err := scanEntry(src, i)
		if err != nil {
			return nil, err
		}
		i = next

		switch strings.ToLower(kind) {
		case "comment", "preamble", "string":
			continue
		}
		if err := citations.Add(key, block); err != nil {
			return nil, err
		}
	}
	return citations, nil
}

// scanEntry consumes one @type{key, ...} block starting at the '@' at
// src[start]. It returns the verbatim block, its key and entry type,
// and the offset just past the block. Both brace- and
// paren-delimited entries are accepted; a ')' inside a brace group
// does not terminate a paren-delimited entry.
func scanEntry(src string, start int) (block, key, kind string, end int, err error) {
	i := start + 1
	for i < len(src) && isAlpha(src[i]) {
		i++
	}
	kind = src[start+1 : i]
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	if kind == "" || i >= len(src) || (src[i] != '{' && src[i] != '(') {
		return "", "", "", 0, fmt.Errorf("malformed citation entry at offset %d", start)
	}

	open := src[i]
	braces, parens := 0, 0
	if open == '{' {
		braces = 1
	} else {
		parens = 1
	}
	keyStart, keyEnd := i+1, -1

	for i++; i < len(src); i++ {
		c := src[i]
		if keyEnd < 0 && braces+parens == 1 && (c == ',' || c == '}' || c == ')') {
			keyEnd = i
		}
		switch c {
		case '{':
			braces++
		case '}':
			braces--
		case '(':
			if braces == 0 {
				parens++
			}
		case ')':
			if braces == 0 {
				parens--
			}
		}
		if braces == 0 && parens == 0 {
			block = src[start : i+1]
			key = strings.TrimSpace(src[keyStart:keyEnd])
			if key == "" {
				return "", "", "", 0, fmt.Errorf("citation entry at offset %d has no key", start)
			}
			return block, key, kind, i + 1, nil
		}
		if braces < 0 || parens < 0 {
			break
		}
	}
	return "", "", "", 0, fmt.Errorf("unterminated citation entry at offset %d", start)
}

// embeddedKey extracts the citation key a block carries, or "".
func embeddedKey(block string) string {
	open := strings.IndexAny(block, "{(")
	if open < 0 {
		return ""
	}
	rest := block[open+1:]
	stop := strings.IndexAny(rest, ",})")
	if stop < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:stop])
}

// rewriteKey returns block with its citation key replaced.
func rewriteKey(block, key string) string {
	open := strings.IndexAny(block, "{(")
	if open < 0 {
		return block
	}
	rest := block[open+1:]
	stop := strings.IndexAny(rest, ",})")
	if stop < 0 {
		return block
	}
	return block[:open+1] + key + rest[stop:]
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
