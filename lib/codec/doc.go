// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package codec provides the framework's standard CBOR encoding
// configuration.
//
// Two serialization formats appear in this codebase, with a clear
// boundary between them:
//
//   - YAML for the archive wire format: metadata.yaml, action.yaml,
//     and the other resources written inside an archive. These are
//     part of the portable container contract and must stay readable
//     by other framework implementations.
//   - CBOR for local cache state: alias records under keys/ and the
//     process-pool manifests. These never leave the machine and are
//     read back only by this codebase.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC
// 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which keeps the integrity digest over an alias record stable.
//
// For buffer-oriented operations (state files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// Types serialized by this package carry `cbor` struct tags. Types that
// are part of the archive wire format carry `yaml` tags and never pass
// through this package.
package codec
