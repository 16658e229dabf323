// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package trie implements the nibble-keyed, branch-16 Merkle-Patricia
// trie of spec.md §3/§4.3: a content-addressed, verifiable key->value
// store with inclusion proofs and mark-and-sweep garbage collection.
package trie

import "errors"

// ErrNodeMissing is returned when a node hash referenced by the trie is
// not present in the backing NodeStore.
var ErrNodeMissing = errors.New("trie: node missing from store")

// ErrMalformedNode is returned when a node's stored encoding fails to
// decode (truncated, bad tag, bad hex-prefix flag).
var ErrMalformedNode = errors.New("trie: malformed node encoding")

// ErrInvalidProof names a failed MerkleProof verification. VerifyProof
// itself reports a failed proof as (false, nil) and does not return it.
var ErrInvalidProof = errors.New("trie: invalid proof")
