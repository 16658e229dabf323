// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package crypto wraps the hashing and signature primitives used
// throughout Basalt: BLAKE3 content hashing, Keccak-256 (for
// Ethereum-compatible address derivation), and Ed25519 signatures.
// BLS12-381 lives in the sibling package crypto/bls.
package crypto

import (
	"errors"

	"lukechampine.com/blake3"

	"github.com/basalt-chain/basalt/types"
)

// ErrHasherClosed is returned by Write/Sum calls made on a StreamingHasher
// after Close.
var ErrHasherClosed = errors.New("crypto: hasher used after close")

// Blake3Hash computes the one-shot BLAKE3-256 digest of data.
func Blake3Hash(data []byte) types.Hash256 {
	return types.Hash256(blake3.Sum256(data))
}

// StreamingHasher incrementally hashes chunks of data with BLAKE3-256. It
// must not be used after Close.
type StreamingHasher struct {
	h      *blake3.Hasher
	closed bool
}

// NewStreamingHasher returns a ready-to-use streaming BLAKE3 hasher.
func NewStreamingHasher() *StreamingHasher {
	return &StreamingHasher{h: blake3.New(32, nil)}
}

// Write appends data to the running hash.
func (s *StreamingHasher) Write(data []byte) error {
	if s.closed {
		return ErrHasherClosed
	}
	_, err := s.h.Write(data)
	return err
}

// Sum finalizes and returns the BLAKE3-256 digest of everything written
// so far. Sum does not close the hasher; further Write calls are valid
// until Close is invoked.
func (s *StreamingHasher) Sum() (types.Hash256, error) {
	if s.closed {
		return types.Hash256{}, ErrHasherClosed
	}
	var out types.Hash256
	sum := s.h.Sum(nil)
	copy(out[:], sum)
	return out, nil
}

// Close releases the hasher. Any Write or Sum call afterwards fails with
// ErrHasherClosed.
func (s *StreamingHasher) Close() {
	s.closed = true
	s.h = nil
}
