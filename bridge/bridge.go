// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package bridge

import (
	"bytes"
	"sync"

	"github.com/basalt-chain/basalt/trie"
)

// Bridge authorizes unlocks: a threshold of committee attestations over
// the lock plus a Merkle inclusion proof that the lock was actually
// committed to the claimed lock root, replay-protected by nonce
// (mirroring the single-lock-discipline of package staking's registry).
type Bridge struct {
	committee Committee

	mu       sync.Mutex
	consumed map[uint64]struct{}
}

// NewBridge returns a Bridge authorized by committee.
func NewBridge(committee Committee) *Bridge {
	return &Bridge{committee: committee, consumed: make(map[uint64]struct{})}
}

// Unlock verifies that lock was committed under proof.RootHash, that the
// committee's attestation threshold is met, and that lock.Nonce has not
// already been consumed, then marks the nonce consumed.
func (b *Bridge) Unlock(lock Lock, proof *trie.MerkleProof, attestations []Attestation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, used := b.consumed[lock.Nonce]; used {
		return ErrNonceReplayed
	}

	encoded := EncodeLock(lock)
	if err := b.committee.verify(encoded, attestations); err != nil {
		return err
	}

	if !bytes.Equal(proof.Key, lockKey(lock.Nonce)) || !proof.Found || !bytes.Equal(proof.Value, encoded) {
		return ErrInvalidProof
	}
	ok, err := trie.VerifyProof(proof)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidProof
	}

	b.consumed[lock.Nonce] = struct{}{}
	return nil
}

// IsConsumed reports whether nonce has already been unlocked.
func (b *Bridge) IsConsumed(nonce uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, used := b.consumed[nonce]
	return used
}
