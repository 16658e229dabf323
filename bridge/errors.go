// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bridge implements the lock/unlock asset-bridge core: a
// monotonic-nonce lock ledger, a fixed multisig committee whose threshold
// of Ed25519 attestations authorizes an unlock, and a domain-separated
// Merkle proof check (against package trie) that the unlock corresponds
// to a lock actually committed to the lock root.
package bridge

import "errors"

var (
	// ErrNonceReplayed is returned when Unlock is attempted with a nonce
	// already consumed.
	ErrNonceReplayed = errors.New("bridge: nonce already consumed")
	// ErrInsufficientAttestations is returned when fewer than the
	// committee's threshold of valid, distinct member signatures are
	// presented.
	ErrInsufficientAttestations = errors.New("bridge: insufficient valid attestations")
	// ErrInvalidProof is returned when the accompanying Merkle proof does
	// not establish that the lock was committed to the claimed root.
	ErrInvalidProof = errors.New("bridge: lock not included in committed root")
	// ErrUnknownMember is returned when an attestation is signed by a key
	// outside the committee.
	ErrUnknownMember = errors.New("bridge: attestation from non-member key")
	// ErrDuplicateAttestor is returned when the same committee member
	// signs more than once in a single attestation set.
	ErrDuplicateAttestor = errors.New("bridge: duplicate attestor in attestation set")
)
