// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package chain

import (
	"golang.org/x/crypto/ed25519"

	"github.com/basalt-chain/basalt/codec"
	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/types"
)

// BlockHash computes block.hash = BLAKE3(serialized header) (spec.md §6).
func BlockHash(h Header) (types.Hash256, error) {
	buf, err := EncodeHeader(h)
	if err != nil {
		return types.Hash256{}, err
	}
	return crypto.Blake3Hash(buf), nil
}

// TransactionHash computes the BLAKE3 content ID of a serialized
// transaction, used as its gossip message ID.
func TransactionHash(tx Transaction) (types.Hash256, error) {
	buf, err := EncodeTransaction(tx)
	if err != nil {
		return types.Hash256{}, err
	}
	return crypto.Blake3Hash(buf), nil
}

// TransactionSigningHash computes the hash a transaction is signed and
// verified against: BLAKE3 of every field except signature and
// sender_public_key (spec.md §3, §8: "mutating any byte of T flips
// verification").
func TransactionSigningHash(tx Transaction) (types.Hash256, error) {
	w := codec.NewWriter(256 + len(tx.Data) + len(tx.ComplianceProofs)*32)
	encodeTransactionSigningFields(w, tx)
	if err := w.Err(); err != nil {
		return types.Hash256{}, err
	}
	return crypto.Blake3Hash(w.Bytes()), nil
}

// SignTransaction signs tx's signing hash with sk and returns a copy of
// tx with Signature and SenderPublicKey populated.
func SignTransaction(tx Transaction, sk ed25519.PrivateKey, pk types.PublicKey) (Transaction, error) {
	h, err := TransactionSigningHash(tx)
	if err != nil {
		return Transaction{}, err
	}
	sig, err := crypto.Ed25519Sign(sk, h[:])
	if err != nil {
		return Transaction{}, err
	}
	tx.Signature = sig
	tx.SenderPublicKey = pk
	return tx, nil
}

// VerifyTransaction reports whether tx.Signature is a valid signature by
// tx.SenderPublicKey over tx's signing hash. Mutating any signed field
// of tx, or tampering with the signature itself, flips the result.
func VerifyTransaction(tx Transaction) (bool, error) {
	h, err := TransactionSigningHash(tx)
	if err != nil {
		return false, err
	}
	return crypto.Ed25519Verify(tx.SenderPublicKey, h[:], tx.Signature), nil
}

// MessageID computes the BLAKE3 content ID of an arbitrary consensus
// message payload, used by the gossip router's seen-message cache and
// IHAVE/IWANT correlation.
func MessageID(payload []byte) types.Hash256 {
	return crypto.Blake3Hash(payload)
}

// ContractAddress derives a deployed contract's address as
// low20(BLAKE3(sender ‖ u64_le(nonce))) (spec.md §6, §8 scenario 3).
func ContractAddress(sender types.Address, nonce uint64) types.Address {
	return crypto.ContractAddress(sender, nonce)
}
