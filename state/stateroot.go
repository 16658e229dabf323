// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"github.com/basalt-chain/basalt/codec"
	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/trie"
	"github.com/basalt-chain/basalt/types"
)

// NaiveRoot is the result of ComputeNaiveStateRoot. It is a distinct type
// from TrieRoot so the two cannot be compared or substituted for one
// another by the compiler: the naive digest is storage-blind and must
// never be mistaken for the trie-backed root a light client verifies
// proofs against (Open Question resolved in favor of keeping both, see
// the state root design note).
type NaiveRoot types.Hash256

// TrieRoot is the result of ComputeTrieStateRoot.
type TrieRoot types.Hash256

// ComputeNaiveStateRoot hashes the account set directly: every account's
// fields are written in address order into a single BLAKE3 stream. It
// ignores storage entirely, so two databases with identical accounts but
// different storage contents produce the same NaiveRoot. Cheap, used for
// quick equality checks between in-memory forks, never for consensus.
func ComputeNaiveStateRoot(d *Database) NaiveRoot {
	h := crypto.NewStreamingHasher()
	defer h.Close()

	d.ForEachAccount(func(addr types.Address, acct AccountState) {
		w := codec.NewWriter(128)
		w.WriteRaw(addr[:])
		w.WriteUint64(acct.Nonce)
		balance := acct.Balance.BigEndianBytes()
		w.WriteRaw(balance[:])
		w.WriteRaw(acct.StorageRoot[:])
		w.WriteRaw(acct.CodeHash[:])
		w.WriteByte(byte(acct.AccountType))
		w.WriteRaw(acct.ComplianceHash[:])
		_ = h.Write(w.Bytes())
	})

	sum, err := h.Sum()
	if err != nil {
		// NewStreamingHasher is never closed before Sum above, so Sum
		// cannot fail here.
		panic(err)
	}
	return NaiveRoot(sum)
}

// ComputeTrieStateRoot builds a full two-level Merkle-Patricia trie: one
// storage sub-trie per account, whose root is folded into that account's
// StorageRoot field before the account record itself is inserted into the
// top-level trie keyed by address. This is the root light clients verify
// inclusion proofs against.
func ComputeTrieStateRoot(d *Database, store trie.NodeStore) (TrieRoot, error) {
	top := trie.New(store)

	var outerErr error
	d.ForEachAccount(func(addr types.Address, acct AccountState) {
		if outerErr != nil {
			return
		}

		slots := d.StorageSlots(addr)
		if len(slots) > 0 {
			sub := trie.New(store)
			for _, slot := range slots {
				if err := sub.Put(slot.Slot[:], slot.Value); err != nil {
					outerErr = err
					return
				}
			}
			acct.StorageRoot = sub.RootHash()
		}

		w := codec.NewWriter(128)
		w.WriteUint64(acct.Nonce)
		balance := acct.Balance.BigEndianBytes()
		w.WriteRaw(balance[:])
		w.WriteRaw(acct.StorageRoot[:])
		w.WriteRaw(acct.CodeHash[:])
		w.WriteByte(byte(acct.AccountType))
		w.WriteRaw(acct.ComplianceHash[:])
		if err := w.Err(); err != nil {
			outerErr = err
			return
		}
		if err := top.Put(addr[:], w.Bytes()); err != nil {
			outerErr = err
		}
	})
	if outerErr != nil {
		return TrieRoot{}, outerErr
	}
	return TrieRoot(top.RootHash()), nil
}
