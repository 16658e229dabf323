// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package bridge

import (
	"sync"

	"github.com/basalt-chain/basalt/codec"
	"github.com/basalt-chain/basalt/trie"
	"github.com/basalt-chain/basalt/types"
)

// DomainBridge is the domain-separation prefix mixed into every bridge
// leaf key and value, so a bridge lock record can never be mistaken for
// an unrelated trie entry committed under the same root (spec.md §9's
// "no cycles, no ambient authority" principle, applied to cross-domain
// leaf collisions).
var DomainBridge = []byte("basalt-bridge-v1")

// Lock is one asset-lock event on the source chain side of the bridge.
type Lock struct {
	Asset     types.Address
	Amount    types.UInt256
	Recipient types.Address
	Nonce     uint64
}

// EncodeLock renders l's canonical domain-separated encoding, used both
// as the trie leaf value and as the message committee members sign when
// attesting to an unlock.
func EncodeLock(l Lock) []byte {
	w := codec.NewWriter(128)
	w.WriteRaw(DomainBridge)
	w.WriteRaw(l.Asset[:])
	amount := l.Amount.BigEndianBytes()
	w.WriteRaw(amount[:])
	w.WriteRaw(l.Recipient[:])
	w.WriteUint64(l.Nonce)
	return w.Bytes()
}

func lockKey(nonce uint64) []byte {
	w := codec.NewWriter(len(DomainBridge) + 8)
	w.WriteRaw(DomainBridge)
	w.WriteUint64(nonce)
	return w.Bytes()
}

// Ledger tracks committed locks in a content-addressed trie, one leaf per
// nonce, so later unlocks can be authenticated with an inclusion proof
// against a specific historical root.
type Ledger struct {
	mu      sync.Mutex
	store   trie.NodeStore
	t       *trie.Trie
	nextSeq uint64
}

// NewLedger returns an empty lock ledger backed by store.
func NewLedger(store trie.NodeStore) *Ledger {
	return &Ledger{store: store, t: trie.New(store)}
}

// RecordLock assigns the next nonce to l, commits it to the ledger trie,
// and returns the finalized Lock together with the new lock root.
func (l *Ledger) RecordLock(asset types.Address, amount types.UInt256, recipient types.Address) (Lock, types.Hash256, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock := Lock{Asset: asset, Amount: amount, Recipient: recipient, Nonce: l.nextSeq}
	if err := l.t.Put(lockKey(lock.Nonce), EncodeLock(lock)); err != nil {
		return Lock{}, types.Hash256{}, err
	}
	l.nextSeq++
	return lock, l.t.RootHash(), nil
}

// Root returns the ledger's current committed root.
func (l *Ledger) Root() types.Hash256 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.RootHash()
}

// Proof generates an inclusion proof for lock's nonce against the
// ledger's current root, for use by Bridge.Unlock.
func (l *Ledger) Proof(nonce uint64) (*trie.MerkleProof, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.GenerateProof(lockKey(nonce))
}
