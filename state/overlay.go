// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"sync"

	"github.com/basalt-chain/basalt/types"
)

// Overlay layers speculative writes over a read-only parent Database
// without touching it, for building a candidate block's state without
// committing until the block is finalized (spec.md §4.4).
type Overlay struct {
	parent *Database

	mu              sync.RWMutex
	dirtyAccounts   map[types.Address]AccountState
	deletedAccounts map[types.Address]struct{}
	dirtyStorage    map[StorageKey][]byte
	deletedStorage  map[StorageKey]struct{}
}

// NewOverlay returns an overlay whose reads fall through to parent until
// overridden by a write on the overlay itself. parent is never mutated.
func NewOverlay(parent *Database) *Overlay {
	return &Overlay{
		parent:          parent,
		dirtyAccounts:   make(map[types.Address]AccountState),
		deletedAccounts: make(map[types.Address]struct{}),
		dirtyStorage:    make(map[StorageKey][]byte),
		deletedStorage:  make(map[StorageKey]struct{}),
	}
}

// GetAccount returns the account at addr, checking overlay writes before
// falling through to the parent database.
func (o *Overlay) GetAccount(addr types.Address) (AccountState, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if _, deleted := o.deletedAccounts[addr]; deleted {
		return AccountState{}, false
	}
	if acct, ok := o.dirtyAccounts[addr]; ok {
		return acct, true
	}
	return o.parent.GetAccount(addr)
}

// SetAccount records a write on the overlay, shadowing the parent.
func (o *Overlay) SetAccount(addr types.Address, acct AccountState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.deletedAccounts, addr)
	o.dirtyAccounts[addr] = acct
}

// DeleteAccount shadows the parent's record with a tombstone.
func (o *Overlay) DeleteAccount(addr types.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.dirtyAccounts, addr)
	o.deletedAccounts[addr] = struct{}{}
}

// GetStorage returns a storage slot, checking overlay writes before
// falling through to the parent database.
func (o *Overlay) GetStorage(addr types.Address, slot types.Hash256) ([]byte, bool) {
	key := StorageKey{Address: addr, Slot: slot}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if _, deleted := o.deletedStorage[key]; deleted {
		return nil, false
	}
	if value, ok := o.dirtyStorage[key]; ok {
		out := make([]byte, len(value))
		copy(out, value)
		return out, true
	}
	return o.parent.GetStorage(addr, slot)
}

// SetStorage records a storage write on the overlay, deep-copying value.
func (o *Overlay) SetStorage(addr types.Address, slot types.Hash256, value []byte) {
	key := StorageKey{Address: addr, Slot: slot}
	cp := make([]byte, len(value))
	copy(cp, value)

	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.deletedStorage, key)
	o.dirtyStorage[key] = cp
}

// DeleteStorage shadows the parent's slot with a tombstone.
func (o *Overlay) DeleteStorage(addr types.Address, slot types.Hash256) {
	key := StorageKey{Address: addr, Slot: slot}

	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.dirtyStorage, key)
	o.deletedStorage[key] = struct{}{}
}

// Commit materializes the overlay into a fresh Database forked from the
// parent, applying every dirty write and tombstone. The parent and this
// overlay are both left untouched, so the overlay may be committed more
// than once (e.g. speculatively, then again after further writes).
func (o *Overlay) Commit() *Database {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := o.parent.Fork()
	for addr := range o.deletedAccounts {
		out.DeleteAccount(addr)
	}
	for addr, acct := range o.dirtyAccounts {
		out.SetAccount(addr, acct)
	}
	for key := range o.deletedStorage {
		out.DeleteStorage(key.Address, key.Slot)
	}
	for key, value := range o.dirtyStorage {
		out.SetStorage(key.Address, key.Slot, value)
	}
	return out
}
