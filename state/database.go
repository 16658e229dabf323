// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"sync"

	"github.com/basalt-chain/basalt/types"
)

// Database holds the two flat mappings of spec.md §4.4: Address ->
// AccountState, and (Address, slot) -> storage bytes.
type Database struct {
	mu       sync.RWMutex
	accounts map[types.Address]AccountState
	storage  map[StorageKey][]byte
}

// New returns an empty state database.
func New() *Database {
	return &Database{
		accounts: make(map[types.Address]AccountState),
		storage:  make(map[StorageKey][]byte),
	}
}

// GetAccount returns the account record at addr, if any.
func (d *Database) GetAccount(addr types.Address) (AccountState, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[addr]
	return acct, ok
}

// SetAccount writes the account record at addr.
func (d *Database) SetAccount(addr types.Address, acct AccountState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[addr] = acct
}

// DeleteAccount removes the account record at addr.
func (d *Database) DeleteAccount(addr types.Address) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.accounts, addr)
}

// GetStorage returns the storage slot value, if any. The returned slice
// is a defensive copy.
func (d *Database) GetStorage(addr types.Address, slot types.Hash256) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	value, ok := d.storage[StorageKey{Address: addr, Slot: slot}]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true
}

// SetStorage writes a storage slot, deep-copying value so later mutation
// of the caller's slice cannot corrupt the stored copy (required for
// fork() to share no mutable state with its parent, spec.md §4.4).
func (d *Database) SetStorage(addr types.Address, slot types.Hash256, value []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	d.storage[StorageKey{Address: addr, Slot: slot}] = cp
}

// DeleteStorage removes a storage slot.
func (d *Database) DeleteStorage(addr types.Address, slot types.Hash256) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.storage, StorageKey{Address: addr, Slot: slot})
}

// Fork returns a snapshot that shares no mutable state with d, suitable
// for speculative execution that may be discarded.
func (d *Database) Fork() *Database {
	d.mu.RLock()
	defer d.mu.RUnlock()

	fork := New()
	for addr, acct := range d.accounts {
		fork.accounts[addr] = acct
	}
	for key, value := range d.storage {
		cp := make([]byte, len(value))
		copy(cp, value)
		fork.storage[key] = cp
	}
	return fork
}

// ForEachAccount calls fn for every account in d, in address order, for
// deterministic state-root computation. fn must not mutate d.
func (d *Database) ForEachAccount(fn func(types.Address, AccountState)) {
	d.mu.RLock()
	addrs := make([]types.Address, 0, len(d.accounts))
	for addr := range d.accounts {
		addrs = append(addrs, addr)
	}
	d.mu.RUnlock()

	sortAddresses(addrs)
	for _, addr := range addrs {
		acct, ok := d.GetAccount(addr)
		if ok {
			fn(addr, acct)
		}
	}
}

// StorageSlots returns every (slot, value) pair belonging to addr, sorted
// by slot for deterministic sub-trie construction.
func (d *Database) StorageSlots(addr types.Address) []struct {
	Slot  types.Hash256
	Value []byte
} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []struct {
		Slot  types.Hash256
		Value []byte
	}
	for key, value := range d.storage {
		if key.Address != addr {
			continue
		}
		cp := make([]byte, len(value))
		copy(cp, value)
		out = append(out, struct {
			Slot  types.Hash256
			Value []byte
		}{Slot: key.Slot, Value: cp})
	}
	sortSlots(out)
	return out
}

func sortAddresses(addrs []types.Address) {
	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0 && lessAddress(addrs[j], addrs[j-1]); j-- {
			addrs[j], addrs[j-1] = addrs[j-1], addrs[j]
		}
	}
}

func lessAddress(a, b types.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func sortSlots(slots []struct {
	Slot  types.Hash256
	Value []byte
}) {
	for i := 1; i < len(slots); i++ {
		for j := i; j > 0 && lessHash(slots[j].Slot, slots[j-1].Slot); j-- {
			slots[j], slots[j-1] = slots[j-1], slots[j]
		}
	}
}

func lessHash(a, b types.Hash256) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
