// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/basalt-chain/basalt/types"
	"github.com/basalt-chain/basalt/vmhost"
)

// ErrRequireFailed is returned by StateHostContext.Require when cond is
// false, wrapping the caller-supplied reason.
var ErrRequireFailed = errors.New("state: require failed")

// Event is a single EmitEvent call recorded by StateHostContext, kept for
// the caller to surface to indexers once execution finishes.
type Event struct {
	SignatureHash types.Hash256
	Topics        []types.Hash256
	Data          []byte
}

// StateHostContext implements vmhost.HostContext against a single
// contract account's storage slots in db, metered by gas.
type StateHostContext struct {
	db      *Database
	gas     vmhost.GasMeter
	account types.Address

	mu     sync.Mutex
	events []Event
}

// NewStateHostContext returns a host context scoped to account's storage
// within db, charging every operation against gas.
func NewStateHostContext(db *Database, account types.Address, gas vmhost.GasMeter) *StateHostContext {
	return &StateHostContext{db: db, gas: gas, account: account}
}

const (
	gasStorageRead   = 200
	gasStorageWrite  = 5000
	gasStorageDelete = 1000
	gasEmitEvent     = 375
)

// StorageRead reads a storage slot belonging to the context's account.
func (h *StateHostContext) StorageRead(key types.Hash256) ([]byte, bool) {
	if err := h.gas.Consume(gasStorageRead); err != nil {
		return nil, false
	}
	return h.db.GetStorage(h.account, key)
}

// StorageWrite writes a storage slot belonging to the context's account.
func (h *StateHostContext) StorageWrite(key types.Hash256, value []byte) {
	if err := h.gas.Consume(gasStorageWrite); err != nil {
		return
	}
	h.db.SetStorage(h.account, key, value)
}

// StorageDelete removes a storage slot belonging to the context's account.
func (h *StateHostContext) StorageDelete(key types.Hash256) {
	if err := h.gas.Consume(gasStorageDelete); err != nil {
		return
	}
	h.db.DeleteStorage(h.account, key)
}

// EmitEvent records an event for later retrieval via Events.
func (h *StateHostContext) EmitEvent(signatureHash types.Hash256, topics []types.Hash256, data []byte) {
	if err := h.gas.Consume(gasEmitEvent); err != nil {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	topicsCp := make([]types.Hash256, len(topics))
	copy(topicsCp, topics)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, Event{SignatureHash: signatureHash, Topics: topicsCp, Data: cp})
}

// Require aborts with ErrRequireFailed wrapping reason when cond is false.
func (h *StateHostContext) Require(cond bool, reason string) error {
	if cond {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRequireFailed, reason)
}

// Events returns every event recorded so far.
func (h *StateHostContext) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// SimpleGasMeter is a straightforward decrement-to-zero GasMeter, used by
// tests and any caller that does not need a more elaborate cost model.
type SimpleGasMeter struct {
	mu        sync.Mutex
	remaining uint64
}

// NewSimpleGasMeter returns a meter with budget available to spend.
func NewSimpleGasMeter(budget uint64) *SimpleGasMeter {
	return &SimpleGasMeter{remaining: budget}
}

// ErrOutOfGas is returned once a SimpleGasMeter's budget is exhausted.
var ErrOutOfGas = errors.New("state: out of gas")

func (g *SimpleGasMeter) Consume(amount uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if amount > g.remaining {
		g.remaining = 0
		return ErrOutOfGas
	}
	g.remaining -= amount
	return nil
}

func (g *SimpleGasMeter) Remaining() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remaining
}
