// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package state_test

import (
	"errors"
	"testing"

	"github.com/basalt-chain/basalt/state"
	"github.com/basalt-chain/basalt/types"
)

func TestStateHostContextStorageRoundTrip(t *testing.T) {
	db := state.New()
	gas := state.NewSimpleGasMeter(1_000_000)
	host := state.NewStateHostContext(db, addr(1), gas)

	key := types.Hash256{0x01}
	if _, ok := host.StorageRead(key); ok {
		t.Fatalf("expected empty storage before write")
	}
	host.StorageWrite(key, []byte("hello"))
	got, ok := host.StorageRead(key)
	if !ok || string(got) != "hello" {
		t.Fatalf("StorageRead after write: got=%q ok=%v", got, ok)
	}

	host.StorageDelete(key)
	if _, ok := host.StorageRead(key); ok {
		t.Fatalf("expected storage gone after delete")
	}
}

func TestStateHostContextOutOfGas(t *testing.T) {
	db := state.New()
	gas := state.NewSimpleGasMeter(10)
	host := state.NewStateHostContext(db, addr(1), gas)

	host.StorageWrite(types.Hash256{0x01}, []byte("too expensive"))
	if _, ok := db.GetStorage(addr(1), types.Hash256{0x01}); ok {
		t.Fatalf("write should not have applied once gas ran out")
	}
	if gas.Remaining() != 0 {
		t.Fatalf("expected gas meter to be drained, got %d", gas.Remaining())
	}
}

func TestStateHostContextRequire(t *testing.T) {
	db := state.New()
	gas := state.NewSimpleGasMeter(1000)
	host := state.NewStateHostContext(db, addr(1), gas)

	if err := host.Require(true, "unreachable"); err != nil {
		t.Fatalf("Require(true) should not error: %v", err)
	}
	err := host.Require(false, "balance too low")
	if err == nil || !errors.Is(err, state.ErrRequireFailed) {
		t.Fatalf("Require(false) should wrap ErrRequireFailed, got %v", err)
	}
}

func TestStateHostContextEmitEvent(t *testing.T) {
	db := state.New()
	gas := state.NewSimpleGasMeter(1000)
	host := state.NewStateHostContext(db, addr(1), gas)

	sigHash := types.Hash256{0x01}
	topics := []types.Hash256{{0x02}, {0x03}}
	host.EmitEvent(sigHash, topics, []byte("payload"))
	events := host.Events()
	if len(events) != 1 || events[0].SignatureHash != sigHash || len(events[0].Topics) != 2 || string(events[0].Data) != "payload" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].Topics[0] != topics[0] || events[0].Topics[1] != topics[1] {
		t.Fatalf("unexpected topics: %+v", events[0].Topics)
	}
}
