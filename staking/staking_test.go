// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package staking_test

import (
	"testing"

	"github.com/basalt-chain/basalt/staking"
	"github.com/basalt-chain/basalt/types"
)

func addr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func u(n uint64) types.UInt256 { return types.NewUInt256FromUint64(n) }

// TestDoubleSignSlashZeroesStake covers spec.md §8 scenario 5: a
// validator with self=3000, delegated=7000 slashed for double-sign ends
// at self=0, delegated=0, total=0, is_active=false, with one
// SlashingEvent recorded at penalty=10000.
func TestDoubleSignSlashZeroesStake(t *testing.T) {
	reg := staking.NewRegistry(u(1000))
	v := addr(1)
	if err := reg.RegisterValidator(v, u(3000), nil); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	if err := reg.Delegate(v, u(7000)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	engine := staking.NewSlashingEngine(reg)
	applied, err := engine.Slash(v, staking.ReasonDoubleSign, 1, 1000, "equivocated on block 1")
	if err != nil {
		t.Fatalf("Slash: %v", err)
	}
	if applied.Cmp(u(10000)) != 0 {
		t.Fatalf("expected applied penalty 10000, got %s", applied)
	}

	info, err := reg.Get(v)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !info.SelfStake.IsZero() || !info.DelegatedStake.IsZero() || !info.TotalStake.IsZero() {
		t.Fatalf("expected all stake zeroed, got self=%s delegated=%s total=%s", info.SelfStake, info.DelegatedStake, info.TotalStake)
	}
	if info.IsActive {
		t.Fatalf("expected validator to be deactivated")
	}

	history := engine.History()
	if len(history) != 1 {
		t.Fatalf("expected one slashing event, got %d", len(history))
	}
	if history[0].Penalty.Cmp(u(10000)) != 0 {
		t.Fatalf("expected recorded penalty 10000, got %s", history[0].Penalty)
	}
}

// TestCompoundingInactivitySlash covers spec.md §8 scenario 6: starting
// total=10000, three successive 5% inactivity slashes compound on the
// then-current total via integer floor division: 10000 -> 9500 -> 9025
// -> 8574.
func TestCompoundingInactivitySlash(t *testing.T) {
	reg := staking.NewRegistry(u(0))
	v := addr(1)
	if err := reg.RegisterValidator(v, u(10000), nil); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	engine := staking.NewSlashingEngine(reg)

	want := []uint64{9500, 9025, 8574}
	for i, w := range want {
		if _, err := engine.Slash(v, staking.ReasonExtendedInactivity, uint64(i), 0, "missed epoch"); err != nil {
			t.Fatalf("Slash %d: %v", i, err)
		}
		info, err := reg.Get(v)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if info.TotalStake.Cmp(u(w)) != 0 {
			t.Fatalf("slash %d: expected total %d, got %s", i, w, info.TotalStake)
		}
	}

	history := engine.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 events, got %d", len(history))
	}
	// The chain must be tamper-evident: each event's PrevEventHash must
	// equal the previous event's EventHash, and the first must chain
	// from the zero hash.
	var zero types.Hash256
	if history[0].PrevEventHash != zero {
		t.Fatalf("expected first event to chain from the zero hash")
	}
	for i := 1; i < len(history); i++ {
		if history[i].PrevEventHash != history[i-1].EventHash {
			t.Fatalf("event %d does not chain to event %d's hash", i, i-1)
		}
	}
}

func TestSlashUnknownValidatorNoStateChange(t *testing.T) {
	reg := staking.NewRegistry(u(0))
	engine := staking.NewSlashingEngine(reg)
	if _, err := engine.Slash(addr(99), staking.ReasonDoubleSign, 0, 0, ""); err != staking.ErrValidatorNotFound {
		t.Fatalf("expected ErrValidatorNotFound, got %v", err)
	}
	if len(engine.History()) != 0 {
		t.Fatalf("expected no event recorded for unknown validator")
	}
}

func TestApplySlashCapsAtTotalStake(t *testing.T) {
	reg := staking.NewRegistry(u(0))
	v := addr(1)
	if err := reg.RegisterValidator(v, u(100), nil); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	applied, err := reg.ApplySlash(v, u(999999))
	if err != nil {
		t.Fatalf("ApplySlash: %v", err)
	}
	if applied.Cmp(u(100)) != 0 {
		t.Fatalf("expected penalty capped at total_stake=100, got %s", applied)
	}
}

func TestDelegateUndelegateRoundTrip(t *testing.T) {
	reg := staking.NewRegistry(u(500))
	v := addr(1)
	if err := reg.RegisterValidator(v, u(100), nil); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	info, _ := reg.Get(v)
	if info.IsActive {
		t.Fatalf("expected validator below minimum to start inactive")
	}
	if err := reg.Delegate(v, u(500)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	info, _ = reg.Get(v)
	if !info.IsActive || info.TotalStake.Cmp(u(600)) != 0 {
		t.Fatalf("expected active with total 600, got active=%v total=%s", info.IsActive, info.TotalStake)
	}
	if err := reg.Undelegate(v, u(500)); err != nil {
		t.Fatalf("Undelegate: %v", err)
	}
	info, _ = reg.Get(v)
	if info.IsActive || info.TotalStake.Cmp(u(100)) != 0 {
		t.Fatalf("expected inactive with total 100 after undelegate, got active=%v total=%s", info.IsActive, info.TotalStake)
	}
	if err := reg.Undelegate(v, u(1)); err != staking.ErrInsufficientDelegation {
		t.Fatalf("expected ErrInsufficientDelegation, got %v", err)
	}
}
