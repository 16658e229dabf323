// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package staking

import (
	"sync"

	"github.com/basalt-chain/basalt/types"
)

// StakeInfo is one validator's bonded-stake bookkeeping.
type StakeInfo struct {
	SelfStake      types.UInt256
	DelegatedStake types.UInt256
	TotalStake     types.UInt256
	IsActive       bool
	BlsPublicKey   *types.BlsPublicKey
}

// Registry is the validator map, keyed by address, guarded by a single
// mutex that also covers the entire ApplySlash read-modify-write
// (spec.md §4.9, §5: "single registry lock protecting the entire
// apply_slash transaction; delegation and undelegation take the same
// lock").
type Registry struct {
	mu                sync.Mutex
	validators        map[types.Address]*StakeInfo
	minValidatorStake types.UInt256
}

// NewRegistry returns an empty registry with the given minimum
// validator stake threshold.
func NewRegistry(minValidatorStake types.UInt256) *Registry {
	return &Registry{
		validators:        make(map[types.Address]*StakeInfo),
		minValidatorStake: minValidatorStake,
	}
}

// RegisterValidator inserts a new validator bonding selfStake. is_active
// is set according to whether selfStake already meets the minimum.
func (r *Registry) RegisterValidator(addr types.Address, selfStake types.UInt256, blsKey *types.BlsPublicKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.validators[addr]; exists {
		return ErrValidatorExists
	}
	r.validators[addr] = &StakeInfo{
		SelfStake:      selfStake,
		DelegatedStake: types.ZeroUInt256,
		TotalStake:     selfStake,
		IsActive:       selfStake.Cmp(r.minValidatorStake) >= 0,
		BlsPublicKey:   blsKey,
	}
	return nil
}

// Delegate increments validator's delegated_stake and total_stake.
func (r *Registry) Delegate(validator types.Address, amount types.UInt256) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.validators[validator]
	if !ok {
		return ErrValidatorNotFound
	}
	delegated, ok := v.DelegatedStake.Add(amount)
	if !ok {
		return ErrStakeOverflow
	}
	total, ok := v.TotalStake.Add(amount)
	if !ok {
		return ErrStakeOverflow
	}
	v.DelegatedStake = delegated
	v.TotalStake = total
	v.IsActive = v.TotalStake.Cmp(r.minValidatorStake) >= 0
	return nil
}

// Undelegate decrements validator's delegated_stake and total_stake,
// symmetric with Delegate.
func (r *Registry) Undelegate(validator types.Address, amount types.UInt256) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.validators[validator]
	if !ok {
		return ErrValidatorNotFound
	}
	delegated, ok := v.DelegatedStake.Sub(amount)
	if !ok {
		return ErrInsufficientDelegation
	}
	total, ok := v.TotalStake.Sub(amount)
	if !ok {
		return ErrInsufficientDelegation
	}
	v.DelegatedStake = delegated
	v.TotalStake = total
	v.IsActive = v.TotalStake.Cmp(r.minValidatorStake) >= 0
	return nil
}

// ApplySlash runs the full read-modify-write transaction under the
// registry lock (spec.md §4.9):
//  1. cap penalty at total_stake
//  2. deduct from self_stake first, overflow into delegated_stake
//  3. recompute total_stake
//  4. set is_active = false iff total_stake < min_validator_stake
//  5. return the amount actually applied
func (r *Registry) ApplySlash(validator types.Address, penalty types.UInt256) (types.UInt256, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.validators[validator]
	if !ok {
		return types.ZeroUInt256, ErrValidatorNotFound
	}

	applied := penalty
	if applied.Cmp(v.TotalStake) > 0 {
		applied = v.TotalStake
	}

	remaining := applied
	if v.SelfStake.Cmp(remaining) >= 0 {
		v.SelfStake, _ = v.SelfStake.Sub(remaining)
	} else {
		remaining, _ = remaining.Sub(v.SelfStake)
		v.SelfStake = types.ZeroUInt256
		v.DelegatedStake, _ = v.DelegatedStake.Sub(remaining)
	}

	v.TotalStake, _ = v.SelfStake.Add(v.DelegatedStake)
	if v.TotalStake.Cmp(r.minValidatorStake) < 0 {
		v.IsActive = false
	}
	return applied, nil
}

// Get returns a copy of validator's current StakeInfo.
func (r *Registry) Get(validator types.Address) (StakeInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.validators[validator]
	if !ok {
		return StakeInfo{}, ErrValidatorNotFound
	}
	return *v, nil
}
