// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package staking implements the validator registry and tiered slashing
// engine: registration, delegation, and a single-lock apply_slash
// transaction whose outcome feeds an append-only, BLAKE3-chained
// history log.
package staking

import "errors"

var (
	// ErrValidatorNotFound is returned by any operation addressing an
	// unregistered validator.
	ErrValidatorNotFound = errors.New("staking: validator not found")
	// ErrValidatorExists is returned by RegisterValidator for an address
	// already present in the registry.
	ErrValidatorExists = errors.New("staking: validator already registered")
	// ErrInsufficientDelegation is returned by Undelegate when amount
	// exceeds the validator's current delegated stake.
	ErrInsufficientDelegation = errors.New("staking: undelegate amount exceeds delegated stake")
	// ErrStakeOverflow is returned by Delegate when amount would push
	// delegated_stake or total_stake past the UInt256 range.
	ErrStakeOverflow = errors.New("staking: delegation overflows stake total")
)
