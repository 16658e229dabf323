// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import "github.com/basalt-chain/basalt/types"

// AccountState is the per-address record kept in the accounts column
// family (spec.md §3).
type AccountState struct {
	Nonce          uint64
	Balance        types.UInt256
	StorageRoot    types.Hash256
	CodeHash       types.Hash256
	AccountType    types.AccountType
	ComplianceHash types.Hash256
}

// StorageKey identifies a single 32-byte storage slot of an account.
type StorageKey struct {
	Address types.Address
	Slot    types.Hash256
}
