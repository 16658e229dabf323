// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vmhost declares the interface a contract execution environment
// is given to interact with node state. The VM implementation itself is
// out of scope; this package exists so that boundary is a real Go
// interface with an exerciser (package state's StateHostContext), not a
// design note with no code behind it.
package vmhost

import "github.com/basalt-chain/basalt/types"

// HostContext is everything a contract invocation can do to the outside
// world: read/write/delete its own storage, emit an event for indexers,
// and assert an invariant that aborts execution on failure.
type HostContext interface {
	StorageRead(key types.Hash256) ([]byte, bool)
	StorageWrite(key types.Hash256, value []byte)
	StorageDelete(key types.Hash256)
	EmitEvent(signatureHash types.Hash256, topics []types.Hash256, data []byte)
	Require(cond bool, reason string) error
}

// GasMeter tracks execution cost. Consume returns an error once the
// budget is exhausted; the host context must stop running the contract
// when that happens.
type GasMeter interface {
	Consume(amount uint64) error
	Remaining() uint64
}
