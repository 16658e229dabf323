// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/basalt-chain/basalt/types"
)

// Keccak256 computes the "legacy" Keccak-256 digest (padding byte 0x01),
// as used by Ethereum address derivation, not NIST SHA3-256 (padding
// byte 0x06). spec.md §4.2 requires bit-exact Keccak, hence
// sha3.NewLegacyKeccak256 rather than sha3.New256.
func Keccak256(data []byte) types.Hash256 {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out types.Hash256
	h.Sum(out[:0])
	return out
}
