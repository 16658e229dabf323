// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package bridge

import (
	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/types"
)

// Committee is the fixed set of signers authorized to attest unlocks.
type Committee struct {
	Threshold int
	Members   []types.PublicKey
}

func (c Committee) isMember(pk types.PublicKey) bool {
	for _, m := range c.Members {
		if m == pk {
			return true
		}
	}
	return false
}

// Attestation is one committee member's signature over an unlock.
type Attestation struct {
	Signer    types.PublicKey
	Signature types.Signature
}

// verify checks that attestations all come from distinct committee
// members and that at least Threshold of them validly sign msg.
func (c Committee) verify(msg []byte, attestations []Attestation) error {
	seen := make(map[types.PublicKey]struct{}, len(attestations))
	valid := 0
	for _, a := range attestations {
		if !c.isMember(a.Signer) {
			return ErrUnknownMember
		}
		if _, dup := seen[a.Signer]; dup {
			return ErrDuplicateAttestor
		}
		seen[a.Signer] = struct{}{}
		if crypto.Ed25519Verify(a.Signer, msg, a.Signature) {
			valid++
		}
	}
	if valid < c.Threshold {
		return ErrInsufficientAttestations
	}
	return nil
}
