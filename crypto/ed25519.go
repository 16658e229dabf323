// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package crypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/ed25519"

	"github.com/basalt-chain/basalt/types"
)

// ErrInvalidKeyLength is returned when a key does not match the expected
// Ed25519 size.
var ErrInvalidKeyLength = errors.New("crypto: invalid key length")

// ErrSignatureVerifyFailed is returned by operations that require a valid
// signature but did not get one.
var ErrSignatureVerifyFailed = errors.New("crypto: signature verification failed")

// GenerateEd25519Keypair creates a fresh Ed25519 identity.
func GenerateEd25519Keypair() (types.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return types.PublicKey{}, nil, err
	}
	var pk types.PublicKey
	copy(pk[:], pub)
	return pk, priv, nil
}

// Ed25519Sign signs msg with sk, returning a 64-byte signature.
func Ed25519Sign(sk ed25519.PrivateKey, msg []byte) (types.Signature, error) {
	if len(sk) != ed25519.PrivateKeySize {
		return types.Signature{}, ErrInvalidKeyLength
	}
	sig := ed25519.Sign(sk, msg)
	var out types.Signature
	copy(out[:], sig)
	return out, nil
}

// Ed25519Verify reports whether sig is a valid signature over msg under pk.
func Ed25519Verify(pk types.PublicKey, msg []byte, sig types.Signature) bool {
	return ed25519.Verify(pk[:], msg, sig[:])
}

// Ed25519BatchVerify reports whether every (pk[i], msg[i], sig[i]) triple
// verifies. The upstream ed25519 package exposes no native batch-verify
// primitive, so this is independent per-signature verification with an
// early exit on the first failure; it is correct but not faster than N
// individual calls (documented relaxation of spec.md §4.2's "batch").
func Ed25519BatchVerify(pks []types.PublicKey, msgs [][]byte, sigs []types.Signature) bool {
	if len(pks) != len(msgs) || len(msgs) != len(sigs) {
		return false
	}
	for i := range pks {
		if !Ed25519Verify(pks[i], msgs[i], sigs[i]) {
			return false
		}
	}
	return true
}

// DeriveAddress computes Address = low20(BLAKE3(pk)), the externally-owned
// account address derivation from spec.md §3.
func DeriveAddress(pk types.PublicKey) types.Address {
	return types.AddressFromHash(Blake3Hash(pk[:]))
}

// ContractAddress computes contract_address = low20(BLAKE3(sender ||
// u64_le(nonce))), per spec.md §3 and §6.
func ContractAddress(sender types.Address, nonce uint64) types.Address {
	buf := make([]byte, 0, 28)
	buf = append(buf, sender[:]...)
	buf = append(buf,
		byte(nonce), byte(nonce>>8), byte(nonce>>16), byte(nonce>>24),
		byte(nonce>>32), byte(nonce>>40), byte(nonce>>48), byte(nonce>>56),
	)
	return types.AddressFromHash(Blake3Hash(buf))
}
