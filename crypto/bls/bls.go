// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bls implements BLS12-381 signing, verification and signature
// aggregation (spec.md §4.2) on top of github.com/supranational/blst,
// using the min-pubkey-size variant: 48-byte G1 public keys and 96-byte
// G2 signatures, deterministic per RFC-9380's hash-to-curve.
package bls

import (
	"errors"

	blst "github.com/supranational/blst/bindings/go"

	"github.com/basalt-chain/basalt/types"
)

// domainSeparationTag pins the hash-to-curve domain so Basalt signatures
// can never be replayed against another BLS12-381 protocol using a
// different DST.
var domainSeparationTag = []byte("BASALT-V1-BLS12381G2_XMD:SHA-256_SSWU_RO_")

// ErrInvalidSecretKey is returned when key material cannot seed a secret
// key.
var ErrInvalidSecretKey = errors.New("bls: invalid secret key material")

// ErrInvalidPublicKey is returned when a public key fails to deserialize
// or fails a group-membership check.
var ErrInvalidPublicKey = errors.New("bls: invalid public key")

// ErrInvalidSignature is returned when a signature fails to deserialize
// or fails a group-membership check.
var ErrInvalidSignature = errors.New("bls: invalid signature")

type (
	p1Affine = blst.P1Affine
	p2Affine = blst.P2Affine
	secretKey = blst.SecretKey
)

// SecretKey is a BLS12-381 secret scalar.
type SecretKey struct {
	sk secretKey
}

// GenerateSecretKey derives a secret key from 32+ bytes of key material.
func GenerateSecretKey(ikm []byte) (*SecretKey, error) {
	if len(ikm) < 32 {
		return nil, ErrInvalidSecretKey
	}
	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, ErrInvalidSecretKey
	}
	return &SecretKey{sk: *sk}, nil
}

// PublicKey returns the G1 public key corresponding to sk.
func (sk *SecretKey) PublicKey() types.BlsPublicKey {
	pk := new(p1Affine).From(&sk.sk)
	var out types.BlsPublicKey
	copy(out[:], pk.Compress())
	return out
}

// Sign produces a 96-byte G2 signature over msg.
func (sk *SecretKey) Sign(msg []byte) types.BlsSignature {
	sig := new(p2Affine).Sign(&sk.sk, msg, domainSeparationTag)
	var out types.BlsSignature
	copy(out[:], sig.Compress())
	return out
}

// Verify reports whether sig is a valid BLS12-381 signature over msg
// under pk.
func Verify(pk types.BlsPublicKey, msg []byte, sig types.BlsSignature) bool {
	pkAffine := new(p1Affine).Uncompress(pk[:])
	if pkAffine == nil || !pkAffine.KeyValidate() {
		return false
	}
	sigAffine := new(p2Affine).Uncompress(sig[:])
	if sigAffine == nil {
		return false
	}
	return sigAffine.Verify(true, pkAffine, true, msg, domainSeparationTag)
}

// AggregateSignatures combines independent signatures on (possibly
// different) messages into one constant-size signature.
func AggregateSignatures(sigs []types.BlsSignature) (types.BlsSignature, error) {
	affines := make([]*p2Affine, 0, len(sigs))
	for _, s := range sigs {
		a := new(p2Affine).Uncompress(s[:])
		if a == nil {
			return types.BlsSignature{}, ErrInvalidSignature
		}
		affines = append(affines, a)
	}
	agg := new(blst.P2Aggregate)
	if !agg.Aggregate(affines, true) {
		return types.BlsSignature{}, ErrInvalidSignature
	}
	var out types.BlsSignature
	copy(out[:], agg.ToAffine().Compress())
	return out, nil
}

// VerifyAggregate verifies an aggregated signature against the same
// number of (public key, message) pairs it was built from.
func VerifyAggregate(pks []types.BlsPublicKey, msgs [][]byte, aggSig types.BlsSignature) bool {
	if len(pks) != len(msgs) || len(pks) == 0 {
		return false
	}
	pkAffines := make([]*p1Affine, 0, len(pks))
	for _, pk := range pks {
		a := new(p1Affine).Uncompress(pk[:])
		if a == nil || !a.KeyValidate() {
			return false
		}
		pkAffines = append(pkAffines, a)
	}
	sigAffine := new(p2Affine).Uncompress(aggSig[:])
	if sigAffine == nil {
		return false
	}
	return sigAffine.AggregateVerify(true, pkAffines, true, msgs, domainSeparationTag)
}
