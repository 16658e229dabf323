// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package types defines the fixed-width value types shared by every other
// package in the module: hashes, addresses, signatures and public keys.
// All of them are plain byte arrays with value semantics (comparable,
// hashable, zero-alloc to copy) and a canonical lowercase 0x-prefixed hex
// rendering.
package types

import (
	"encoding/hex"
	"fmt"
)

// Hash256 is a 32-byte content hash, e.g. the output of BLAKE3.
type Hash256 [32]byte

// Address is the low 20 bytes of an account's identity hash.
type Address [20]byte

// Signature is a 64-byte Ed25519 signature.
type Signature [64]byte

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey [32]byte

// BlsPublicKey is a 48-byte BLS12-381 G1 public key.
type BlsPublicKey [48]byte

// BlsSignature is a 96-byte BLS12-381 G2 signature.
type BlsSignature [96]byte

// PeerId is the 256-bit identity used by the Kademlia routing table and
// peer manager.
type PeerId [32]byte

func (h Hash256) String() string      { return hexString(h[:]) }
func (a Address) String() string      { return hexString(a[:]) }
func (s Signature) String() string    { return hexString(s[:]) }
func (p PublicKey) String() string    { return hexString(p[:]) }
func (p BlsPublicKey) String() string { return hexString(p[:]) }
func (s BlsSignature) String() string { return hexString(s[:]) }
func (p PeerId) String() string       { return hexString(p[:]) }

func (h Hash256) Bytes() []byte      { b := h; return b[:] }
func (a Address) Bytes() []byte      { b := a; return b[:] }
func (s Signature) Bytes() []byte    { b := s; return b[:] }
func (p PublicKey) Bytes() []byte    { b := p; return b[:] }
func (p BlsPublicKey) Bytes() []byte { b := p; return b[:] }
func (s BlsSignature) Bytes() []byte { b := s; return b[:] }
func (p PeerId) Bytes() []byte       { b := p; return b[:] }

func (h Hash256) IsZero() bool      { return h == Hash256{} }
func (a Address) IsZero() bool      { return a == Address{} }
func (p PublicKey) IsZero() bool    { return p == PublicKey{} }
func (p BlsPublicKey) IsZero() bool { return p == BlsPublicKey{} }
func (p PeerId) IsZero() bool       { return p == PeerId{} }

func (h Hash256) Equal(o Hash256) bool { return h == o }
func (a Address) Equal(o Address) bool { return a == o }
func (p PeerId) Equal(o PeerId) bool   { return p == o }

func hexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func (h Hash256) MarshalText() ([]byte, error) { return []byte(h.String()), nil }
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (h *Hash256) UnmarshalText(text []byte) error {
	b, err := decodeFixedHex(text, len(h))
	if err != nil {
		return err
	}
	copy(h[:], b)
	return nil
}

func (a *Address) UnmarshalText(text []byte) error {
	b, err := decodeFixedHex(text, len(a))
	if err != nil {
		return err
	}
	copy(a[:], b)
	return nil
}

func decodeFixedHex(text []byte, size int) ([]byte, error) {
	s := string(text)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("types: invalid hex: %w", err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("types: expected %d bytes, got %d", size, len(b))
	}
	return b, nil
}

// AddressFromHash returns the low 20 bytes of a 32-byte hash, as used for
// both externally-owned-account and contract address derivation.
func AddressFromHash(h Hash256) Address {
	var a Address
	copy(a[:], h[12:])
	return a
}

// AccountType enumerates the three kinds of account records kept by the
// state database.
type AccountType uint8

const (
	ExternallyOwned AccountType = iota
	Contract
	System
)

func (t AccountType) String() string {
	switch t {
	case ExternallyOwned:
		return "externally_owned"
	case Contract:
		return "contract"
	case System:
		return "system"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}
