// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package types

import (
	"github.com/holiman/uint256"
)

// UInt256 is a 256-bit unsigned integer with value semantics: every
// arithmetic method returns a new UInt256 rather than mutating the
// receiver, and overflow/underflow is reported instead of silently
// wrapping. The wire encoding is 32 big-endian bytes (spec.md §3),
// which is the opposite byte order of the holiman/uint256 internal
// representation, so conversions always go through SetBytes32/Bytes32.
type UInt256 struct {
	v uint256.Int
}

// ZeroUInt256 is the additive identity.
var ZeroUInt256 = UInt256{}

// NewUInt256FromUint64 builds a UInt256 from a native uint64.
func NewUInt256FromUint64(n uint64) UInt256 {
	return UInt256{v: *uint256.NewInt(n)}
}

// NewUInt256FromBigEndian parses the 32-byte big-endian wire encoding used
// throughout the codec (spec.md §4.1, §6).
func NewUInt256FromBigEndian(b [32]byte) UInt256 {
	var u UInt256
	u.v.SetBytes32(b[:])
	return u
}

// BigEndianBytes renders the canonical 32-byte big-endian wire encoding.
func (u UInt256) BigEndianBytes() [32]byte {
	return u.v.Bytes32()
}

func (u UInt256) String() string { return u.v.Dec() }

func (u UInt256) IsZero() bool { return u.v.IsZero() }

// Cmp returns -1, 0 or 1 as u is less than, equal to, or greater than o.
func (u UInt256) Cmp(o UInt256) int { return u.v.Cmp(&o.v) }

// Add returns u+o, failing (ok=false) on overflow past 2^256-1.
func (u UInt256) Add(o UInt256) (result UInt256, ok bool) {
	var sum uint256.Int
	overflow := sum.AddOverflow(&u.v, &o.v)
	if overflow {
		return UInt256{}, false
	}
	return UInt256{v: sum}, true
}

// Sub returns u-o, failing (ok=false) on underflow below zero.
func (u UInt256) Sub(o UInt256) (result UInt256, ok bool) {
	if u.v.Lt(&o.v) {
		return UInt256{}, false
	}
	var diff uint256.Int
	diff.Sub(&u.v, &o.v)
	return UInt256{v: diff}, true
}

// Mul returns u*o, failing (ok=false) on overflow past 2^256-1.
func (u UInt256) Mul(o UInt256) (result UInt256, ok bool) {
	var product uint256.Int
	overflow := product.MulOverflow(&u.v, &o.v)
	if overflow {
		return UInt256{}, false
	}
	return UInt256{v: product}, true
}

// Div returns u/o using integer floor division, failing (ok=false) on
// division by zero.
func (u UInt256) Div(o UInt256) (result UInt256, ok bool) {
	if o.v.IsZero() {
		return UInt256{}, false
	}
	var quotient uint256.Int
	quotient.Div(&u.v, &o.v)
	return UInt256{v: quotient}, true
}

// SaturatingSub returns u-o, clamped to zero instead of failing.
func (u UInt256) SaturatingSub(o UInt256) UInt256 {
	if u.v.Lt(&o.v) {
		return UInt256{}
	}
	var diff uint256.Int
	diff.Sub(&u.v, &o.v)
	return UInt256{v: diff}
}
