// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package types_test

import (
	"testing"

	"github.com/basalt-chain/basalt/types"
)

func TestHash256String(t *testing.T) {
	var h types.Hash256
	h[0] = 0xab
	h[31] = 0xcd
	want := "0xab000000000000000000000000000000000000000000000000000000000000cd"
	if got := h.String(); got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}
}

func TestHash256UnmarshalRoundtrip(t *testing.T) {
	var h types.Hash256
	h[5] = 0x42
	text, err := h.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var got types.Hash256
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got != h {
		t.Fatalf("roundtrip mismatch: got %v want %v", got, h)
	}
}

func TestAddressFromHash(t *testing.T) {
	var h types.Hash256
	for i := range h {
		h[i] = byte(i)
	}
	addr := types.AddressFromHash(h)
	if len(addr) != 20 {
		t.Fatalf("address length = %d, want 20", len(addr))
	}
	if addr != (types.Address{12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31}) {
		t.Fatalf("unexpected address derivation: %v", addr)
	}
}

func TestUInt256ArithmeticOverflow(t *testing.T) {
	max := types.NewUInt256FromBigEndian([32]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	})
	one := types.NewUInt256FromUint64(1)
	if _, ok := max.Add(one); ok {
		t.Fatalf("expected overflow on max+1")
	}
	if _, ok := types.ZeroUInt256.Sub(one); ok {
		t.Fatalf("expected underflow on 0-1")
	}
	if got := types.NewUInt256FromUint64(5).SaturatingSub(types.NewUInt256FromUint64(10)); !got.IsZero() {
		t.Fatalf("SaturatingSub should clamp to zero, got %s", got)
	}
}

func TestUInt256Div(t *testing.T) {
	got, ok := types.NewUInt256FromUint64(9025).Mul(types.NewUInt256FromUint64(5))
	if !ok {
		t.Fatalf("unexpected overflow")
	}
	got, ok = got.Div(types.NewUInt256FromUint64(100))
	if !ok || got.Cmp(types.NewUInt256FromUint64(451)) != 0 {
		t.Fatalf("expected floor division to give 451, got %s ok=%v", got, ok)
	}
	if _, ok := types.NewUInt256FromUint64(1).Div(types.ZeroUInt256); ok {
		t.Fatalf("expected division by zero to fail")
	}
}

func TestUInt256BigEndianRoundtrip(t *testing.T) {
	var raw [32]byte
	raw[30] = 0x01
	raw[31] = 0x00
	u := types.NewUInt256FromBigEndian(raw)
	if got := u.BigEndianBytes(); got != raw {
		t.Fatalf("roundtrip mismatch: got %x want %x", got, raw)
	}
}
