// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package crypto_test

import (
	"encoding/hex"
	"testing"

	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/types"
)

func TestBlake3EmptyKnownAnswer(t *testing.T) {
	got := crypto.Blake3Hash(nil)
	want := "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got.String() != "0x"+want {
		t.Fatalf("BLAKE3(empty) = %s, want 0x%s", got, want)
	}
}

func TestKeccak256AbcKnownAnswer(t *testing.T) {
	got := crypto.Keccak256([]byte("abc"))
	want := "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"
	if got.String() != "0x"+want {
		t.Fatalf("keccak256(\"abc\") = %s, want 0x%s", got, want)
	}
}

func TestKeccak256EmptyAndZeroBlock(t *testing.T) {
	empty := crypto.Keccak256(nil)
	if empty.IsZero() {
		t.Fatalf("keccak256(empty) should not be zero")
	}
	zeroBlock := make([]byte, 32)
	h := crypto.Keccak256(zeroBlock)
	if h.IsZero() {
		t.Fatalf("keccak256(zero32) should not be zero")
	}
}

func TestStreamingHasherMatchesOneShot(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	oneShot := crypto.Blake3Hash(data)

	sh := crypto.NewStreamingHasher()
	_ = sh.Write(data[:10])
	_ = sh.Write(data[10:])
	streamed, err := sh.Sum()
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if streamed != oneShot {
		t.Fatalf("streaming hash %s != one-shot hash %s", streamed, oneShot)
	}

	sh.Close()
	if err := sh.Write([]byte("x")); err == nil {
		t.Fatalf("expected error writing to closed hasher")
	}
	if _, err := sh.Sum(); err == nil {
		t.Fatalf("expected error summing closed hasher")
	}
}

func TestEd25519SignVerifyAndTamper(t *testing.T) {
	pk, sk, err := crypto.GenerateEd25519Keypair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	msg := []byte("transaction payload")
	sig, err := crypto.Ed25519Sign(sk, msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !crypto.Ed25519Verify(pk, msg, sig) {
		t.Fatalf("expected valid signature to verify")
	}
	tampered := append([]byte{}, msg...)
	tampered[0] ^= 0xff
	if crypto.Ed25519Verify(pk, tampered, sig) {
		t.Fatalf("expected tampered message to fail verification")
	}
}

func TestEd25519BatchVerify(t *testing.T) {
	const n = 4
	var pks []types.PublicKey
	var msgs [][]byte
	var sigs []types.Signature
	for i := 0; i < n; i++ {
		pk, sk, err := crypto.GenerateEd25519Keypair()
		if err != nil {
			t.Fatalf("keygen: %v", err)
		}
		msg := []byte{byte(i)}
		sig, err := crypto.Ed25519Sign(sk, msg)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		pks = append(pks, pk)
		msgs = append(msgs, msg)
		sigs = append(sigs, sig)
	}
	if !crypto.Ed25519BatchVerify(pks, msgs, sigs) {
		t.Fatalf("expected batch verify to succeed")
	}
	sigs[1][0] ^= 0xff
	if crypto.Ed25519BatchVerify(pks, msgs, sigs) {
		t.Fatalf("expected batch verify to fail with a corrupted signature")
	}
}

func TestContractAddressDerivationDeterministic(t *testing.T) {
	var sender types.Address
	sender[19] = 0x01
	a1 := crypto.ContractAddress(sender, 0)
	a2 := crypto.ContractAddress(sender, 0)
	if a1 != a2 {
		t.Fatalf("contract address derivation is not deterministic")
	}
	a3 := crypto.ContractAddress(sender, 1)
	if a1 == a3 {
		t.Fatalf("different nonces should yield different contract addresses")
	}
	_ = hex.EncodeToString(a1[:])
}
