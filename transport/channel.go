// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package transport

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// SecureChannel is the AEAD channel derived from a completed Handshake.
// Its two directions have independent keys and independent monotonic
// nonce counters (spec.md §4.8), each a 64-bit count carried in the low 8
// bytes of a 96-bit nonce: sendCounter increments on every
// Seal, recvHighWater tracks the highest nonce accepted from the peer so
// replays and reordering can be rejected.
type SecureChannel struct {
	mu sync.Mutex

	encryptKey [32]byte
	decryptKey [32]byte

	sendCounter uint64
	closed      bool

	recvMu        sync.Mutex
	recvHighWater uint64
	recvSeenAny   bool
}

// NewSecureChannel wraps the two directional keys derived by a Handshake.
// encryptKey is used to seal outgoing messages, decryptKey to open
// incoming ones; since they come from independent HKDF derivations, a
// channel can never successfully decrypt its own sealed output (spec.md
// §4.8: "no loopback decryption").
func NewSecureChannel(encryptKey, decryptKey [32]byte) *SecureChannel {
	return &SecureChannel{encryptKey: encryptKey, decryptKey: decryptKey}
}

// Seal encrypts plaintext under the send-direction key and the next
// nonce in sequence, returning nonce‖ciphertext‖tag ready to frame.
func (c *SecureChannel) Seal(plaintext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrChannelClosed
	}

	aead, err := chacha20poly1305.New(c.encryptKey[:])
	if err != nil {
		return nil, err
	}
	nonce := encodeNonce(c.sendCounter)
	c.sendCounter++

	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts an envelope produced by the peer's Seal, enforcing strict
// nonce monotonicity: a nonce not strictly greater than the last accepted
// one is rejected with ErrReplay before the AEAD is even invoked.
func (c *SecureChannel) Open(envelope []byte) ([]byte, error) {
	c.mu.Lock()
	closed := c.closed
	decryptKey := c.decryptKey
	c.mu.Unlock()
	if closed {
		return nil, ErrChannelClosed
	}

	if len(envelope) < chacha20poly1305.NonceSize {
		return nil, ErrInvalidFrameLength
	}
	nonce := envelope[:chacha20poly1305.NonceSize]
	ciphertext := envelope[chacha20poly1305.NonceSize:]
	counter := decodeNonce(nonce)

	c.recvMu.Lock()
	if c.recvSeenAny && counter <= c.recvHighWater {
		c.recvMu.Unlock()
		return nil, ErrReplay
	}
	c.recvMu.Unlock()

	aead, err := chacha20poly1305.New(decryptKey[:])
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	c.recvMu.Lock()
	if !c.recvSeenAny || counter > c.recvHighWater {
		c.recvHighWater = counter
		c.recvSeenAny = true
	}
	c.recvMu.Unlock()
	return plaintext, nil
}

// Close zero-fills both directional keys so they do not linger in the
// channel's memory (spec.md §4.8 teardown requirement). The ECDH shared
// secret they were derived from is not held by the channel.
func (c *SecureChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.encryptKey {
		c.encryptKey[i] = 0
	}
	for i := range c.decryptKey {
		c.decryptKey[i] = 0
	}
	c.closed = true
}

func encodeNonce(counter uint64) []byte {
	var nonce [chacha20poly1305.NonceSize]byte
	binary.BigEndian.PutUint64(nonce[chacha20poly1305.NonceSize-8:], counter)
	return nonce[:]
}

func decodeNonce(nonce []byte) uint64 {
	return binary.BigEndian.Uint64(nonce[len(nonce)-8:])
}
