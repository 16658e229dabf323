// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package transport implements the length-framed, authenticated-and-
// encrypted TCP channel between two Basalt nodes: frame encoding, the
// Ed25519/X25519 handshake, and the resulting per-direction AEAD channel
// (spec.md §4.8).
package transport

import "errors"

// ErrMessageTooLarge is returned when a frame's declared or actual length
// exceeds MaxFrameSize. WriteFrame also returns it for an empty payload.
var ErrMessageTooLarge = errors.New("transport: message too large")

// ErrInvalidFrameLength is returned when a frame declares a length of
// zero or less.
var ErrInvalidFrameLength = errors.New("transport: invalid frame length")

// ErrReplay is returned when a received envelope's nonce is not strictly
// greater than the last one accepted in that direction.
var ErrReplay = errors.New("transport: replayed or out-of-order nonce")

// ErrHandshakeSignatureInvalid is returned when the peer's signature over
// its X25519 ephemeral key does not verify under its claimed Ed25519
// identity key.
var ErrHandshakeSignatureInvalid = errors.New("transport: handshake signature invalid")

// ErrChannelClosed is returned by any operation on a SecureChannel after
// Close.
var ErrChannelClosed = errors.New("transport: channel closed")

// HandshakeRejectedError is returned when the peer's HELLO_ACK rejects
// the connection, carrying the peer's stated reason.
type HandshakeRejectedError struct {
	Reason string
}

func (e *HandshakeRejectedError) Error() string {
	return "transport: handshake rejected: " + e.Reason
}
