// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package transport

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/hkdf"

	"github.com/basalt-chain/basalt/codec"
	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/types"
)

var log = logrus.WithField("prefix", "transport")

// BestHead is the (number, hash) pair a node advertises about its chain
// tip during the handshake.
type BestHead struct {
	Number uint64
	Hash   types.Hash256
}

// Hello is the first handshake message: identity, a fresh X25519
// ephemeral signed by the long-term Ed25519 key, and the chain
// parameters both sides must agree on before proceeding (spec.md §4.8).
type Hello struct {
	Ed25519PublicKey types.PublicKey
	X25519PublicKey  [32]byte
	EphemeralSig     types.Signature
	GenesisHash      types.Hash256
	ChainID          uint32
	ProtocolVersion  uint32
	BestHead         BestHead
}

func (h Hello) encode() []byte {
	w := codec.NewWriter(256)
	w.WriteRaw(h.Ed25519PublicKey[:])
	w.WriteRaw(h.X25519PublicKey[:])
	w.WriteRaw(h.EphemeralSig[:])
	w.WriteRaw(h.GenesisHash[:])
	w.WriteUint32(h.ChainID)
	w.WriteUint32(h.ProtocolVersion)
	w.WriteUint64(h.BestHead.Number)
	w.WriteRaw(h.BestHead.Hash[:])
	return w.Bytes()
}

func decodeHello(buf []byte) (Hello, error) {
	r := codec.NewReader(buf)
	var h Hello
	copy(h.Ed25519PublicKey[:], r.ReadRaw(32))
	copy(h.X25519PublicKey[:], r.ReadRaw(32))
	copy(h.EphemeralSig[:], r.ReadRaw(64))
	copy(h.GenesisHash[:], r.ReadRaw(32))
	h.ChainID = r.ReadUint32()
	h.ProtocolVersion = r.ReadUint32()
	h.BestHead.Number = r.ReadUint64()
	copy(h.BestHead.Hash[:], r.ReadRaw(32))
	if err := r.Err(); err != nil {
		return Hello{}, err
	}
	return h, nil
}

// HelloAck is the handshake's second message: either acceptance or a
// human-readable rejection reason.
type HelloAck struct {
	Accepted bool
	Reason   string
}

func (a HelloAck) encode() []byte {
	w := codec.NewWriter(64)
	w.WriteBool(a.Accepted)
	w.WriteString(a.Reason)
	return w.Bytes()
}

func decodeHelloAck(buf []byte) (HelloAck, error) {
	r := codec.NewReader(buf)
	var a HelloAck
	a.Accepted = r.ReadBool()
	a.Reason = r.ReadString(codec.MaxStringLength)
	if err := r.Err(); err != nil {
		return HelloAck{}, err
	}
	return a, nil
}

// LocalIdentity bundles the long-term key material and chain parameters
// a node presents during the handshake.
type LocalIdentity struct {
	Ed25519PrivateKey ed25519.PrivateKey
	Ed25519PublicKey  types.PublicKey
	GenesisHash       types.Hash256
	ChainID           uint32
	ProtocolVersion   uint32
	BestHead          BestHead
}

// Accept decides whether a received Hello is compatible with the local
// node's chain parameters: genesis hash, chain ID and protocol version
// must all match. PerformHandshake calls it on both the initiator and the
// responder side.
func (id LocalIdentity) Accept(peer Hello) (bool, string) {
	if peer.GenesisHash != id.GenesisHash {
		return false, "genesis mismatch"
	}
	if peer.ChainID != id.ChainID {
		return false, "chain id mismatch"
	}
	if peer.ProtocolVersion != id.ProtocolVersion {
		return false, "protocol version mismatch"
	}
	return true, ""
}

// PerformHandshake runs the HELLO/HELLO_ACK exchange over rw and, on
// success, returns a SecureChannel with directional keys derived from the
// X25519 ECDH shared secret. initiator determines which of the two HKDF
// labels this side uses to encrypt.
func PerformHandshake(rw io.ReadWriter, id LocalIdentity, initiator bool) (*SecureChannel, *Hello, error) {
	ephemeralPriv := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(ephemeralPriv); err != nil {
		return nil, nil, err
	}
	ephemeralPub, err := curve25519.X25519(ephemeralPriv, curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}

	local := Hello{
		Ed25519PublicKey: id.Ed25519PublicKey,
		GenesisHash:      id.GenesisHash,
		ChainID:          id.ChainID,
		ProtocolVersion:  id.ProtocolVersion,
		BestHead:         id.BestHead,
	}
	copy(local.X25519PublicKey[:], ephemeralPub)
	sig, err := crypto.Ed25519Sign(id.Ed25519PrivateKey, local.X25519PublicKey[:])
	if err != nil {
		return nil, nil, err
	}
	local.EphemeralSig = sig

	if err := WriteFrame(rw, local.encode()); err != nil {
		return nil, nil, err
	}
	peerBuf, err := ReadFrame(rw)
	if err != nil {
		return nil, nil, err
	}
	peer, err := decodeHello(peerBuf)
	if err != nil {
		return nil, nil, err
	}
	if !crypto.Ed25519Verify(peer.Ed25519PublicKey, peer.X25519PublicKey[:], peer.EphemeralSig) {
		log.Warn("rejecting handshake: bad ephemeral signature")
		_ = WriteFrame(rw, HelloAck{Accepted: false, Reason: "bad ephemeral signature"}.encode())
		return nil, nil, ErrHandshakeSignatureInvalid
	}

	accepted, reason := id.Accept(peer)
	if err := WriteFrame(rw, HelloAck{Accepted: accepted, Reason: reason}.encode()); err != nil {
		return nil, nil, err
	}
	ackBuf, err := ReadFrame(rw)
	if err != nil {
		return nil, nil, err
	}
	peerAck, err := decodeHelloAck(ackBuf)
	if err != nil {
		return nil, nil, err
	}
	if !accepted {
		log.WithField("reason", reason).Warn("rejected peer handshake")
		return nil, nil, &HandshakeRejectedError{Reason: reason}
	}
	if !peerAck.Accepted {
		log.WithField("reason", peerAck.Reason).Warn("peer rejected our handshake")
		return nil, nil, &HandshakeRejectedError{Reason: peerAck.Reason}
	}

	shared, err := curve25519.X25519(ephemeralPriv, peer.X25519PublicKey[:])
	if err != nil {
		return nil, nil, err
	}
	initToResp, err := deriveDirectionalKey(shared, "basalt-v1 initiator->responder")
	if err != nil {
		return nil, nil, err
	}
	respToInit, err := deriveDirectionalKey(shared, "basalt-v1 responder->initiator")
	if err != nil {
		return nil, nil, err
	}

	var channel *SecureChannel
	if initiator {
		channel = NewSecureChannel(initToResp, respToInit)
	} else {
		channel = NewSecureChannel(respToInit, initToResp)
	}
	return channel, &peer, nil
}

func deriveDirectionalKey(secret []byte, label string) ([32]byte, error) {
	var out [32]byte
	reader := hkdf.New(sha256.New, secret, nil, []byte(label))
	if _, err := io.ReadFull(reader, out[:]); err != nil {
		return [32]byte{}, err
	}
	return out, nil
}
