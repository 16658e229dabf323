// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package transport_test

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/transport"
	"github.com/basalt-chain/basalt/types"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := transport.WriteFrame(&buf, []byte("hello")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := transport.ReadFrame(&buf)
	if err != nil || string(got) != "hello" {
		t.Fatalf("ReadFrame: got=%q err=%v", got, err)
	}
}

func TestWriteFrameRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	oversize := make([]byte, transport.MaxFrameSize+1)
	if err := transport.WriteFrame(&buf, oversize); !errors.Is(err, transport.ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestWriteFrameRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := transport.WriteFrame(&buf, nil); !errors.Is(err, transport.ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge for empty payload, got %v", err)
	}
}

func identity(t *testing.T, chainID uint32) transport.LocalIdentity {
	t.Helper()
	pub, priv, err := crypto.GenerateEd25519Keypair()
	if err != nil {
		t.Fatalf("GenerateEd25519Keypair: %v", err)
	}
	return transport.LocalIdentity{
		Ed25519PrivateKey: priv,
		Ed25519PublicKey:  pub,
		GenesisHash:       types.Hash256{0xaa},
		ChainID:           chainID,
		ProtocolVersion:   1,
		BestHead:          transport.BestHead{Number: 10, Hash: types.Hash256{0xbb}},
	}
}

// tcpPair returns both ends of a loopback TCP connection. Each side of
// PerformHandshake writes its HELLO before reading the peer's, so the two
// ends need the socket buffering that net.Pipe does not provide.
func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, _ := ln.Accept()
		accepted <- conn
	}()
	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server := <-accepted
	if server == nil {
		t.Fatalf("Accept failed")
	}
	return client, server
}

func handshakePair(t *testing.T) (*transport.SecureChannel, *transport.SecureChannel) {
	t.Helper()
	clientConn, serverConn := tcpPair(t)
	defer clientConn.Close()
	defer serverConn.Close()

	clientID := identity(t, 7)
	serverID := identity(t, 7)

	type result struct {
		ch  *transport.SecureChannel
		err error
	}
	clientResult := make(chan result, 1)
	go func() {
		ch, _, err := transport.PerformHandshake(clientConn, clientID, true)
		clientResult <- result{ch, err}
	}()

	serverCh, _, err := transport.PerformHandshake(serverConn, serverID, false)
	if err != nil {
		t.Fatalf("server handshake: %v", err)
	}
	cr := <-clientResult
	if cr.err != nil {
		t.Fatalf("client handshake: %v", cr.err)
	}
	return cr.ch, serverCh
}

func TestHandshakeProducesWorkingChannel(t *testing.T) {
	client, server := handshakePair(t)
	defer client.Close()
	defer server.Close()

	envelope, err := client.Seal([]byte("ping"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	plaintext, err := server.Open(envelope)
	if err != nil || string(plaintext) != "ping" {
		t.Fatalf("Open: plaintext=%q err=%v", plaintext, err)
	}
}

func TestHandshakeRejectsChainMismatch(t *testing.T) {
	clientConn, serverConn := tcpPair(t)
	defer clientConn.Close()
	defer serverConn.Close()

	clientID := identity(t, 1)
	serverID := identity(t, 2)

	type result struct {
		err error
	}
	clientResult := make(chan result, 1)
	go func() {
		_, _, err := transport.PerformHandshake(clientConn, clientID, true)
		clientResult <- result{err}
	}()

	_, _, serverErr := transport.PerformHandshake(serverConn, serverID, false)
	if serverErr == nil {
		t.Fatalf("expected server to reject chain id mismatch")
	}
	var rejected *transport.HandshakeRejectedError
	if !errors.As(serverErr, &rejected) {
		t.Fatalf("expected HandshakeRejectedError, got %v", serverErr)
	}

	cr := <-clientResult
	if cr.err == nil {
		t.Fatalf("expected client handshake to fail too")
	}
}

// TestReplayRejection covers spec.md §8 scenario 7: encrypt p1, p2 under
// initiator->responder; responder decrypts p1 then p2; resubmitting p1's
// envelope must fail with Replay.
func TestReplayRejection(t *testing.T) {
	client, server := handshakePair(t)
	defer client.Close()
	defer server.Close()

	p1, err := client.Seal([]byte("first"))
	if err != nil {
		t.Fatalf("Seal p1: %v", err)
	}
	p2, err := client.Seal([]byte("second"))
	if err != nil {
		t.Fatalf("Seal p2: %v", err)
	}

	if _, err := server.Open(p1); err != nil {
		t.Fatalf("Open p1: %v", err)
	}
	if _, err := server.Open(p2); err != nil {
		t.Fatalf("Open p2: %v", err)
	}

	_, err = server.Open(p1)
	if !errors.Is(err, transport.ErrReplay) {
		t.Fatalf("expected ErrReplay resubmitting p1, got %v", err)
	}
}

func TestLoopbackDecryptionFails(t *testing.T) {
	client, _ := handshakePair(t)
	defer client.Close()

	envelope, err := client.Seal([]byte("ping"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := client.Open(envelope); err == nil {
		t.Fatalf("expected loopback decryption with the send-direction channel to fail")
	}
}

func TestSealAfterCloseFails(t *testing.T) {
	client, server := handshakePair(t)
	defer server.Close()

	client.Close()
	if _, err := client.Seal([]byte("x")); !errors.Is(err, transport.ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed after Close, got %v", err)
	}
}
