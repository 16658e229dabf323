// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package peers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/basalt-chain/basalt/types"
)

// State is a peer's connection lifecycle state (spec.md §4.5: "Disconnected
// → Connecting → Handshaking → Connected → (Disconnected | Banned)").
type State int32

const (
	Connecting State = iota
	Handshaking
	Connected
	Disconnected
	Banned
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Handshaking:
		return "handshaking"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Banned:
		return "banned"
	default:
		return "unknown"
	}
}

// Reputation bounds, per spec.md §4.5.
const (
	MinReputation = 0
	MaxReputation = 200
	// LowRepThreshold is the floor cumulative minor penalties may not push
	// a peer below on their own.
	LowRepThreshold = 30
)

// PeerInfo is a single peer's concurrently-accessed record. Scalar fields
// use atomics; the best-known-head pair is updated together under
// headMu so readers never observe a (number, hash) pair that mixes two
// different updates (spec.md §9).
type PeerInfo struct {
	PeerId    types.PeerId
	PublicKey types.PublicKey
	Endpoint  string

	state State32

	reputation  atomic.Int32
	lastSeen    atomic.Int64
	connectedAt atomic.Int64
	bannedUntil atomic.Int64

	headMu          sync.Mutex
	bestBlockNumber uint64
	bestBlockHash   types.Hash256
}

// State32 wraps an atomic.Int32 to store a State value.
type State32 struct {
	v atomic.Int32
}

func (s *State32) Load() State    { return State(s.v.Load()) }
func (s *State32) Store(st State) { s.v.Store(int32(st)) }

// NewPeerInfo returns a freshly connected peer record.
func NewPeerInfo(id types.PeerId, pk types.PublicKey, endpoint string, now time.Time) *PeerInfo {
	p := &PeerInfo{PeerId: id, PublicKey: pk, Endpoint: endpoint}
	p.state.Store(Connected)
	p.reputation.Store(100)
	p.lastSeen.Store(now.Unix())
	p.connectedAt.Store(now.Unix())
	return p
}

// newPendingPeerInfo returns a peer record for an outbound dial attempt
// that has not yet identified itself by public key: the record starts
// life as Connecting (spec.md §4.5).
func newPendingPeerInfo(id types.PeerId, endpoint string, now time.Time) *PeerInfo {
	p := &PeerInfo{PeerId: id, Endpoint: endpoint}
	p.state.Store(Connecting)
	p.reputation.Store(100)
	p.lastSeen.Store(now.Unix())
	return p
}

// beginHandshake moves a dialed peer from Connecting to Handshaking.
func (p *PeerInfo) beginHandshake() {
	p.state.Store(Handshaking)
}

// completeHandshake finalizes a dialed peer's identity and moves it to
// Connected.
func (p *PeerInfo) completeHandshake(pk types.PublicKey, now time.Time) {
	p.PublicKey = pk
	p.state.Store(Connected)
	p.connectedAt.Store(now.Unix())
	p.lastSeen.Store(now.Unix())
}

func (p *PeerInfo) State() State { return p.state.Load() }

func (p *PeerInfo) Reputation() int32 { return p.reputation.Load() }

func (p *PeerInfo) LastSeen() time.Time { return time.Unix(p.lastSeen.Load(), 0) }

func (p *PeerInfo) ConnectedAt() time.Time { return time.Unix(p.connectedAt.Load(), 0) }

func (p *PeerInfo) BannedUntil() time.Time { return time.Unix(0, p.bannedUntil.Load()) }

func (p *PeerInfo) Touch(now time.Time) { p.lastSeen.Store(now.Unix()) }

// BestHead returns the peer's last-announced (number, hash) as a
// consistent pair.
func (p *PeerInfo) BestHead() (uint64, types.Hash256) {
	p.headMu.Lock()
	defer p.headMu.Unlock()
	return p.bestBlockNumber, p.bestBlockHash
}

// SetBestHead updates the (number, hash) pair atomically with respect to
// BestHead readers.
func (p *PeerInfo) SetBestHead(number uint64, hash types.Hash256) {
	p.headMu.Lock()
	defer p.headMu.Unlock()
	p.bestBlockNumber = number
	p.bestBlockHash = hash
}

func (p *PeerInfo) ban(until time.Time) {
	p.state.Store(Banned)
	p.reputation.Store(0)
	p.bannedUntil.Store(until.UnixNano())
}

func (p *PeerInfo) disconnect() {
	p.state.Store(Disconnected)
}

func clampReputation(v int32) int32 {
	if v < MinReputation {
		return MinReputation
	}
	if v > MaxReputation {
		return MaxReputation
	}
	return v
}
