// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package peers_test

import (
	"testing"
	"time"

	"github.com/basalt-chain/basalt/peers"
	"github.com/basalt-chain/basalt/types"
)

func peerID(b byte) types.PeerId {
	var id types.PeerId
	id[len(id)-1] = b
	return id
}

func TestRegisterRejectsOverCapacity(t *testing.T) {
	m := peers.NewManager(1, time.Minute)
	now := time.Unix(1000, 0)

	if _, err := m.Register(peerID(1), types.PublicKey{}, "a", now); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := m.Register(peerID(2), types.PublicKey{}, "b", now); err != peers.ErrAtCapacity {
		t.Fatalf("expected ErrAtCapacity, got %v", err)
	}
}

// TestBanReconnection covers spec.md §8 scenario 9: ban peer P for 1ms;
// after >=2ms, register_peer(P) succeeds and clears banned_until.
func TestBanReconnection(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)

	id := peerID(1)
	if _, err := m.Register(id, types.PublicKey{}, "a", now); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Ban(id, now, time.Millisecond); err != nil {
		t.Fatalf("ban: %v", err)
	}

	if _, err := m.Register(id, types.PublicKey{}, "a", now.Add(500*time.Microsecond)); err != peers.ErrAlreadyBanned {
		t.Fatalf("expected still-banned rejection, got %v", err)
	}

	later := now.Add(2 * time.Millisecond)
	p, err := m.Register(id, types.PublicKey{}, "a", later)
	if err != nil {
		t.Fatalf("expected registration to succeed after ban expiry: %v", err)
	}
	if p.State() != peers.Connected {
		t.Fatalf("expected peer to be connected after re-registration, got %v", p.State())
	}
	if !p.BannedUntil().Equal(time.Unix(0, 0)) {
		t.Fatalf("expected banned_until cleared, got %v", p.BannedUntil())
	}
}

// TestDialHandshakeLifecycle covers spec.md §4.5's peer record lifecycle:
// Disconnected -> Connecting -> Handshaking -> Connected.
func TestDialHandshakeLifecycle(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	id := peerID(1)

	p := m.Dial(id, "a", now)
	if p.State() != peers.Connecting {
		t.Fatalf("expected Connecting after Dial, got %v", p.State())
	}
	if m.Connected() != 0 {
		t.Fatalf("expected Dial not to consume a connected slot, got %d", m.Connected())
	}

	if err := m.BeginHandshake(id); err != nil {
		t.Fatalf("BeginHandshake: %v", err)
	}
	if p.State() != peers.Handshaking {
		t.Fatalf("expected Handshaking after BeginHandshake, got %v", p.State())
	}

	got, err := m.Register(id, types.PublicKey{0x01}, "a", now)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got.State() != peers.Connected {
		t.Fatalf("expected Connected after Register, got %v", got.State())
	}
	if m.Connected() != 1 {
		t.Fatalf("expected one connected slot consumed, got %d", m.Connected())
	}
	if got.PublicKey != (types.PublicKey{0x01}) {
		t.Fatalf("expected public key to be set on handshake completion")
	}
}

func TestPruneRemovesStaleDisconnectedAndExpiredBans(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)

	stale := peerID(1)
	m.Register(stale, types.PublicKey{}, "a", now)
	m.Disconnect(stale)

	expiredBan := peerID(2)
	m.Register(expiredBan, types.PublicKey{}, "b", now)
	m.Ban(expiredBan, now, time.Second)

	m.Prune(now.Add(2 * time.Minute))

	if _, ok := m.Get(stale); ok {
		t.Fatalf("expected stale disconnected peer pruned")
	}
	if _, ok := m.Get(expiredBan); ok {
		t.Fatalf("expected expired ban pruned")
	}
}

func TestScorerAppliesDeltas(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	p, _ := m.Register(peerID(1), types.PublicKey{}, "a", now)

	s := peers.NewScorer()
	s.Apply(p, peers.EventValidBlock, now)
	if p.Reputation() != 105 {
		t.Fatalf("expected reputation 105 after valid block, got %d", p.Reputation())
	}
	s.Apply(p, peers.EventInvalidBlock, now)
	if p.Reputation() != 55 {
		t.Fatalf("expected reputation 55 after invalid block, got %d", p.Reputation())
	}
}

func TestScorerMinorPenaltyFloor(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	p, _ := m.Register(peerID(1), types.PublicKey{}, "a", now)
	s := peers.NewScorer()

	// Drive reputation down to exactly the floor using only minor
	// penalties (duplicate message, delta -1); it must not go lower.
	for i := 0; i < 200; i++ {
		s.Apply(p, peers.EventDuplicateMessage, now)
	}
	if p.Reputation() != peers.LowRepThreshold {
		t.Fatalf("expected reputation clamped at %d, got %d", peers.LowRepThreshold, p.Reputation())
	}
}

func TestScorerSeverePenaltyBypassesFloor(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	p, _ := m.Register(peerID(1), types.PublicKey{}, "a", now)
	s := peers.NewScorer()

	s.Apply(p, peers.EventInvalidBlock, now)
	s.Apply(p, peers.EventInvalidVote, now)
	if p.Reputation() >= peers.LowRepThreshold {
		t.Fatalf("expected severe penalties to push below floor, got %d", p.Reputation())
	}
}

func TestScorerProtocolViolationZeroesReputation(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	p, _ := m.Register(peerID(1), types.PublicKey{}, "a", now)
	s := peers.NewScorer()

	s.Apply(p, peers.EventProtocolViolation, now)
	if p.Reputation() != 0 {
		t.Fatalf("expected reputation 0 after protocol violation, got %d", p.Reputation())
	}
}

func TestScorerDiminishingReturnsOnValidTx(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	p, _ := m.Register(peerID(1), types.PublicKey{}, "a", now)
	s := peers.NewScorer()

	for i := 0; i < 20; i++ {
		s.Apply(p, peers.EventValidTx, now)
	}
	// 10 credits max within the window, starting reputation 100.
	if p.Reputation() != 110 {
		t.Fatalf("expected reputation capped at 110 after diminishing returns, got %d", p.Reputation())
	}

	later := now.Add(2 * time.Minute)
	s.Apply(p, peers.EventValidTx, later)
	if p.Reputation() != 111 {
		t.Fatalf("expected one more credit after window rolls over, got %d", p.Reputation())
	}
}

func TestScorerActiveRecoveryDecay(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	p, _ := m.Register(peerID(1), types.PublicKey{}, "a", now)
	s := peers.NewScorer()

	s.Apply(p, peers.EventInvalidBlock, now) // 100 - 50 = 50
	s.Decay(p)                               // no positive interaction since last decay: stays at 50
	if p.Reputation() != 50 {
		t.Fatalf("expected no recovery decay without positive interaction, got %d", p.Reputation())
	}

	s.Apply(p, peers.EventTimelyResponse, now) // 50 + 2 = 52, marks positive interaction
	s.Decay(p)                                 // recovers +1
	if p.Reputation() != 53 {
		t.Fatalf("expected active-recovery decay to add 1, got %d", p.Reputation())
	}
}

func TestScorerPositiveSideDecay(t *testing.T) {
	m := peers.NewManager(10, time.Minute)
	now := time.Unix(1000, 0)
	p, _ := m.Register(peerID(1), types.PublicKey{}, "a", now)
	s := peers.NewScorer()

	s.Apply(p, peers.EventHandshakeSuccess, now) // 100 + 10 = 110
	s.Decay(p)
	if p.Reputation() != 109 {
		t.Fatalf("expected unconditional positive-side decay, got %d", p.Reputation())
	}
}
