// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package gossip_test

import (
	"math/rand"
	"testing"

	"github.com/basalt-chain/basalt/gossip"
	"github.com/basalt-chain/basalt/types"
)

func peerID(b byte) types.PeerId {
	var id types.PeerId
	id[len(id)-1] = b
	return id
}

func msgID(b byte) types.Hash256 {
	var h types.Hash256
	h[len(h)-1] = b
	return h
}

func TestPeerAssignmentEagerThenLazy(t *testing.T) {
	r := gossip.NewRouter()
	topic := gossip.Topic("blocks")
	for i := byte(1); i <= gossip.TargetEager+2; i++ {
		r.OnPeerConnect(topic, peerID(i))
	}
	eager, lazy := r.BroadcastPriority(topic, msgID(1), []byte("payload"))
	if len(eager) != gossip.TargetEager {
		t.Fatalf("expected %d eager peers, got %d", gossip.TargetEager, len(eager))
	}
	if len(lazy) != 2 {
		t.Fatalf("expected 2 lazy peers, got %d", len(lazy))
	}
}

func TestBroadcastPriorityDedupesByMsgID(t *testing.T) {
	r := gossip.NewRouter()
	topic := gossip.Topic("blocks")
	r.OnPeerConnect(topic, peerID(1))

	e1, l1 := r.BroadcastPriority(topic, msgID(1), []byte("payload"))
	if len(e1) == 0 && len(l1) == 0 {
		t.Fatalf("expected first broadcast to return targets")
	}
	e2, l2 := r.BroadcastPriority(topic, msgID(1), []byte("payload"))
	if e2 != nil || l2 != nil {
		t.Fatalf("expected duplicate msgID to return nil targets, got e=%v l=%v", e2, l2)
	}
}

// TestUnsolicitedIWantGetsEmptyResponse covers spec.md §8 scenario 8:
// peer X sends IWANT(id) but the local node never emitted IHAVE(id) to
// X; the response must be empty with no cache lookup leak.
func TestUnsolicitedIWantGetsEmptyResponse(t *testing.T) {
	r := gossip.NewRouter()
	topic := gossip.Topic("blocks")

	// Fill the eager set, so later peers land in the lazy set and are
	// the only ones sent an IHAVE.
	r.OnPeerConnect(topic, peerID(1)) // eager
	r.OnPeerConnect(topic, peerID(2)) // still within TargetEager, so also eager

	for i := byte(3); i <= gossip.TargetEager+1; i++ {
		r.OnPeerConnect(topic, peerID(i))
	}
	// Now add a lazy peer that will receive the IHAVE authorization.
	lazyPeer := peerID(200)
	r.OnPeerConnect(topic, lazyPeer)

	id := msgID(1)
	_, lazyTargets := r.BroadcastPriority(topic, id, []byte("payload"))
	found := false
	for _, p := range lazyTargets {
		if p == lazyPeer {
			found = true
		}
	}
	if !found {
		t.Fatalf("test setup error: expected lazyPeer to be in the lazy set")
	}

	// An uninvolved peer X, never sent an IHAVE for this id, sends IWANT.
	strangerPeer := peerID(250)
	payload, err := r.HandleIWant(topic, id, strangerPeer)
	if err != gossip.ErrPayloadNotCached || payload != nil {
		t.Fatalf("expected unsolicited IWANT to be rejected, got payload=%v err=%v", payload, err)
	}

	// The legitimately-announced lazy peer's IWANT succeeds.
	payload, err = r.HandleIWant(topic, id, lazyPeer)
	if err != nil || string(payload) != "payload" {
		t.Fatalf("expected authorized IWANT to succeed: payload=%q err=%v", payload, err)
	}
}

func TestGraftAndPrune(t *testing.T) {
	r := gossip.NewRouter()
	topic := gossip.Topic("blocks")
	for i := byte(1); i <= gossip.TargetEager+1; i++ {
		r.OnPeerConnect(topic, peerID(i))
	}
	lazyPeer := peerID(gossip.TargetEager + 1)

	if !r.Graft(topic, lazyPeer) {
		t.Fatalf("expected graft to succeed")
	}
	if !r.Prune(topic, lazyPeer) {
		t.Fatalf("expected prune to succeed after graft")
	}
	// Pruning again (already lazy) should fail.
	if r.Prune(topic, lazyPeer) {
		t.Fatalf("expected second prune to fail, peer already lazy")
	}
}

func TestOnPeerDisconnectRemovesFromBothSets(t *testing.T) {
	r := gossip.NewRouter()
	topic := gossip.Topic("blocks")
	r.OnPeerConnect(topic, peerID(1))
	r.OnPeerDisconnect(topic, peerID(1))

	eager, lazy := r.BroadcastPriority(topic, msgID(1), []byte("x"))
	if len(eager) != 0 || len(lazy) != 0 {
		t.Fatalf("expected no targets after disconnect, got eager=%v lazy=%v", eager, lazy)
	}
}

func TestCleanupKeepsPayloadsStillSeen(t *testing.T) {
	r := gossip.NewRouter()
	topic := gossip.Topic("blocks")
	for i := byte(1); i <= gossip.TargetEager+1; i++ {
		r.OnPeerConnect(topic, peerID(i))
	}
	lazyPeer := peerID(gossip.TargetEager + 1)
	id := msgID(1)
	r.BroadcastPriority(topic, id, []byte("payload"))

	// Cleanup should be a no-op while the message is still in the
	// seen-set.
	r.Cleanup()
	if _, err := r.HandleIWant(topic, id, lazyPeer); err != nil {
		t.Fatalf("expected payload still cached right after cleanup, err=%v", err)
	}
}

func TestBroadcastToAllCapsFanOut(t *testing.T) {
	r := gossip.NewRouter()
	topic := gossip.Topic("blocks")
	for i := byte(1); i <= 30; i++ {
		r.OnPeerConnect(topic, peerID(i))
	}
	sampled := r.BroadcastToAll(topic, rand.New(rand.NewSource(1)))
	if len(sampled) != gossip.MaxFanOut {
		t.Fatalf("expected %d sampled peers, got %d", gossip.MaxFanOut, len(sampled))
	}
	seen := map[types.PeerId]struct{}{}
	for _, p := range sampled {
		if _, dup := seen[p]; dup {
			t.Fatalf("sampled peer %v twice", p)
		}
		seen[p] = struct{}{}
	}
}
