// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package gossip

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/snappy"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/basalt-chain/basalt/types"
)

// Topic identifies a gossip channel (e.g. "blocks", "transactions").
type Topic string

// Episub tuning constants, per spec.md §4.7.
const (
	TargetEager  = 6
	MaxEager     = 12
	MaxFanOut    = 8
	SeenCacheCap = 100_000
	SeenTTL      = 60 * time.Second
)

var log = logrus.WithField("prefix", "gossip")

type announceKey struct {
	topic Topic
	msgID types.Hash256
	peer  types.PeerId
}

// Router tracks each topic's eager (push) and lazy (metadata-only) peer
// sets, a seen-message cache for dedup, and a Snappy-compressed payload
// cache serving authorized IWANT pulls.
type Router struct {
	mu    sync.Mutex
	eager map[Topic]map[types.PeerId]struct{}
	lazy  map[Topic]map[types.PeerId]struct{}

	seen *expirable.LRU[types.Hash256, struct{}]

	payloadMu    sync.Mutex
	payloadCache map[types.Hash256][]byte // snappy-compressed

	announcedMu sync.Mutex
	announced   map[announceKey]struct{}

	cleanupRunning atomic.Bool
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{
		eager:        make(map[Topic]map[types.PeerId]struct{}),
		lazy:         make(map[Topic]map[types.PeerId]struct{}),
		seen:         expirable.NewLRU[types.Hash256, struct{}](SeenCacheCap, nil, SeenTTL),
		payloadCache: make(map[types.Hash256][]byte),
		announced:    make(map[announceKey]struct{}),
	}
}

func (r *Router) sets(topic Topic) (map[types.PeerId]struct{}, map[types.PeerId]struct{}) {
	eager, ok := r.eager[topic]
	if !ok {
		eager = make(map[types.PeerId]struct{})
		r.eager[topic] = eager
	}
	lazy, ok := r.lazy[topic]
	if !ok {
		lazy = make(map[types.PeerId]struct{})
		r.lazy[topic] = lazy
	}
	return eager, lazy
}

// OnPeerConnect assigns a newly connected peer to the eager set until it
// reaches TargetEager, then to the lazy set.
func (r *Router) OnPeerConnect(topic Topic, peer types.PeerId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eager, lazy := r.sets(topic)
	if len(eager) < TargetEager {
		eager[peer] = struct{}{}
	} else {
		lazy[peer] = struct{}{}
	}
}

// OnPeerDisconnect removes peer from both sets of topic.
func (r *Router) OnPeerDisconnect(topic Topic, peer types.PeerId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eager, lazy := r.sets(topic)
	delete(eager, peer)
	delete(lazy, peer)
}

// BroadcastPriority dedups msgID against the seen cache; on first
// delivery it caches the (Snappy-compressed) payload, returns the eager
// peers who should receive the full payload and the lazy peers who
// should receive an IHAVE, and records the (msgID, lazyPeer) correlation
// so a later IWANT from that peer is authorized. A duplicate msgID
// returns two nil slices.
func (r *Router) BroadcastPriority(topic Topic, msgID types.Hash256, payload []byte) (eagerTargets, lazyIHaveTargets []types.PeerId) {
	if _, dup := r.seen.Get(msgID); dup {
		return nil, nil
	}
	r.seen.Add(msgID, struct{}{})

	r.payloadMu.Lock()
	r.payloadCache[msgID] = snappy.Encode(nil, payload)
	r.payloadMu.Unlock()

	r.mu.Lock()
	eager, lazy := r.sets(topic)
	eagerTargets = make([]types.PeerId, 0, len(eager))
	for p := range eager {
		eagerTargets = append(eagerTargets, p)
	}
	lazyIHaveTargets = make([]types.PeerId, 0, len(lazy))
	for p := range lazy {
		lazyIHaveTargets = append(lazyIHaveTargets, p)
	}
	r.mu.Unlock()

	r.announcedMu.Lock()
	for _, p := range lazyIHaveTargets {
		r.announced[announceKey{topic: topic, msgID: msgID, peer: p}] = struct{}{}
	}
	r.announcedMu.Unlock()

	return eagerTargets, lazyIHaveTargets
}

// HandleIHave reports whether the local node lacks msgID and should
// follow up with an IWANT.
func (r *Router) HandleIHave(msgID types.Hash256) bool {
	_, known := r.seen.Get(msgID)
	return !known
}

// HandleIWant serves peer's pull request, honoring it only if this node
// previously sent that exact peer an IHAVE for msgID (spec.md §4.7:
// "this prevents cache-probing"). An unauthorized request short-circuits
// before any cache lookup, so it leaks no information about what the
// cache holds.
func (r *Router) HandleIWant(topic Topic, msgID types.Hash256, peer types.PeerId) ([]byte, error) {
	r.announcedMu.Lock()
	_, authorized := r.announced[announceKey{topic: topic, msgID: msgID, peer: peer}]
	r.announcedMu.Unlock()
	if !authorized {
		return nil, ErrPayloadNotCached
	}

	r.payloadMu.Lock()
	compressed, ok := r.payloadCache[msgID]
	r.payloadMu.Unlock()
	if !ok {
		return nil, ErrPayloadNotCached
	}
	return snappy.Decode(nil, compressed)
}

// Graft promotes a lazy peer to eager, bounded by MaxEager.
func (r *Router) Graft(topic Topic, peer types.PeerId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	eager, lazy := r.sets(topic)
	if len(eager) >= MaxEager {
		return false
	}
	if _, ok := lazy[peer]; !ok {
		return false
	}
	delete(lazy, peer)
	eager[peer] = struct{}{}
	return true
}

// Prune demotes an eager peer to lazy.
func (r *Router) Prune(topic Topic, peer types.PeerId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	eager, lazy := r.sets(topic)
	if _, ok := eager[peer]; !ok {
		return false
	}
	delete(eager, peer)
	lazy[peer] = struct{}{}
	return true
}

// Cleanup removes cached payloads for messages no longer in the seen-set,
// guarded by a single-runner compare-and-swap so concurrent callers do
// not duplicate the sweep.
func (r *Router) Cleanup() {
	if !r.cleanupRunning.CompareAndSwap(false, true) {
		return
	}
	defer r.cleanupRunning.Store(false)

	r.payloadMu.Lock()
	var stale []types.Hash256
	for id := range r.payloadCache {
		if _, ok := r.seen.Get(id); !ok {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(r.payloadCache, id)
	}
	r.payloadMu.Unlock()

	if len(stale) > 0 {
		log.WithField("count", len(stale)).Debug("evicted stale gossip payloads")
	}
}
