// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package gossip

import (
	"math/rand"

	"github.com/basalt-chain/basalt/types"
)

// BroadcastToAll samples up to MaxFanOut peers from every peer known for
// topic (eager and lazy combined) via a partial Fisher-Yates shuffle,
// for message classes that skip the eager/lazy push/pull split and flood
// a bounded random subset instead.
func (r *Router) BroadcastToAll(topic Topic, rng *rand.Rand) []types.PeerId {
	r.mu.Lock()
	eager, lazy := r.sets(topic)
	all := make([]types.PeerId, 0, len(eager)+len(lazy))
	for p := range eager {
		all = append(all, p)
	}
	for p := range lazy {
		all = append(all, p)
	}
	r.mu.Unlock()

	return partialShuffleSample(all, MaxFanOut, rng)
}

// partialShuffleSample returns up to k elements of peers chosen by a
// partial Fisher-Yates shuffle: each of the first k positions is swapped
// with a uniformly random later position, which samples without
// replacement in O(k) instead of shuffling the whole slice.
func partialShuffleSample(peers []types.PeerId, k int, rng *rand.Rand) []types.PeerId {
	if k > len(peers) {
		k = len(peers)
	}
	working := make([]types.PeerId, len(peers))
	copy(working, peers)

	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(working)-i)
		working[i], working[j] = working[j], working[i]
	}
	return working[:k]
}
