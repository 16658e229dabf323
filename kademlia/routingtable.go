// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package kademlia

import (
	"sort"

	"github.com/basalt-chain/basalt/types"
)

// NumBuckets is the number of buckets in a RoutingTable: one per possible
// position of the highest set XOR-distance bit over a 256-bit PeerId.
const NumBuckets = 256

// RoutingTable is a full Kademlia routing table keyed by XOR distance
// from a fixed local identity.
type RoutingTable struct {
	local   types.PeerId
	buckets [NumBuckets]*Bucket
}

// NewRoutingTable returns an empty routing table for local.
func NewRoutingTable(local types.PeerId) *RoutingTable {
	rt := &RoutingTable{local: local}
	for i := range rt.buckets {
		rt.buckets[i] = NewBucket()
	}
	return rt
}

// Insert places node in the bucket its XOR distance from local maps to.
// Inserting the local id itself is a no-op.
func (rt *RoutingTable) Insert(node Node, outboundProtected bool) (bool, error) {
	if node.ID == rt.local {
		return false, nil
	}
	idx := bucketIndex(rt.local, node.ID)
	return rt.buckets[idx].Insert(node, outboundProtected)
}

// Remove evicts node.ID from its bucket.
func (rt *RoutingTable) Remove(id types.PeerId) error {
	if id == rt.local {
		return nil
	}
	idx := bucketIndex(rt.local, id)
	return rt.buckets[idx].Remove(id)
}

// FindClosest merges the target's bucket and progressively wider
// neighboring buckets until at least n candidates are collected, then
// returns the n closest by XOR distance (spec.md §4.6).
func (rt *RoutingTable) FindClosest(target types.PeerId, n int) []Node {
	if n <= 0 {
		return nil
	}
	centerIdx := bucketIndex(rt.local, target)
	if centerIdx < 0 {
		centerIdx = 0
	}

	seen := make(map[types.PeerId]struct{})
	var candidates []Node
	collect := func(idx int) {
		if idx < 0 || idx >= NumBuckets {
			return
		}
		for _, node := range rt.buckets[idx].Nodes() {
			if _, dup := seen[node.ID]; dup {
				continue
			}
			seen[node.ID] = struct{}{}
			candidates = append(candidates, node)
		}
	}

	collect(centerIdx)
	for radius := 1; radius < NumBuckets && len(candidates) < n; radius++ {
		collect(centerIdx - radius)
		collect(centerIdx + radius)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return xorDistanceLess(candidates[i].ID, candidates[j].ID, target)
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
