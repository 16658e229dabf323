// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package kademlia

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/basalt-chain/basalt/types"
)

// QueryFn asks a remote node for its own closest n nodes to target. Its
// wiring to the actual wire protocol is out of scope for this package
// (spec.md §4.6: "queries are out-of-scope wiring").
type QueryFn func(ctx context.Context, peer Node, target types.PeerId, n int) ([]Node, error)

// NodeLookup combines the local routing table's output with concurrent
// peer queries fanned out over the initial closest set, deduplicating
// every candidate returned before picking the n closest to target.
func NodeLookup(ctx context.Context, rt *RoutingTable, target types.PeerId, n int, query QueryFn) ([]Node, error) {
	local := rt.FindClosest(target, n)
	if query == nil || len(local) == 0 {
		return local, nil
	}

	var mu sync.Mutex
	seen := make(map[types.PeerId]struct{})
	all := make([]Node, 0, len(local))
	addNode := func(node Node) {
		mu.Lock()
		defer mu.Unlock()
		if _, dup := seen[node.ID]; dup {
			return
		}
		seen[node.ID] = struct{}{}
		all = append(all, node)
	}
	for _, node := range local {
		addNode(node)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, peer := range local {
		peer := peer
		g.Go(func() error {
			results, err := query(gctx, peer, target, n)
			if err != nil {
				// A single unreachable peer must not fail the whole
				// lookup.
				return nil
			}
			for _, r := range results {
				addNode(r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		return xorDistanceLess(all[i].ID, all[j].ID, target)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}
