// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package trie

import "github.com/basalt-chain/basalt/types"

// CollectReachable walks the trie rooted at root and returns the set of
// every node hash discoverable from it. Called explicitly (e.g. every N
// blocks) ahead of Prune, per spec.md §4.3.
func CollectReachable(store NodeStore, root types.Hash256) (map[types.Hash256]struct{}, error) {
	reachable := make(map[types.Hash256]struct{})
	if root.IsZero() {
		return reachable, nil
	}
	if err := collect(store, root, reachable); err != nil {
		return nil, err
	}
	return reachable, nil
}

func collect(store NodeStore, hash types.Hash256, reachable map[types.Hash256]struct{}) error {
	if _, seen := reachable[hash]; seen {
		return nil
	}
	n, err := loadNode(store, hash)
	if err != nil {
		return err
	}
	reachable[hash] = struct{}{}

	switch nn := n.(type) {
	case *extensionNode:
		return collect(store, nn.child, reachable)
	case *branchNode:
		for _, c := range nn.children {
			if c != nil {
				if err := collect(store, *c, reachable); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Prune removes every entry from store whose hash is not in reachable.
func Prune(store NodeStore, reachable map[types.Hash256]struct{}) error {
	var toDelete []types.Hash256
	err := store.ForEach(func(hash types.Hash256) error {
		if _, ok := reachable[hash]; !ok {
			toDelete = append(toDelete, hash)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, h := range toDelete {
		if err := store.Delete(h); err != nil {
			return err
		}
	}
	return nil
}
