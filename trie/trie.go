// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package trie

import (
	"bytes"

	"github.com/basalt-chain/basalt/types"
)

// Trie is a nibble-keyed, branch-16 Merkle-Patricia trie over a
// content-addressed NodeStore. The zero Hash256 denotes an empty trie;
// every other root hash must be resolvable in the store.
type Trie struct {
	store NodeStore
	root  types.Hash256
}

// New returns an empty trie backed by store.
func New(store NodeStore) *Trie {
	return &Trie{store: store}
}

// NewWithRoot resumes a trie at a previously computed root hash.
func NewWithRoot(store NodeStore, root types.Hash256) *Trie {
	return &Trie{store: store, root: root}
}

// RootHash returns the trie's current root hash.
func (t *Trie) RootHash() types.Hash256 {
	return t.root
}

// Get returns the value stored at key, if any.
func (t *Trie) Get(key []byte) ([]byte, bool, error) {
	if t.root.IsZero() {
		return nil, false, nil
	}
	return getAt(t.store, t.root, bytesToNibbles(key))
}

// Put inserts or overwrites the value at key, updating the root hash.
func (t *Trie) Put(key, value []byte) error {
	path := bytesToNibbles(key)
	var cur *types.Hash256
	if !t.root.IsZero() {
		cur = &t.root
	}
	newHash, err := putAt(t.store, cur, path, value)
	if err != nil {
		return err
	}
	t.root = newHash
	return nil
}

// Delete removes key, reporting whether it was present, and updating the
// root hash (collapsing branches per spec.md §4.3).
func (t *Trie) Delete(key []byte) (bool, error) {
	if t.root.IsZero() {
		return false, nil
	}
	newRoot, deleted, err := deleteAt(t.store, t.root, bytesToNibbles(key))
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}
	if newRoot == nil {
		t.root = types.Hash256{}
	} else {
		t.root = *newRoot
	}
	return true, nil
}

func insertNode(store NodeStore, n node) (types.Hash256, error) {
	h, data := hashNode(n)
	if err := store.Put(h, data); err != nil {
		return types.Hash256{}, err
	}
	return h, nil
}

func loadNode(store NodeStore, hash types.Hash256) (node, error) {
	data, ok, err := store.Get(hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNodeMissing
	}
	return decodeNode(data)
}

func getAt(store NodeStore, hash types.Hash256, path []byte) ([]byte, bool, error) {
	n, err := loadNode(store, hash)
	if err != nil {
		return nil, false, err
	}
	switch nn := n.(type) {
	case *leafNode:
		if bytes.Equal(nn.path, path) {
			return nn.value, true, nil
		}
		return nil, false, nil
	case *extensionNode:
		if len(path) < len(nn.path) || !bytes.Equal(nn.path, path[:len(nn.path)]) {
			return nil, false, nil
		}
		return getAt(store, nn.child, path[len(nn.path):])
	case *branchNode:
		if len(path) == 0 {
			if nn.hasValue {
				return nn.value, true, nil
			}
			return nil, false, nil
		}
		child := nn.children[path[0]]
		if child == nil {
			return nil, false, nil
		}
		return getAt(store, *child, path[1:])
	default:
		return nil, false, ErrMalformedNode
	}
}

func putAt(store NodeStore, cur *types.Hash256, path []byte, value []byte) (types.Hash256, error) {
	if cur == nil {
		return insertNode(store, &leafNode{path: path, value: value})
	}
	n, err := loadNode(store, *cur)
	if err != nil {
		return types.Hash256{}, err
	}
	switch nn := n.(type) {
	case *leafNode:
		if bytes.Equal(nn.path, path) {
			return insertNode(store, &leafNode{path: path, value: value})
		}
		return splitLeaf(store, nn.path, nn.value, path, value)

	case *extensionNode:
		cp := commonPrefixLen(nn.path, path)
		if cp == len(nn.path) {
			childHash, err := putAt(store, &nn.child, path[cp:], value)
			if err != nil {
				return types.Hash256{}, err
			}
			return insertNode(store, &extensionNode{path: nn.path, child: childHash})
		}
		return splitExtension(store, nn.path, nn.child, path, value, cp)

	case *branchNode:
		nb := *nn
		if len(path) == 0 {
			nb.hasValue = true
			nb.value = value
			return insertNode(store, &nb)
		}
		idx := path[0]
		newChildHash, err := putAt(store, nb.children[idx], path[1:], value)
		if err != nil {
			return types.Hash256{}, err
		}
		nb.children[idx] = &newChildHash
		return insertNode(store, &nb)

	default:
		return types.Hash256{}, ErrMalformedNode
	}
}

// splitLeaf handles inserting (newPath, newValue) where it diverges from
// an existing leaf's (existingPath, existingValue) at some nibble,
// producing a branch with up to two new leaf children plus an optional
// common-prefix extension (spec.md §4.3).
func splitLeaf(store NodeStore, existingPath, existingValue, newPath, newValue []byte) (types.Hash256, error) {
	cp := commonPrefixLen(existingPath, newPath)

	var branch branchNode
	if cp == len(existingPath) {
		branch.hasValue = true
		branch.value = existingValue
	} else {
		h, err := insertNode(store, &leafNode{path: existingPath[cp+1:], value: existingValue})
		if err != nil {
			return types.Hash256{}, err
		}
		branch.children[existingPath[cp]] = &h
	}
	if cp == len(newPath) {
		branch.hasValue = true
		branch.value = newValue
	} else {
		h, err := insertNode(store, &leafNode{path: newPath[cp+1:], value: newValue})
		if err != nil {
			return types.Hash256{}, err
		}
		branch.children[newPath[cp]] = &h
	}

	branchHash, err := insertNode(store, &branch)
	if err != nil {
		return types.Hash256{}, err
	}
	if cp == 0 {
		return branchHash, nil
	}
	return insertNode(store, &extensionNode{path: append([]byte{}, existingPath[:cp]...), child: branchHash})
}

// splitExtension handles inserting (newPath, newValue) where it diverges
// from an existing extension's path before reaching its child, at nibble
// offset cp.
func splitExtension(store NodeStore, existingPath []byte, existingChild types.Hash256, newPath, newValue []byte, cp int) (types.Hash256, error) {
	var branch branchNode

	epRem := existingPath[cp+1:]
	var epChildHash types.Hash256
	if len(epRem) == 0 {
		epChildHash = existingChild
	} else {
		h, err := insertNode(store, &extensionNode{path: epRem, child: existingChild})
		if err != nil {
			return types.Hash256{}, err
		}
		epChildHash = h
	}
	branch.children[existingPath[cp]] = &epChildHash

	if cp == len(newPath) {
		branch.hasValue = true
		branch.value = newValue
	} else {
		h, err := insertNode(store, &leafNode{path: newPath[cp+1:], value: newValue})
		if err != nil {
			return types.Hash256{}, err
		}
		branch.children[newPath[cp]] = &h
	}

	branchHash, err := insertNode(store, &branch)
	if err != nil {
		return types.Hash256{}, err
	}
	if cp == 0 {
		return branchHash, nil
	}
	return insertNode(store, &extensionNode{path: append([]byte{}, existingPath[:cp]...), child: branchHash})
}

func deleteAt(store NodeStore, hash types.Hash256, path []byte) (*types.Hash256, bool, error) {
	n, err := loadNode(store, hash)
	if err != nil {
		return nil, false, err
	}
	switch nn := n.(type) {
	case *leafNode:
		if !bytes.Equal(nn.path, path) {
			return &hash, false, nil
		}
		return nil, true, nil

	case *extensionNode:
		if len(path) < len(nn.path) || !bytes.Equal(nn.path, path[:len(nn.path)]) {
			return &hash, false, nil
		}
		newChild, deleted, err := deleteAt(store, nn.child, path[len(nn.path):])
		if err != nil || !deleted {
			return &hash, deleted, err
		}
		if newChild == nil {
			return nil, true, nil
		}
		merged, err := mergePathInto(store, nn.path, *newChild)
		if err != nil {
			return nil, false, err
		}
		return merged, true, nil

	case *branchNode:
		nb := *nn
		if len(path) == 0 {
			if !nb.hasValue {
				return &hash, false, nil
			}
			nb.hasValue = false
			nb.value = nil
			return collapseBranch(store, &nb)
		}
		idx := path[0]
		child := nb.children[idx]
		if child == nil {
			return &hash, false, nil
		}
		newChild, deleted, err := deleteAt(store, *child, path[1:])
		if err != nil || !deleted {
			return &hash, deleted, err
		}
		nb.children[idx] = newChild
		return collapseBranch(store, &nb)

	default:
		return nil, false, ErrMalformedNode
	}
}

// mergePathInto prepends prefix nibbles onto whatever node childHash
// refers to, folding extension-over-extension and extension-over-leaf
// into a single node (spec.md §4.3's collapse rule).
func mergePathInto(store NodeStore, prefix []byte, childHash types.Hash256) (*types.Hash256, error) {
	n, err := loadNode(store, childHash)
	if err != nil {
		return nil, err
	}
	switch cn := n.(type) {
	case *leafNode:
		h, err := insertNode(store, &leafNode{path: concatNibbles(prefix, cn.path), value: cn.value})
		return &h, err
	case *extensionNode:
		h, err := insertNode(store, &extensionNode{path: concatNibbles(prefix, cn.path), child: cn.child})
		return &h, err
	default:
		h, err := insertNode(store, &extensionNode{path: append([]byte{}, prefix...), child: childHash})
		return &h, err
	}
}

// collapseBranch enforces the invariant that a live branch has at least
// two live slots (spec.md §3), collapsing to a single leaf/extension
// otherwise.
func collapseBranch(store NodeStore, nb *branchNode) (*types.Hash256, bool, error) {
	live := nb.liveSlots()
	if live == 0 {
		return nil, true, nil
	}
	if live >= 2 {
		h, err := insertNode(store, nb)
		return &h, true, err
	}
	// Exactly one live slot.
	if nb.hasValue {
		h, err := insertNode(store, &leafNode{path: nil, value: nb.value})
		return &h, true, err
	}
	for i, c := range nb.children {
		if c == nil {
			continue
		}
		merged, err := mergePathInto(store, []byte{byte(i)}, *c)
		return merged, true, err
	}
	// Unreachable: liveSlots()==1 guarantees either hasValue or one child.
	return nil, true, nil
}

func concatNibbles(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
