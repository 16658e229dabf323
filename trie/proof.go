// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package trie

import (
	"bytes"

	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/types"
)

func computeNodeHash(data []byte) types.Hash256 {
	return crypto.Blake3Hash(data)
}

// MerkleProof is an inclusion (or exclusion) proof for a single key
// against a specific root hash: the serialized nodes visited walking
// from the root to the target, plus the claimed value (spec.md §4.3).
type MerkleProof struct {
	RootHash types.Hash256
	Key      []byte
	Found    bool
	Value    []byte
	Nodes    [][]byte
}

// GenerateProof walks from the root to key, collecting every node
// encoding visited along the way.
func (t *Trie) GenerateProof(key []byte) (*MerkleProof, error) {
	proof := &MerkleProof{
		RootHash: t.root,
		Key:      append([]byte{}, key...),
	}
	if t.root.IsZero() {
		return proof, nil
	}

	path := bytesToNibbles(key)
	cur := t.root
	for {
		data, ok, err := t.store.Get(cur)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNodeMissing
		}
		proof.Nodes = append(proof.Nodes, data)

		n, err := decodeNode(data)
		if err != nil {
			return nil, err
		}
		switch nn := n.(type) {
		case *leafNode:
			if bytes.Equal(nn.path, path) {
				proof.Found = true
				proof.Value = nn.value
			}
			return proof, nil

		case *extensionNode:
			if len(path) < len(nn.path) || !bytes.Equal(nn.path, path[:len(nn.path)]) {
				return proof, nil
			}
			path = path[len(nn.path):]
			cur = nn.child

		case *branchNode:
			if len(path) == 0 {
				if nn.hasValue {
					proof.Found = true
					proof.Value = nn.value
				}
				return proof, nil
			}
			child := nn.children[path[0]]
			if child == nil {
				return proof, nil
			}
			path = path[1:]
			cur = *child

		default:
			return nil, ErrMalformedNode
		}
	}
}

// VerifyProof rebuilds a scratch store from proof.Nodes, replays Get
// against proof.RootHash, and checks the reconstructed result against
// the proof's claimed (Found, Value). Any node whose claimed hash does
// not match its content fails to resolve during the replay; VerifyProof
// reports that ErrNodeMissing as (false, nil), the same as a value
// mismatch. Other store or decoding errors are returned as errors.
func VerifyProof(proof *MerkleProof) (bool, error) {
	scratch := NewMemStore()
	for _, data := range proof.Nodes {
		h := computeNodeHash(data)
		if err := scratch.Put(h, data); err != nil {
			return false, err
		}
	}

	tr := NewWithRoot(scratch, proof.RootHash)
	value, found, err := tr.Get(proof.Key)
	if err != nil {
		if err == ErrNodeMissing {
			return false, nil
		}
		return false, err
	}
	if found != proof.Found {
		return false, nil
	}
	if found && !bytes.Equal(value, proof.Value) {
		return false, nil
	}
	return true, nil
}
