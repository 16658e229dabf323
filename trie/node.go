// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package trie

import (
	"github.com/basalt-chain/basalt/codec"
	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/types"
)

const (
	tagLeaf      byte = 0x01
	tagExtension byte = 0x02
	tagBranch    byte = 0x03
)

// maxNodeValueLen bounds a leaf/branch value's length-prefixed encoding;
// account and storage values are small, this is a generous sanity cap
// against corrupted input.
const maxNodeValueLen = 1 << 20

// node is the sum type of trie nodes: leafNode, extensionNode, branchNode.
// There is no "emptyNode" value; an empty subtree is represented by the
// absence of a hash reference (a nil *types.Hash256 branch slot, or the
// all-zero root hash for the whole trie).
type node interface {
	encode() []byte
}

type leafNode struct {
	path  []byte
	value []byte
}

type extensionNode struct {
	path  []byte
	child types.Hash256
}

type branchNode struct {
	children [16]*types.Hash256
	value    []byte
	hasValue bool
}

func (n *leafNode) encode() []byte {
	w := codec.NewWriter(8 + len(n.path) + len(n.value))
	w.WriteByte(tagLeaf)
	w.WriteBytes(hexPrefixEncode(n.path, true))
	w.WriteBytes(n.value)
	return w.Bytes()
}

func (n *extensionNode) encode() []byte {
	w := codec.NewWriter(8 + len(n.path) + 32)
	w.WriteByte(tagExtension)
	w.WriteBytes(hexPrefixEncode(n.path, false))
	w.WriteRaw(n.child[:])
	return w.Bytes()
}

func (n *branchNode) encode() []byte {
	w := codec.NewWriter(3 + 16*32 + 1 + len(n.value))
	w.WriteByte(tagBranch)

	var bitmap uint16
	for i := 0; i < 16; i++ {
		if n.children[i] != nil {
			bitmap |= 1 << uint(15-i)
		}
	}
	w.WriteByte(byte(bitmap >> 8))
	w.WriteByte(byte(bitmap))
	for i := 0; i < 16; i++ {
		if n.children[i] != nil {
			w.WriteRaw(n.children[i][:])
		}
	}
	w.WriteBool(n.hasValue)
	if n.hasValue {
		w.WriteBytes(n.value)
	}
	return w.Bytes()
}

func (n *branchNode) liveSlots() int {
	count := 0
	for _, c := range n.children {
		if c != nil {
			count++
		}
	}
	if n.hasValue {
		count++
	}
	return count
}

// decodeNode parses a node's canonical encoding, the inverse of the
// encode() methods above.
func decodeNode(data []byte) (node, error) {
	if len(data) == 0 {
		return nil, ErrMalformedNode
	}
	r := codec.NewReader(data)
	tag := r.ReadByte()
	switch tag {
	case tagLeaf:
		hp := r.ReadBytes(maxNodeValueLen)
		value := r.ReadBytes(maxNodeValueLen)
		if r.Err() != nil {
			return nil, ErrMalformedNode
		}
		path, isLeaf, err := hexPrefixDecode(hp)
		if err != nil || !isLeaf {
			return nil, ErrMalformedNode
		}
		return &leafNode{path: path, value: value}, nil

	case tagExtension:
		hp := r.ReadBytes(maxNodeValueLen)
		child := r.ReadRaw(32)
		if r.Err() != nil {
			return nil, ErrMalformedNode
		}
		path, isLeaf, err := hexPrefixDecode(hp)
		if err != nil || isLeaf {
			return nil, ErrMalformedNode
		}
		var h types.Hash256
		copy(h[:], child)
		return &extensionNode{path: path, child: h}, nil

	case tagBranch:
		hi := r.ReadByte()
		lo := r.ReadByte()
		if r.Err() != nil {
			return nil, ErrMalformedNode
		}
		bitmap := uint16(hi)<<8 | uint16(lo)
		var b branchNode
		for i := 0; i < 16; i++ {
			if bitmap&(1<<uint(15-i)) != 0 {
				raw := r.ReadRaw(32)
				if r.Err() != nil {
					return nil, ErrMalformedNode
				}
				var h types.Hash256
				copy(h[:], raw)
				b.children[i] = &h
			}
		}
		b.hasValue = r.ReadBool()
		if r.Err() != nil {
			return nil, ErrMalformedNode
		}
		if b.hasValue {
			b.value = r.ReadBytes(maxNodeValueLen)
			if r.Err() != nil {
				return nil, ErrMalformedNode
			}
		}
		return &b, nil

	default:
		return nil, ErrMalformedNode
	}
}

// hashNode encodes n and returns its content hash.
func hashNode(n node) (types.Hash256, []byte) {
	data := n.encode()
	return crypto.Blake3Hash(data), data
}
