// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package kademlia

import (
	"container/list"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/basalt-chain/basalt/types"
)

var log = logrus.WithField("prefix", "kademlia")

// K is the maximum number of peers a single bucket holds.
const K = 20

// MaxPerIPPrefix is the IP-diversity cap: at most this many peers sharing
// an ipDiversityKey may occupy one bucket.
const MaxPerIPPrefix = 2

// MaxOutboundProtected bounds how many entries in a bucket may be marked
// outbound-protected at once.
const MaxOutboundProtected = 4

type bucketEntry struct {
	node       Node
	ipKey      string
	protected  bool
}

// Bucket is one LRU-ordered, mutex-guarded K-bucket.
type Bucket struct {
	mu               sync.Mutex
	entries          *list.List // front = most recently seen
	protectedCount   int
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{entries: list.New()}
}

// Insert applies spec.md §4.6's insertion policy: move an existing peer
// to the head, add a new peer at the head if there is room and the
// IP-diversity cap allows it, otherwise reject the newcomer.
func (b *Bucket) Insert(node Node, outboundProtected bool) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for e := b.entries.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*bucketEntry)
		if entry.node.ID == node.ID {
			entry.node = node
			b.entries.MoveToFront(e)
			return true, nil
		}
	}

	ipKey := ipDiversityKey(node.Addr)
	if b.countByIPKey(ipKey) >= MaxPerIPPrefix {
		return false, nil
	}

	if b.entries.Len() >= K {
		log.WithField("node", node.ID).Debug("bucket full, rejecting newcomer")
		return false, ErrBucketFull
	}

	if outboundProtected && b.protectedCount >= MaxOutboundProtected {
		outboundProtected = false
	}
	b.entries.PushFront(&bucketEntry{node: node, ipKey: ipKey, protected: outboundProtected})
	if outboundProtected {
		b.protectedCount++
	}
	return true, nil
}

func (b *Bucket) countByIPKey(key string) int {
	n := 0
	for e := b.entries.Front(); e != nil; e = e.Next() {
		if e.Value.(*bucketEntry).ipKey == key {
			n++
		}
	}
	return n
}

// Remove evicts a peer by id, refusing to remove an outbound-protected
// one.
func (b *Bucket) Remove(id types.PeerId) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for e := b.entries.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*bucketEntry)
		if entry.node.ID != id {
			continue
		}
		if entry.protected {
			return ErrOutboundProtected
		}
		b.entries.Remove(e)
		log.WithField("node", id).Debug("evicted node from bucket")
		return nil
	}
	return nil
}

// Nodes returns every node in the bucket, most-recently-seen first.
func (b *Bucket) Nodes() []Node {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Node, 0, b.entries.Len())
	for e := b.entries.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*bucketEntry).node)
	}
	return out
}

// Len returns the number of entries currently held.
func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries.Len()
}
