// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package trie

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/basalt-chain/basalt/types"
)

// NodeStore is the content-addressed backing store for trie nodes: keys
// are the BLAKE3 hash of their value. Implementations need not be
// concurrency-safe for writers (spec.md §5: "single-writer, many-reader
// is sufficient"); MemStore and LevelDBStore both are anyway since the
// cost is negligible.
type NodeStore interface {
	Get(hash types.Hash256) ([]byte, bool, error)
	Put(hash types.Hash256, data []byte) error
	Delete(hash types.Hash256) error
	ForEach(fn func(hash types.Hash256) error) error
}

// MemStore is an in-memory NodeStore, used by tests and as the
// reconstructed scratch store that VerifyProof builds from a
// MerkleProof's node list.
type MemStore struct {
	mu    sync.RWMutex
	nodes map[types.Hash256][]byte
}

// NewMemStore returns an empty in-memory node store.
func NewMemStore() *MemStore {
	return &MemStore{nodes: make(map[types.Hash256][]byte)}
}

func (m *MemStore) Get(hash types.Hash256) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.nodes[hash]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *MemStore) Put(hash types.Hash256, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[hash]; ok {
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.nodes[hash] = cp
	return nil
}

func (m *MemStore) Delete(hash types.Hash256) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, hash)
	return nil
}

func (m *MemStore) ForEach(fn func(hash types.Hash256) error) error {
	m.mu.RLock()
	hashes := make([]types.Hash256, 0, len(m.nodes))
	for h := range m.nodes {
		hashes = append(hashes, h)
	}
	m.mu.RUnlock()
	for _, h := range hashes {
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

// LevelDBStore is a durable NodeStore backed by goleveldb, used for the
// trie node column family described in spec.md §6.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDBStore opens (creating if necessary) a goleveldb database at
// path for use as a trie node store.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (l *LevelDBStore) Get(hash types.Hash256) ([]byte, bool, error) {
	data, err := l.db.Get(hash[:], nil)
	if err == errors.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (l *LevelDBStore) Put(hash types.Hash256, data []byte) error {
	return l.db.Put(hash[:], data, nil)
}

func (l *LevelDBStore) Delete(hash types.Hash256) error {
	return l.db.Delete(hash[:], nil)
}

func (l *LevelDBStore) ForEach(fn func(hash types.Hash256) error) error {
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		var h types.Hash256
		copy(h[:], iter.Key())
		if err := fn(h); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close releases the underlying goleveldb handle.
func (l *LevelDBStore) Close() error {
	return l.db.Close()
}
