// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package peers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/basalt-chain/basalt/types"
)

var log = logrus.WithField("prefix", "peers")

// Manager is a concurrent peer registry (spec.md §4.5). It uses a
// sync.Map rather than a single mutex-guarded map so independent peers'
// lookups and updates never contend with each other (teacher idiom: no
// single global lock on hot concurrent structures).
type Manager struct {
	maxConnected int
	pruneTimeout time.Duration

	peers          sync.Map // types.PeerId -> *PeerInfo
	connectedCount atomic.Int32
}

// NewManager returns a Manager accepting up to maxConnected simultaneous
// connections, pruning disconnected peers idle past pruneTimeout.
func NewManager(maxConnected int, pruneTimeout time.Duration) *Manager {
	return &Manager{maxConnected: maxConnected, pruneTimeout: pruneTimeout}
}

// Dial begins tracking an outbound connection attempt to id, recording
// it as Connecting (spec.md §4.5's lifecycle). It does not consume a
// connected-capacity slot; Register finalizes the attempt to Connected
// once the handshake completes. Calling Dial again for an id already
// tracked returns the existing record unchanged.
func (m *Manager) Dial(id types.PeerId, endpoint string, now time.Time) *PeerInfo {
	if existing, ok := m.peers.Load(id); ok {
		return existing.(*PeerInfo)
	}
	p := newPendingPeerInfo(id, endpoint, now)
	m.peers.Store(id, p)
	return p
}

// BeginHandshake moves a dialed peer from Connecting to Handshaking once
// the transport-level handshake starts.
func (m *Manager) BeginHandshake(id types.PeerId) error {
	v, ok := m.peers.Load(id)
	if !ok {
		return ErrUnknownPeer
	}
	v.(*PeerInfo).beginHandshake()
	return nil
}

// Register admits a new or reconnecting peer, or finalizes one already
// tracked via Dial/BeginHandshake. It rejects a currently banned peer
// and rejects once at_capacity; a peer whose ban has expired is
// registered fresh, clearing banned_until (spec.md §8 scenario 9).
func (m *Manager) Register(id types.PeerId, pk types.PublicKey, endpoint string, now time.Time) (*PeerInfo, error) {
	if existing, ok := m.peers.Load(id); ok {
		p := existing.(*PeerInfo)
		switch p.State() {
		case Banned:
			if now.Before(p.BannedUntil()) {
				return nil, ErrAlreadyBanned
			}
			// Ban expired: fall through to re-registration below.
		case Connected:
			return p, nil
		case Connecting, Handshaking:
			if int(m.connectedCount.Load()) >= m.maxConnected {
				return nil, ErrAtCapacity
			}
			p.completeHandshake(pk, now)
			m.connectedCount.Add(1)
			log.WithField("peer", id).Debug("peer handshake completed")
			return p, nil
		case Disconnected:
			// Falls through to capacity check and re-registration.
		}
	}

	if int(m.connectedCount.Load()) >= m.maxConnected {
		return nil, ErrAtCapacity
	}

	p := NewPeerInfo(id, pk, endpoint, now)
	m.peers.Store(id, p)
	m.connectedCount.Add(1)
	return p, nil
}

// Disconnect marks a peer disconnected, releasing its connection slot.
func (m *Manager) Disconnect(id types.PeerId) error {
	v, ok := m.peers.Load(id)
	if !ok {
		return ErrUnknownPeer
	}
	p := v.(*PeerInfo)
	if p.State() == Connected {
		m.connectedCount.Add(-1)
	}
	p.disconnect()
	log.WithField("peer", id).Debug("peer disconnected")
	return nil
}

// Ban marks a peer banned until now+duration, zeroing its reputation and
// releasing its connection slot if it held one.
func (m *Manager) Ban(id types.PeerId, now time.Time, duration time.Duration) error {
	v, ok := m.peers.Load(id)
	if !ok {
		return ErrUnknownPeer
	}
	p := v.(*PeerInfo)
	if p.State() == Connected {
		m.connectedCount.Add(-1)
	}
	p.ban(now.Add(duration))
	log.WithFields(logrus.Fields{"peer": id, "until": now.Add(duration)}).Warn("peer banned")
	return nil
}

// Get returns the peer record for id, if any.
func (m *Manager) Get(id types.PeerId) (*PeerInfo, bool) {
	v, ok := m.peers.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*PeerInfo), true
}

// Prune removes Disconnected peers idle past pruneTimeout and Banned
// peers whose ban has expired.
func (m *Manager) Prune(now time.Time) {
	m.peers.Range(func(key, value any) bool {
		p := value.(*PeerInfo)
		switch p.State() {
		case Disconnected:
			if now.Sub(p.LastSeen()) >= m.pruneTimeout {
				m.peers.Delete(key)
			}
		case Banned:
			if !now.Before(p.BannedUntil()) {
				m.peers.Delete(key)
			}
		}
		return true
	})
}

// Connected returns the number of peers currently in the Connected state.
func (m *Manager) Connected() int {
	return int(m.connectedCount.Load())
}
