// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package peers implements the peer registry and reputation scorer
// (spec.md §4.5): concurrent-safe PeerInfo records, a Manager owning
// registration/disconnection/banning/pruning, and a Scorer applying the
// reputation delta table with decay and diminishing returns.
package peers

import "errors"

// ErrAlreadyBanned is returned by Register when the peer is currently
// banned.
var ErrAlreadyBanned = errors.New("peers: peer is banned")

// ErrAtCapacity is returned by Register when the manager already holds
// max_connected peers.
var ErrAtCapacity = errors.New("peers: connection capacity reached")

// ErrUnknownPeer is returned by operations addressing a peer id the
// manager has no record for.
var ErrUnknownPeer = errors.New("peers: unknown peer")
