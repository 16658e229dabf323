// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gossip implements the Episub eager/lazy broadcast protocol
// (spec.md §4.7): dedup by content id, full-payload push to eager peers,
// metadata-only IHAVE to lazy peers, IWANT honored only against a prior
// announcement, and graft/prune rebalancing between the two sets.
package gossip

import "errors"

// ErrUnknownTopic reports a topic the router has no peer sets for.
// Router's own methods create a topic's peer sets on first use and do
// not return it.
var ErrUnknownTopic = errors.New("gossip: unknown topic")

// ErrPayloadNotCached is returned when an IWANT cannot be served: the
// requesting peer was never sent an IHAVE for the message, or the
// payload has already been evicted from the cache. Both cases return the
// same error so an unauthorized request learns nothing about the cache.
var ErrPayloadNotCached = errors.New("gossip: payload not in cache")
