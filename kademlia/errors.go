// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kademlia implements the 256-bucket XOR-distance routing table
// and closest-node lookup (spec.md §4.6).
package kademlia

import "errors"

// ErrBucketFull is returned by Bucket.Insert when the bucket already
// holds K peers and the newcomer is rejected.
var ErrBucketFull = errors.New("kademlia: bucket full")

// ErrOutboundProtected is returned when eviction targets a peer marked
// outbound-protected.
var ErrOutboundProtected = errors.New("kademlia: peer is outbound-protected")
