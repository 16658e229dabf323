// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package kademlia

import (
	"strings"

	"github.com/basalt-chain/basalt/types"
)

// Node is a routing-table candidate: its identity and last-known
// reachable address.
type Node struct {
	ID   types.PeerId
	Addr string
}

// bucketIndex returns the position of the highest set bit of local XOR
// peer, counted from 0 (least significant bit) to 255 (most
// significant), per spec.md §4.6.
func bucketIndex(local, peer types.PeerId) int {
	var xor [32]byte
	for i := range xor {
		xor[i] = local[i] ^ peer[i]
	}
	for i := 0; i < 32; i++ {
		b := xor[i]
		if b == 0 {
			continue
		}
		bitPos := highestSetBit(b)
		return (31-i)*8 + bitPos
	}
	return -1 // xor == 0: local == peer, not a valid routing-table entry.
}

func highestSetBit(b byte) int {
	for i := 7; i >= 0; i-- {
		if b&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// xorDistanceLess reports whether a is strictly closer to target than b
// under XOR distance.
func xorDistanceLess(a, b, target types.PeerId) bool {
	for i := range target {
		da := a[i] ^ target[i]
		db := b[i] ^ target[i]
		if da != db {
			return da < db
		}
	}
	return false
}

// ipDiversityKey extracts the prefix used for the IP-diversity cap: the
// first three dotted octets of an IPv4 literal, the first three
// colon-separated groups of an IPv6 literal, or the whole string as a
// hostname fallback.
func ipDiversityKey(addr string) string {
	host := addr
	if i := strings.LastIndex(addr, ":"); i >= 0 && strings.Count(addr, ":") == 1 {
		host = addr[:i] // strip a single "host:port" style suffix
	}
	if strings.Contains(host, ".") {
		parts := strings.SplitN(host, ".", 4)
		if len(parts) >= 3 {
			return strings.Join(parts[:3], ".")
		}
		return host
	}
	if strings.Contains(host, ":") {
		parts := strings.SplitN(host, ":", 4)
		if len(parts) >= 3 {
			return strings.Join(parts[:3], ":")
		}
		return host
	}
	return host
}
