// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package staking

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/basalt-chain/basalt/codec"
	"github.com/basalt-chain/basalt/crypto"
	"github.com/basalt-chain/basalt/types"
)

var log = logrus.WithField("prefix", "staking")

// Reason identifies the offense behind a slash.
type Reason int

const (
	ReasonDoubleSign Reason = iota
	ReasonExtendedInactivity
	ReasonInvalidBlockProposal
)

func (r Reason) String() string {
	switch r {
	case ReasonDoubleSign:
		return "double_sign"
	case ReasonExtendedInactivity:
		return "extended_inactivity"
	case ReasonInvalidBlockProposal:
		return "invalid_block_proposal"
	default:
		return "unknown"
	}
}

// penaltyPercent is the tiered penalty table, expressed as a percentage
// of total_stake (spec.md §4.9).
var penaltyPercent = map[Reason]uint64{
	ReasonDoubleSign:           100,
	ReasonExtendedInactivity:   5,
	ReasonInvalidBlockProposal: 1,
}

// SlashingEvent is one immutable entry in the slashing history log. Each
// event chains to the previous one via BLAKE3, so truncating or
// reordering the log is detectable.
type SlashingEvent struct {
	Validator     types.Address
	Reason        Reason
	Penalty       types.UInt256
	BlockNumber   uint64
	Description   string
	Timestamp     int64
	PrevEventHash types.Hash256
	EventHash     types.Hash256
}

// SlashingEngine picks the tiered penalty for an offense and drives it
// through the registry's single apply_slash transaction, then appends
// the outcome to a tamper-evident log.
type SlashingEngine struct {
	registry *Registry

	mu       sync.Mutex
	log      []SlashingEvent
	lastHash types.Hash256
}

// NewSlashingEngine returns an engine operating over registry.
func NewSlashingEngine(registry *Registry) *SlashingEngine {
	return &SlashingEngine{registry: registry}
}

// Slash applies the tiered penalty for reason against validator's
// current total_stake (so successive slashes compound on the
// then-current total, per spec.md §8 scenario 6) and records the
// outcome. Slashing an unknown validator returns an error with no
// state change.
// Slash assumes the caller serializes slashing decisions per validator
// (the consensus engine processing one block at a time); it is not
// itself a replacement for the registry's own apply_slash lock.
func (e *SlashingEngine) Slash(validator types.Address, reason Reason, blockNumber uint64, timestamp int64, description string) (types.UInt256, error) {
	info, err := e.registry.Get(validator)
	if err != nil {
		return types.ZeroUInt256, err
	}

	pct, ok := penaltyPercent[reason]
	if !ok {
		return types.ZeroUInt256, fmt.Errorf("staking: unknown slash reason %v", reason)
	}

	scaled, ok := info.TotalStake.Mul(types.NewUInt256FromUint64(pct))
	if !ok {
		return types.ZeroUInt256, fmt.Errorf("staking: penalty calculation overflow for validator %x", validator)
	}
	penalty, ok := scaled.Div(types.NewUInt256FromUint64(100))
	if !ok {
		return types.ZeroUInt256, fmt.Errorf("staking: penalty division failed for validator %x", validator)
	}

	applied, err := e.registry.ApplySlash(validator, penalty)
	if err != nil {
		return types.ZeroUInt256, err
	}

	e.appendEvent(SlashingEvent{
		Validator:   validator,
		Reason:      reason,
		Penalty:     applied,
		BlockNumber: blockNumber,
		Description: description,
		Timestamp:   timestamp,
	})
	log.WithFields(logrus.Fields{
		"validator": validator,
		"reason":    reason,
		"penalty":   applied,
		"block":     blockNumber,
	}).Warn("slash applied")
	return applied, nil
}

func (e *SlashingEngine) appendEvent(event SlashingEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event.PrevEventHash = e.lastHash
	event.EventHash = e.hashEvent(event)
	e.log = append(e.log, event)
	e.lastHash = event.EventHash
}

func (e *SlashingEngine) hashEvent(event SlashingEvent) types.Hash256 {
	w := codec.NewWriter(128)
	w.WriteRaw(event.PrevEventHash[:])
	w.WriteRaw(event.Validator[:])
	w.WriteByte(byte(event.Reason))
	penalty := event.Penalty.BigEndianBytes()
	w.WriteRaw(penalty[:])
	w.WriteUint64(event.BlockNumber)
	w.WriteString(event.Description)
	w.WriteInt64(event.Timestamp)

	h := crypto.NewStreamingHasher()
	defer h.Close()
	_ = h.Write(w.Bytes())
	sum, err := h.Sum()
	if err != nil {
		panic(err)
	}
	return sum
}

// History returns a defensive copy of the append-only slashing log.
func (e *SlashingEngine) History() []SlashingEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SlashingEvent, len(e.log))
	copy(out, e.log)
	return out
}
