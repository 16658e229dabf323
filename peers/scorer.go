// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package peers

import (
	"sync"
	"time"

	"github.com/basalt-chain/basalt/types"
)

// Event is a reputation-affecting occurrence, per spec.md §4.5's delta
// table.
type Event int

const (
	EventValidBlock Event = iota
	EventInvalidBlock
	EventValidTx
	EventInvalidTx
	EventValidVote
	EventInvalidVote
	EventTimelyResponse
	EventTimeout
	EventProtocolViolation
	EventDuplicateMessage
	EventHandshakeSuccess
	EventHandshakeFail
	EventHeartbeatSuccess
	EventHeartbeatFail
)

var eventDelta = map[Event]int32{
	EventValidBlock:        5,
	EventInvalidBlock:      -50,
	EventValidTx:           1,
	EventInvalidTx:         -10,
	EventValidVote:         3,
	EventInvalidVote:       -30,
	EventTimelyResponse:    2,
	EventTimeout:           -5,
	EventProtocolViolation: 0, // handled specially: instant ban
	EventDuplicateMessage:  -1,
	EventHandshakeSuccess:  10,
	EventHandshakeFail:     -15,
	EventHeartbeatSuccess:  1,
	EventHeartbeatFail:     -3,
}

// minorPenaltyThreshold is the |delta| boundary at or below which a negative
// event counts as a "minor penalty" subject to the LowRepThreshold floor.
const minorPenaltyThreshold = 5

const (
	diminishingWindow          = 60 * time.Second
	maxValidTxCreditsPerWin    = 10
	maxValidBlockCreditsPerWin = 5
)

type peerScoreState struct {
	hadPositiveSinceDecay bool
	validTxCredits        []time.Time
	validBlockCredits     []time.Time
}

// Scorer applies spec.md §4.5's reputation rules: the delta table, the
// cumulative-minor-penalty floor, active-recovery decay, and the
// diminishing-returns rolling window for valid-tx/valid-block credits.
type Scorer struct {
	mu    sync.Mutex
	state map[types.PeerId]*peerScoreState
}

// NewScorer returns an empty scorer.
func NewScorer() *Scorer {
	return &Scorer{state: make(map[types.PeerId]*peerScoreState)}
}

func (s *Scorer) stateFor(id types.PeerId) *peerScoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[id]
	if !ok {
		st = &peerScoreState{}
		s.state[id] = st
	}
	return st
}

// Apply records event against p at time now, applying the corresponding
// delta subject to the diminishing-returns window and the minor-penalty
// floor. EventProtocolViolation bypasses both, zeroing reputation
// directly; the caller is expected to follow up with Manager.Ban, since
// the state transition to Banned (and its duration) is the manager's
// responsibility, not the scorer's.
func (s *Scorer) Apply(p *PeerInfo, event Event, now time.Time) {
	if event == EventProtocolViolation {
		p.reputation.Store(0)
		return
	}

	delta := eventDelta[event]
	st := s.stateFor(p.PeerId)

	s.mu.Lock()
	switch event {
	case EventValidTx:
		st.validTxCredits = pruneWindow(st.validTxCredits, now)
		if len(st.validTxCredits) >= maxValidTxCreditsPerWin {
			s.mu.Unlock()
			return
		}
		st.validTxCredits = append(st.validTxCredits, now)
	case EventValidBlock:
		st.validBlockCredits = pruneWindow(st.validBlockCredits, now)
		if len(st.validBlockCredits) >= maxValidBlockCreditsPerWin {
			s.mu.Unlock()
			return
		}
		st.validBlockCredits = append(st.validBlockCredits, now)
	}
	if delta > 0 {
		st.hadPositiveSinceDecay = true
	}
	s.mu.Unlock()

	applyDelta(p, delta, isMinorPenalty(delta))
}

func isMinorPenalty(delta int32) bool {
	return delta < 0 && -delta <= minorPenaltyThreshold
}

func applyDelta(p *PeerInfo, delta int32, minor bool) {
	for {
		cur := p.reputation.Load()
		next := cur + delta
		if minor && cur >= LowRepThreshold && next < LowRepThreshold {
			next = LowRepThreshold
		}
		next = clampReputation(next)
		if p.reputation.CompareAndSwap(cur, next) {
			return
		}
	}
}

func pruneWindow(ts []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-diminishingWindow)
	out := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// Decay applies one decay tick to p: unconditional -1 toward 100 from
// above, and +1 toward 100 from below only if p had a positive
// interaction since the previous decay tick (active-recovery).
func (s *Scorer) Decay(p *PeerInfo) {
	st := s.stateFor(p.PeerId)

	s.mu.Lock()
	recovering := st.hadPositiveSinceDecay
	st.hadPositiveSinceDecay = false
	s.mu.Unlock()

	for {
		cur := p.reputation.Load()
		var next int32
		switch {
		case cur > 100:
			next = cur - 1
		case cur < 100 && recovering:
			next = cur + 1
		default:
			return
		}
		next = clampReputation(next)
		if p.reputation.CompareAndSwap(cur, next) {
			return
		}
	}
}
