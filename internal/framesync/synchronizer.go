// SPDX-License-Identifier: AGPL-3.0-or-later

// Package framesync implements the physical-burst synchronizer: it
// aligns an incoming symbol stream to the TDMA burst boundary by
// detecting the synchronization training sequence, and maintains the
// running TetraTime as bursts arrive.
package framesync

import (
	"github.com/tetrarx/tetrarx/internal/tetra"
)

const (
	burstLenBits  = 510
	trainingLen   = 38
	searchWindow  = 38
	maxLostBursts = 4 // consecutive bursts without a training match before acquisition is dropped
)

// trainingSequence is the normal-burst synchronization training
// sequence y1..y38 (EN 300 392-2 §9.4.4.3.4), stored one bit per byte.
var trainingSequence = []byte{
	1, 1, 0, 0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 0, 0, 1, 1, 0, 1, 1,
	0, 1, 0, 1, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 1, 1, 0, 1,
}

// BurstType distinguishes how many logical sub-channels a burst
// yields and, for NDB, how the sub-type was detected.
type BurstType int

const (
	BurstSB     BurstType = iota // synchronization burst
	BurstNDB                     // normal downlink burst, single channel
	BurstNDBSF                   // normal downlink burst, split (two half-slots)
)

func (b BurstType) String() string {
	switch b {
	case BurstSB:
		return "SB"
	case BurstNDB:
		return "NDB"
	case BurstNDBSF:
		return "NDB_SF"
	default:
		return "UNKNOWN"
	}
}

// Burst is one decoded burst boundary handed to the lower MAC.
type Burst struct {
	Type BurstType
	Bits []byte
	Time tetra.Time
}

// state is the synchronizer's internal UNSYNC/SYNC state machine.
type state int

const (
	stateUnsync state = iota
	stateSync
)

// Synchronizer is the only writer of the running TetraTime and the
// sole consumer of raw demodulator bits before the lower MAC.
type Synchronizer struct {
	st          state
	ring        []byte
	firstBurst  bool
	lostStreak  int
	time        tetra.Time
	cell        *tetra.CellContext
}

// New returns a synchronizer in the UNSYNC state with TetraTime
// starting at its initial value.
func New(cell *tetra.CellContext) *Synchronizer {
	return &Synchronizer{
		st:         stateUnsync,
		ring:       make([]byte, 0, searchWindow+burstLenBits),
		firstBurst: true,
		time:       tetra.NewTime(),
		cell:       cell,
	}
}

// PushBit feeds one demodulated bit into the synchronizer. It returns
// a completed Burst (ok=true) whenever 510 bits have accumulated since
// the last successful training-sequence match while in the SYNC state,
// or a zero Burst with ok=false otherwise. Every returned burst advances the running
// TetraTime.
func (s *Synchronizer) PushBit(bit byte) (Burst, bool) {
	s.ring = append(s.ring, bit)

	switch s.st {
	case stateUnsync:
		if len(s.ring) < trainingLen {
			return Burst{}, false
		}
		tail := s.ring[len(s.ring)-trainingLen:]
		if matchesTraining(tail) {
			s.st = stateSync
			s.ring = s.ring[:0]
			s.lostStreak = 0
		} else if len(s.ring) > searchWindow+burstLenBits {
			// keep only the most recent search window
			s.ring = s.ring[len(s.ring)-searchWindow:]
		}
		return Burst{}, false

	case stateSync:
		if len(s.ring) < burstLenBits {
			return Burst{}, false
		}
		burstBits := make([]byte, burstLenBits)
		copy(burstBits, s.ring[:burstLenBits])
		s.ring = s.ring[:0]

		bt := s.detectBurstType(burstBits)
		if bt == BurstNDB && s.firstBurst {
			bt = BurstSB
		}
		s.firstBurst = false

		if matchesTrainingAtExpectedOffset(burstBits) {
			s.lostStreak = 0
		} else {
			s.lostStreak++
			if s.lostStreak > maxLostBursts {
				s.st = stateUnsync
				if s.cell != nil {
					s.cell.Release()
				}
			}
		}

		burst := Burst{Type: bt, Bits: burstBits, Time: s.time}
		s.time = s.time.Next()
		return burst, true
	}
	return Burst{}, false
}

func matchesTraining(window []byte) bool {
	for i := range trainingSequence {
		if window[i] != trainingSequence[i] {
			return false
		}
	}
	return true
}

// matchesTrainingAtExpectedOffset checks for the training sequence at
// the offset a normal burst's second training block occupies,
// distinguishing a continuous-acquisition NDB from one that has
// drifted out of alignment.
func matchesTrainingAtExpectedOffset(burst []byte) bool {
	const expectedOffset = 244 // normal burst mid-amble offset
	if expectedOffset+trainingLen > len(burst) {
		return false
	}
	return matchesTraining(burst[expectedOffset : expectedOffset+trainingLen])
}

// detectBurstType inspects the stolen-flag bits carried at the
// documented burst-header offset to tell a single-channel NDB apart
// from a split NDB_SF.
func (s *Synchronizer) detectBurstType(burst []byte) BurstType {
	const stolenFlagOffset = 120
	if stolenFlagOffset+1 >= len(burst) {
		return BurstNDB
	}
	if burst[stolenFlagOffset] == 1 || burst[stolenFlagOffset+1] == 1 {
		return BurstNDBSF
	}
	return BurstNDB
}
