// SPDX-License-Identifier: AGPL-3.0-or-later

package lowermac

import (
	"strings"
	"testing"

	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/framesync"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

type captureSink struct {
	lines [][]byte
}

func (c *captureSink) WriteLine(line []byte) error {
	c.lines = append(c.lines, line)
	return nil
}

// TestProcessEmitsDecodeFailureOnGarbageBurst exercises the demux and
// codec-chain wiring for an NDB burst: an all-zero burst will not
// satisfy the Reed-Muller implicit-CRC check, so AACH must surface a
// decode_failure event rather than panic or silently drop the burst.
func TestProcessEmitsDecodeFailureOnGarbageBurst(t *testing.T) {
	cell := tetra.NewCellContext()
	cell.Acquire(1, 1, 1, 1, 0, 0)
	macStateCtx := tetra.NewMacStateContext()
	sink := &captureSink{}
	rec := event.New(sink)

	burstBits := make([]byte, 510)
	burst := framesync.Burst{Type: framesync.BurstNDB, Bits: burstBits, Time: tetra.NewTime()}

	pdus := Process(burst, cell, macStateCtx, rec)
	_ = pdus

	found := false
	for _, line := range sink.lines {
		if strings.Contains(string(line), `"pdu":"decode_failure"`) && strings.Contains(string(line), `"channel":"AACH"`) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a decode_failure event for the AACH channel")
	}
}

// TestProcessSplitBurstSelectsSTCHWhenMacStateSignalsTraffic verifies
// that the NDB_SF demux consults the current MacState to distinguish
// SCH_HD from a stolen STCH half-slot.
func TestProcessSplitBurstSelectsSTCHWhenMacStateSignalsTraffic(t *testing.T) {
	cell := tetra.NewCellContext()
	cell.Acquire(1, 1, 1, 1, 0, 0)
	macStateCtx := tetra.NewMacStateContext()
	macStateCtx.Set(tetra.MacState{DownlinkUsage: tetra.UsageTraffic})
	sink := &captureSink{}
	rec := event.New(sink)

	burstBits := make([]byte, 510)
	burst := framesync.Burst{Type: framesync.BurstNDBSF, Bits: burstBits, Time: tetra.NewTime()}

	Process(burst, cell, macStateCtx, rec)

	found := false
	for _, line := range sink.lines {
		if strings.Contains(string(line), `"channel":"STCH"`) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the split burst to be reported on STCH")
	}
}
