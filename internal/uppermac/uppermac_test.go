// SPDX-License-Identifier: AGPL-3.0-or-later

package uppermac

import (
	"encoding/json"
	"testing"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

type captureSink struct {
	lines [][]byte
}

func (c *captureSink) WriteLine(line []byte) error {
	c.lines = append(c.lines, line)
	return nil
}

func buildResourcePdu(ssi uint32, sdu []byte, more bool) bitstream.Pdu {
	bits := make([]byte, 0, 2+3+24+2+1+6+1+1+len(sdu))
	appendBits := func(v uint64, width int) {
		for i := width - 1; i >= 0; i-- {
			bits = append(bits, byte((v>>uint(i))&1))
		}
	}
	appendBits(uint64(PduMacResource), 2)
	appendBits(0, 3) // SSI selector
	appendBits(uint64(ssi), 24)
	appendBits(0, 2) // encryption mode
	appendBits(0, 1) // stolen
	appendBits(uint64(len(sdu)), 6)
	appendBits(0, 1) // fill bit indication
	if more {
		appendBits(1, 1)
	} else {
		appendBits(0, 1)
	}
	bits = append(bits, sdu...)
	return bitstream.New(bits)
}

func TestProcessResourceDeliversSDU(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)
	addrCtx := tetra.NewAddressContext()
	fragBuf := NewFragmentBuffer()

	sdu := []byte{1, 0, 1, 1, 0, 0, 1, 1}
	pdu := buildResourcePdu(0x123456, sdu, false)

	result := Process("SCH_F", pdu, addrCtx, fragBuf, rec, tetra.NewTime(), false)
	if !result.Deliver {
		t.Fatal("expected delivery")
	}
	if result.SDU.Size() != len(sdu) {
		t.Fatalf("sdu size mismatch: got %d want %d", result.SDU.Size(), len(sdu))
	}
	if addrCtx.Get().SSI != 0x123456 {
		t.Fatalf("address not set: %+v", addrCtx.Get())
	}
}

func TestProcessFragThenEndReassembles(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)
	addrCtx := tetra.NewAddressContext()
	addrCtx.Set(tetra.Address{Type: tetra.AddressSSI, SSI: 7})
	fragBuf := NewFragmentBuffer()

	fragPdu := bitstream.New([]byte{0, 1, 1, 0, 1, 0, 1, 0})
	result := Process("SCH_F", fragPdu, addrCtx, fragBuf, rec, tetra.NewTime(), false)
	if result.Deliver {
		t.Fatal("MAC-FRAG must not deliver")
	}

	endBits := make([]byte, 0, 2+2)
	appendBits := func(v uint64, width int) {
		for i := width - 1; i >= 0; i-- {
			endBits = append(endBits, byte((v>>uint(i))&1))
		}
	}
	appendBits(uint64(PduMacEnd), 2)
	endBits = append(endBits, []byte{0, 1}...)
	endPdu := bitstream.New(endBits)

	result = Process("SCH_F", endPdu, addrCtx, fragBuf, rec, tetra.NewTime(), false)
	if !result.Deliver {
		t.Fatal("expected delivery after MAC-END")
	}
	if result.SDU.Size() != fragPdu.Size()-2+2 {
		t.Fatalf("unexpected reassembled size %d", result.SDU.Size())
	}
}

func TestProcessEndWithoutFragIsOrphan(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)
	addrCtx := tetra.NewAddressContext()
	fragBuf := NewFragmentBuffer()

	endBits := []byte{1, 0, 0, 1}
	result := Process("SCH_F", bitstream.New(endBits), addrCtx, fragBuf, rec, tetra.NewTime(), false)
	if result.Deliver {
		t.Fatal("orphan MAC-END must not deliver")
	}
	var decoded map[string]any
	if err := json.Unmarshal(sink.lines[0], &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["orphan"] != true {
		t.Fatalf("expected orphan flag, got %v", decoded)
	}
}

func TestProcessAACHUpdatesMacState(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)
	macStateCtx := tetra.NewMacStateContext()

	info := bitstream.New([]byte{0, 1, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0, 1, 0})
	ProcessAACH(info, macStateCtx, rec, tetra.NewTime(), tetra.Address{})

	state := macStateCtx.Get()
	if state.LogicalChannel != "AACH" {
		t.Fatalf("expected AACH logical channel, got %q", state.LogicalChannel)
	}
	if len(sink.lines) != 1 {
		t.Fatalf("expected one ACCESS-ASSIGN event, got %d", len(sink.lines))
	}
}
