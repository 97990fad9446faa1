// SPDX-License-Identifier: AGPL-3.0-or-later

package mle

import (
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

func appendBits(dst []byte, v uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte((v>>uint(i))&1))
	}
	return dst
}

func TestServiceRoutesMM(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var bits []byte
	bits = appendBits(bits, uint64(DiscMM), 3)
	bits = append(bits, 1, 0, 1, 1)

	d := Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{})
	if d.Target != TargetMM {
		t.Fatalf("expected TargetMM, got %v", d.Target)
	}
	if d.Body.Size() != 4 {
		t.Fatalf("expected 4-bit body, got %d", d.Body.Size())
	}
}

func TestServiceRoutesReservedDiscriminatorToEventOnly(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var bits []byte
	bits = appendBits(bits, uint64(DiscReserved0), 3)

	d := Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{})
	if d.Target != TargetNone {
		t.Fatalf("expected no dispatch target, got %v", d.Target)
	}
	if len(sink.lines) != 1 {
		t.Fatalf("expected one reserved event, got %d", len(sink.lines))
	}
}

func TestServiceBSCHReportsMCCMNC(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var bits []byte
	bits = appendBits(bits, 123, 10)
	bits = appendBits(bits, 456, 14)
	for len(bits) < 60 {
		bits = append(bits, 0)
	}

	cell := tetra.NewCellContext()
	ServiceBSCH(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{}, cell)
	if len(sink.lines) != 1 {
		t.Fatalf("expected one D-MLE-SYNC event, got %d", len(sink.lines))
	}
}

func TestServiceBSCHAcquiresCell(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var bits []byte
	bits = appendBits(bits, 208, 10)
	bits = appendBits(bits, 10, 14)
	for len(bits) < 24 {
		bits = append(bits, 0)
	}
	bits = appendBits(bits, 5, 6)
	for len(bits) < 60 {
		bits = append(bits, 0)
	}

	cell := tetra.NewCellContext()
	ServiceBSCH(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{}, cell)

	got := cell.Get()
	if !got.Acquired {
		t.Fatal("expected cell to be acquired")
	}
	if got.MCC != 208 || got.MNC != 10 || got.ColorCode != 5 {
		t.Fatalf("got MCC=%d MNC=%d ColorCode=%d, want 208/10/5", got.MCC, got.MNC, got.ColorCode)
	}
	want := tetra.ComputeScramblingSeed(208, 10, 5)
	if got.ScramblingSeed != want {
		t.Fatalf("ScramblingSeed = %d, want %d", got.ScramblingSeed, want)
	}
}

func TestNwrkBroadcastDecodesNeighbourCells(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var bits []byte
	bits = appendBits(bits, 2, 3) // D-NWRK-BROADCAST sub-system type
	bits = appendBits(bits, 0xABCD, 16)
	bits = appendBits(bits, 1, 2)
	bits = appendBits(bits, 1, 1) // oFlag
	bits = appendBits(bits, 0, 1) // no network time
	bits = appendBits(bits, 1, 1) // neighbour cells present
	bits = appendBits(bits, 1, 3) // 1 neighbour cell

	bits = appendBits(bits, 5, 5)
	bits = appendBits(bits, 1, 2)
	bits = appendBits(bits, 1, 1)
	bits = appendBits(bits, 2, 2)
	bits = appendBits(bits, 100, 12)
	bits = appendBits(bits, 0, 1) // no type2 fields

	serviceSubsystem(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{})
	if len(sink.lines) != 1 {
		t.Fatalf("expected one D-NWRK-BROADCAST event, got %d", len(sink.lines))
	}
}
