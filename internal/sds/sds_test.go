// SPDX-License-Identifier: AGPL-3.0-or-later

package sds

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

func TestServiceDStatusDecodesPreCodedStatus(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var bits []byte
	bits = appendBits(bits, uint64(PduDStatus), 5)
	bits = appendBits(bits, 0, 2)     // CPTI selector = 0 -> 8-bit SSI
	bits = appendBits(bits, 42, 8)    // calling party ssi
	bits = appendBits(bits, 7, 16)    // pre-coded status
	bits = appendBits(bits, 0, 1)     // no external subscriber number

	Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{})
	if len(sink.lines) != 1 {
		t.Fatalf("expected one D-STATUS event, got %d", len(sink.lines))
	}
}

func TestServiceDSdsDataType4DispatchesToSimpleTextMessaging(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var payload []byte
	payload = appendBits(payload, 0b00000010, 8) // protocol id: simple text messaging
	payload = appendBits(payload, 0, 1)          // timestamp not used
	payload = appendBits(payload, 0, 7)          // text coding scheme: GSM 7-bit
	textBits := 7 * 3
	payload = appendBits(payload, 0, textBits)

	var bits []byte
	bits = appendBits(bits, uint64(PduDSdsData), 5)
	bits = appendBits(bits, 0, 2) // CPTI selector = 0
	bits = appendBits(bits, 1, 8) // calling party ssi
	bits = appendBits(bits, 3, 2) // sds type identifier = type 4

	lengthBits := len(payload)
	bits = appendBits(bits, uint64(lengthBits), 11)
	bits = append(bits, payload...)

	Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{})
	if len(sink.lines) != 2 {
		t.Fatalf("expected D-SDS-DATA plus hex-dump events, got %d", len(sink.lines))
	}
}

func TestServiceDSdsDataRoutesToLip(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	var lipReport []byte
	lipReport = appendBits(lipReport, 0b00, 2) // short location report
	lipReport = appendBits(lipReport, 0, 2)    // time elapsed
	lipReport = appendBits(lipReport, 0, 25)   // longitude
	lipReport = appendBits(lipReport, 0, 24)   // latitude
	lipReport = appendBits(lipReport, 0, 3)    // position error
	lipReport = appendBits(lipReport, 0, 7)    // horizontal velocity
	lipReport = appendBits(lipReport, 0, 4)    // direction of travel
	lipReport = appendBits(lipReport, 0, 1)    // additional data type
	lipReport = appendBits(lipReport, 0, 8)    // additional data

	var payload []byte
	payload = appendBits(payload, 0b00001010, 8) // protocol id: LIP
	payload = append(payload, lipReport...)

	var bits []byte
	bits = appendBits(bits, uint64(PduDSdsData), 5)
	bits = appendBits(bits, 0, 2) // CPTI selector = 0
	bits = appendBits(bits, 1, 8) // calling party ssi
	bits = appendBits(bits, 3, 2) // sds type identifier = type 4

	lengthBits := len(payload)
	bits = appendBits(bits, uint64(lengthBits), 11)
	bits = append(bits, payload...)

	Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{})
	if len(sink.lines) != 2 {
		t.Fatalf("expected D-SDS-DATA plus hex-dump events, got %d", len(sink.lines))
	}
}

func TestDecodeExternalNumberHandlesOddDigitCount(t *testing.T) {
	var bits []byte
	bits = appendBits(bits, 1, 4) // '1'
	bits = appendBits(bits, 2, 4) // '2'
	bits = appendBits(bits, 3, 4) // '3'
	bits = appendBits(bits, 0xF, 4) // dummy nibble to stay nibble-aligned

	number, pos := decodeExternalNumber(bitstream.New(bits), 0, 3)
	if number != "123" {
		t.Fatalf("expected \"123\", got %q", number)
	}
	if pos != 16 {
		t.Fatalf("expected pos to advance past the dummy nibble, got %d", pos)
	}
}
