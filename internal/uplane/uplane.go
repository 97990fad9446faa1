// SPDX-License-Identifier: AGPL-3.0-or-later

// Package uplane frames TCH_S speech traffic into the 690-int16-word
// layout the original decoder feeds to a speech codec, without
// decoding it: that stays out of scope for a passive receiver.
package uplane

import (
	"encoding/binary"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

const (
	minSizeBits     = 432
	frameWords      = 690
	markerStride    = 115
	markerCount     = 6
	markerBase      = 0x6b21
	block1Offset    = 0
	block1Words     = 114
	block2PduOffset = 114
	block2Words     = 114
	block3PduOffset = 228
	block3Words     = 114
	block4PduOffset = 342
	block4Words     = 90
)

// Service frames one TCH_S traffic burst into the marker-interleaved
// speech frame buffer (§9), tagged with the current downlink usage
// marker and encryption mode, and zlib+base64 compresses the raw
// buffer for transport.
func Service(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address, macState tetra.MacState, encryptionMode uint8) {
	rec.Start("UPLANE", "TCH_S", t, addr)

	if p.Size() < minSizeBits {
		rec.Add("invalid pdu size", p.Size())
		rec.Add("pdu minimum size", minSizeBits)
		rec.Send()
		return
	}

	frame := buildSpeechFrame(p)

	rec.Add("downlink usage marker", macState.DownlinkUsageMarker)
	rec.Add("encryption mode", encryptionMode)

	raw := make([]byte, 2*frameWords)
	for i, w := range frame {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(w))
	}
	if err := rec.AddCompressed("frame", raw); err != nil {
		rec.Add("frame error", err.Error())
	}

	rec.Send()
}

// buildSpeechFrame lays six synchronization markers at a 115-word
// stride over a 690-word buffer and fills the four payload blocks
// between them with the bipolar ±127 encoding of the source bits.
func buildSpeechFrame(p bitstream.Pdu) [frameWords]int16 {
	var frame [frameWords]int16

	for i := 0; i < markerCount; i++ {
		frame[markerStride*i] = int16(markerBase + i)
	}

	fillBlock(&frame, p, 1, block1Offset, block1Words)
	fillBlock(&frame, p, 116, block2PduOffset, block2Words)
	fillBlock(&frame, p, 231, block3PduOffset, block3Words)
	fillBlock(&frame, p, 346, block4PduOffset, block4Words)

	return frame
}

func fillBlock(frame *[frameWords]int16, p bitstream.Pdu, frameOffset, pduOffset, count int) {
	for i := 0; i < count; i++ {
		if p.At(pduOffset+i) != 0 {
			frame[frameOffset+i] = -127
		} else {
			frame[frameOffset+i] = 127
		}
	}
}
