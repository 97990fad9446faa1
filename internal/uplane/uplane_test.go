// SPDX-License-Identifier: AGPL-3.0-or-later

package uplane

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

func TestServiceFramesSpeechBuffer(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	bits := make([]byte, 432)
	Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{}, tetra.MacState{DownlinkUsageMarker: 7}, 1)

	if len(sink.lines) != 1 {
		t.Fatalf("expected one UPLANE event, got %d", len(sink.lines))
	}
}

func TestServiceRejectsUndersizedPdu(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	bits := make([]byte, 100)
	Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{}, tetra.MacState{}, 0)

	if len(sink.lines) != 1 {
		t.Fatalf("expected one UPLANE event even for undersized pdu, got %d", len(sink.lines))
	}
}

func TestBuildSpeechFramePlacesMarkers(t *testing.T) {
	bits := make([]byte, 432)
	frame := buildSpeechFrame(bitstream.New(bits))

	for i := 0; i < markerCount; i++ {
		want := int16(markerBase + i)
		if frame[markerStride*i] != want {
			t.Fatalf("marker %d: expected %d, got %d", i, want, frame[markerStride*i])
		}
	}
}
