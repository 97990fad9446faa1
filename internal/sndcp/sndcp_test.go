// SPDX-License-Identifier: AGPL-3.0-or-later

package sndcp

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

func TestServiceReportsRawData(t *testing.T) {
	sink := &captureSink{}
	rec := event.New(sink)

	bits := []byte{1, 0, 1, 1, 0, 0, 1, 0}
	Service(bitstream.New(bits), rec, tetra.NewTime(), tetra.Address{})

	if len(sink.lines) != 1 {
		t.Fatalf("expected one SNDCP event, got %d", len(sink.lines))
	}
}
