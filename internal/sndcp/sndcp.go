// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sndcp implements the SNDCP service entry point (28.4). A
// passive downlink-only receiver has no PDP context state to attach
// this data to, so the PDU is reported raw rather than decoded.
package sndcp

import (
	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

// Service reports the SNDCP SDU as an opaque hex blob.
func Service(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("SNDCP", "RAW-DATA", t, addr)
	rec.Add("data", p.Hex())
	rec.Send()
}
