// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gsmtap emits decoded bursts as GSMTAP v2 packets so they can
// be picked up by Wireshark's TETRA dissector. Wire format and
// sub-type values are borrowed from libosmocore's gsmtap.h, which is
// also what the original recorder links against behind its -w flag.
package gsmtap

import (
	"fmt"
	"net"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/config"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

const (
	version        = 0x02
	typeTetraI1    = 0x05
	headerWordsLen = 4 // header is 4 32-bit words, i.e. 16 bytes
)

// logical channel to GSMTAP TETRA sub-type, per the upstream mapping.
var subType = map[string]byte{
	"BSCH":   0x01,
	"AACH":   0x02,
	"SCH_HU": 0x03,
	"SCH_HD": 0x04,
	"SCH_F":  0x05,
	"BNCH":   0x06,
	"STCH":   0x07,
	"TCH_F":  0x08,
}

// Emitter sends decoded bursts to a GSMTAP collector, typically
// Wireshark listening on 127.0.0.1:4729.
type Emitter struct {
	conn net.Conn
}

// New dials the configured GSMTAP destination. UDP is connectionless,
// so this never blocks on the peer being up.
func New(cfg config.GSMTAP) (*Emitter, error) {
	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("gsmtap dial: %w", err)
	}
	return &Emitter{conn: conn}, nil
}

// Close releases the underlying socket.
func (e *Emitter) Close() error {
	return e.conn.Close()
}

// Emit sends one decoded logical-channel PDU as a GSMTAP packet.
// Channels the upstream mapping doesn't recognize are silently
// dropped: GSMTAP emission is best-effort diagnostic output, not part
// of the decode path.
func (e *Emitter) Emit(channel string, t tetra.Time, sdu bitstream.Pdu) error {
	st, ok := subType[channel]
	if !ok {
		return nil
	}
	packet := append(header(st, t), pack(sdu)...)
	_, err := e.conn.Write(packet)
	if err != nil {
		return fmt.Errorf("gsmtap write: %w", err)
	}
	return nil
}

// header builds the 16-byte GSMTAP pseudo-header. TETRA has no single
// GSM-style frame number, so the multiframe position is folded into
// the frame_number field as MN<<16 | FN<<8 | TN.
func header(st byte, t tetra.Time) []byte {
	h := make([]byte, headerWordsLen*4)
	h[0] = version
	h[1] = headerWordsLen
	h[2] = typeTetraI1
	h[3] = byte(t.TN)
	// h[4:6] ARFCN left zero: this receiver does not track tuned frequency.
	// h[6] signal_dbm, h[7] snr_db left zero: not measured.
	frameNumber := uint32(t.MN)<<16 | uint32(t.FN)<<8 | uint32(t.TN)
	h[8] = byte(frameNumber >> 24)
	h[9] = byte(frameNumber >> 16)
	h[10] = byte(frameNumber >> 8)
	h[11] = byte(frameNumber)
	h[12] = st
	// h[13] antenna_nr, h[14] sub_slot, h[15] res left zero.
	return h
}

// pack turns a one-bit-per-byte Pdu into MSB-first packed bytes,
// zero-padding the final byte if the bit count isn't a multiple of 8.
func pack(p bitstream.Pdu) []byte {
	n := p.Size()
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if p.At(i) != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
