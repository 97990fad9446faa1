// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lowermac implements the lower-MAC sub-layer (C4): burst
// demultiplexing into logical channels and the channel-codec chain
// that turns each one into a clean TM-SDU (or a decode-failure event).
package lowermac

import (
	"errors"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/codec"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/framesync"
	"github.com/tetrarx/tetrarx/internal/tetra"
	"github.com/tetrarx/tetrarx/internal/uppermac"
)

// logical-channel bit offsets within a 510-bit burst. AACH always
// occupies the leading block; the remaining channel depends on burst
// type and, for a split burst, the stolen-flag bits framesync already
// inspected to classify it as NDB_SF.
const (
	aachOffset   = 0
	aachLen      = 120
	block2Offset = 120
	block2Len    = 216
	fullSlotLen  = 432
)

// LogicalPdu is one decoded TM-SDU ready for the upper MAC, tagged
// with the logical channel it arrived on.
type LogicalPdu struct {
	Channel string
	SDU     bitstream.Pdu
}

// Process demultiplexes one synchronized burst, runs the channel
// codec chain on each logical sub-channel it carries, and returns the
// decoded PDUs. AACH always updates macStateCtx directly and never
// appears in the returned list. A channel that fails its codec chain
// (bad CRC, ambiguous Reed-Muller, interleaver mismatch) emits a
// decode_failure event and is omitted rather than delivered.
func Process(b framesync.Burst, cell *tetra.CellContext, macStateCtx *tetra.MacStateContext, rec *event.Record) []LogicalPdu {
	var out []LogicalPdu
	seed := cell.Get().ScramblingSeed

	if aachBits, err := codec.DecodeAACHOrBSCH(b.Bits[aachOffset:aachOffset+aachLen], seed, codec.InterleaveAACH); err != nil {
		emitDecodeFailure(rec, b.Time, "AACH", err)
	} else {
		uppermac.ProcessAACH(bitstream.New(aachBits), macStateCtx, rec, b.Time, tetra.Address{})
	}

	switch b.Type {
	case framesync.BurstSB:
		if bschBits, err := codec.DecodeAACHOrBSCH(b.Bits[aachOffset:aachOffset+aachLen], seed, codec.InterleaveBSCH); err != nil {
			emitDecodeFailure(rec, b.Time, "BSCH", err)
		} else {
			out = appendIfOk(out, "BSCH", bitstream.New(bschBits))
		}
		if bnchBits, err := codec.DecodeConvolutional(b.Bits[block2Offset:block2Offset+block2Len], seed, codec.InterleaveSCH_HD, codec.RateTwoThirds); err != nil {
			emitDecodeFailure(rec, b.Time, "BNCH", err)
		} else {
			out = appendIfOk(out, "BNCH", bitstream.New(bnchBits))
		}

	case framesync.BurstNDB:
		if schBits, err := codec.DecodeConvolutional(b.Bits[0:fullSlotLen], seed, codec.InterleaveSCH_F, codec.RateTwoThirds); err != nil {
			emitDecodeFailure(rec, b.Time, "SCH_F", err)
		} else {
			out = appendIfOk(out, "SCH_F", bitstream.New(schBits))
		}

	case framesync.BurstNDBSF:
		state := macStateCtx.Get()
		channel := "SCH_HD"
		if state.DownlinkUsage == tetra.UsageTraffic {
			channel = "STCH"
		}
		if bits, err := codec.DecodeConvolutional(b.Bits[block2Offset:block2Offset+block2Len], seed, codec.InterleaveSCH_HD, codec.RateTwoThirds); err != nil {
			emitDecodeFailure(rec, b.Time, channel, err)
		} else {
			out = appendIfOk(out, channel, bitstream.New(bits))
		}
	}

	return out
}

func appendIfOk(out []LogicalPdu, channel string, sdu bitstream.Pdu) []LogicalPdu {
	return append(out, LogicalPdu{Channel: channel, SDU: sdu})
}

func emitDecodeFailure(rec *event.Record, t tetra.Time, channel string, err error) {
	rec.Start("MAC", "decode_failure", t, tetra.Address{})
	rec.Add("error", "decode_failure")
	var stageErr *codec.StageError
	if errors.As(err, &stageErr) {
		rec.Add("stage", stageErr.Stage)
	}
	rec.Add("channel", channel)
	rec.Add("reason", err.Error())
	rec.Send()
}
