// SPDX-License-Identifier: AGPL-3.0-or-later

// Package uppermac implements the upper-MAC sub-layer (C5): PDU-type
// dispatch, MAC-RESOURCE address resolution, MAC-FRAG/MAC-END
// reassembly, fill-bit removal and AACH ACCESS-ASSIGN handling.
package uppermac

import (
	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

// PduType is the 2-bit upper-MAC PDU-type discriminator carried by
// SCH_F/SCH_HD/STCH/BNCH.
type PduType int

const (
	PduMacResource PduType = iota
	PduMacFrag
	PduMacEnd
	PduMacDBlck
)

func (t PduType) String() string {
	switch t {
	case PduMacResource:
		return "MAC-RESOURCE"
	case PduMacFrag:
		return "MAC-FRAG"
	case PduMacEnd:
		return "MAC-END"
	default:
		return "MAC-D-BLCK"
	}
}

// Result is what the upper MAC hands to LLC: an SDU to service, or
// Deliver=false if the PDU was fully consumed at this layer (a
// fragment stored, an orphan discarded, or a PDU dropped at this
// layer).
type Result struct {
	SDU     bitstream.Pdu
	Deliver bool
}

// Process dispatches one SCH_F/SCH_HD/STCH logical-channel PDU. BNCH
// is serviced by mle.ServiceBNCH directly and never reaches here.
// addrCtx is updated on MAC-RESOURCE; fragBuf serves MAC-FRAG/MAC-END.
func Process(channel string, p bitstream.Pdu, addrCtx *tetra.AddressContext, fragBuf *FragmentBuffer, rec *event.Record, t tetra.Time, keepFillBits bool) Result {
	pduType := PduType(p.GetValue(0, 2))
	pos := 2

	switch pduType {
	case PduMacResource:
		return processResource(channel, p, pos, addrCtx, fragBuf, rec, t, keepFillBits)
	case PduMacFrag:
		return processFrag(channel, p, pos, addrCtx, fragBuf, rec, t, keepFillBits)
	case PduMacEnd:
		return processEnd(channel, p, pos, addrCtx, fragBuf, rec, t, keepFillBits)
	default:
		rec.Start("MAC", "MAC-D-BLCK", t, addrCtx.Get())
		rec.Add("channel", channel)
		rec.Send()
		return Result{Deliver: false}
	}
}

func processResource(channel string, p bitstream.Pdu, pos int, addrCtx *tetra.AddressContext, fragBuf *FragmentBuffer, rec *event.Record, t tetra.Time, keepFillBits bool) Result {
	addr, consumed := decodeAddress(p, pos)
	pos += consumed
	addrCtx.Set(addr)

	const lengthIndicatorBits = 6
	length := int(p.GetValue(pos, lengthIndicatorBits))
	pos += lengthIndicatorBits

	fillBitIndication := p.GetValue(pos, 1) == 1
	pos++
	more := p.GetValue(pos, 1) == 1
	pos++

	sdu := p.Slice(pos, length)
	if fillBitIndication && !keepFillBits {
		trimmed, ok := stripFillBits(sdu)
		if !ok {
			rec.Start("MAC", "MAC-RESOURCE", t, addr)
			rec.Add("channel", channel)
			rec.Add("malformed", true)
			rec.Send()
			return Result{Deliver: false}
		}
		sdu = trimmed
	}

	if more {
		fragBuf.StoreFragment(channel, addr.Key(), sdu)
		rec.Start("MAC", "MAC-RESOURCE", t, addr)
		rec.Add("channel", channel)
		rec.Add("fragmented", true)
		rec.Send()
		return Result{Deliver: false}
	}

	rec.Start("MAC", "MAC-RESOURCE", t, addr)
	rec.Add("channel", channel)
	rec.Send()
	return Result{SDU: sdu, Deliver: true}
}

func processFrag(channel string, p bitstream.Pdu, pos int, addrCtx *tetra.AddressContext, fragBuf *FragmentBuffer, rec *event.Record, t tetra.Time, keepFillBits bool) Result {
	addr := addrCtx.Get()
	sdu := p.Slice(pos, 0)
	fragBuf.StoreFragment(channel, addr.Key(), sdu)
	rec.Start("MAC", "MAC-FRAG", t, addr)
	rec.Add("channel", channel)
	rec.Send()
	return Result{Deliver: false}
}

func processEnd(channel string, p bitstream.Pdu, pos int, addrCtx *tetra.AddressContext, fragBuf *FragmentBuffer, rec *event.Record, t tetra.Time, keepFillBits bool) Result {
	addr := addrCtx.Get()
	endSDU := p.Slice(pos, 0)
	sdu, ok := fragBuf.Complete(channel, addr.Key(), endSDU)
	rec.Start("MAC", "MAC-END", t, addr)
	rec.Add("channel", channel)
	if !ok {
		rec.Add("orphan", true)
		rec.Send()
		return Result{Deliver: false}
	}
	rec.Send()
	return Result{SDU: sdu, Deliver: true}
}

// ProcessAACH updates macState from an already Reed-Muller-decoded
// ACCESS-ASSIGN payload (14 info bits: downlink usage, usage marker,
// and logical-channel indicator). No SDU is produced.
func ProcessAACH(info bitstream.Pdu, macStateCtx *tetra.MacStateContext, rec *event.Record, t tetra.Time, addr tetra.Address) {
	usage := tetra.DownlinkUsage(info.GetValue(0, 2))
	marker := uint8(info.GetValue(2, 6))
	logicalChannel := "AACH"

	macStateCtx.Set(tetra.MacState{
		DownlinkUsage:       usage,
		DownlinkUsageMarker: marker,
		LogicalChannel:      logicalChannel,
	})

	rec.Start("MAC", "ACCESS-ASSIGN", t, addr)
	rec.Add("downlink usage", usage.String())
	rec.Add("downlink usage marker", marker)
	rec.Send()
}
