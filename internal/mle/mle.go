// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mle implements the Mobile Link Entity sub-layer (C7): the
// 3-bit discriminator that routes a decoded LLC SDU to MM, CMCE or
// SNDCP, the MLE sub-system's own PDUs (D-NWRK-BROADCAST and its
// extension), and the two logical channels (BSCH, BNCH) that bypass
// LLC entirely and are reported directly here.
package mle

import (
	"fmt"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

// Discriminator is the 3-bit value carried by every non-BSCH/BNCH MLE
// PDU (EN 300 392-2 §18.5.21).
type Discriminator int

const (
	DiscReserved0 Discriminator = iota
	DiscMM
	DiscCMCE
	DiscReserved3
	DiscSNDCP
	DiscMLESubsystem
	DiscReserved6
	DiscReserved7
)

// Target names the next-layer service a dispatched body is forwarded
// to, or TargetNone when MLE fully services the PDU itself.
type Target int

const (
	TargetNone Target = iota
	TargetMM
	TargetCMCE
	TargetSNDCP
)

// Dispatch is the outcome of routing one MLE PDU.
type Dispatch struct {
	Target Target
	Body   bitstream.Pdu
}

// ServiceBSCH reports the D-MLE-SYNC payload a BSCH delivery carries
// directly from the MAC, bypassing LLC (spec §4.6/§4.7), and acquires
// the cell identity it carries: on first successful BSCH the
// scrambling seed is recomputed from the decoded MCC/MNC/ColorCode so
// subsequent decoding becomes cell-specific (spec §4.4).
func ServiceBSCH(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address, cell *tetra.CellContext) {
	mcc := uint32(p.GetValue(0, 10))
	mnc := uint32(p.GetValue(10, 14))
	colorCode := uint32(p.GetValue(24, 6))
	locationArea := uint32(p.GetValue(30, 14))

	rec.Start("MLE", "D-MLE-SYNC", t, addr)
	rec.Add("mcc", mcc)
	rec.Add("mnc", mnc)
	rec.Add("color code", colorCode)
	rec.Add("location area", locationArea)
	rec.Send()

	cell.Acquire(mcc, mnc, colorCode, locationArea, 0, 0)
}

// ServiceBNCH reports the D-MLE-SYSINFO payload a BNCH delivery
// carries directly from the MAC, bypassing LLC.
func ServiceBNCH(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MLE", "D-MLE-SYSINFO", t, addr)
	rec.Add("location area", p.GetValue(0, 14))
	rec.Add("subscriber class", p.GetValue(14, 16))
	rec.Add("bs service details", p.GetValue(30, 12))
	rec.Send()
}

// Service dispatches a non-BSCH/BNCH MLE PDU by its 3-bit
// discriminator.
func Service(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) Dispatch {
	disc := Discriminator(p.GetValue(0, 3))
	pos := 3

	switch disc {
	case DiscMM:
		return Dispatch{Target: TargetMM, Body: p.Slice(pos, 0)}
	case DiscCMCE:
		return Dispatch{Target: TargetCMCE, Body: p.Slice(pos, 0)}
	case DiscSNDCP:
		return Dispatch{Target: TargetSNDCP, Body: p.Slice(pos, 0)}
	case DiscMLESubsystem:
		serviceSubsystem(p.Slice(pos, 0), rec, t, addr)
		return Dispatch{Target: TargetNone}
	default:
		rec.Start("MLE", "reserved", t, addr)
		rec.Add("disc", disc)
		rec.Send()
		return Dispatch{Target: TargetNone}
	}
}

// subsystemPduType is the 3-bit MLE sub-system PDU type (§18.5.21,
// sub-system branch).
type subsystemPduType int

const (
	SubNewCell subsystemPduType = iota
	SubPrepareFail
	SubNwrkBroadcast
	SubNwrkBroadcastExtension
	SubRestoreAck
	SubRestoreFail
	SubChannelResponse
	SubReserved
)

func (s subsystemPduType) String() string {
	switch s {
	case SubNewCell:
		return "D-NEW-CELL"
	case SubPrepareFail:
		return "D-PREPARE-FAIL"
	case SubNwrkBroadcast:
		return "D-NWRK-BROADCAST"
	case SubNwrkBroadcastExtension:
		return "D-NWRK-BROADCAST-EXTENSION"
	case SubRestoreAck:
		return "D-RESTORE-ACK"
	case SubRestoreFail:
		return "D-RESTORE-FAIL"
	case SubChannelResponse:
		return "D-CHANNEL-RESPONSE"
	default:
		return "reserved"
	}
}

func serviceSubsystem(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	pduType := subsystemPduType(p.GetValue(0, 3))

	switch pduType {
	case SubNwrkBroadcast:
		processNwrkBroadcast(p, rec, t, addr)
	case SubNwrkBroadcastExtension:
		processNwrkBroadcastExtension(p, rec, t, addr)
	default:
		rec.Start("MLE", pduType.String(), t, addr)
		rec.Send()
	}
}

// processNwrkBroadcast decodes D-NWRK-BROADCAST (§18.4.1.4.1): cell
// re-select parameters, cell service level, the optional TETRA
// network time element and an optional run of neighbour-cell
// information elements (§18.5.17).
func processNwrkBroadcast(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MLE", "D-NWRK-BROADCAST", t, addr)

	pos := 3
	rec.Add("cell re-select parameter", p.GetValue(pos, 16))
	pos += 16
	rec.Add("cell service level", p.GetValue(pos, 2))
	pos += 2

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pFlag := p.GetValue(pos, 1) == 1
		pos++
		if pFlag {
			pos = decodeNetworkTime(p, pos, rec)
		}

		pFlag = p.GetValue(pos, 1) == 1
		pos++
		if pFlag {
			count := int(p.GetValue(pos, 3))
			pos += 3
			rec.Add("number of neighbour cells", count)
			for i := 0; i < count; i++ {
				var consumed int
				pos, consumed = decodeNeighbourCell(p, pos, rec, i)
				_ = consumed
			}
		}
	}

	rec.Send()
}

// decodeNetworkTime decodes the TETRA network time element
// (§18.5.24): a 24-bit UTC time in 2-second steps, a local-offset
// sign and 6-bit magnitude in 15-minute steps, and a 6-bit year
// offset from 1900.
func decodeNetworkTime(p bitstream.Pdu, pos int, rec *event.Record) int {
	utcTime := p.GetValue(pos, 24) * 2
	pos += 24
	sign := p.GetValue(pos, 1) == 1
	pos++
	localOffset := p.GetValue(pos, 6)
	pos += 6
	year := p.GetValue(pos, 6)
	pos += 11 // 5 reserved bits absorbed with the year field per the original layout

	offsetSeconds := int64(localOffset) * 15 * 60
	if sign {
		offsetSeconds = -offsetSeconds
	}

	rec.Add("tetra network time", fmt.Sprintf("%d-01-01T00:00:00Z+%ds+%ds", 1900+int(year), utcTime, offsetSeconds))
	return pos
}

// decodeNeighbourCell decodes one neighbour-cell information element
// (§18.5.17): a mandatory header followed by an optional run of
// type-2 fields, each gated by its own presence flag.
func decodeNeighbourCell(p bitstream.Pdu, pos int, rec *event.Record, index int) (int, int) {
	start := pos
	fields := make([]any, 0, 16)

	add := func(name string, width int) {
		fields = append(fields, name, p.GetValue(pos, width))
		pos += width
	}
	add("identifier", 5)
	add("reselection types supported", 2)
	add("neighbour cell synchronized", 1)
	add("service level", 2)
	add("main carrier number", 12)

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		type2 := []struct {
			name  string
			width int
		}{
			{"main carrier number extension", 10},
			{"mcc", 10},
			{"mnc", 14},
			{"la", 14},
			{"max. ms tx power", 3},
			{"min. rx access level", 4},
			{"subscriber class", 16},
			{"bs service details", 12},
			{"timeshare or security", 5},
			{"tdma frame offset", 6},
		}
		for _, f := range type2 {
			pFlag := p.GetValue(pos, 1) == 1
			pos++
			if pFlag {
				fields = append(fields, f.name, p.GetValue(pos, f.width))
				pos += f.width
			}
		}
	}

	rec.AddArray(fmt.Sprintf("cell %d", index), fields)
	return pos, pos - start
}

// processNwrkBroadcastExtension decodes D-NWRK-BROADCAST-EXTENSION
// (§18.4.1.4.1a): the channel-class-count field is the only element
// in general circulation; the channel-class bit layout itself is not
// exercised by this receiver.
func processNwrkBroadcastExtension(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MLE", "D-NWRK-BROADCAST-EXTENSION", t, addr)

	pos := 3
	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pFlag := p.GetValue(pos, 1) == 1
		pos++
		if pFlag {
			count := p.GetValue(pos, 4)
			pos += 4
			rec.Add("number of channel classes", count)
		}
	}

	rec.Send()
}
