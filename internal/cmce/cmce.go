// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cmce implements the Circuit Mode Control Entity sub-layer
// (C8): the 5-bit PDU-type discriminator and its fourteen D-* call
// control PDUs (EN 300 392-2 §14.7), each walking an optional-field
// chain gated by an option flag followed by one presence flag per
// type-2 element. D-STATUS and D-SDS-DATA are handed to SDS rather
// than parsed here.
package cmce

import (
	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

// PduType is the 5-bit CMCE PDU-type discriminator.
type PduType int

const (
	PduDAlert PduType = iota
	PduDCallProceeding
	PduDConnect
	PduDConnectAck
	PduDDisconnect
	PduDInfo
	PduDRelease
	PduDSetup
	PduDStatus
	PduDTxCeased
	PduDTxContinue
	PduDTxGranted
	PduDTxWait
	PduDTxInterrupt
	PduDCallRestore
	PduDSdsData
	PduDFacility PduType = 0b10000
	PduReserved  PduType = 0b11111
)

func (t PduType) String() string {
	switch t {
	case PduDAlert:
		return "D-ALERT"
	case PduDCallProceeding:
		return "D-CALL-PROCEEDING"
	case PduDConnect:
		return "D-CONNECT"
	case PduDConnectAck:
		return "D-CONNECT ACK"
	case PduDDisconnect:
		return "D-DISCONNECT"
	case PduDInfo:
		return "D-INFO"
	case PduDRelease:
		return "D-RELEASE"
	case PduDSetup:
		return "D-SETUP"
	case PduDStatus:
		return "D-STATUS"
	case PduDTxCeased:
		return "D-TX CEASED"
	case PduDTxContinue:
		return "D-TX CONTINUE"
	case PduDTxGranted:
		return "D-TX GRANTED"
	case PduDTxWait:
		return "D-TX WAIT"
	case PduDTxInterrupt:
		return "D-TX INTERRUPT"
	case PduDCallRestore:
		return "D-CALL RESTORE"
	case PduDSdsData:
		return "D-SDS-DATA"
	case PduDFacility:
		return "D-FACILITY"
	case PduReserved:
		return "CMCE FUNCTION NOT SUPPORTED"
	default:
		return "reserved"
	}
}

// Result tells the pipeline whether an SDS-bearing PDU (D-STATUS,
// D-SDS-DATA) must be forwarded to the SDS sub-entity instead.
type Result struct {
	ForwardToSDS bool
	SDU          bitstream.Pdu
}

// Service dispatches one CMCE PDU by its 5-bit type.
func Service(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) Result {
	pduType := PduType(p.GetValue(0, 5))

	switch pduType {
	case PduDAlert:
		parseDAlert(p, rec, t, addr)
	case PduDCallProceeding:
		parseDCallProceeding(p, rec, t, addr)
	case PduDCallRestore:
		parseDCallRestore(p, rec, t, addr)
	case PduDConnect:
		parseDConnect(p, rec, t, addr)
	case PduDConnectAck:
		parseDConnectAck(p, rec, t, addr)
	case PduDDisconnect:
		parseDDisconnect(p, rec, t, addr)
	case PduDInfo:
		parseDInfo(p, rec, t, addr)
	case PduDRelease:
		parseDRelease(p, rec, t, addr)
	case PduDSetup:
		parseDSetup(p, rec, t, addr)
	case PduDStatus, PduDSdsData:
		return Result{ForwardToSDS: true, SDU: p}
	case PduDTxCeased:
		parseDTxCeased(p, rec, t, addr)
	case PduDTxContinue:
		parseDTxContinue(p, rec, t, addr)
	case PduDTxGranted:
		parseDTxGranted(p, rec, t, addr)
	case PduDTxInterrupt:
		parseDTxInterrupt(p, rec, t, addr)
	case PduDTxWait:
		parseDTxWait(p, rec, t, addr)
	default:
		rec.Start("CMCE", pduType.String(), t, addr)
		rec.Send()
	}

	return Result{}
}

// readOptionalNotification consumes the single-bit option flag and,
// if set, the presence flag + 6-bit notification indicator element
// common to most D-* PDUs' type-2 chain, returning the new position.
func readOptionalNotification(p bitstream.Pdu, pos int, rec *event.Record) int {
	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if !oFlag {
		return pos
	}
	pFlag := p.GetValue(pos, 1) == 1
	pos++
	if pFlag {
		rec.Add("notification indicator", p.GetValue(pos, 6))
		pos += 6
	}
	return pos
}

func parseDAlert(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-ALERT", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("call timeout, setup phase", p.GetValue(pos, 3))
	pos += 3
	pos += 1 // reserved
	rec.Add("simplex/duplex operation", p.GetValue(pos, 1))
	pos += 1
	rec.Add("call queued", p.GetValue(pos, 1))
	rec.Send()
}

func parseDCallProceeding(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-CALL-PROCEEDING", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("call timeout, setup phase", p.GetValue(pos, 3))
	pos += 3
	rec.Add("hook method selection", p.GetValue(pos, 1))
	pos += 1
	rec.Add("simplex/duplex selection", p.GetValue(pos, 1))
	rec.Send()
}

func parseDCallRestore(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-CALL RESTORE", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("transmission grant", p.GetValue(pos, 2))
	pos += 2
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	rec.Add("reset call time-out timer t310", p.GetValue(pos, 1))
	pos += 1

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("new call identifier", p.GetValue(pos, 14))
			pos += 14
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("call time-out", p.GetValue(pos, 4))
			pos += 4
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("call status", p.GetValue(pos, 3))
			pos += 3
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("modify", p.GetValue(pos, 9))
			pos += 9
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("notification indicator", p.GetValue(pos, 6))
			pos += 6
		} else {
			pos++
		}
	}

	rec.Send()
}

func parseDConnect(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-CONNECT", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("call timeout", p.GetValue(pos, 4))
	pos += 4
	rec.Add("hook method selection", p.GetValue(pos, 1))
	pos += 1
	rec.Add("simplex/duplex selection", p.GetValue(pos, 1))
	pos += 1
	rec.Add("transmission grant", p.GetValue(pos, 2))
	pos += 2
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	rec.Add("call ownership", p.GetValue(pos, 1))
	pos += 1

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("call priority", p.GetValue(pos, 4))
			pos += 4
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("basic service information", p.GetValue(pos, 8))
			pos += 8
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("temporary address", p.GetValue(pos, 24))
			pos += 24
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("notification indicator", p.GetValue(pos, 6))
			pos += 6
		} else {
			pos++
		}
	}

	rec.Send()
}

func parseDConnectAck(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-CONNECT ACK", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("call timeout", p.GetValue(pos, 4))
	pos += 4
	rec.Add("transmission grant", p.GetValue(pos, 2))
	pos += 2
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	readOptionalNotification(p, pos, rec)
	rec.Send()
}

func parseDDisconnect(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-DISCONNECT", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("disconnect cause", p.GetValue(pos, 1))
	pos += 1
	readOptionalNotification(p, pos, rec)
	rec.Send()
}

func parseDInfo(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-INFO", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("reset call time-out timer (t310)", p.GetValue(pos, 1))
	pos += 1
	rec.Add("poll request", p.GetValue(pos, 1))
	pos += 1

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		type2 := []struct {
			name  string
			width int
		}{
			{"new call identifier", 14},
			{"call time-out", 4},
			{"call time-out setup phase (t301, t302)", 3},
			{"call ownership", 1},
			{"modify", 9},
			{"call status", 3},
			{"temporary address", 24},
			{"notification indicator", 6},
			{"poll response percentage", 6},
			{"poll response number", 6},
		}
		for _, f := range type2 {
			if p.GetValue(pos, 1) == 1 {
				pos++
				rec.Add(f.name, p.GetValue(pos, f.width))
				pos += f.width
			} else {
				pos++
			}
		}
	}

	rec.Send()
}

func parseDRelease(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-RELEASE", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("disconnect cause", p.GetValue(pos, 5))
	pos += 5
	readOptionalNotification(p, pos, rec)
	rec.Send()
}

func parseDSetup(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-SETUP", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("call timeout", p.GetValue(pos, 4))
	pos += 4
	rec.Add("hook method selection", p.GetValue(pos, 1))
	pos += 1
	rec.Add("simplex/duplex selection", p.GetValue(pos, 1))
	pos += 1
	rec.Add("basic service information", p.GetValue(pos, 8))
	pos += 8
	rec.Add("transmission grant", p.GetValue(pos, 2))
	pos += 2
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	rec.Add("call priority", p.GetValue(pos, 4))
	pos += 4

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("notification indicator", p.GetValue(pos, 6))
			pos += 6
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("temporary address", p.GetValue(pos, 24))
			pos += 24
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			id, consumed := decodePartyIdentifier(p, pos)
			pos += consumed
			rec.Add("calling party type identifier", id.Selector)
			rec.Add("calling party ssi", id.SSI)
			if id.HasExt {
				rec.Add("calling party ext", id.Ext)
			}
		} else {
			pos++
		}
	}

	rec.Send()
}

func parseDTxCeased(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-TX CEASED", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	readOptionalNotification(p, pos, rec)
	rec.Send()
}

func parseDTxContinue(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-TX CONTINUE", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("continue", p.GetValue(pos, 1))
	pos += 1
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	readOptionalNotification(p, pos, rec)
	rec.Send()
}

func parseDTxGranted(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-TX GRANTED", t, addr)
	parseTxGrantedCommon(p, rec)
	rec.Send()
}

func parseDTxInterrupt(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-TX INTERRUPT", t, addr)
	parseTxGrantedCommon(p, rec)
	rec.Send()
}

// parseTxGrantedCommon parses the identical field layout shared by
// D-TX-GRANTED (§14.7.1.15) and D-TX-INTERRUPT (§14.7.1.16): grant,
// permission, encryption control, a reserved bit, then optional
// notification indicator and transmitting party type identifier.
func parseTxGrantedCommon(p bitstream.Pdu, rec *event.Record) int {
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("transmission grant", p.GetValue(pos, 2))
	pos += 2
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	rec.Add("encryption control", p.GetValue(pos, 1))
	pos += 1
	pos += 1 // reserved

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		if p.GetValue(pos, 1) == 1 {
			pos++
			rec.Add("notification indicator", p.GetValue(pos, 6))
			pos += 6
		} else {
			pos++
		}
		if p.GetValue(pos, 1) == 1 {
			pos++
			id, consumed := decodePartyIdentifier(p, pos)
			pos += consumed
			rec.Add("transmission party type identifier", id.Selector)
			rec.Add("transmitting party ssi", id.SSI)
			if id.HasExt {
				rec.Add("transmitting party ext", id.Ext)
			}
		} else {
			pos++
		}
	}

	return pos
}

func parseDTxWait(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-TX WAIT", t, addr)
	pos := 5
	rec.Add("call identifier", p.GetValue(pos, 14))
	pos += 14
	rec.Add("transmission request permission", p.GetValue(pos, 1))
	pos += 1
	readOptionalNotification(p, pos, rec)
	rec.Send()
}
