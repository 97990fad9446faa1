// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sds implements the Short Data Service sub-entity (C9):
// D-STATUS and D-SDS-DATA, the short-data type-identifier dispatch,
// user-defined type-4 protocol identification, the SDS-TL message
// family (SDS-TRANSFER/REPORT/ACK), and the text and LIP protocols
// those carry.
package sds

import (
	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

// PduType is the 5-bit CMCE discriminator value as seen from the SDS
// sub-entity (only D-STATUS and D-SDS-DATA are ever forwarded here).
type PduType int

const (
	PduDStatus  PduType = 0b01000
	PduDSdsData PduType = 0b01111
)

// Service dispatches a PDU the CMCE layer forwarded because its type
// belongs to the SDS sub-entity.
func Service(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	pduType := PduType(p.GetValue(0, 5))
	body := p.Slice(5, 0)

	switch pduType {
	case PduDStatus:
		parseDStatus(body, rec, t, addr)
	case PduDSdsData:
		parseDSdsData(body, rec, t, addr)
	}
}

func parseCallingPartyIdentifier(p bitstream.Pdu, pos int, rec *event.Record) (int, bool) {
	cpti := p.GetValue(pos, 2)
	pos += 2
	rec.Add("calling party type identifier", cpti)

	switch cpti {
	case 0:
		rec.Add("calling party ssi", p.GetValue(pos, 8))
		pos += 8
		return pos, true
	case 1:
		rec.Add("calling party ssi", p.GetValue(pos, 24))
		pos += 24
		return pos, true
	case 2:
		rec.Add("calling party ssi", p.GetValue(pos, 24))
		pos += 24
		rec.Add("calling party ext", p.GetValue(pos, 24))
		pos += 24
		return pos, true
	default:
		return pos, false
	}
}

// parseDStatus decodes D-STATUS (§14.7.1.11): an optional calling
// party identifier, the 16-bit pre-coded status, and an optional
// external subscriber number carried as a type-3 digit block.
func parseDStatus(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-STATUS", t, addr)

	pos := 0
	cpti := p.GetValue(pos, 2)
	pos += 2
	rec.Add("calling party type identifier", cpti)

	switch cpti {
	case 0:
		rec.Add("calling party ssi", p.GetValue(pos, 8))
		pos += 8
	case 1:
		rec.Add("calling party ssi", p.GetValue(pos, 24))
		pos += 24
	case 2:
		rec.Add("calling party ssi", p.GetValue(pos, 24))
		pos += 24
		rec.Add("calling party ext", p.GetValue(pos, 24))
		pos += 24
	}

	rec.Add("pre-coded status", p.GetValue(pos, 16))
	pos += 16

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		digitsCount := int(p.GetValue(pos, 8))
		pos += 8
		number, next := decodeExternalNumber(p, pos, digitsCount)
		pos = next
		rec.Add("external suscriber number", number)
	}

	rec.Send()
}

// parseDSdsData decodes D-SDS-DATA (§14.7.1.10): a calling party
// identifier, the 2-bit short data type identifier, and the type-1/2/3
// fixed-length payloads or the type-4 length-prefixed payload, which
// is handed to parseType4Data and additionally dumped as a second hex
// event matching the original decoder's two-report behavior.
func parseDSdsData(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("CMCE", "D-SDS-DATA", t, addr)

	pos, ok := parseCallingPartyIdentifier(p, 0, rec)
	if !ok {
		rec.Send()
		return
	}

	sdti := p.GetValue(pos, 2)
	pos += 2
	rec.Add("sds type identifier", sdti)

	var sdu bitstream.Pdu
	switch sdti {
	case 0:
		sdu = p.Slice(pos, 16)
		pos += 16
		rec.Add("infos", sdu.Hex())
	case 1:
		sdu = p.Slice(pos, 32)
		pos += 32
		rec.Add("infos", sdu.Hex())
	case 2:
		sdu = p.Slice(pos, 64)
		pos += 64
		rec.Add("infos", sdu.Hex())
	case 3:
		length := int(p.GetValue(pos, 11))
		pos += 11
		sdu = p.Slice(pos, length)
		pos += length
		parseType4Data(sdu, length, rec)
	}

	rec.Send()

	if sdti == 3 {
		rec.Start("CMCE", "D-SDS-DATA", t, addr)
		rec.Add("hex", sdu.Hex())
		rec.Send()
	}
}

// protocolName maps the non-SDS-TL protocol identifier range
// (0x00-0x7F) to its named protocol (§29.5, Annex J.1, table 29.21).
var protocolName = map[uint64]string{
	0b00000000: "reserved",
	0b00000001: "OTAK",
	0b00000010: "simple text messaging",
	0b00000011: "simple location system",
	0b00000100: "wireless datagram protocol",
	0b00000101: "wireless control message protocol",
	0b00000110: "M-DMO",
	0b00000111: "pin authentification",
	0b00001000: "end-to-end encrypted message",
	0b00001001: "simple immediate text messaging",
	0b00001010: "location information protocol",
	0b00001011: "net assist protocol",
	0b00001100: "concatenated sds message",
	0b00001101: "DOTAM",
}

// sdsTlProtocolName maps the SDS-TL sub-protocol identifiers it names
// (0x82-0x8C, table 29.21) to their protocols.
var sdsTlProtocolName = map[uint64]string{
	0b10000010: "text messaging (SDS-TL)",
	0b10000011: "location system (SDS-TL)",
	0b10000100: "WAP (SDS-TL)",
	0b10000101: "WCMP (SDS-TL)",
	0b10000110: "M-DMO (SDS-TL)",
	0b10001000: "end-to-end encrypted message (SDS-TL)",
	0b10001001: "immediate text messaging (SDS-TL)",
	0b10001010: "message with user-data header",
	0b10001100: "concatenated sds message (SDS-TL)",
}

// parseType4Data decodes user-defined type-4 data (§29.4, 29.5, Annex
// E/I/J): the leading protocol identifier selects either a
// non-SDS-TL protocol (simple text, simple location, LIP, ...) or,
// for identifiers >= 0x80, the SDS-TL message-type sub-dispatch.
func parseType4Data(p bitstream.Pdu, lengthBits int, rec *event.Record) {
	if p.Size() < lengthBits || lengthBits > 2047 {
		rec.Add("type4", "invalid pdu")
		rec.Add("type4 declared len", lengthBits)
		rec.Add("type4 actual len", p.Size())
		return
	}

	pos := 0
	protocolID := p.GetValue(pos, 8)
	pos += 8
	rec.Add("protocol id", protocolID)

	if protocolID <= 0b01111111 {
		name, ok := protocolName[protocolID]
		switch {
		case protocolID == 0b00001010: // location information protocol
			rec.Add("protocol info", name)
			serviceLip(p.Slice(pos, lengthBits-pos), rec)
		case protocolID == 0b00000010, protocolID == 0b00001001: // (immediate) simple text messaging
			rec.Add("protocol info", name)
			parseSimpleTextMessaging(p, lengthBits, rec)
		case protocolID == 0b00000011: // simple location system
			rec.Add("protocol info", name)
			parseSimpleLocationSystem(p, lengthBits, rec)
		case ok:
			rec.Add("protocol info", name)
		case protocolID <= 0b00111111: // 0x0E-0x3F
			rec.Add("protocol info", "reserved for future standard definition")
		default: // 0x40-0x7F
			rec.Add("protocol info", "available for user application definition")
		}
		return
	}

	messageType := p.GetValue(pos, 4)
	pos += 4
	rec.Add("message type", messageType)

	switch messageType {
	case 0b0000:
		rec.Add("sds-pdu", "SDS-TRANSFER")
		parseSubDTransfer(p, lengthBits, rec)
	case 0b0001:
		rec.Add("sds-pdu", "SDS-REPORT")
	case 0b0010:
		rec.Add("sds-pdu", "SDS-ACK")
	default:
		if messageType <= 0b0111 {
			rec.Add("sds-pdu", "reserved for additional message types")
		} else {
			rec.Add("protocol info", "defined by application")
		}
	}
}

// parseSubDTransfer decodes the SDS-TRANSFER sub-protocol (§29.4.2.4):
// an optional forward address (gated by a service-forward-control
// flag) followed by the protocol-specific text or location payload.
func parseSubDTransfer(p bitstream.Pdu, lengthBits int, rec *event.Record) {
	pos := 0
	protocolID := p.GetValue(pos, 8)
	pos += 8
	pos += 4 // message type
	pos += 2 // delivery report request
	pos += 1 // service selection / short form report

	serviceForwardControl := p.GetValue(pos, 1) == 1
	pos++

	rec.Add("message reference", p.GetValue(pos, 8))
	pos += 8

	if serviceForwardControl {
		rec.Add("validity period", p.GetValue(pos, 5))
		pos += 5

		forwardAddressType := p.GetValue(pos, 3)
		pos += 3
		rec.Add("forward address type", forwardAddressType)

		switch forwardAddressType {
		case 0b000:
			rec.Add("forward address ssi", p.GetValue(pos, 8))
			pos += 8
		case 0b001:
			rec.Add("forward address ssi", p.GetValue(pos, 24))
			pos += 24
		case 0b010:
			rec.Add("forward address ssi", p.GetValue(pos, 24))
			pos += 24
			rec.Add("forward address ext", p.GetValue(pos, 24))
			pos += 24
		case 0b011:
			digitsCount := int(p.GetValue(pos, 8))
			pos += 8
			number, next := decodeExternalNumber(p, pos, digitsCount)
			pos = next
			rec.Add("forward address external number", number)
		case 0b111:
			rec.Add("forward address", "none")
		}
	}

	sdu := p.Slice(pos, lengthBits-pos)

	switch protocolID {
	case 0b10000010, 0b10001001:
		rec.Add("protocol info", sdsTlProtocolName[protocolID])
		parseTextMessagingWithSdsTl(sdu, rec)
	case 0b10000011:
		rec.Add("protocol info", sdsTlProtocolName[protocolID])
		parseLocationSystemWithSdsTl(sdu, rec)
	case 0b10000100, 0b10000101, 0b10000110, 0b10001000, 0b10001010, 0b10001100:
		rec.Add("protocol info", sdsTlProtocolName[protocolID])
		rec.Add("infos", sdu.Hex())
	default:
		rec.Add("protocol info", "reserved/user-defined")
		parseTextMessagingWithSdsTl(sdu, rec)
	}
}

// parseSimpleTextMessaging decodes simple (immediate) text messaging
// (§29.5.2): a fill/timestamp-present bit, a 7-bit coding scheme, an
// optional 24-bit timestamp, and the text body in the selected coding.
func parseSimpleTextMessaging(p bitstream.Pdu, lengthBits int, rec *event.Record) {
	pos := 8 // protocol id
	timestampUsed := p.GetValue(pos, 1) == 1
	pos++
	textCodingScheme := p.GetValue(pos, 7)
	pos += 7
	rec.Add("text coding scheme", textCodingScheme)

	if timestampUsed {
		rec.Add("timestamp", p.GetValue(pos, 24))
		pos += 24
	}

	sduLengthBits := lengthBits - pos
	sdu := p.Slice(pos, sduLengthBits)
	rec.Add("infos", decodeText(sdu, textCodingScheme, sduLengthBits))
}

// parseTextMessagingWithSdsTl decodes text messaging carried under
// SDS-TL (§29.5.3): identical field layout to simple text messaging
// but relative to the sub-PDU's own start.
func parseTextMessagingWithSdsTl(p bitstream.Pdu, rec *event.Record) {
	length := p.Size()
	pos := 0
	timestampFlag := p.GetValue(pos, 1) == 1
	pos++
	textCodingScheme := p.GetValue(pos, 7)
	pos += 7
	rec.Add("text coding scheme", textCodingScheme)

	if timestampFlag {
		rec.Add("timestamp", p.GetValue(pos, 24))
		pos += 24
	}

	sduLengthBits := length - pos
	sdu := p.Slice(pos, sduLengthBits)
	rec.Add("infos", decodeText(sdu, textCodingScheme, sduLengthBits))
}

// parseSimpleLocationSystem decodes the simple location system
// protocol (§29.5.5): an 8-bit location-coding-system selector
// followed by the NMEA or proprietary payload.
func parseSimpleLocationSystem(p bitstream.Pdu, lengthBits int, rec *event.Record) {
	pos := 8 // protocol id
	locationSystemCoding := p.GetValue(pos, 8)
	pos += 8
	rec.Add("location coding system", locationSystemCoding)

	sduLengthBits := lengthBits - pos
	sdu := p.Slice(pos, sduLengthBits)

	if locationSystemCoding == 0b00000000 {
		rec.Add("infos", sdu.LocationNmea(sduLengthBits))
		return
	}
	rec.Add("infos", sdu.Hex())
}

// parseLocationSystemWithSdsTl decodes the location system protocol
// carried under SDS-TL (§29.5.6), relative to the sub-PDU's own
// start.
func parseLocationSystemWithSdsTl(p bitstream.Pdu, rec *event.Record) {
	length := p.Size()
	pos := 0
	locationSystemCoding := p.GetValue(pos, 8)
	pos += 8
	rec.Add("location coding system", locationSystemCoding)

	sduLengthBits := length - pos
	sdu := p.Slice(pos, sduLengthBits)

	if locationSystemCoding == 0b00000000 {
		rec.Add("infos", sdu.LocationNmea(sduLengthBits))
		return
	}
	rec.Add("infos", sdu.Hex())
}
