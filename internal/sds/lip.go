// SPDX-License-Identifier: AGPL-3.0-or-later

// lip.go implements the Location Information Protocol (TS 100 392-18),
// a service layered over SDS user-defined type-4 data rather than a
// CMCE PDU of its own: short location reports and the extension-PDU
// message family.
package sds

import (
	"math"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
)

var directionOfTravel = [16]string{
	"0 N", "22.5 NNE", "45 NE", "67.5 ENE",
	"90 E", "112.5 ESE", "135 SE", "157.5 SSE",
	"180 S", "202.5 SSW", "225 SW", "247.5 WSW",
	"270 W", "292.5 WNW", "315 NW", "337.5 NNW",
}

var positionError = [8]string{
	"< 2 m", "< 20 m", "< 200 m", "< 2 km", "< 20 km", "<= 200 km", "> 200 km", "unknown",
}

// lipMessageSelector names the extension-PDU message type (§6.3.62,
// table 6.92); most values are reserved for future LIP services this
// receiver does not decode further.
var lipMessageSelector = map[uint64]string{
	0b0000: "reserved",
	0b0001: "immediate location report request",
	0b0010: "reserved",
	0b0011: "long location report",
	0b0100: "location report ack",
	0b0101: "basic location parameters request/response",
	0b0110: "add/modify trigger request/response",
	0b0111: "remove trigger request/response",
	0b1000: "report trigger request/response",
	0b1001: "report basic location parameters request/response",
	0b1010: "location reporting enable/disable request/response",
	0b1011: "location reporting temporary control request/response",
	0b1100: "backlog request/response",
	0b1101: "reserved",
	0b1110: "reserved",
	0b1111: "reserved",
}

// serviceLip dispatches a LIP SDU (the SDS protocol-identifier byte
// already stripped) by its 2-bit PDU type (§6.2).
func serviceLip(p bitstream.Pdu, rec *event.Record) {
	pduType := p.GetValue(0, 2)

	switch pduType {
	case 0b00:
		rec.Add("sds-lip", "short location report")
		parseShortLocationReport(p, rec)
	case 0b01:
		rec.Add("sds-lip", "extension pdu")
		parseExtendedMessage(p, rec)
	}
}

// parseShortLocationReport decodes the short location report PDU
// (§6.2.1): a minimum of 68 bits carrying longitude/latitude, position
// error, horizontal velocity, direction of travel and one 8-bit
// additional-data element gated by a type flag.
func parseShortLocationReport(p bitstream.Pdu, rec *event.Record) {
	const minSizeBits = 68
	if p.Size() < minSizeBits {
		rec.Add("invalid pdu size", p.Size())
		rec.Add("pdu minimum size", minSizeBits)
		return
	}

	pos := 2 // pdu type
	pos += 2 // time elapsed

	longitude := p.GetValue(pos, 25)
	pos += 25
	rec.Add("longitude uint32", longitude)
	rec.Add("longitude", decodeTwosComplement(longitude, 25, 180.0))

	latitude := p.GetValue(pos, 24)
	pos += 24
	rec.Add("latitude uint32", latitude)
	rec.Add("latitude", decodeTwosComplement(latitude, 24, 90.0))

	posErr := p.GetValue(pos, 3)
	pos += 3
	rec.Add("position error", positionError[posErr])

	horizontalVelocity := p.GetValue(pos, 7)
	pos += 7
	rec.Add("horizontal_velocity uint8", horizontalVelocity)
	rec.Add("horizontal_velocity", decodeHorizontalVelocity(horizontalVelocity))

	direction := p.GetValue(pos, 4)
	pos += 4
	rec.Add("direction of travel", directionOfTravel[direction])

	typeOfAdditionalData := p.GetValue(pos, 1)
	pos += 1
	additionalData := p.GetValue(pos, 8)
	pos += 8

	if typeOfAdditionalData == 0 {
		rec.Add("reason for sending", additionalData)
	} else {
		rec.Add("user-defined additional data", additionalData)
	}
}

// parseExtendedMessage decodes the LIP extension-PDU header (§6.3.62):
// only the message selector is reported, since the individual request
// and response bodies are not exercised by a passive downlink-only
// receiver.
func parseExtendedMessage(p bitstream.Pdu, rec *event.Record) {
	pos := 2 // pdu type
	extension := p.GetValue(pos, 4)

	name, ok := lipMessageSelector[extension]
	if !ok {
		name = "reserved"
	}
	rec.Add("extension", name)
}

// decodeTwosComplement decodes a two's-complement fixed-point value
// scaled to ±mult over the field's full range, shared by LIP
// latitude (§6.3.30) and longitude (§6.3.50).
func decodeTwosComplement(value uint64, nBits int, mult float64) float64 {
	half := uint64(1) << uint(nBits-1)
	mask := (uint64(1) << uint(nBits)) - 1

	if value&half != 0 {
		magnitude := ((^value) + 1) & mask
		return float64(magnitude) * (-mult) / float64(half)
	}
	return float64(value) * mult / float64(half)
}

// decodeHorizontalVelocity decodes the exponential velocity coding of
// §6.3.17; 127 is the reserved "unknown" value.
func decodeHorizontalVelocity(val uint64) float64 {
	if val == 127 {
		return -1.0
	}
	const c, x, a, b = 16.0, 0.038, 13.0, 0.0
	return c*math.Pow(1.0+x, a-float64(val)) + b
}
