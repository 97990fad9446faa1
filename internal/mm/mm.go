// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mm implements the Mobility Management sub-entity (C10):
// OTAR key management, authentication, cipher-key change, group
// attach/detach, location update, and D-MM-STATUS, built on the
// shared type 3/4 element walker in elements.go.
package mm

import (
	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

// PduType is the 4-bit MM downlink PDU type (table 16.3).
type PduType int

const (
	PduDOtar PduType = iota
	PduDAuthentication
	PduDCkChangeDemand
	PduDDisable
	PduDEnable
	PduDLocationUpdateAccept
	PduDLocationUpdateCommand
	PduDLocationUpdateReject
	PduDLocationUpdateProceeding
	PduDAttachDetachGroupIdentity
	PduDAttachDetachGroupIdentityAck
	PduMmReserved11
	PduMmReserved12
	PduMmReserved13
	PduDMmStatus
	PduMmPduNotSupported
)

func (t PduType) String() string {
	switch t {
	case PduDOtar:
		return "D-OTAR"
	case PduDAuthentication:
		return "D-AUTHENTICATION"
	case PduDCkChangeDemand:
		return "D-CK-CHANGE-DEMAND"
	case PduDDisable:
		return "D-DISABLE"
	case PduDEnable:
		return "D-ENABLE"
	case PduDLocationUpdateAccept:
		return "D-LOCATION-UPDATE-ACCEPT"
	case PduDLocationUpdateCommand:
		return "D-LOCATION-UPDATE-COMMAND"
	case PduDLocationUpdateReject:
		return "D-LOCATION-UPDATE-REJECT"
	case PduDLocationUpdateProceeding:
		return "D-LOCATION-UPDATE-PROCEEDING"
	case PduDAttachDetachGroupIdentity:
		return "D-ATTACH/DETACH-GROUP-IDENTITY"
	case PduDAttachDetachGroupIdentityAck:
		return "D-ATTACH/DETACH-GROUP-IDENTITY-ACK"
	case PduDMmStatus:
		return "D-MM-STATUS"
	case PduMmPduNotSupported:
		return "MM PDU/FUNCTION NOT SUPPORTED"
	default:
		return "reserved"
	}
}

// Service dispatches an MM PDU by its 4-bit type (16.9).
func Service(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	pduType := PduType(p.GetValue(0, 4))

	switch pduType {
	case PduDOtar:
		parseDOtar(p, rec, t, addr)
	case PduDAuthentication:
		parseDAuthentication(p, rec, t, addr)
	case PduDCkChangeDemand:
		parseDCkChangeDemand(p, rec, t, addr)
	case PduDDisable:
		parseDDisable(p, rec, t, addr)
	case PduDEnable:
		parseDEnable(p, rec, t, addr)
	case PduDLocationUpdateAccept:
		parseDLocationUpdateAccept(p, rec, t, addr)
	case PduDLocationUpdateCommand:
		parseDLocationUpdateCommand(p, rec, t, addr)
	case PduDLocationUpdateReject:
		parseDLocationUpdateReject(p, rec, t, addr)
	case PduDLocationUpdateProceeding:
		parseDLocationUpdateProceeding(p, rec, t, addr)
	case PduDAttachDetachGroupIdentity:
		parseDAttachDetachGroupIdentity(p, rec, t, addr)
	case PduDAttachDetachGroupIdentityAck:
		parseDAttachDetachGroupIdentityAck(p, rec, t, addr)
	case PduDMmStatus:
		parseDMmStatus(p, rec, t, addr)
	default:
		rec.Start("MM", pduType.String(), t, addr)
		rec.Send()
	}
}

// otarSubtypeName names the D-OTAR sub-type byte (table A.85, downlink
// only).
var otarSubtypeName = map[uint64]string{
	0b0000: "D-OTAR CCK Provide",
	0b0001: "D-OTAR CCK Reject",
	0b0010: "D-OTAR SCK Provide",
	0b0011: "D-OTAR SCK Reject",
	0b0100: "D-OTAR GCK Provide",
	0b0101: "D-OTAR GCK Reject",
	0b0110: "D-OTAR KEY ASSOCIATE demand",
	0b0111: "D-OTAR NEWCELL",
	0b1000: "D-OTAR GSKO Provide",
	0b1001: "D-OTAR GSKO Reject",
	0b1010: "D-OTAR KEY DELETE demand",
	0b1011: "D-OTAR KEY STATUS demand",
	0b1100: "D-OTAR CMG GTSI PROVIDE",
	0b1101: "D-DM-SCK ACTIVATE DEMAND",
}

// parseDOtar dispatches on the 4-bit OTAR sub-type (A.8.58); sub-type
// 0b0001 (D-OTAR CCK Reject) has no published field layout and is
// reported by name only.
func parseDOtar(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	pos := 4
	subType := p.GetValue(pos, 4)
	pos += 4

	switch subType {
	case 0b0000:
		parseDOtarCckProvide(p, pos, rec, t, addr)
	case 0b0010:
		parseDOtarSckProvide(p, pos, rec, t, addr)
	case 0b0011:
		parseDOtarSckReject(p, pos, rec, t, addr)
	case 0b0100:
		parseDOtarGckProvide(p, pos, rec, t, addr)
	case 0b0101:
		parseDOtarGckReject(p, pos, rec, t, addr)
	case 0b0110:
		parseDOtarKeyAssociateDemand(p, pos, rec, t, addr)
	case 0b0111:
		parseDOtarNewcell(p, pos, rec, t, addr)
	case 0b1000:
		parseDOtarGskoProvide(p, pos, rec, t, addr)
	case 0b1001:
		parseDOtarGskoReject(p, pos, rec, t, addr)
	case 0b1010:
		parseDOtarKeyDeleteDemand(p, pos, rec, t, addr)
	case 0b1011:
		parseDOtarKeyStatusDemand(p, pos, rec, t, addr)
	case 0b1100:
		parseDOtarCmgGtsiProvide(p, pos, rec, t, addr)
	case 0b1101:
		parseDOtarDmSckActivate(p, pos, rec, t, addr)
	default:
		name, ok := otarSubtypeName[subType]
		if !ok {
			name = "reserved"
		}
		rec.Start("MM", name, t, addr)
		rec.Send()
	}
}

func addressExtensionOptional(p bitstream.Pdu, pos int, rec *event.Record) int {
	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pFlag := p.GetValue(pos, 1) == 1
		pos++
		if pFlag {
			pos = parseAddressExtension(p, pos, rec)
		}
	}
	return pos
}

func parseDOtarCckProvide(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR CCK Provide", t, addr)

	cckProvisionFlag := p.GetValue(pos, 1) == 1
	rec.Add("cck provision flag", cckProvisionFlag)
	pos++

	if cckProvisionFlag {
		pos = parseCckInformation(p, pos, rec)
	}

	rec.Send()
}

func parseDOtarSckProvide(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR SCK Provide", t, addr)

	acknowledgementFlag := p.GetValue(pos, 1) == 1
	rec.Add("acknowledgement flag", acknowledgementFlag)
	pos++

	if acknowledgementFlag {
		rec.Add("explicit response", p.GetValue(pos, 1))
	}
	pos++

	rec.Add("max response timer value", p.GetValue(pos, 16))
	pos += 16

	sessionKey := p.GetValue(pos, 1) == 1
	rec.Add("session key", sessionKey)
	pos++

	if sessionKey {
		rec.Add("gsko-vn", p.GetValue(pos, 16))
		pos += 16
	} else {
		rec.Add("random seed for otar", p.GetValue(pos, 80))
		pos += 80
	}

	numberOfScks := p.GetValue(pos, 3)
	rec.Add("number of scks provided", numberOfScks)
	pos += 3

	for i := uint64(0); i < numberOfScks; i++ {
		rec.Add("sck key and identifier", p.GetValue(pos, 143))
		pos += 143
	}

	rec.Add("ksg number", p.GetValue(pos, 4))
	pos += 4
	rec.Add("otar retry interval", p.GetValue(pos, 3))
	pos += 3

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarSckReject(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR SCK Reject", t, addr)

	numberOfScksRejected := p.GetValue(pos, 3)
	rec.Add("number of scks rejected", numberOfScksRejected)
	pos += 3

	for i := uint64(0); i < numberOfScksRejected; i++ {
		rec.Add("sck rejected", p.GetValue(pos, 8))
		pos += 8
	}

	rec.Add("otar retry interval", p.GetValue(pos, 3))
	pos += 3

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarGckProvide(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR GCK Provide", t, addr)

	acknowledgementFlag := p.GetValue(pos, 1) == 1
	pos++

	if acknowledgementFlag {
		rec.Add("explicit response", p.GetValue(pos, 1))
	}
	pos++

	rec.Add("max response timer value", p.GetValue(pos, 16))
	pos += 16

	sessionKey := p.GetValue(pos, 1) == 1
	rec.Add("session key", sessionKey)
	pos++

	if sessionKey {
		rec.Add("gsko-vn", p.GetValue(pos, 16))
		pos += 16
	} else {
		rec.Add("random seed for otar", p.GetValue(pos, 80))
		pos += 80
	}

	numberOfGcks := p.GetValue(pos, 3)
	rec.Add("number of gcks provided", numberOfGcks)
	pos += 3

	for i := uint64(0); i < numberOfGcks; i++ {
		rec.Add("gck key and identifier", p.GetValue(pos, 152))
		pos += 152
	}

	rec.Add("ksg number", p.GetValue(pos, 4))
	pos += 4

	groupAssociation := p.GetValue(pos, 1) == 1
	rec.Add("group association", groupAssociation)
	pos++

	if groupAssociation {
		rec.Add("gssi", p.GetValue(pos, 24))
		pos += 24
	}

	rec.Add("otar retry interval", p.GetValue(pos, 3))
	pos += 3

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarGckReject(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR GCK Reject", t, addr)

	numberOfGcksRejected := p.GetValue(pos, 3)
	rec.Add("number of gcks rejected", numberOfGcksRejected)
	pos += 3

	for i := uint64(0); i < numberOfGcksRejected; i++ {
		pos = parseGckRejected(p, pos, rec)
	}

	rec.Add("otar retry interval", p.GetValue(pos, 3))
	pos += 3

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarKeyAssociateDemand(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR KEY ASSOCIATE demand", t, addr)

	acknowledgementFlag := p.GetValue(pos, 1) == 1
	pos++

	if acknowledgementFlag {
		rec.Add("explicit response", p.GetValue(pos, 1))
	}
	pos++

	rec.Add("max response timer value", p.GetValue(pos, 16))
	pos += 16

	keyAssociationType := p.GetValue(pos, 1) == 1
	rec.Add("key association type", keyAssociationType)
	pos++

	if keyAssociationType {
		rec.Add("gck select number", p.GetValue(pos, 17))
		pos += 17
	} else {
		rec.Add("sck select number", p.GetValue(pos, 6))
		pos += 6
		rec.Add("sck subset grouping type", p.GetValue(pos, 4))
		pos += 4
	}

	numberOfGroups := p.GetValue(pos, 5)
	rec.Add("number of groups", numberOfGroups)
	pos += 5

	for i := uint64(0); i < numberOfGroups; i++ {
		rec.Add("gssi", p.GetValue(pos, 24))
		pos += 24
	}

	rec.Send()
}

func parseDOtarNewcell(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR NEWCELL", t, addr)

	rec.Add("dck forwarding result", p.GetValue(pos, 1))
	pos++

	cckProvisionFlag := p.GetValue(pos, 1) == 1
	pos++
	if cckProvisionFlag {
		pos = parseCckInformation(p, pos, rec)
	}

	mBit := p.GetValue(pos, 1) == 1
	if mBit {
		pos = parseType34Elements(p, pos, rec)
	}

	rec.Send()
}

func parseDOtarGskoProvide(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR GSKO Provide", t, addr)

	rec.Add("random seed for otar", p.GetValue(pos, 80))
	pos += 80
	rec.Add("gsko-vn", p.GetValue(pos, 16))
	pos += 16
	rec.Add("sealed gsko", p.GetValue(pos, 120))
	pos += 120
	rec.Add("gssi", p.GetValue(pos, 24))
	pos += 24

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarGskoReject(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR GSKO Reject", t, addr)

	rec.Add("otar reject reason", p.GetValue(pos, 3))
	pos += 3
	rec.Add("gssi", p.GetValue(pos, 24))
	pos += 24
	rec.Add("otar retry interval", p.GetValue(pos, 3))
	pos += 3

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarKeyDeleteDemand(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR KEY DELETE demand", t, addr)

	keyDeleteType := p.GetValue(pos, 3)
	rec.Add("key delete type", keyDeleteType)
	pos += 3

	switch keyDeleteType {
	case 0, 1:
		count := p.GetValue(pos, 5)
		rec.Add("number of scks deleted", count)
		pos += 5
		for i := uint64(0); i < count; i++ {
			rec.Add("sckn", p.GetValue(pos, 5))
			pos += 5
		}
	case 2:
		rec.Add("sck subset grouping type", p.GetValue(pos, 4))
		pos += 4
		rec.Add("sck subset number", p.GetValue(pos, 5))
		pos += 5
	case 3:
		count := p.GetValue(pos, 4)
		rec.Add("number of gcks deleted", count)
		pos += 4
		for i := uint64(0); i < count; i++ {
			rec.Add("gckn", p.GetValue(pos, 16))
			pos += 16
		}
	}

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarKeyStatusDemand(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR KEY STATUS demand", t, addr)

	acknowledgementFlag := p.GetValue(pos, 1) == 1
	pos++
	if acknowledgementFlag {
		rec.Add("explicit response", p.GetValue(pos, 1))
	}
	pos++

	rec.Add("max response timer value", p.GetValue(pos, 16))
	pos += 16

	keyStatusType := p.GetValue(pos, 3)
	rec.Add("key status type", keyStatusType)
	pos += 3

	switch keyStatusType {
	case 0:
		rec.Add("sckn", p.GetValue(pos, 5))
		pos += 5
	case 1:
		rec.Add("sck subset grouping type", p.GetValue(pos, 4))
		pos += 4
		rec.Add("sck subset number", p.GetValue(pos, 5))
		pos += 5
	case 3:
		rec.Add("gckn", p.GetValue(pos, 16))
		pos += 16
	}

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarCmgGtsiProvide(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-OTAR CMG GTSI PROVIDE", t, addr)

	rec.Add("gssi", p.GetValue(pos, 24))
	pos += 24

	pos = addressExtensionOptional(p, pos, rec)

	rec.Send()
}

func parseDOtarDmSckActivate(p bitstream.Pdu, pos int, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-DM-SCK ACTIVATE DEMAND", t, addr)

	rec.Add("acknowledgement flag", p.GetValue(pos, 1))
	pos++

	numberOfScksChanged := p.GetValue(pos, 4)
	rec.Add("number of scks changed", numberOfScksChanged)
	pos += 4

	if numberOfScksChanged == 0 {
		rec.Add("sck subset grouping type", p.GetValue(pos, 4))
		pos += 4
		rec.Add("sck subset number", p.GetValue(pos, 5))
		pos += 5
		rec.Add("sck-vn", p.GetValue(pos, 16))
		pos += 16
	} else {
		for i := uint64(0); i < numberOfScksChanged; i++ {
			rec.Add("sck number", p.GetValue(pos, 5))
			pos += 5
			rec.Add("sck version number", p.GetValue(pos, 16))
			pos += 16
		}
	}

	timeType := p.GetValue(pos, 2)
	rec.Add("time type", timeType)
	pos += 2

	switch timeType {
	case 0:
		rec.Add("slot number", p.GetValue(pos, 2))
		pos += 2
		rec.Add("frame number", p.GetValue(pos, 5))
		pos += 5
		rec.Add("multiframe number", p.GetValue(pos, 6))
		pos += 6
		rec.Add("hyperframe number", p.GetValue(pos, 16))
		pos += 16
	case 1:
		rec.Add("network time", p.GetValue(pos, 48))
		pos += 48
	}

	pos = parseAddressExtension(p, pos, rec)

	rec.Send()
}

// parseDAuthentication dispatches on the 2-bit authentication
// sub-type (A.8.6).
func parseDAuthentication(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	subType := p.GetValue(4, 2)

	switch subType {
	case 0b00:
		parseDAuthenticationDemand(p, rec, t, addr)
	case 0b01:
		parseDAuthenticationResponse(p, rec, t, addr)
	case 0b10:
		parseDAuthenticationResult(p, rec, t, addr)
	case 0b11:
		parseDAuthenticationReject(p, rec, t, addr)
	}
}

func parseDAuthenticationDemand(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-AUTHENTICATION DEMAND", t, addr)

	pos := 6
	rec.Add("random challenge", p.GetValue(pos, 80))
	pos += 80
	rec.Add("random seed", p.GetValue(pos, 80))
	pos += 80

	rec.Send()
}

func parseDAuthenticationResponse(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-AUTHENTICATION RESPONSE", t, addr)

	pos := 6
	rec.Add("random seed", p.GetValue(pos, 80))
	pos += 80
	rec.Add("response value", p.GetValue(pos, 32))
	pos += 32

	authFlag := p.GetValue(pos, 1) == 1
	pos++
	if authFlag {
		rec.Add("random challenge", p.GetValue(pos, 80))
		pos += 80
	}

	rec.Send()
}

func parseDAuthenticationResult(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-AUTHENTICATION RESULT", t, addr)

	pos := 6
	rec.Add("authentication successful", p.GetValue(pos, 1) == 1)
	pos++

	authFlag := p.GetValue(pos, 1) == 1
	pos++
	if authFlag {
		rec.Add("response value", p.GetValue(pos, 32))
		pos += 32
	}

	rec.Send()
}

func parseDAuthenticationReject(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-AUTHENTICATION REJECT", t, addr)

	pos := 6
	authRejectReason := p.GetValue(pos, 3)
	pos += 3

	if authRejectReason == 0 {
		rec.Add("authentication reject reason", "authentication not supported")
	} else {
		rec.Add("authentication reject reason", authRejectReason)
	}

	rec.Send()
}

// parseDMmStatus decodes D-MM STATUS (16.9.2.5): a 6-bit status
// downlink code dispatching to the energy-saving/dual-watch/frequency
// band/distance-reporting sub-messages (16.10.48).
func parseDMmStatus(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	pos := 4
	statusDownlink := p.GetValue(pos, 6)

	switch statusDownlink {
	case 0b000001:
		rec.Start("MM", "D-CHANGE OF ENERGY SAVING MODE REQUEST", t, addr)
		pos += 6
		rec.Add("status downlink", statusDownlink)
		pos = parseEnergySavingInformation(p, pos, rec)
		rec.Send()
	case 0b000010:
		rec.Start("MM", "D-CHANGE OF ENERGY SAVING MODE RESPONSE", t, addr)
		pos += 6
		rec.Add("status downlink", statusDownlink)
		pos = parseEnergySavingInformation(p, pos, rec)
		rec.Send()
	case 0b000011:
		rec.Start("MM", "D-DUAL WATCH MODE RESPONSE", t, addr)
		pos += 6
		rec.Add("status downlink", statusDownlink)
		pos = parseEnergySavingInformation(p, pos, rec)
		rec.Add("result of dual watch request", p.GetValue(pos, 3))
		pos += 3
		pos += 8 // reserved
		oBit := p.GetValue(pos, 1) == 1
		pos++
		if oBit {
			pBit := p.GetValue(pos, 1) == 1
			pos++
			if pBit {
				pos = parseScchInformationAndDistribution(p, pos, rec)
			}
		}
		rec.Send()
	case 0b000100:
		rec.Start("MM", "D-TERMINATING DUAL WATCH MODE RESPONSE", t, addr)
		pos += 6
		rec.Add("status downlink", statusDownlink)
		pos += 8 // reserved
		oBit := p.GetValue(pos, 1) == 1
		pos++
		if oBit {
			pBit := p.GetValue(pos, 1) == 1
			pos++
			if pBit {
				pos = parseEnergySavingInformation(p, pos, rec)
			}
			pBit = p.GetValue(pos, 1) == 1
			pos++
			if pBit {
				pos = parseScchInformationAndDistribution(p, pos, rec)
			}
		}
		rec.Send()
	case 0b000101:
		rec.Start("MM", "D-CHANGE OF DUAL WATCH MODE REQUEST", t, addr)
		pos += 6
		rec.Add("status downlink", statusDownlink)
		pos = parseEnergySavingInformation(p, pos, rec)
		rec.Add("reason for dual watch change by swmi", p.GetValue(pos, 3))
		pos += 3
		pos += 8 // reserved
		oBit := p.GetValue(pos, 1) == 1
		pos++
		if oBit {
			pBit := p.GetValue(pos, 1) == 1
			pos++
			if pBit {
				pos = parseScchInformationAndDistribution(p, pos, rec)
			}
		}
		rec.Send()
	case 0b000111:
		rec.Start("MM", "D-MS FREQUENCY BANDS REQUEST", t, addr)
		pos += 6
		rec.Add("status downlink", statusDownlink)
		rec.Send()
	case 0b001000:
		rec.Start("MM", "D-DISTANCE REPORTING REQUEST", t, addr)
		pos += 6
		rec.Add("status downlink", statusDownlink)
		rec.Add("distance reporting timer", p.GetValue(pos, 7))
		pos += 7
		rec.Add("distance reporting validity", p.GetValue(pos, 1))
		pos++
		rec.Send()
	default:
		rec.Start("MM", "D-MM-STATUS", t, addr)
		rec.Add("status downlink", statusDownlink)
		rec.Send()
	}
}

// parseDCkChangeDemand decodes D-CK-CHANGE-DEMAND (16.9.2.2): a
// ciphering-parameters element this receiver reports header-only,
// since decryption itself is out of scope.
func parseDCkChangeDemand(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-CK-CHANGE-DEMAND", t, addr)
	parseCipheringParameters(p, 4, rec)
	rec.Send()
}

// parseCipheringParameters decodes the ciphering parameters element
// (A.8.12): a KSG number followed by a class 2/3 security detail
// variant.
func parseCipheringParameters(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("ksg number", p.GetValue(pos, 4))
	pos += 4

	securityClass := p.GetValue(pos, 1) == 1
	if securityClass {
		rec.Add("security class", "class 3")
		pos++
		rec.Add("tm-sck otar supported", p.GetValue(pos, 1) == 1)
		pos++
		rec.Add("sdmo and dm-sck otar supported", p.GetValue(pos, 1) == 1)
		pos++
		rec.Add("gck encryption/otar supported", p.GetValue(pos, 1) == 1)
		pos++
		rec.Add("security information protocol supported", p.GetValue(pos, 1) == 1)
		pos++
		pos++ // reserved
	} else {
		rec.Add("security class", "class 2")
		pos++
		rec.Add("sck number", p.GetValue(pos, 5))
		pos += 5
	}
	return pos
}

// parseDDisable decodes D-DISABLE (16.9.2.3): the SSI of the mobile
// being disabled and the disable type.
func parseDDisable(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-DISABLE", t, addr)

	pos := 4
	rec.Add("disabling type", p.GetValue(pos, 1))
	pos++
	rec.Add("ssi", p.GetValue(pos, 24))
	pos += 24

	rec.Send()
}

// parseDEnable decodes D-ENABLE (16.9.2.4): the SSI being re-enabled.
func parseDEnable(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-ENABLE", t, addr)

	pos := 4
	rec.Add("ssi", p.GetValue(pos, 24))
	pos += 24

	rec.Send()
}

// parseDLocationUpdateAccept decodes D-LOCATION-UPDATE-ACCEPT
// (16.9.2.8): the accept type, the location area, and the optional
// type 3/4 element chain.
func parseDLocationUpdateAccept(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-LOCATION-UPDATE-ACCEPT", t, addr)

	pos := 4
	rec.Add("location update accept type", p.GetValue(pos, 3))
	pos += 3
	rec.Add("location area", p.GetValue(pos, 14))
	pos += 14

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pos = parseType34Elements(p, pos, rec)
	}

	rec.Send()
}

// parseDLocationUpdateCommand decodes D-LOCATION-UPDATE-COMMAND
// (16.9.2.9).
func parseDLocationUpdateCommand(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-LOCATION-UPDATE-COMMAND", t, addr)

	pos := 4
	rec.Add("location update type", p.GetValue(pos, 3))
	pos += 3

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pos = parseType34Elements(p, pos, rec)
	}

	rec.Send()
}

// parseDLocationUpdateReject decodes D-LOCATION-UPDATE-REJECT
// (16.9.2.10): the reject reason and optional type 3/4 elements.
func parseDLocationUpdateReject(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-LOCATION-UPDATE-REJECT", t, addr)

	pos := 4
	rec.Add("location update reject reason", p.GetValue(pos, 5))
	pos += 5

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pos = parseType34Elements(p, pos, rec)
	}

	rec.Send()
}

// parseDLocationUpdateProceeding decodes D-LOCATION-UPDATE-PROCEEDING
// (16.9.2.11): a header-only acknowledgement that a location update
// is being processed.
func parseDLocationUpdateProceeding(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-LOCATION-UPDATE-PROCEEDING", t, addr)

	pos := 4
	rec.Add("location update type", p.GetValue(pos, 3))
	pos += 3

	rec.Send()
}

// parseDAttachDetachGroupIdentity decodes
// D-ATTACH/DETACH-GROUP-IDENTITY (16.9.2.1): a chain of group
// identity downlink elements (16.10.22).
func parseDAttachDetachGroupIdentity(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-ATTACH/DETACH-GROUP-IDENTITY", t, addr)

	pos := parseGroupIdentityDownlink(p, 4, rec)

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pos = parseType34Elements(p, pos, rec)
	}

	rec.Send()
}

// parseDAttachDetachGroupIdentityAck decodes
// D-ATTACH/DETACH-GROUP-IDENTITY-ACK (16.9.2.1a): the accept/reject
// outcome and an optional nested attach/detach element.
func parseDAttachDetachGroupIdentityAck(p bitstream.Pdu, rec *event.Record, t tetra.Time, addr tetra.Address) {
	rec.Start("MM", "D-ATTACH/DETACH-GROUP-IDENTITY-ACK", t, addr)

	parseGroupIdentityLocationAccept(p, 4, rec)

	rec.Send()
}
