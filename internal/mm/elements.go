// SPDX-License-Identifier: AGPL-3.0-or-later

package mm

import (
	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/event"
)

// elementName labels the type 3/4 element identifier (table 16.89).
var elementName = map[uint64]string{
	0b0000: "reserved for future extension",
	0b0001: "default group attachment lifetime",
	0b0010: "new registered area",
	0b0011: "security downlink",
	0b0100: "group report response",
	0b0101: "group identity location accept",
	0b0110: "dm-ms address",
	0b0111: "group identity downlink",
	0b1000: "group identity uplink",
	0b1001: "authentication uplink",
	0b1010: "authentication downlink",
	0b1011: "extended capabilities",
	0b1100: "group identity security related information",
	0b1101: "cell type control",
	0b1110: "reserved",
	0b1111: "proprietary",
}

// parseType34Elements walks the repeated type 3/4 element chain
// (E.1.1): each element carries a 4-bit identifier and an 11-bit
// length indicator, and type-4 elements additionally repeat for a
// declared count.
func parseType34Elements(p bitstream.Pdu, pos int, rec *event.Record) int {
	for p.GetValue(pos, 1) == 1 {
		pos++
		elementID := p.GetValue(pos, 4)
		rec.Add("type 3/4 element identifier", elementName[elementID])
		pos += 4

		rec.Add("length indicator", p.GetValue(pos, 11))
		pos += 11

		switch elementID {
		case 0b0010: // new registered area (type 4)
			count := p.GetValue(pos, 6)
			pos += 6
			for i := uint64(0); i < count; i++ {
				pos = parseNewRegisteredArea(p, pos, rec)
			}
		case 0b0111: // group identity downlink (type 4)
			count := p.GetValue(pos, 6)
			pos += 6
			for i := uint64(0); i < count; i++ {
				pos = parseGroupIdentityDownlink(p, pos, rec)
			}
		case 0b1100: // group identity security related information (type 4)
			count := p.GetValue(pos, 6)
			pos += 6
			for i := uint64(0); i < count; i++ {
				pos = parseGISRI(p, pos, rec)
			}
		case 0b0001: // default group attachment lifetime (type 3)
			rec.Add("default group attachment lifetime", p.GetValue(pos, 2))
			pos += 2
		case 0b0011: // security downlink (type 3)
			pos = parseSecurityDownlink(p, pos, rec)
		case 0b0100: // group report response (type 3)
			pos = parseGroupReportResponse(p, pos, rec)
		case 0b0101: // group identity location accept (type 3)
			pos = parseGroupIdentityLocationAccept(p, pos, rec)
		case 0b1010: // authentication downlink (type 3)
			pos = parseAuthenticationDownlink(p, pos, rec)
		case 0b1101: // cell type control (type 3)
			pos = parseCellTypeControl(p, pos, rec)
		case 0b1111: // proprietary (type 3)
			pos = parseProprietary(p, pos, rec)
		}
	}
	return pos
}

// parseAddressExtension decodes the MCC/MNC address extension
// element (16.10.1).
func parseAddressExtension(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("mcc", p.GetValue(pos, 10))
	pos += 10
	rec.Add("mnc", p.GetValue(pos, 14))
	pos += 14
	return pos
}

// parseCckInformation decodes CCK information (A.8.8): a CCK
// identifier, a sealed CCK, the CCK location area information, and an
// optional future-key variant.
func parseCckInformation(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("cck identifier", p.GetValue(pos, 16))
	pos += 16
	rec.Add("key type flag", p.GetValue(pos, 1))
	pos++
	rec.Add("sealed cck", p.GetValue(pos, 120))
	pos += 120

	pos = parseCckLocationAreaInformation(p, pos, rec)

	futureKeyFlag := p.GetValue(pos, 1) == 1
	pos++
	if futureKeyFlag {
		rec.Add("sealed cck (future key)", p.GetValue(pos, 120))
		pos += 120
	}
	return pos
}

// parseCckLocationAreaInformation decodes the CCK location area
// information sub-element (A.8.9).
func parseCckLocationAreaInformation(p bitstream.Pdu, pos int, rec *event.Record) int {
	laType := p.GetValue(pos, 2)
	rec.Add("cck location area type", laType)
	pos += 2

	switch laType {
	case 0b01:
		pos = parseLocationAreaList(p, pos, rec)
	case 0b10:
		rec.Add("location area bit mask", p.GetValue(pos, 14))
		pos += 14
		rec.Add("location area selector", p.GetValue(pos, 14))
		pos += 14
	case 0b11:
		pos = parseLocationAreaRange(p, pos, rec)
	}
	return pos
}

func parseLocationAreaList(p bitstream.Pdu, pos int, rec *event.Record) int {
	count := p.GetValue(pos, 4)
	rec.Add("number of location areas", count)
	pos += 4
	for i := uint64(0); i < count; i++ {
		rec.Add("location area", p.GetValue(pos, 14))
		pos += 14
	}
	return pos
}

func parseLocationAreaRange(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("llav", p.GetValue(pos, 14))
	pos += 14
	rec.Add("hlav", p.GetValue(pos, 14))
	pos += 14
	return pos
}

// parseCellTypeControl decodes cell type control (16.10.1a): required
// and preferred cell type lists, unless the originator reverts to the
// user application's default.
func parseCellTypeControl(p bitstream.Pdu, pos int, rec *event.Record) int {
	revertToUserApplication := p.GetValue(pos, 1) == 1
	rec.Add("revert to user application setting", revertToUserApplication)
	pos++

	if revertToUserApplication {
		return pos
	}

	requiredCount := parseCellTypeListControl(p, pos, rec)
	pos += 4
	for i := 0; i < requiredCount; i++ {
		rec.Add("required cell type", p.GetValue(pos, 3))
		pos += 3
	}

	preferredCount := parseCellTypeListControl(p, pos, rec)
	pos += 4
	for i := 0; i < preferredCount; i++ {
		rec.Add("preferred cell type", p.GetValue(pos, 3))
		pos += 3
	}
	return pos
}

// parseCellTypeListControl decodes the ordered/unordered cell type
// list count (16.10.40b/16.10.43b) without advancing pos (the caller
// advances by the fixed 4-bit field width).
func parseCellTypeListControl(p bitstream.Pdu, pos int, rec *event.Record) int {
	listControl := p.GetValue(pos, 4)
	if listControl <= 0b1000 {
		return int(listControl)
	}
	return int(listControl) - 8
}

// parseEnergySavingInformation decodes energy saving information
// (16.10.10).
func parseEnergySavingInformation(p bitstream.Pdu, pos int, rec *event.Record) int {
	mode := p.GetValue(pos, 3)
	pos += 3
	if mode > 0 {
		rec.Add("energy saving mode", mode)
	} else {
		rec.Add("energy saving mode", "stay alive")
	}
	rec.Add("frame number", p.GetValue(pos, 5))
	pos += 5
	rec.Add("multiframe number", p.GetValue(pos, 6))
	pos += 6
	return pos
}

// parseGroupIdentityAttachment decodes group identity attachment
// (16.10.19).
func parseGroupIdentityAttachment(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("group identity attachment lifetime", p.GetValue(pos, 2))
	pos += 2
	rec.Add("class of usage", p.GetValue(pos, 3)+1)
	pos += 3
	return pos
}

// parseGroupIdentityDownlink decodes group identity downlink
// (16.10.22): an attach/detach indication followed by one of four
// group-address-type layouts (16.10.15).
func parseGroupIdentityDownlink(p bitstream.Pdu, pos int, rec *event.Record) int {
	detachment := p.GetValue(pos, 1) == 1
	pos++

	if detachment {
		rec.Add("group identity detachment downlink", p.GetValue(pos, 2))
		pos += 2
	} else {
		pos = parseGroupIdentityAttachment(p, pos, rec)
	}

	addressType := p.GetValue(pos, 2)
	pos += 2

	switch addressType {
	case 0b00:
		rec.Add("gssi", p.GetValue(pos, 24))
		pos += 24
	case 0b01:
		rec.Add("gssi", p.GetValue(pos, 24))
		pos += 24
		pos = parseAddressExtension(p, pos, rec)
	case 0b10:
		rec.Add("(v)gssi", p.GetValue(pos, 24))
		pos += 24
	case 0b11:
		rec.Add("gssi", p.GetValue(pos, 24))
		pos += 24
		pos = parseAddressExtension(p, pos, rec)
		rec.Add("(v)gssi", p.GetValue(pos, 24))
		pos += 24
	}
	return pos
}

// parseGroupIdentityLocationAccept decodes group identity location
// accept (16.10.23): an accept/reject flag followed by an optional
// nested group identity downlink element.
func parseGroupIdentityLocationAccept(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("all attachments/detachments accepted", p.GetValue(pos, 1) == 0)
	pos++
	pos++ // reserved

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pos = parseType34Elements(p, pos, rec)
	}
	return pos
}

// parseGISRI decodes Group Identity Security Related Information
// (A.8.31a): a list of GSSIs followed by optional GCK/SCK
// association information.
func parseGISRI(p bitstream.Pdu, pos int, rec *event.Record) int {
	count := p.GetValue(pos, 5)
	rec.Add("number of groups", count)
	pos += 5

	for i := uint64(0); i < count; i++ {
		rec.Add("gssi", p.GetValue(pos, 24))
		pos += 24
	}

	gckAssociation := p.GetValue(pos, 1) == 1
	pos++
	if gckAssociation {
		rec.Add("gck select number", p.GetValue(pos, 17))
		pos += 17
	}

	sckAssociation := p.GetValue(pos, 1) == 1
	pos++
	if sckAssociation {
		rec.Add("sck subset grouping type", p.GetValue(pos, 4))
		pos += 4
		rec.Add("sck subset number", p.GetValue(pos, 5))
		pos += 5
	}
	return pos
}

// parseGroupReportResponse decodes group report response (16.10.27a).
func parseGroupReportResponse(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("group report response", p.GetValue(pos, 1))
	pos++
	return pos
}

// parseNewRegisteredArea decodes new registered area (16.10.40): a
// location area timer, the LA, and two optionally-present cell
// identifiers.
func parseNewRegisteredArea(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("la timer", p.GetValue(pos, 3))
	pos += 3
	rec.Add("la", p.GetValue(pos, 14))
	pos += 14

	oFlag := p.GetValue(pos, 1) == 1
	pos++
	if oFlag {
		pFlag := p.GetValue(pos, 1) == 1
		pos++
		if pFlag {
			rec.Add("lacc", p.GetValue(pos, 10))
			pos += 10
		}

		pFlag = p.GetValue(pos, 1) == 1
		pos++
		if pFlag {
			rec.Add("lanc", p.GetValue(pos, 14))
			pos += 14
		}
	}
	return pos
}

// parseProprietary decodes the proprietary element (16.10.41): only
// the owner is reported, since a proprietary body cannot be parsed
// generically.
func parseProprietary(p bitstream.Pdu, pos int, rec *event.Record) int {
	owner := p.GetValue(pos, 8)
	rec.Add("proprietary element owner", owner)
	pos += 8
	return pos
}

// parseScchInformationAndDistribution decodes SCCH information and
// 18th-frame distribution (16.10.46).
func parseScchInformationAndDistribution(p bitstream.Pdu, pos int, rec *event.Record) int {
	scchInfo := p.GetValue(pos, 4)
	if scchInfo < 0b1100 {
		rec.Add("scch information", scchInfo)
	}
	pos += 4
	rec.Add("distribution on 18th frame timeslot", p.GetValue(pos, 2)+1)
	pos += 2
	return pos
}

// parseSckInformation decodes SCK information (A.8.68): a session or
// individual key seed, the SCK identifiers, a sealed SCK, and an
// optional future-key variant.
func parseSckInformation(p bitstream.Pdu, pos int, rec *event.Record) int {
	sessionKey := p.GetValue(pos, 1) == 1
	pos++
	if sessionKey {
		rec.Add("gsko-vn", p.GetValue(pos, 16))
		pos += 16
	} else {
		rec.Add("random seed for otar", p.GetValue(pos, 80))
		pos += 80
	}

	rec.Add("sck number", p.GetValue(pos, 5))
	pos += 5
	rec.Add("sck version number", p.GetValue(pos, 16))
	pos += 16
	rec.Add("sealed sck", p.GetValue(pos, 120))
	pos += 120

	futureKeyFlag := p.GetValue(pos, 1) == 1
	pos++
	if futureKeyFlag {
		rec.Add("sck number (future key)", p.GetValue(pos, 5))
		pos += 5
		rec.Add("sck version number (future key)", p.GetValue(pos, 16))
		pos += 16
		rec.Add("sealed sck (future key)", p.GetValue(pos, 120))
		pos += 120
	}
	return pos
}

// parseGckRejected decodes a single GCK rejected entry (A.8.28b).
func parseGckRejected(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("otar reject reason", p.GetValue(pos, 3))
	pos += 3

	groupAssociation := p.GetValue(pos, 1) == 1
	pos++
	if groupAssociation {
		rec.Add("gssi", p.GetValue(pos, 24))
		pos += 24
	} else {
		rec.Add("gckn", p.GetValue(pos, 16))
		pos += 16
	}
	return pos
}

// parseSecurityDownlink decodes security downlink (A.7.3): the
// authentication outcome and which additional identifiers the
// infrastructure is requesting.
func parseSecurityDownlink(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("authentication successful", p.GetValue(pos, 1) == 1)
	pos++
	rec.Add("supply tei", p.GetValue(pos, 1) == 1)
	pos++
	rec.Add("model number information requested", p.GetValue(pos, 1) == 1)
	pos++
	rec.Add("hw sw version number information requested", p.GetValue(pos, 1) == 1)
	pos++
	rec.Add("ai algorithm information requested", p.GetValue(pos, 1) == 1)
	pos++
	pos++ // reserved
	return pos
}

// parseAuthenticationDownlink decodes authentication downlink
// (A.7.1): an outcome pair and an optional CK provisioning chain.
func parseAuthenticationDownlink(p bitstream.Pdu, pos int, rec *event.Record) int {
	rec.Add("authentication successful", p.GetValue(pos, 1) == 1)
	pos++
	rec.Add("supply tei", p.GetValue(pos, 1) == 1)
	pos++

	ckProvisionFlag := p.GetValue(pos, 1) == 1
	pos++
	if ckProvisionFlag {
		sckProvisionFlag := p.GetValue(pos, 1) == 1
		pos++
		if sckProvisionFlag {
			pos = parseSckInformation(p, pos, rec)
		}

		cckProvisionFlag := p.GetValue(pos, 1) == 1
		pos++
		if cckProvisionFlag {
			pos = parseCckInformation(p, pos, rec)
		}
	}
	return pos
}
