// SPDX-License-Identifier: AGPL-3.0-or-later

package cmce

import "github.com/tetrarx/tetrarx/internal/bitstream"

// PartyIdentifier is the decoded calling/transmitting party type
// identifier element shared by D-SETUP (CPTI), D-TX-GRANTED and
// D-TX-INTERRUPT (TPTI): a 2-bit selector followed by an SSI whose
// width depends on the selector, with an optional extension word for
// selector value 2.
type PartyIdentifier struct {
	Selector uint8
	SSI      uint64
	HasExt   bool
	Ext      uint64
}

// decodePartyIdentifier reads the CPTI/TPTI element at pos and returns
// the decoded identifier plus the number of bits consumed.
func decodePartyIdentifier(p bitstream.Pdu, pos int) (PartyIdentifier, int) {
	start := pos
	id := PartyIdentifier{Selector: uint8(p.GetValue(pos, 2))}
	pos += 2

	switch id.Selector {
	case 0:
		id.SSI = p.GetValue(pos, 8)
		pos += 8
	case 1:
		id.SSI = p.GetValue(pos, 24)
		pos += 24
	case 2:
		id.SSI = p.GetValue(pos, 24)
		pos += 24
		id.Ext = p.GetValue(pos, 24)
		pos += 24
		id.HasExt = true
	}

	return id, pos - start
}
