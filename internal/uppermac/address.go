// SPDX-License-Identifier: AGPL-3.0-or-later

package uppermac

import (
	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

// addressSelector is the 3-bit type selector that leads a MAC-RESOURCE
// address element, mapping to the seven AddressType variants spec §3
// documents.
var addressSelector = [...]tetra.AddressType{
	tetra.AddressSSI,
	tetra.AddressEventLabel,
	tetra.AddressUSSI,
	tetra.AddressSMI,
	tetra.AddressSSIEventLabel,
	tetra.AddressSSIUsageMarker,
	tetra.AddressSMIEventLabel,
	tetra.AddressNone, // reserved
}

// decodeAddress reads the variable-width (14..72 bit) address element
// starting at pos and returns the decoded Address along with the
// number of bits consumed.
func decodeAddress(p bitstream.Pdu, pos int) (tetra.Address, int) {
	start := pos
	sel := int(p.GetValue(pos, 3))
	pos += 3
	addr := tetra.Address{Type: addressSelector[sel]}

	switch addr.Type {
	case tetra.AddressSSI:
		addr.SSI = uint32(p.GetValue(pos, 24))
		pos += 24
	case tetra.AddressEventLabel:
		addr.EventLabel = uint32(p.GetValue(pos, 10))
		pos += 10
	case tetra.AddressUSSI:
		addr.USSI = uint32(p.GetValue(pos, 24))
		pos += 24
	case tetra.AddressSMI:
		addr.SMI = uint32(p.GetValue(pos, 24))
		pos += 24
	case tetra.AddressSSIEventLabel:
		addr.SSI = uint32(p.GetValue(pos, 24))
		pos += 24
		addr.EventLabel = uint32(p.GetValue(pos, 10))
		pos += 10
	case tetra.AddressSSIUsageMarker:
		addr.SSI = uint32(p.GetValue(pos, 24))
		pos += 24
		addr.UsageMarker = uint8(p.GetValue(pos, 6))
		pos += 6
	case tetra.AddressSMIEventLabel:
		addr.SMI = uint32(p.GetValue(pos, 24))
		pos += 24
		addr.EventLabel = uint32(p.GetValue(pos, 10))
		pos += 10
	}

	addr.EncryptionMode = uint8(p.GetValue(pos, 2))
	pos += 2
	addr.Stolen = p.GetValue(pos, 1) == 1
	pos++

	return addr, pos - start
}
