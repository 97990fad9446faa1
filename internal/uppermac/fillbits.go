// SPDX-License-Identifier: AGPL-3.0-or-later

package uppermac

import "github.com/tetrarx/tetrarx/internal/bitstream"

// stripFillBits removes a trailing "1 0*" fill pattern used to byte-
// align a TM-SDU: it searches from the tail for the last 1 bit and
// truncates to that position. If the tail holds no 1 bit within the
// last 8 bits, the PDU is malformed and ok is false.
func stripFillBits(p bitstream.Pdu) (bitstream.Pdu, bool) {
	size := p.Size()
	searchFrom := size - 8
	if searchFrom < 0 {
		searchFrom = 0
	}
	for i := size - 1; i >= searchFrom; i-- {
		if p.At(i) == 1 {
			return p.Slice(0, i), true
		}
	}
	return p, false
}
