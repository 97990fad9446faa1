// SPDX-License-Identifier: AGPL-3.0-or-later

package sds

import "github.com/tetrarx/tetrarx/internal/bitstream"

// decodeText picks the GSM 7-bit alphabet for textCodingScheme 0 and
// falls back to the generic 8-bit decode for every other coding
// scheme value (§29.5.4.3), including schemes this receiver does not
// recognize by name.
func decodeText(p bitstream.Pdu, textCodingScheme uint64, lengthBits int) string {
	if textCodingScheme == 0 {
		return p.TextGsm7Bit(lengthBits)
	}
	return p.TextGeneric8Bit(lengthBits)
}

// tetraDigit maps a 4-bit external-subscriber-number digit to its
// character (§Annex tables for the CMCE type-3 digit block): 0-9,
// '*', '#', '+', with anything above 12 rendered as '?'.
func tetraDigit(val uint64) byte {
	const digits = "0123456789*#+"
	if val < uint64(len(digits)) {
		return digits[val]
	}
	return '?'
}

// decodeExternalNumber reads a run of digitsCount 4-bit TETRA digits,
// absorbing a trailing dummy nibble when the count is odd so the
// field stays nibble-aligned.
func decodeExternalNumber(p bitstream.Pdu, pos int, digitsCount int) (string, int) {
	digits := make([]byte, digitsCount)
	for i := 0; i < digitsCount; i++ {
		digits[i] = tetraDigit(p.GetValue(pos, 4))
		pos += 4
	}
	if digitsCount%2 != 0 {
		pos += 4
	}
	return string(digits), pos
}
