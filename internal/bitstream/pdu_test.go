package bitstream

import "testing"

func bits(s string) []byte {
	out := make([]byte, len(s))
	for i, c := range s {
		if c == '1' {
			out[i] = 1
		}
	}
	return out
}

func TestGetValueBasic(t *testing.T) {
	p := New(bits("101100"))
	if got := p.GetValue(0, 4); got != 0b1011 {
		t.Fatalf("got %b want %b", got, 0b1011)
	}
	if got := p.GetValue(2, 4); got != 0b1100 {
		t.Fatalf("got %b want %b", got, 0b1100)
	}
}

func TestGetValuePastEndReadsZero(t *testing.T) {
	p := New(bits("11"))
	// requesting 4 bits from a 2-bit buffer: trailing bits are zero
	if got := p.GetValue(0, 4); got != 0b1100 {
		t.Fatalf("got %b want %b", got, 0b1100)
	}
}

func TestGetValueTotalityUnder64(t *testing.T) {
	p := New(bits("1111111111111111111111111111111111111111111111111111111111111111"))
	v := p.GetValue(0, 64)
	// all-ones 64-bit field is the max uint64
	if v != ^uint64(0) {
		t.Fatalf("got %x want all-ones", v)
	}
}

func TestSliceComposition(t *testing.T) {
	p := New(bits("0011010111001010"))
	a, la := 2, 9
	b, lb := 3, 4
	want := p.Slice(a+b, min(lb, la-b))
	got := p.Slice(a, la).Slice(b, lb)
	if got.Size() != want.Size() {
		t.Fatalf("size mismatch: got %d want %d", got.Size(), want.Size())
	}
	for i := 0; i < got.Size(); i++ {
		if got.At(i) != want.At(i) {
			t.Fatalf("bit %d mismatch: got %d want %d", i, got.At(i), want.At(i))
		}
	}
}

func TestSliceToEnd(t *testing.T) {
	p := New(bits("11110000"))
	s := p.Slice(4, 0)
	if s.Size() != 4 {
		t.Fatalf("expected 4 bits, got %d", s.Size())
	}
	if s.GetValue(0, 4) != 0 {
		t.Fatalf("expected trailing zeros, got %x", s.GetValue(0, 4))
	}
}

func TestHexPacksWholeBytesOnly(t *testing.T) {
	p := New(bits("000000010000001011111111")) // 0x01 0x02 0xff
	if got := p.Hex(); got != "0102ff" {
		t.Fatalf("got %q", got)
	}
}

func TestFromPackedBytesRoundTrip(t *testing.T) {
	p := FromPackedBytes([]byte{0xA5})
	if p.GetValue(0, 8) != 0xA5 {
		t.Fatalf("got %x", p.GetValue(0, 8))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
