package codec

import (
	"math/rand"
	"testing"
)

func TestViterbiRoundTripHardDecision(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	input := make([]byte, 64)
	for i := range input {
		input[i] = byte(r.Intn(2))
	}
	coded := Encode(input)
	decoded, err := ViterbiDecode(coded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(input) {
		t.Fatalf("length mismatch: got %d want %d", len(decoded), len(input))
	}
	for i := range input {
		if decoded[i] != input[i] {
			t.Fatalf("bit %d mismatch: got %d want %d", i, decoded[i], input[i])
		}
	}
}

func TestViterbiDeterministic(t *testing.T) {
	input := []byte{1, 0, 1, 1, 0, 0, 1, 0}
	coded := Encode(input)
	a, err := ViterbiDecode(coded)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ViterbiDecode(coded)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic decode at %d", i)
		}
	}
}

func TestDeinterleaveRoundTrip(t *testing.T) {
	p := InterleaveSCH_F
	r := rand.New(rand.NewSource(2))
	input := make([]byte, p.K)
	for i := range input {
		input[i] = byte(r.Intn(2))
	}
	interleaved, err := Interleave(input, p)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Deinterleave(interleaved, p)
	if err != nil {
		t.Fatal(err)
	}
	for i := range input {
		if back[i] != input[i] {
			t.Fatalf("bit %d mismatch after round trip", i)
		}
	}
}

func TestPunctureDepunctureRoundTrip(t *testing.T) {
	mother := []byte{1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 1, 0}
	punctured := Puncture(mother, RateTwoThirds)
	restored := Depuncture(punctured, RateTwoThirds)
	for i := range mother {
		want := mother[i]
		if i%6 == 1 || i%6 == 4 {
			want = 0 // punctured position: Depuncture reinserts the neutral 0
		}
		if restored[i] != want {
			t.Fatalf("bit %d mismatch: got %d want %d", i, restored[i], want)
		}
	}
}

func TestReedMullerRoundTrip(t *testing.T) {
	for _, info := range []uint16{0, 1, 0x1234, 0x3FFF} {
		word := rmEncode(info)
		received := make([]byte, rmCodeBits)
		for i := 0; i < rmCodeBits; i++ {
			received[i] = byte((word >> uint(rmCodeBits-1-i)) & 1)
		}
		decoded, err := ReedMullerDecode(received)
		if err != nil {
			t.Fatalf("info %x: decode failed: %v", info, err)
		}
		if decoded != info {
			t.Fatalf("info %x: got %x", info, decoded)
		}
	}
}

func TestDescrambleInvolution(t *testing.T) {
	input := []byte{1, 1, 0, 1, 0, 0, 1, 1, 1, 0}
	seed := uint32(0x12345678)
	scrambled := Descramble(input, seed)
	restored := Descramble(scrambled, seed)
	for i := range input {
		if restored[i] != input[i] {
			t.Fatalf("bit %d mismatch after involution", i)
		}
	}
}
