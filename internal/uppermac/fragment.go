// SPDX-License-Identifier: AGPL-3.0-or-later

package uppermac

import (
	"sync"

	"github.com/tetrarx/tetrarx/internal/bitstream"
)

// fragKey identifies a reassembly slot by logical channel and MAC
// address key (spec §3 FragmentBuffer).
type fragKey struct {
	channel string
	addr    uint32
}

// FragmentBuffer holds the in-progress SDU prefix for each
// (logicalChannel, address) pair between a MAC-FRAG and its
// terminating MAC-END. It is owned by the upper MAC; no locking would
// be required under the single-threaded pipeline model, but the mutex
// keeps it safe if a caller parallelizes decoding across bursts later.
type FragmentBuffer struct {
	mu      sync.Mutex
	pending map[fragKey][]byte
}

// NewFragmentBuffer returns an empty buffer.
func NewFragmentBuffer() *FragmentBuffer {
	return &FragmentBuffer{pending: make(map[fragKey][]byte)}
}

// StoreFragment records the SDU prefix carried by a MAC-FRAG (or a
// MAC-RESOURCE whose more-flag indicates fragmentation continues). A
// second MAC-FRAG for the same key overwrites the first without
// completing it — fragmentation loss, not an error.
func (f *FragmentBuffer) StoreFragment(channel string, addrKey uint32, sdu bitstream.Pdu) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bits := make([]byte, sdu.Size())
	for i := range bits {
		bits[i] = sdu.At(i)
	}
	f.pending[fragKey{channel, addrKey}] = bits
}

// Complete concatenates a stored prefix with the MAC-END's SDU and
// clears the key. ok is false if no MAC-FRAG preceded this MAC-END
// (an orphan end), in which case the caller must discard it rather
// than deliver a partial SDU.
func (f *FragmentBuffer) Complete(channel string, addrKey uint32, end bitstream.Pdu) (bitstream.Pdu, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fragKey{channel, addrKey}
	prefix, ok := f.pending[key]
	if !ok {
		return bitstream.Pdu{}, false
	}
	delete(f.pending, key)

	endBits := make([]byte, end.Size())
	for i := range endBits {
		endBits[i] = end.At(i)
	}
	combined := make([]byte, 0, len(prefix)+len(endBits))
	combined = append(combined, prefix...)
	combined = append(combined, endBits...)
	return bitstream.New(combined), true
}

// Len reports the number of reassembly slots currently pending a
// MAC-END. A slot whose MAC-END never arrives (the originating
// transmission was lost or went out of range) stays here forever
// unless Clear is called, so this is the signal a background sweep
// uses to decide whether one is due.
func (f *FragmentBuffer) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Clear discards every pending reassembly slot and returns how many
// were dropped. Used by a periodic maintenance sweep to bound memory
// growth from fragments that never complete.
func (f *FragmentBuffer) Clear() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.pending)
	f.pending = make(map[fragKey][]byte)
	return n
}
