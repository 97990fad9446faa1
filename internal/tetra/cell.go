// SPDX-License-Identifier: AGPL-3.0-or-later

package tetra

import "sync"

// Cell holds the identity of the acquired cell: MCC/MNC/ColorCode,
// location area, frequency plan and the derived descrambling seed.
// Acquired is false (and Seed is zero, the correct seed for the
// synchronization burst itself) until the first successful BSCH.
type Cell struct {
	MCC            uint32
	MNC            uint32
	ColorCode      uint32
	LocationArea   uint32
	DownlinkFreqHz uint64
	UplinkFreqHz   uint64
	ScramblingSeed uint32
	Acquired       bool
}

// ComputeScramblingSeed derives the 32-bit scrambling seed from the
// cell's MCC (10 bits), MNC (14 bits) and ColorCode (6 bits) per EN 300
// 392-2 §8.2.5.2: a 30-bit value shifted left 2 bits with the two LSBs
// initialized to 1.
func ComputeScramblingSeed(mcc, mnc, colorCode uint32) uint32 {
	v := (colorCode & 0x3F) | ((mnc & 0x3FFF) << 6) | ((mcc & 0x3FF) << 20)
	return (v << 2) | 0x3
}

// CellContext is the process-wide single-writer singleton described in
// the concurrency model: BSCH is the only writer, every downstream
// stage is a reader. It is safe for concurrent reads and writes.
type CellContext struct {
	mu   sync.RWMutex
	cell Cell
}

// NewCellContext returns an unacquired context with a zero seed, which
// is the correct seed for decoding the synchronization burst.
func NewCellContext() *CellContext {
	return &CellContext{}
}

// Get returns a snapshot of the current cell.
func (c *CellContext) Get() Cell {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cell
}

// Acquire sets the cell identity from a decoded BSCH and recomputes the
// scrambling seed, making subsequent decoding cell-specific.
func (c *CellContext) Acquire(mcc, mnc, colorCode, locationArea uint32, downlinkHz, uplinkHz uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cell = Cell{
		MCC:            mcc,
		MNC:            mnc,
		ColorCode:      colorCode,
		LocationArea:   locationArea,
		DownlinkFreqHz: downlinkHz,
		UplinkFreqHz:   uplinkHz,
		ScramblingSeed: ComputeScramblingSeed(mcc, mnc, colorCode),
		Acquired:       true,
	}
}

// Release drops acquisition, e.g. after sustained loss of the
// synchronization training sequence.
func (c *CellContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cell = Cell{}
}
