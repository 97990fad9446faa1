// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline wires the physical-to-application layer chain
// together: framesync feeds lowermac, lowermac feeds uppermac per
// logical channel, uppermac feeds llc, llc feeds mle, and mle forwards
// to whichever of MM, CMCE or SNDCP its discriminator names. CMCE in
// turn forwards D-STATUS/D-SDS-DATA to SDS. BSCH and BNCH never reach
// llc or uppermac's PDU-type dispatch: both are handed straight to
// mle.ServiceBSCH/mle.ServiceBNCH here, matching the bypass the spec
// describes for MAC deliveries that carry D-MLE-SYNC/D-MLE-SYSINFO
// directly.
package pipeline

import (
	"context"
	"encoding/json"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/cmce"
	"github.com/tetrarx/tetrarx/internal/event"
	"github.com/tetrarx/tetrarx/internal/framesync"
	"github.com/tetrarx/tetrarx/internal/gsmtap"
	"github.com/tetrarx/tetrarx/internal/kv"
	"github.com/tetrarx/tetrarx/internal/llc"
	"github.com/tetrarx/tetrarx/internal/lowermac"
	"github.com/tetrarx/tetrarx/internal/mle"
	"github.com/tetrarx/tetrarx/internal/mm"
	"github.com/tetrarx/tetrarx/internal/sds"
	"github.com/tetrarx/tetrarx/internal/sndcp"
	"github.com/tetrarx/tetrarx/internal/tetra"
	"github.com/tetrarx/tetrarx/internal/uplane"
	"github.com/tetrarx/tetrarx/internal/uppermac"
)

// cellStateKey is where the most recently acquired cell identity is
// published for any other process sharing this key-value store.
const cellStateKey = "tetrarx:cell"

// Pipeline owns every stage's running state across the lifetime of
// one receiver session: one cell, one MAC address, one MAC state,
// one fragment buffer, one event record. A session tunes to exactly
// one carrier, so there is exactly one of each.
type Pipeline struct {
	sync         *framesync.Synchronizer
	cell         *tetra.CellContext
	macStateCtx  *tetra.MacStateContext
	addrCtx      *tetra.AddressContext
	fragBuf      *uppermac.FragmentBuffer
	rec          *event.Record
	keepFillBits bool
	gsmtap       *gsmtap.Emitter
	kv           kv.KV
}

// New returns a pipeline bound to sink for its event stream, tuned to
// cell.
func New(cell *tetra.CellContext, sink event.Sink) *Pipeline {
	return &Pipeline{
		sync:        framesync.New(cell),
		cell:        cell,
		macStateCtx: tetra.NewMacStateContext(),
		addrCtx:     tetra.NewAddressContext(),
		fragBuf:     uppermac.NewFragmentBuffer(),
		rec:         event.New(sink),
	}
}

// WithGSMTAP attaches a GSMTAP emitter; every decoded burst is mirrored
// to it in addition to the normal event pipeline. Passing nil disables
// emission.
func (p *Pipeline) WithGSMTAP(e *gsmtap.Emitter) *Pipeline {
	p.gsmtap = e
	return p
}

// WithKV attaches a key-value store that the current cell identity is
// published to after every successful BSCH acquisition, so that other
// processes sharing the store (or this one, after a restart) can learn
// the last-known cell without waiting for the next synchronization
// burst. Passing nil disables publication.
func (p *Pipeline) WithKV(store kv.KV) *Pipeline {
	p.kv = store
	return p
}

// PushBit feeds one demodulated symbol into the physical layer. Once
// a full burst accumulates, it runs the burst through every layer up
// to the application services, emitting one event record per PDU
// along the way.
func (p *Pipeline) PushBit(bit byte) {
	burst, ok := p.sync.PushBit(bit)
	if !ok {
		return
	}

	for _, logical := range lowermac.Process(burst, p.cell, p.macStateCtx, p.rec) {
		if p.gsmtap != nil {
			_ = p.gsmtap.Emit(logical.Channel, burst.Time, logical.SDU)
		}
		p.serviceLogicalChannel(logical, burst.Time)
	}
}

func (p *Pipeline) serviceLogicalChannel(logical lowermac.LogicalPdu, t tetra.Time) {
	addr := p.addrCtx.Get()
	macState := p.macStateCtx.Get()

	if logical.Channel == "BSCH" {
		mle.ServiceBSCH(logical.SDU, p.rec, t, addr, p.cell)
		p.publishCellState()
		return
	}

	if logical.Channel == "BNCH" {
		mle.ServiceBNCH(logical.SDU, p.rec, t, addr)
		return
	}

	if macState.DownlinkUsage == tetra.UsageTraffic && logical.Channel == "SCH_F" {
		// A traffic-usage marker on the full-slot traffic channel
		// carries TCH_S speech, not a MAC/LLC/MLE PDU stack.
		uplane.Service(logical.SDU, p.rec, t, addr, macState, addr.EncryptionMode)
		return
	}

	upper := uppermac.Process(logical.Channel, logical.SDU, p.addrCtx, p.fragBuf, p.rec, t, p.keepFillBits)
	if !upper.Deliver {
		return
	}

	llcResult := llc.Process(upper.SDU, p.rec, t, p.addrCtx.Get())
	if !llcResult.Deliver {
		return
	}

	p.serviceMle(llcResult.SDU, t)
}

// PruneFragments clears the fragment reassembly buffer if it holds
// more than threshold pending slots, returning how many were dropped.
// Intended to be called periodically by a background maintenance job
// so fragments whose MAC-END never arrives don't accumulate forever.
func (p *Pipeline) PruneFragments(threshold int) int {
	if p.fragBuf.Len() <= threshold {
		return 0
	}
	return p.fragBuf.Clear()
}

// publishCellState snapshots the cell into the attached key-value
// store, if any. Publication errors are not fatal to decoding: the
// store is a convenience for other observers, not part of the decode
// path's own correctness.
func (p *Pipeline) publishCellState() {
	if p.kv == nil {
		return
	}
	cell := p.cell.Get()
	if !cell.Acquired {
		return
	}
	data, err := json.Marshal(cell)
	if err != nil {
		return
	}
	_ = p.kv.Set(context.Background(), cellStateKey, data)
}

func (p *Pipeline) serviceMle(sdu bitstream.Pdu, t tetra.Time) {
	addr := p.addrCtx.Get()
	dispatch := mle.Service(sdu, p.rec, t, addr)

	switch dispatch.Target {
	case mle.TargetMM:
		mm.Service(dispatch.Body, p.rec, t, addr)
	case mle.TargetCMCE:
		result := cmce.Service(dispatch.Body, p.rec, t, addr)
		if result.ForwardToSDS {
			sds.Service(result.SDU, p.rec, t, addr)
		}
	case mle.TargetSNDCP:
		sndcp.Service(dispatch.Body, p.rec, t, addr)
	}
}
