// Package dispatch drives the translate-then-execute loop: given a guest
// state block, it resolves the current Location to a host code pointer
// (via the RSB, the fast-dispatch table, the block cache, or a fresh
// compile, in that order), enters it through the native trampoline, and
// acts on whatever ExitReason the block left behind. Grounded on the
// teacher's pvm/jit/run.go dispatch loop, generalized from PVM's single
// PC-keyed cache to A32's RSB/fast-dispatch/full-cache resolution chain
// (§4.6).
package dispatch

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/a18532086/a32jit/internal/alloc"
	"github.com/a18532086/a32jit/internal/backend"
	"github.com/a18532086/a32jit/internal/cache"
	"github.com/a18532086/a32jit/internal/engineerr"
	"github.com/a18532086/a32jit/internal/frontend"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/invalidate"
	"github.com/a18532086/a32jit/internal/ir"
	"github.com/a18532086/a32jit/internal/optimize"
	"github.com/a18532086/a32jit/internal/telemetry"
)

// Dispatcher owns every piece of per-instance machinery Run needs: the
// guest state block it drives, the embedder's Callbacks, the translation
// pipeline's fixed Options, and the cache/invalidator/fast-dispatch/code-
// buffer quadruple the resolve chain reads and writes.
type Dispatcher struct {
	State *guest.State

	cb   frontend.Callbacks
	opts frontend.Options

	cache *cache.Cache
	inv   *invalidate.Invalidator
	fast  *fastDispatchTable
	buf   *backend.CodeBuffer

	metrics       *telemetry.Metrics
	debug         bool
	lowWaterBytes int64
	singleStep    bool
}

// New returns a Dispatcher over state, driven by cb under opts, backed by
// buf for code memory. metrics may be nil. lowWaterBytes is the §4.6
// low-memory threshold (a full invalidation runs before emission once
// buf.Remaining() falls below it).
func New(state *guest.State, cb frontend.Callbacks, opts frontend.Options, buf *backend.CodeBuffer, metrics *telemetry.Metrics, debug bool, lowWaterBytes int64) *Dispatcher {
	c := cache.New(buf, metrics)
	fast := newFastDispatchTable()
	inv := invalidate.New(c, fast)
	return &Dispatcher{
		State:         state,
		cb:            cb,
		opts:          opts,
		cache:         c,
		inv:           inv,
		fast:          fast,
		buf:           buf,
		metrics:       metrics,
		debug:         debug,
		lowWaterBytes: lowWaterBytes,
	}
}

// Cache exposes the block cache for clear_cache()/debug disassembly.
func (d *Dispatcher) Cache() *cache.Cache { return d.cache }

// Invalidator exposes the invalidator for invalidate_cache_range() and
// save_context/load_context's generation check.
func (d *Dispatcher) Invalidator() *invalidate.Invalidator { return d.inv }

// currentLocation derives the cache-key Location from live guest state.
func (d *Dispatcher) currentLocation() guest.Location {
	return d.State.CurrentLocation(d.State.FPSCRMode, d.singleStep)
}

// Run is the dispatcher contract of §4.6: clear halt, then repeatedly
// resolve the current Location to a code pointer and enter it, until
// ticks run out, a halt is requested, or an error occurs. A block's exit
// either lets the loop relink directly into its next Location (the
// LinkBlock/LinkBlockFast/PopRSBHint/FastDispatchHint family, §4.5's
// "re-enters step 2/3 directly") or returns to this checkpoint to
// re-evaluate ticks, halt, and any queued invalidation.
func (d *Dispatcher) Run() error {
	d.State.HaltRequested = false
	for {
		if d.inv.HasPending() {
			d.inv.Drain(d.State)
		}
		if d.State.TicksRemaining <= 0 || d.State.HaltRequested {
			if d.metrics != nil {
				d.metrics.DispatcherExits.Inc()
			}
			return nil
		}

		codePtr, err := d.resolve(d.currentLocation())
		if err != nil {
			return err
		}

		for {
			reasonRaw, payloadRaw := callJIT(codePtr, unsafe.Pointer(d.State))
			relink, nextPtr, err := d.handleExit(backend.ExitReason(reasonRaw), uint32(payloadRaw))
			if err != nil {
				return err
			}
			if !relink {
				break
			}
			codePtr = nextPtr
		}
	}
}

// resolve is the RSB-short-circuit / fast-dispatch-probe / full-cache-
// lookup / compile-on-miss chain (§4.6 steps 2-3).
func (d *Dispatcher) resolve(loc guest.Location) (uintptr, error) {
	if e := d.State.PopRSB(); e.CodePointer != 0 {
		if e.Location.Equal(loc) {
			if d.metrics != nil {
				d.metrics.RSBHits.Inc()
			}
			return e.CodePointer, nil
		}
		if d.metrics != nil {
			d.metrics.RSBMisses.Inc()
		}
	}

	if ptr, ok := d.fast.probe(loc); ok {
		if d.metrics != nil {
			d.metrics.FastDispatchHits.Inc()
		}
		return ptr, nil
	}

	if blk, ok := d.cache.Lookup(loc); ok {
		d.fast.populate(loc, blk.CodePointer)
		return blk.CodePointer, nil
	}

	blk, err := d.compile(loc)
	if err != nil {
		return 0, err
	}
	d.fast.populate(loc, blk.CodePointer)
	return blk.CodePointer, nil
}

// compile runs the full frontend -> optimizer -> allocator -> backend
// pipeline for loc and stores the result in the cache, first enforcing
// the low-memory policy.
func (d *Dispatcher) compile(loc guest.Location) (*backend.EmittedBlock, error) {
	if d.buf.Remaining() < d.lowWaterBytes {
		d.inv.InvalidateAllNow(d.State)
	}

	block, err := frontend.Translate(loc, d.cb, d.opts)
	if err != nil {
		return nil, err
	}
	optimize.Run(block, d.cb, d.debug)

	allocation := alloc.Allocate(block)
	if d.debug {
		if err := alloc.VerifyAccessModes(block, allocation); err != nil {
			return nil, err
		}
	}

	emitted, err := backend.Emit(block, allocation, d.buf)
	if err != nil {
		return nil, err
	}

	hash, err := cache.HashRange(d.cb, loc.PC, block.EndPC)
	if err != nil {
		return nil, err
	}
	d.cache.Store(emitted, hash, block.EndPC)
	return emitted, nil
}

// handleExit acts on one block's exit. relink reports whether the caller
// may re-enter nextPtr immediately, bypassing the ticks/halt/invalidation
// checkpoint (true for the hint family; false for everything else).
func (d *Dispatcher) handleExit(reason backend.ExitReason, payload uint32) (relink bool, nextPtr uintptr, err error) {
	switch reason {
	case backend.ExitReturnToDispatch:
		// A nonzero payload is a statically-known resume PC (SVC/BKPT/an
		// undefined-instruction trap); zero means the block's own
		// OpExchangeBranch already wrote the runtime target into the live
		// State.R[15] (see internal/backend/exits.go).
		if payload != 0 {
			d.State.R[15] = payload
		}
		return false, 0, nil

	case backend.ExitLinkBlock, backend.ExitLinkBlockFast, backend.ExitPopRSBHint, backend.ExitFastDispatchHint:
		d.State.R[15] = payload
		ptr, err := d.resolve(d.currentLocation())
		if err != nil {
			return false, 0, err
		}
		return true, ptr, nil

	case backend.ExitInterpret:
		loc := d.currentLocation()
		loc.PC = payload
		if err := d.interpretOne(loc); err != nil {
			return false, 0, err
		}
		return false, 0, nil

	case backend.ExitCallback:
		if err := d.serviceCallback(); err != nil {
			return false, 0, err
		}
		return false, 0, nil

	default:
		return false, 0, errors.Newf("dispatch: unhandled exit reason %d", reason)
	}
}

// interpretOne compiles exactly loc's instruction with
// ForceUnconditionalFirst set and runs it immediately, without ever
// installing the result in the shared cache: that result is only valid
// for the one guarded effect this call observed to be true, not for a
// normal re-entry at the same Location (§4.5's TermInterpret contract, see
// frontend.Options.ForceUnconditionalFirst). The one-off block's code
// memory is released as soon as it has run.
func (d *Dispatcher) interpretOne(loc guest.Location) error {
	opts := d.opts
	opts.ForceUnconditionalFirst = true

	block, err := frontend.Translate(loc, d.cb, opts)
	if err != nil {
		return err
	}
	optimize.Run(block, d.cb, d.debug)

	allocation := alloc.Allocate(block)
	if d.debug {
		if err := alloc.VerifyAccessModes(block, allocation); err != nil {
			return err
		}
	}

	emitted, err := backend.Emit(block, allocation, d.buf)
	if err != nil {
		return err
	}
	defer d.buf.Release(emitted.ChunkHandle)

	codePtr := emitted.CodePointer
	for {
		reasonRaw, payloadRaw := callJIT(codePtr, unsafe.Pointer(d.State))
		relink, nextPtr, err := d.handleExit(backend.ExitReason(reasonRaw), uint32(payloadRaw))
		if err != nil {
			return err
		}
		if !relink {
			return nil
		}
		codePtr = nextPtr
	}
}

// serviceCallback drains guest.State.Pending: the one place this engine
// is allowed to call the embedder's Callbacks for guest memory access,
// SVC, or exception notification. Grounded on the §6 embedder-callback
// list and the LDREX/STREX exclusive-monitor contract (SPEC_FULL.md's
// exclusive-monitor supplement).
func (d *Dispatcher) serviceCallback() error {
	p := d.State.Pending
	var result uint64
	var err error

	switch p.Kind {
	case guest.CallbackMemRead8:
		var v uint8
		v, err = d.cb.MemoryRead8(p.Addr)
		result = uint64(v)
	case guest.CallbackMemRead16:
		var v uint16
		v, err = d.cb.MemoryRead16(p.Addr)
		result = uint64(v)
	case guest.CallbackMemRead32:
		var v uint32
		v, err = d.cb.MemoryRead32(p.Addr)
		result = uint64(v)
	case guest.CallbackMemRead64:
		result, err = d.cb.MemoryRead64(p.Addr)

	case guest.CallbackMemWrite8:
		err = d.cb.MemoryWrite8(p.Addr, uint8(p.Value))
	case guest.CallbackMemWrite16:
		err = d.cb.MemoryWrite16(p.Addr, uint16(p.Value))
	case guest.CallbackMemWrite32:
		err = d.cb.MemoryWrite32(p.Addr, uint32(p.Value))
	case guest.CallbackMemWrite64:
		err = d.cb.MemoryWrite64(p.Addr, p.Value)

	case guest.CallbackExclusiveRead32:
		d.State.Monitor = guest.ExclusiveMonitor{Valid: true, Address: p.Addr}
		var v uint32
		v, err = d.cb.MemoryRead32(p.Addr)
		result = uint64(v)

	case guest.CallbackExclusiveWrite32:
		if d.State.Monitor.Valid && d.State.Monitor.Address == p.Addr {
			if err = d.cb.MemoryWrite32(p.Addr, uint32(p.Value)); err == nil {
				result = 0 // STREX success, matching visitSTREX's not1(success) convention
			}
		} else {
			result = 1 // STREX failure: monitor not held for this address
		}
		d.State.Monitor = guest.ExclusiveMonitor{}

	case guest.CallbackSVC:
		d.cb.CallSVC(uint32(p.Value))

	case guest.CallbackException:
		d.cb.ExceptionRaised(p.ResumePC, ir.ExceptionKind(p.Value))

	default:
		engineerr.Invariant(false, "dispatch: pending callback with kind %v", p.Kind)
	}
	if err != nil {
		return err
	}

	// Emit's loop always stops at the callback op, so any SetRegister
	// consuming its result (found by internal/backend's findDestReg) was
	// never actually lowered to native code: the dispatcher itself is the
	// only thing that ever performs that write, including when the
	// destination is R15 (an indirect load-to-PC).
	if p.DestReg >= 0 {
		d.State.R[p.DestReg] = uint32(result)
	}
	if p.DestReg != 15 {
		d.State.R[15] = p.ResumePC
	}
	return nil
}
