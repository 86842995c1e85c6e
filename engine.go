// Package a32jit is the public entry point: a dynamic binary translator for
// 32-bit ARM (A32/Thumb, with VFP) guest code, recompiling guest
// instructions into host x86-64 machine code and driving them through an
// embedder-supplied memory/timing/SVC collaborator. Wires together
// internal/guest, internal/frontend, internal/optimize, internal/alloc,
// internal/backend, internal/cache, internal/dispatch, internal/invalidate,
// internal/engineerr, and internal/telemetry behind the single Engine type
// below. Grounded on the teacher's pvm package boundary: a small public
// surface (NewPVM/Run/accessors) in front of a much larger internal
// pipeline.
package a32jit

import (
	"github.com/cockroachdb/errors"

	"github.com/a18532086/a32jit/internal/backend"
	"github.com/a18532086/a32jit/internal/dispatch"
	"github.com/a18532086/a32jit/internal/engineerr"
	"github.com/a18532086/a32jit/internal/frontend"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/telemetry"
)

// Engine is one JIT instance: one guest state block, one code buffer, one
// block cache, one dispatcher. Not safe for concurrent use from multiple
// goroutines beyond the single-threaded-per-instance model of §5 --
// HaltExecution is the one operation meant to be called from outside the
// goroutine currently inside Run (e.g. from a signal handler or another
// goroutine that owns a reference to the Engine), since it only ever sets
// an advisory flag.
type Engine struct {
	cfg   Config
	state *guest.State
	cb    frontend.Callbacks
	buf   *backend.CodeBuffer

	metrics    *telemetry.Metrics
	dispatcher *dispatch.Dispatcher
}

// New constructs an Engine from cfg. Returns an error if cfg.Callbacks is
// nil, since every pipeline stage from translation through dispatch
// assumes a live collaborator.
func New(cfg Config) (*Engine, error) {
	if cfg.Callbacks == nil {
		return nil, errors.New("a32jit: Config.Callbacks is required")
	}

	telemetry.SetOutput(cfg.LogOutput)
	engineerr.Debug = cfg.Debug

	state := guest.New()
	buf := backend.NewCodeBuffer()
	metrics := telemetry.NewMetrics(cfg.InstanceID)

	opts := frontend.Options{
		DefineUnpredictableBehaviour: cfg.DefineUnpredictableBehaviour,
		HookHint:                     cfg.HookHint,
		MaxBlockInstructions:         cfg.maxBlockInstructions(),
		Coprocessors:                 cfg.Coprocessors,
	}

	d := dispatch.New(state, cfg.Callbacks, opts, buf, metrics, cfg.Debug, cfg.lowWaterBytes())

	return &Engine{
		cfg:        cfg,
		state:      state,
		cb:         cfg.Callbacks,
		buf:        buf,
		metrics:    metrics,
		dispatcher: d,
	}, nil
}

// Run pulls the tick budget from Callbacks.GetTicksRemaining, drives the
// dispatcher loop until that budget is exhausted, a halt is requested, or
// an error occurs, then reports however many ticks were actually consumed
// back through Callbacks.AddTicks -- the embedder's timing collaborator,
// not the engine itself, owns the budget's source of truth, per §6.
func (e *Engine) Run() error {
	budget := int64(e.cb.GetTicksRemaining())
	e.state.TicksRemaining = budget

	err := e.dispatcher.Run()

	consumed := budget - e.state.TicksRemaining
	if consumed > 0 {
		e.cb.AddTicks(uint64(consumed))
	}
	return err
}

// HaltExecution requests that the currently-executing (or next-entered)
// block yield at its earliest CheckHalt terminator. Advisory, not
// preemptive, per §4.6's cancellation contract.
func (e *Engine) HaltExecution() {
	e.state.HaltRequested = true
}

// Reset reinitializes every guest register, flag, and FP register to zero
// and clears the RSB, leaving the block cache and invalidation generation
// untouched: §6 names clear_cache as the separate operation for discarding
// compiled code, and nothing in §4 ties a guest-register reset to cache
// validity (the embedder's guest memory, which compiled blocks actually
// depend on, is unaffected by this call). Resolved here as an Open Question
// rather than left ambiguous.
func (e *Engine) Reset() {
	*e.state = *guest.New()
}

// ClearCache discards every cached block, resets the RSB and fast-dispatch
// table, and bumps the invalidation generation -- the full-invalidation
// contract of §4.6/§4.7, invoked directly (not mid-Run, so the queue+halt
// indirection invalidate_range/invalidate_all need during execution is
// unnecessary here).
func (e *Engine) ClearCache() {
	inv := e.dispatcher.Invalidator()
	inv.QueueAll(e.state)
	inv.Drain(e.state)
	if e.metrics != nil {
		e.metrics.Invalidations.Inc()
		e.metrics.Generation.Set(float64(inv.Generation()))
	}
}

// InvalidateCacheRange evicts every cached block whose translated input
// overlaps [start, start+length), per §4.7's range invalidation algorithm.
func (e *Engine) InvalidateCacheRange(start, length uint32) {
	inv := e.dispatcher.Invalidator()
	inv.QueueRange(e.state, start, length)
	inv.Drain(e.state)
	if e.metrics != nil {
		e.metrics.Invalidations.Inc()
		e.metrics.Generation.Set(float64(inv.Generation()))
	}
}

// Close releases the engine's code buffer's mapped memory. The Engine must
// not be used afterward.
func (e *Engine) Close() error {
	return e.buf.Close()
}

// Metrics exposes the engine's Prometheus collectors for the embedder to
// register with its own registry.
func (e *Engine) Metrics() *telemetry.Metrics { return e.metrics }

// Register returns guest register n (0-15; 13=SP, 14=LR, 15=PC).
func (e *Engine) Register(n int) uint32 { return e.state.R[n] }

// SetRegister writes guest register n.
func (e *Engine) SetRegister(n int, v uint32) { e.state.R[n] = v }

// PC returns the current guest program counter (R15).
func (e *Engine) PC() uint32 { return e.state.R[15] }

// SetPC writes the guest program counter (R15).
func (e *Engine) SetPC(pc uint32) { e.state.R[15] = pc }

// SingleRegister returns VFP single-precision register Sn.
func (e *Engine) SingleRegister(n int) float32 { return e.state.S[n] }

// SetSingleRegister writes VFP single-precision register Sn.
func (e *Engine) SetSingleRegister(n int, v float32) { e.state.S[n] = v }

// DoubleRegister returns the bit pattern of VFP double-precision register
// Dn, aliased onto the S bank per the VFP register-aliasing rule.
func (e *Engine) DoubleRegister(n int) uint64 { return e.state.D(n) }

// SetDoubleRegister writes Dn's bit pattern through its aliased S pair.
func (e *Engine) SetDoubleRegister(n int, bits uint64) { e.state.SetD(n, bits) }

// NZCV returns the packed condition flags (bit3=N bit2=Z bit1=C bit0=V).
func (e *Engine) NZCV() uint8 { return e.state.NZCV }

// SetNZCV writes the packed condition flags.
func (e *Engine) SetNZCV(v uint8) { e.state.NZCV = v }

// QFlag returns the cumulative (sticky) saturation flag.
func (e *Engine) QFlag() bool { return e.state.Q }

// SetQFlag writes the cumulative saturation flag.
func (e *Engine) SetQFlag(v bool) { e.state.Q = v }

// GEFlags returns the four SIMD greater-than-or-equal flags.
func (e *Engine) GEFlags() [4]bool { return e.state.GE }

// SetGEFlags writes the four SIMD greater-than-or-equal flags.
func (e *Engine) SetGEFlags(v [4]bool) { e.state.GE = v }

// Thumb reports whether the guest is currently executing Thumb
// instructions.
func (e *Engine) Thumb() bool { return e.state.IsThumb() }

// SetThumb switches between A32 and Thumb decode.
func (e *Engine) SetThumb(v bool) { e.state.SetThumb(v) }

// Disassemble renders the guest instruction word at loc as text, per §6's
// debug disassemble(descriptor) operation. See internal/frontend/disasm.go
// for the renderer's scope (mnemonic + raw operand fields, not a full
// syntax printer).
func (e *Engine) Disassemble(loc guest.Location) (string, error) {
	word, err := e.cb.MemoryReadCode(loc.PC)
	if err != nil {
		return "", errors.Wrapf(err, "a32jit: disassemble: fetch word at %#x", loc.PC)
	}
	return frontend.Disassemble(word, loc.IsThumb()), nil
}

// CurrentLocation derives the cache-key Location from live guest state,
// useful for passing to Disassemble at the current PC.
func (e *Engine) CurrentLocation() guest.Location {
	return e.state.CurrentLocation(e.state.FPSCRMode, false)
}
