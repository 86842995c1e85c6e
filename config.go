package a32jit

import (
	"io"

	"github.com/a18532086/a32jit/internal/frontend"
)

// defaultMaxBlockInstructions mirrors frontend.DefaultOptions;
// Config.maxBlockInstructions applies it whenever MaxBlockInstructions is
// left at zero.
const defaultMaxBlockInstructions = 128

// defaultLowWaterBytes is the literal §4.6 suggestion ("e.g. 1 MiB"),
// applied whenever Config.CodeBufferLowWaterBytes is left at zero.
const defaultLowWaterBytes = 1 << 20

// Config is the enumerated user configuration of §6: the embedder's
// Callbacks plus every knob that changes how a guest program is
// translated and dispatched. Grounded on the teacher's cmd/jamzilla
// Config struct (a plain Go struct, no builder/options-pattern
// indirection) rather than functional options, matching the pack's own
// preference for a single config value over a chain of `With...` calls.
type Config struct {
	// Callbacks is the embedder's memory/timing/SVC/exception
	// collaborator. Required; New returns an error if nil.
	Callbacks frontend.Callbacks

	// DefineUnpredictableBehaviour is carried for §6 API parity but has
	// no effect in this implementation: no translation code reads it, so
	// UNPREDICTABLE guest inputs are handled the same way whatever its
	// value. See frontend.Options.
	DefineUnpredictableBehaviour bool

	// HookHint is carried for §6 API parity but has no effect in this
	// implementation: nothing reads it and emitted blocks carry no tag.
	// See frontend.Options.
	HookHint bool

	// EnableFastDispatch is carried for §6 API parity but has no effect
	// in this implementation: every compiled block always exits back
	// through Go (see internal/backend/emit_terminators.go), so the
	// fast-dispatch table is consulted at the Go level by
	// internal/dispatch unconditionally rather than gated by an
	// emitted-code fast path an embedder could opt out of.
	EnableFastDispatch bool

	// PageTablePointer is carried for §6 API parity (the enumerated
	// config names it as an optional fast-path for guest memory access)
	// but is unused: this backend never dereferences guest memory
	// directly from emitted code, routing every access through
	// Callbacks instead (see internal/backend/emit_callback.go), so
	// there is no native page-table walk for a pointer to seed.
	PageTablePointer uintptr

	// Coprocessors is indexed by CP number 0-15; a nil entry means "not
	// present" (MCR/MRC/CDP/LDC/STC against that CP raises an undefined
	// instruction exception).
	Coprocessors [16]frontend.Coprocessor

	// MaxBlockInstructions bounds a single translation. Zero selects
	// defaultMaxBlockInstructions.
	MaxBlockInstructions int

	// CodeBufferLowWaterBytes is the §4.6 low-memory threshold: once
	// the code buffer's free space in its most recent chunk falls below
	// this, a full cache invalidation runs before the next compile.
	// Zero selects defaultLowWaterBytes.
	CodeBufferLowWaterBytes int64

	// Debug enables internal/alloc.VerifyAccessModes after every
	// emission and makes internal/engineerr.Invariant panic instead of
	// logging and continuing.
	Debug bool

	// InstanceID labels this engine's Prometheus collectors so multiple
	// instances in one process don't collide on registration.
	InstanceID string

	// LogOutput, if non-nil, receives the engine's structured trace
	// lines (decode misses, block compiles, cache evictions,
	// invalidations, dispatcher re-entries) via internal/telemetry. Nil
	// disables logging entirely at zero overhead.
	LogOutput io.Writer
}

func (c Config) maxBlockInstructions() int {
	if c.MaxBlockInstructions > 0 {
		return c.MaxBlockInstructions
	}
	return defaultMaxBlockInstructions
}

func (c Config) lowWaterBytes() int64 {
	if c.CodeBufferLowWaterBytes > 0 {
		return c.CodeBufferLowWaterBytes
	}
	return defaultLowWaterBytes
}
