package a32jit

import "github.com/a18532086/a32jit/internal/guest"

// Context is the opaque snapshot §6 names: every guest register, flag, and
// FP register, plus the invalidation generation in force when it was
// captured. Grounded on the teacher's State struct (pvm/recompiler.go),
// generalized to carry the generation counter load_context needs to decide
// whether a restored RSB could point at since-invalidated code.
type Context struct {
	R               [16]uint32
	S               [64]float32
	NZCV            uint8
	Q               bool
	GE              [4]bool
	ITState         uint8
	BigEndian       bool
	Thumb           bool
	FPSCRMode       uint32
	FPSCRCumulative uint32
	Monitor         guest.ExclusiveMonitor
	Generation      uint64
}

// SaveContext captures every piece of observable guest state plus the
// invalidation generation at the moment of the call.
func (e *Engine) SaveContext() Context {
	s := e.state
	return Context{
		R:               s.R,
		S:               s.S,
		NZCV:            s.NZCV,
		Q:               s.Q,
		GE:              s.GE,
		ITState:         s.ITState,
		BigEndian:       s.BigEndian,
		Thumb:           s.IsThumb(),
		FPSCRMode:       s.FPSCRMode,
		FPSCRCumulative: s.FPSCRCumulative,
		Monitor:         s.Monitor,
		Generation:      e.dispatcher.Invalidator().Generation(),
	}
}

// LoadContext restores ctx's guest state. Per §6, if ctx.Generation
// differs from the engine's current invalidation generation the RSB is
// cleared: some of ctx's register values (notably R15/PC, which a caller
// might restore to a location whose compiled block has since been
// invalidated) could otherwise resolve an RSB entry pointing at freed
// code.
func (e *Engine) LoadContext(ctx Context) {
	s := e.state
	s.R = ctx.R
	s.S = ctx.S
	s.NZCV = ctx.NZCV
	s.Q = ctx.Q
	s.GE = ctx.GE
	s.ITState = ctx.ITState
	s.BigEndian = ctx.BigEndian
	s.SetThumb(ctx.Thumb)
	s.FPSCRMode = ctx.FPSCRMode
	s.FPSCRCumulative = ctx.FPSCRCumulative
	s.Monitor = ctx.Monitor

	if ctx.Generation != e.dispatcher.Invalidator().Generation() {
		s.ResetRSB()
	}
}
