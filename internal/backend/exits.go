package backend

// ExitReason is the value every compiled block leaves in RAX before its
// epilogue's final ret, telling internal/dispatch what to do next. Grounded
// on the teacher's emitExitGo convention (pvm/jit/codegen.go): every
// compiled function always returns to Go rather than jumping natively to
// another compiled function, carrying a small reason code plus a payload.
type ExitReason uint64

const (
	// ExitReturnToDispatch means the dispatcher re-derives the full
	// descriptor and looks it up or compiles it (current ITState/mode bits
	// are read back from State directly). RDX holds the guest Location.PC
	// to resume at whenever the frontend could pin that PC down statically
	// (SVC, BKPT, an undefined-instruction trap); a block whose own
	// instruction wrote a runtime-computed target into R15 (BX/BLX(reg), an
	// indirect PC-writing load) instead leaves RDX zero and expects the
	// dispatcher to read the live State.R[15] it already wrote there.
	ExitReturnToDispatch ExitReason = iota

	// ExitLinkBlock and ExitLinkBlockFast both mean "fall through to the
	// block at the fixed Location baked into this exit site". Both always
	// exit to the dispatcher: no code in this repository patches an exit
	// into a direct native jump to another compiled block.
	ExitLinkBlock
	ExitLinkBlockFast

	// ExitPopRSBHint asks the dispatcher to consult guest.State.RSB before
	// falling back to a full lookup, per the return-address predictor.
	ExitPopRSBHint

	// ExitFastDispatchHint asks the dispatcher to probe
	// guest.State.FastDispatch's direct-mapped table by the target
	// descriptor's truncated hash before falling back to the full cache.
	ExitFastDispatchHint

	// ExitInterpret asks the dispatcher to re-run frontend.Translate at
	// the target Location with Options.ForceUnconditionalFirst set,
	// compiling (and then running) exactly the one instruction whose
	// guarded effect this block could not express inline, rather than
	// building a second execution engine.
	ExitInterpret

	// ExitCallback asks the dispatcher to service guest.State.Pending: the
	// backend never performs a memory access, SVC, or exception
	// notification itself (the embedder's Callbacks is the only thing
	// allowed to touch those), so it always stops just short of one and
	// exits here instead.
	ExitCallback

	// ExitCheckHalt and ExitCheckBit are folded into the other exit
	// reasons at lowering time (internal/backend emits the native compare
	// itself); they exist as Terminator-level concepts in internal/ir but
	// never appear as a literal RAX value, since CheckHalt/CheckBit always
	// wrap one of the Terminator kinds above as their Then/Else branch.
)

// payloadPC widens a Location's PC for storage as the exit payload.
// Exits never need more than the raw 32-bit guest PC; ITState/mode bits
// live in State and are read back there, not round-tripped through RDX.
func payloadPC(pc uint32) uint64 { return uint64(pc) }
