package backend

import (
	"github.com/a18532086/a32jit/internal/asmx64"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

// emitTerminator recursively lowers a block's Terminator tree. Leaf kinds
// load a fixed (ExitReason, payload) pair into RAX/RDX and fall into the
// shared epilogue; composite kinds (If/CheckBit/CheckHalt) emit a native
// compare-and-branch and recurse into each arm, which always ends in its
// own epilogue+ret, so no merge point is ever needed.
func (e *emitter) emitTerminator(t *ir.Terminator) {
	if t == nil {
		e.emitLeaf(ExitReturnToDispatch, e.block.Location.PC)
		return
	}
	switch t.Kind {
	case ir.TermInterpret:
		e.emitLeaf(ExitInterpret, t.Target.PC)
	case ir.TermReturnToDispatch:
		e.emitLeaf(ExitReturnToDispatch, t.Target.PC)
	case ir.TermLinkBlock:
		e.emitLeaf(ExitLinkBlock, t.Target.PC)
	case ir.TermLinkBlockFast:
		e.emitLeaf(ExitLinkBlockFast, t.Target.PC)
	case ir.TermPopRSBHint:
		e.emitLeaf(ExitPopRSBHint, t.Target.PC)
	case ir.TermFastDispatchHint:
		e.emitLeaf(ExitFastDispatchHint, t.Target.PC)
	case ir.TermIf:
		e.emitIf(t)
	case ir.TermCheckBit:
		e.emitCheckByteField(int32(t.CheckBit), t)
	case ir.TermCheckHalt:
		e.emitCheckHalt(t)
	default:
		panic("backend: unhandled terminator kind")
	}
}

func (e *emitter) emitLeaf(reason ExitReason, pc uint32) {
	e.asm.MovRegImm64(asmx64.RAX, uint64(reason))
	e.asm.MovRegImm64(asmx64.RDX, payloadPC(pc))
	e.emitEpilogueAndRet()
}

// emitIf branches on a prior op's U1 result: nonzero takes Then, zero
// takes Else.
func (e *emitter) emitIf(t *ir.Terminator) {
	e.loadValue(t.Cond, scratchReg)
	e.asm.TestRegReg(scratchReg, scratchReg)
	elseLabel := e.newLabel("ifelse")
	e.asm.JccLabel(asmx64.CondE, elseLabel)
	e.emitTerminator(t.Then)
	e.asm.Label(elseLabel)
	e.emitTerminator(t.Else)
}

// emitCheckHalt wraps Then in a guest.State.HaltRequested test: a pending
// halt exits back to the dispatcher at this block's own entry PC (so the
// next Run call re-enters exactly here once the halt is serviced) instead
// of proceeding into Then.
func (e *emitter) emitCheckHalt(t *ir.Terminator) {
	e.asm.MovRegMem8(scratchReg, StateReg, int32(guest.OffsetHaltRequested))
	e.asm.TestRegReg(scratchReg, scratchReg)
	notHalted := e.newLabel("nothalted")
	e.asm.JccLabel(asmx64.CondE, notHalted)
	e.emitLeaf(ExitReturnToDispatch, e.block.Location.PC)
	e.asm.Label(notHalted)
	e.emitTerminator(t.Then)
}

// emitCheckByteField tests a single byte at a fixed displacement off
// StateReg for nonzero, branching Then (nonzero)/Else (zero). This is the
// general form TermCheckHalt is a fixed instance of; TermCheckBit's
// CheckBit is resolved as that displacement (DESIGN.md records the
// decision), letting any future single-byte guest-state condition (e.g.
// guest.OffsetMonitorValid) reuse the same compare-and-branch shape
// without a new Terminator kind.
func (e *emitter) emitCheckByteField(disp int32, t *ir.Terminator) {
	e.asm.MovRegMem8(scratchReg, StateReg, disp)
	e.asm.TestRegReg(scratchReg, scratchReg)
	elseLabel := e.newLabel("checkbitelse")
	e.asm.JccLabel(asmx64.CondE, elseLabel)
	e.emitTerminator(t.Then)
	e.asm.Label(elseLabel)
	e.emitTerminator(t.Else)
}
