package backend

import (
	"github.com/a18532086/a32jit/internal/asmx64"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

// isCallbackOp reports whether opcode is one the backend never compiles
// into native code itself: guest memory access, the exclusive monitor's
// read/write pair, SVC, and exception notification all route through the
// embedder's Callbacks instead, so a block carrying one of these always
// ends right there rather than running its own terminator.
func isCallbackOp(op ir.Opcode) bool {
	switch op {
	case ir.OpReadMemory8, ir.OpReadMemory16, ir.OpReadMemory32, ir.OpReadMemory64,
		ir.OpWriteMemory8, ir.OpWriteMemory16, ir.OpWriteMemory32, ir.OpWriteMemory64,
		ir.OpExclusiveReadMemory32, ir.OpExclusiveWriteMemory32,
		ir.OpCallSVC, ir.OpExceptionRaised:
		return true
	default:
		return false
	}
}

// callbackKindFor maps a callback-issuing opcode to the guest.CallbackKind
// the dispatcher services it under.
func callbackKindFor(opcode ir.Opcode) guest.CallbackKind {
	switch opcode {
	case ir.OpReadMemory8:
		return guest.CallbackMemRead8
	case ir.OpReadMemory16:
		return guest.CallbackMemRead16
	case ir.OpReadMemory32:
		return guest.CallbackMemRead32
	case ir.OpReadMemory64:
		return guest.CallbackMemRead64
	case ir.OpWriteMemory8:
		return guest.CallbackMemWrite8
	case ir.OpWriteMemory16:
		return guest.CallbackMemWrite16
	case ir.OpWriteMemory32:
		return guest.CallbackMemWrite32
	case ir.OpWriteMemory64:
		return guest.CallbackMemWrite64
	case ir.OpExclusiveReadMemory32:
		return guest.CallbackExclusiveRead32
	case ir.OpExclusiveWriteMemory32:
		return guest.CallbackExclusiveWrite32
	case ir.OpCallSVC:
		return guest.CallbackSVC
	case ir.OpExceptionRaised:
		return guest.CallbackException
	default:
		panic("backend: not a callback opcode")
	}
}

// callbackAddrArg reports the guest address argument a callback-issuing op
// carries, for the memory-touching opcodes that have one. SVC and
// exception notification have no address.
func callbackAddrArg(op ir.Op) (ir.Arg, bool) {
	switch op.Opcode {
	case ir.OpReadMemory8, ir.OpReadMemory16, ir.OpReadMemory32, ir.OpReadMemory64,
		ir.OpWriteMemory8, ir.OpWriteMemory16, ir.OpWriteMemory32, ir.OpWriteMemory64,
		ir.OpExclusiveReadMemory32, ir.OpExclusiveWriteMemory32:
		return op.Args[0], true
	default:
		return ir.Arg{}, false
	}
}

// callbackValueArg reports the payload a callback-issuing op sends into
// Pending.Value on the way in: the value a store writes, the SVC
// immediate, or the raised ExceptionKind. A read has nothing to send —
// Value is the dispatcher's to fill in on the way back out, once the
// embedder's callback has actually produced a result.
func callbackValueArg(op ir.Op) (arg ir.Arg, wide bool, ok bool) {
	switch op.Opcode {
	case ir.OpWriteMemory8, ir.OpWriteMemory16, ir.OpWriteMemory32, ir.OpExclusiveWriteMemory32:
		return op.Args[1], false, true
	case ir.OpWriteMemory64:
		return op.Args[1], true, true
	case ir.OpCallSVC, ir.OpExceptionRaised:
		return op.Args[0], false, true
	default:
		return ir.Arg{}, false, false
	}
}

// findDestReg scans forward from the callback op at index i for the single
// trailing SetRegister that consumes its result, directly or through a
// chain of the narrowing/inverting ops the frontend's load and STREX-status
// visitors sandwich between a memory op and its destination write
// (OpZeroExtend, OpSignExtend, OpTrunc, OpNot — see visitors_mem.go). Each
// callback-ending block carries at most one such chain, since memory access
// is always the last real op before the block's terminator. Returns -1 if
// the result is a store's own write-only effect, a plain exclusive clear,
// or a discarded status.
func findDestReg(block *ir.Block, i int) int {
	target := ir.Value(i)
	for j := i + 1; j < len(block.Ops); j++ {
		op := block.Ops[j]
		if !opReferencesValue(op, target) {
			continue
		}
		switch op.Opcode {
		case ir.OpZeroExtend, ir.OpSignExtend, ir.OpTrunc, ir.OpNot:
			target = ir.Value(j)
		case ir.OpSetRegister:
			return int(op.Args[0].Imm)
		default:
			return -1
		}
	}
	return -1
}

func opReferencesValue(op ir.Op, v ir.Value) bool {
	for _, a := range op.Args {
		if !a.IsImm && a.Val == v {
			return true
		}
	}
	return false
}

// emitCallbackExit fills in guest.State.Pending from op and exits with
// ExitCallback, handing the actual memory/SVC/exception access to
// internal/dispatch rather than performing it inline. This is always the
// last thing a block emits: op's own index i is also the index of the last
// real ir.Op the loop in Emit reached.
func (e *emitter) emitCallbackExit(i int, op ir.Op) {
	kind := callbackKindFor(op.Opcode)
	destReg := findDestReg(e.block, i)
	resumePC := e.block.Terminator.Target.PC

	e.asm.MovRegImm32(scratchReg, uint32(kind))
	e.asm.MovMemReg8(StateReg, int32(guest.OffsetPendingKind), scratchReg)

	e.asm.MovRegImm32(scratchReg, uint32(uint8(int8(destReg))))
	e.asm.MovMemReg8(StateReg, int32(guest.OffsetPendingDestReg), scratchReg)

	e.asm.MovRegImm32(scratchReg, resumePC)
	e.asm.MovMemReg32(StateReg, int32(guest.OffsetPendingResumePC), scratchReg)

	if addr, ok := callbackAddrArg(op); ok {
		e.loadArg(addr, scratchReg)
		e.asm.MovMemReg32(StateReg, int32(guest.OffsetPendingAddr), scratchReg)
	}

	if value, wide, ok := callbackValueArg(op); ok {
		if wide {
			e.loadArgWide(value, scratchReg)
			e.asm.MovMemReg(StateReg, int32(guest.OffsetPendingValue), scratchReg)
		} else {
			e.loadArg(value, scratchReg)
			e.asm.MovMemReg32(StateReg, int32(guest.OffsetPendingValue), scratchReg)
		}
	}

	e.asm.MovRegImm64(asmx64.RAX, uint64(ExitCallback))
	e.emitEpilogueAndRet()
}
