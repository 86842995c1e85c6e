// Package backend lowers an optimized, allocated IR block into executable
// x86-64 machine code via internal/asmx64. Grounded on the teacher's
// pvm/jit/compiler.go register convention: a handful of callee-saved host
// registers hold "hot" values for a block's lifetime, one fixed register
// holds the state-block pointer for the whole call, and everything else
// spills through the state block rather than the native stack.
package backend

import "github.com/a18532086/a32jit/internal/asmx64"

// StateReg holds the *guest.State pointer for the lifetime of every
// compiled block, matching the teacher's RDI/StateReg convention (the
// first SysV argument register, never reallocated for anything else).
const StateReg = asmx64.RDI

// scratchReg is reserved for the emitter's own use (address computation,
// temporary holding before a store) and never handed out by internal/alloc.
// The teacher reserves RSI the same way for its flat-RAM base pointer; this
// backend has no raw guest-memory pointer to cache there (memory access
// always routes through the embedder's callbacks), so RSI is free to
// repurpose as the one register the emitter itself needs mid-expression
// without disturbing an allocated value.
const scratchReg = asmx64.RSI

// scratchReg2 is a second emitter-internal register, for ops needing two
// temporaries at once (e.g. computing a shift amount and then the shifted
// value). The teacher's x86asm.go keeps a similar always-available scratch
// pair outside its allocator's pool.
const scratchReg2 = asmx64.R11

// calleeSavedRegs and callerSavedRegs map internal/alloc.RegID's abstract
// [0,NumCalleeSaved) / [NumCalleeSaved,NumRegs) ranges onto concrete x86-64
// registers, in the same order as the teacher's compiler.go hot-register
// table (RBX, R12-R15 first, since those survive a call with no save/
// restore code at all once pushed once in the prologue).
var calleeSavedRegs = [5]asmx64.Reg{
	asmx64.RBX,
	asmx64.R12,
	asmx64.R13,
	asmx64.R14,
	asmx64.R15,
}

// callerSavedRegs backs internal/alloc's non-call-crossing class. RAX/RDX
// double as the epilogue's exit-reason/payload registers, which is fine:
// by the time a block reaches its terminator every other live value has
// already been written back to a guest register or scratch slot.
var callerSavedRegs = [6]asmx64.Reg{
	asmx64.RAX,
	asmx64.RCX,
	asmx64.RDX,
	asmx64.R8,
	asmx64.R9,
	asmx64.R10,
}

// hostReg resolves an alloc.RegID into the concrete register the emitter
// should reference.
func hostReg(id int) asmx64.Reg {
	if id < len(calleeSavedRegs) {
		return calleeSavedRegs[id]
	}
	return callerSavedRegs[id-len(calleeSavedRegs)]
}

// calleeSavedInUse reports which of calleeSavedRegs a block's allocation
// actually touched, so the prologue/epilogue push/pop only what is live
// rather than always saving all five, matching the teacher's per-function
// push set rather than a fixed push-everything prologue.
func calleeSavedInUse(ids map[int]bool) []asmx64.Reg {
	var out []asmx64.Reg
	for i, r := range calleeSavedRegs {
		if ids[i] {
			out = append(out, r)
		}
	}
	return out
}
