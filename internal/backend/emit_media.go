package backend

import (
	"github.com/a18532086/a32jit/internal/asmx64"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

// emitMulHigh lowers the high-word multiply family. Both operands fit in
// 32 bits, so their 64-bit (signed- or zero-extended) product always fits
// within a single 64-bit register; a 64-bit-width IMulRegReg therefore
// computes the exact mathematical product (not merely its low 64 bits,
// which is all IMulRegReg's two-operand form ever promises in general),
// and the high 32 bits the architecture wants are simply that product
// shifted right by 32 -- arithmetically for the signed variant, logically
// for the unsigned one.
func (e *emitter) emitMulHigh(v ir.Value, op ir.Op, signed bool) {
	e.loadArg(op.Args[0], scratchReg)
	e.loadArg(op.Args[1], scratchReg2)
	if signed {
		e.asm.MovsxdReg(scratchReg, scratchReg)
		e.asm.MovsxdReg(scratchReg2, scratchReg2)
		e.asm.IMulRegReg(scratchReg, scratchReg2)
		e.asm.SarRegImm8(scratchReg, 32)
	} else {
		e.asm.IMulRegReg(scratchReg, scratchReg2)
		e.asm.ShrRegImm8(scratchReg, 32)
	}
	e.trunc32(scratchReg)
	e.storeResult(v, scratchReg)
}

// emitSelect lowers Args=[cond,ifTrue,ifFalse] branch-free: mask is 0 or
// all-ones depending on cond, and result = ifFalse ^ ((ifTrue^ifFalse) &
// mask). cond is always 0/1 per TypeU1's convention, so NegReg(mask)
// turns it into exactly the all-zeros/all-ones selector this needs.
func (e *emitter) emitSelect(v ir.Value, op ir.Op) {
	e.loadArg(op.Args[0], scratchReg)
	e.asm.NegReg(scratchReg)
	e.withTemps(2, func(t []asmx64.Reg) {
		trueV, falseV := t[0], t[1]
		e.loadArg(op.Args[1], trueV)
		e.loadArg(op.Args[2], falseV)
		e.asm.XorRegReg(trueV, falseV)
		e.asm.AndRegReg(trueV, scratchReg)
		e.asm.XorRegReg(falseV, trueV)
		e.trunc32(falseV)
		e.storeResult(v, falseV)
	})
}

// argWidth reports the bit width of a's value, used by ZeroExtend/
// SignExtend to pick the right Movzx/Movsx source width; an immediate
// argument is always treated as already full width.
func (e *emitter) argWidth(a ir.Arg) int {
	if a.IsImm {
		return 32
	}
	return typeWidth(e.block.Ops[a.Val].Type)
}

func typeWidth(t ir.Type) int {
	switch t {
	case ir.TypeU1:
		return 1
	case ir.TypeU8:
		return 8
	case ir.TypeU16:
		return 16
	default:
		return 32
	}
}

func (e *emitter) emitZeroExtend(v ir.Value, op ir.Op) {
	srcWidth := e.argWidth(op.Args[0])
	e.loadArg(op.Args[0], scratchReg)
	switch srcWidth {
	case 1:
		e.asm.AndRegImm32(scratchReg, 1)
	case 8:
		e.asm.MovzxReg8(scratchReg, scratchReg)
	case 16:
		e.asm.MovzxReg16(scratchReg, scratchReg)
	}
	e.storeResult(v, scratchReg)
}

func (e *emitter) emitSignExtend(v ir.Value, op ir.Op) {
	srcWidth := e.argWidth(op.Args[0])
	e.loadArg(op.Args[0], scratchReg)
	switch srcWidth {
	case 1:
		e.asm.AndRegImm32(scratchReg, 1)
		e.asm.NegReg(scratchReg)
	case 8:
		e.asm.MovsxReg8(scratchReg, scratchReg)
	case 16:
		e.asm.MovsxReg16(scratchReg, scratchReg)
	}
	e.trunc32(scratchReg)
	e.storeResult(v, scratchReg)
}

// packedOpSigned reports whether op's two 16-bit lanes should be sign- or
// zero-extended before computing, per the opcode's U/S suffix.
func packedOpSigned(op ir.Opcode) bool {
	switch op {
	case ir.OpPackedAddU16, ir.OpPackedSubU16, ir.OpPackedAddSubXU16, ir.OpPackedSubAddXU16:
		return false
	default:
		return true
	}
}

// emitPackedOp lowers the packed-16-lane media family as two scalar
// lane-wise operations rather than native SIMD: each operand's low/high
// halfword is sign- or zero-extended into its own 64-bit temporary, the
// lanes are combined per the opcode's cross/halving variant, and the two
// 16-bit results are masked and repacked into the result word. This wraps
// silently on overflow exactly like the U/S (non-saturating) ARM media
// instructions it targets.
func (e *emitter) emitPackedOp(v ir.Value, op ir.Op) {
	e.loadArg(op.Args[0], scratchReg)
	e.loadArg(op.Args[1], scratchReg2)
	e.withTemps(4, func(t []asmx64.Reg) {
		aLo, aHi, bLo, bHi := t[0], t[1], t[2], t[3]
		signed := packedOpSigned(op.Opcode)

		e.asm.MovRegReg(aHi, scratchReg)
		e.asm.ShrRegImm8(aHi, 16)
		e.asm.MovRegReg(bHi, scratchReg2)
		e.asm.ShrRegImm8(bHi, 16)
		if signed {
			e.asm.MovsxReg16(aLo, scratchReg)
			e.asm.MovsxReg16(aHi, aHi)
			e.asm.MovsxReg16(bLo, scratchReg2)
			e.asm.MovsxReg16(bHi, bHi)
		} else {
			e.asm.MovzxReg16(aLo, scratchReg)
			e.asm.MovzxReg16(aHi, aHi)
			e.asm.MovzxReg16(bLo, scratchReg2)
			e.asm.MovzxReg16(bHi, bHi)
		}

		var resLo, resHi asmx64.Reg
		switch op.Opcode {
		case ir.OpPackedAddS16, ir.OpPackedAddU16:
			e.asm.AddRegReg(aLo, bLo)
			e.asm.AddRegReg(aHi, bHi)
			resLo, resHi = aLo, aHi
		case ir.OpPackedSubS16, ir.OpPackedSubU16:
			e.asm.SubRegReg(aLo, bLo)
			e.asm.SubRegReg(aHi, bHi)
			resLo, resHi = aLo, aHi
		case ir.OpPackedAddSubXS16, ir.OpPackedAddSubXU16: // ASX: lo=a.lo+b.hi, hi=a.hi-b.lo
			e.asm.AddRegReg(aLo, bHi)
			e.asm.SubRegReg(aHi, bLo)
			resLo, resHi = aLo, aHi
		case ir.OpPackedSubAddXS16, ir.OpPackedSubAddXU16: // SAX: lo=a.lo-b.hi, hi=a.hi+b.lo
			e.asm.SubRegReg(aLo, bHi)
			e.asm.AddRegReg(aHi, bLo)
			resLo, resHi = aLo, aHi
		case ir.OpPackedHalvingAddS16:
			e.asm.AddRegReg(aLo, bLo)
			e.asm.SarRegImm8(aLo, 1)
			e.asm.AddRegReg(aHi, bHi)
			e.asm.SarRegImm8(aHi, 1)
			resLo, resHi = aLo, aHi
		case ir.OpPackedHalvingSubS16:
			e.asm.SubRegReg(aLo, bLo)
			e.asm.SarRegImm8(aLo, 1)
			e.asm.SubRegReg(aHi, bHi)
			e.asm.SarRegImm8(aHi, 1)
			resLo, resHi = aLo, aHi
		case ir.OpPackedHalvingAddSubXS16: // SHASX
			e.asm.AddRegReg(aLo, bHi)
			e.asm.SarRegImm8(aLo, 1)
			e.asm.SubRegReg(aHi, bLo)
			e.asm.SarRegImm8(aHi, 1)
			resLo, resHi = aLo, aHi
		case ir.OpPackedHalvingSubAddXS16: // SHSAX
			e.asm.SubRegReg(aLo, bHi)
			e.asm.SarRegImm8(aLo, 1)
			e.asm.AddRegReg(aHi, bLo)
			e.asm.SarRegImm8(aHi, 1)
			resLo, resHi = aLo, aHi
		}

		e.asm.AndRegImm32(resLo, 0xFFFF)
		e.asm.AndRegImm32(resHi, 0xFFFF)
		e.asm.ShlRegImm8(resHi, 16)
		e.asm.OrRegReg(resLo, resHi)
		e.trunc32(resLo)
		e.storeResult(v, resLo)
	})
}

// emitDualMulAdd lowers the saturating dual 16x16 multiply-accumulate
// (result, Q = a.lo*b.lo + a.hi*b.hi (+ accum), saturating). Each lane
// product and the running sum are computed in a 64-bit register, where
// they cannot overflow (two signed 16-bit products plus a signed 32-bit
// accumulator stay well within 64 bits), so the saturation test is a
// plain signed 64-bit compare against the INT32 bounds rather than
// needing any overflow-flag trickery. Q is sticky in the architecture and
// is written unconditionally true on saturation, never cleared here.
func (e *emitter) emitDualMulAdd(v ir.Value, op ir.Op) {
	e.loadArg(op.Args[0], scratchReg)
	e.loadArg(op.Args[1], scratchReg2)
	e.withTemps(6, func(t []asmx64.Reg) {
		aLo, aHi, bLo, bHi, sum, bound := t[0], t[1], t[2], t[3], t[4], t[5]

		e.asm.MovRegReg(aHi, scratchReg)
		e.asm.ShrRegImm8(aHi, 16)
		e.asm.MovRegReg(bHi, scratchReg2)
		e.asm.ShrRegImm8(bHi, 16)
		e.asm.MovsxReg16(aLo, scratchReg)
		e.asm.MovsxReg16(aHi, aHi)
		e.asm.MovsxReg16(bLo, scratchReg2)
		e.asm.MovsxReg16(bHi, bHi)

		e.asm.IMulRegReg(aLo, bLo)
		e.asm.IMulRegReg(aHi, bHi)
		e.asm.MovRegReg(sum, aLo)
		e.asm.AddRegReg(sum, aHi)
		if len(op.Args) > 2 {
			e.loadArg(op.Args[2], bLo)
			e.asm.MovsxdReg(bLo, bLo)
			e.asm.AddRegReg(sum, bLo)
		}

		noHigh := e.newLabel("dmulnohigh")
		e.asm.MovRegImm64(bound, 0x7FFFFFFF)
		e.asm.CmpRegReg(sum, bound)
		e.asm.JccLabel(asmx64.CondLE, noHigh)
		e.asm.MovRegReg(sum, bound)
		e.asm.MovRegImm32(aLo, 1)
		e.asm.MovMemReg8(StateReg, int32(guest.OffsetQ), aLo)
		e.asm.Label(noHigh)

		noLow := e.newLabel("dmulnolow")
		e.asm.MovRegImm64(bound, 0xFFFFFFFF80000000)
		e.asm.CmpRegReg(sum, bound)
		e.asm.JccLabel(asmx64.CondGE, noLow)
		e.asm.MovRegReg(sum, bound)
		e.asm.MovRegImm32(aLo, 1)
		e.asm.MovMemReg8(StateReg, int32(guest.OffsetQ), aLo)
		e.asm.Label(noLow)

		e.trunc32(sum)
		e.storeResult(v, sum)
	})
}
