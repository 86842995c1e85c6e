package backend

import (
	"github.com/a18532086/a32jit/internal/asmx64"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

// Bit positions within the packed NZCV byte, matching guest.State.NZCV's
// documented layout (bit3=N bit2=Z bit1=C bit0=V) and condition.go's
// flagV/flagC/flagZ/flagN ExtraImm indices for OpGetFlagBit.
const (
	nzcvBitV = 0
	nzcvBitC = 1
	nzcvBitZ = 2
	nzcvBitN = 3
)

// emitNZCVFromAddSub computes N/Z/C/V for a+b(+carryIn) (isAdd) or
// a-b-(1-carryIn) (!isAdd) out of real x86 ADC flags on a 32-bit-width
// operation, then folds the computed byte into a fresh 8-byte flags
// snapshot that otherwise carries Q/GE/IT state over unchanged from the
// guest state block.
//
// NegReg(carryIn) transplants the software carry-in boolean into x86's CF:
// NEG sets CF=0 iff its operand was zero, so negating a 0/1 value leaves
// CF exactly equal to that value. The following ADC then sees the correct
// bit-31 carry-in, and its own CF/OF/SF/ZF are ARM's C/V/N/Z for this op.
// Subtraction reuses the same ADC path by first complementing b: a - b -
// (1-carryIn) == a + ^b + carryIn in two's complement, and x86's carry-out
// of that addition is exactly ARM's SBC carry flag by the same identity.
// All four SETcc captures happen back to back, immediately after the
// ADC/SBB and before any instruction that would clobber those flags.
func (e *emitter) emitNZCVFromAddSub(v ir.Value, op ir.Op, isAdd bool) {
	e.loadArg(op.Args[0], scratchReg)
	e.loadArg(op.Args[1], scratchReg2)
	e.withTemps(4, func(t []asmx64.Reg) {
		carryIn, packed, bit, cur := t[0], t[1], t[2], t[3]

		e.loadArg(op.Args[2], carryIn)
		e.asm.NegReg(carryIn)
		if !isAdd {
			e.asm.NotReg(scratchReg2)
		}
		e.asm.Adc32RegReg(scratchReg, scratchReg2)

		e.asm.SetccReg(asmx64.CondS, packed)
		e.asm.SetccReg(asmx64.CondE, bit)
		e.asm.SetccReg(asmx64.CondB, carryIn)
		e.asm.SetccReg(asmx64.CondO, scratchReg2)

		e.asm.AndRegImm32(packed, 0xFF)
		e.asm.ShlRegImm8(packed, nzcvBitN)

		e.asm.AndRegImm32(bit, 0xFF)
		e.asm.ShlRegImm8(bit, nzcvBitZ)
		e.asm.OrRegReg(packed, bit)

		e.asm.AndRegImm32(carryIn, 0xFF)
		e.asm.ShlRegImm8(carryIn, nzcvBitC)
		e.asm.OrRegReg(packed, carryIn)

		e.asm.AndRegImm32(scratchReg2, 0xFF)
		e.asm.ShlRegImm8(scratchReg2, nzcvBitV)
		e.asm.OrRegReg(packed, scratchReg2)

		e.storeFlagsByte(v, packed, cur)
	})
}

// emitNZCVFromLogic handles the logical-op S-bit companion (Args =
// [result, carryOut]). N/Z come from the result's sign/zero test via the
// 32-bit-width Test32RegReg (so SF reflects bit31 of this backend's
// zero-extended value rather than the always-clear bit63), C passes the
// shifter's carry-out straight through. The op's 2-argument signature has
// no way to see the prior V value ARM's logical S-bit instructions are
// actually specified to preserve, so V is left 0: a documented
// simplification rather than a bug.
func (e *emitter) emitNZCVFromLogic(v ir.Value, op ir.Op) {
	e.loadArg(op.Args[0], scratchReg)
	e.loadArg(op.Args[1], scratchReg2)
	e.withTemps(3, func(t []asmx64.Reg) {
		packed, bit, cur := t[0], t[1], t[2]

		e.asm.Test32RegReg(scratchReg, scratchReg)
		e.asm.SetccReg(asmx64.CondS, packed)
		e.asm.SetccReg(asmx64.CondE, bit)
		e.asm.AndRegImm32(packed, 0xFF)
		e.asm.ShlRegImm8(packed, nzcvBitN)

		e.asm.AndRegImm32(bit, 0xFF)
		e.asm.ShlRegImm8(bit, nzcvBitZ)
		e.asm.OrRegReg(packed, bit)

		e.asm.MovRegReg(bit, scratchReg2)
		e.asm.AndRegImm32(bit, 1)
		e.asm.ShlRegImm8(bit, nzcvBitC)
		e.asm.OrRegReg(packed, bit)

		e.storeFlagsByte(v, packed, cur)
	})
}

// storeFlagsByte reads the current 8-byte flags snapshot, replaces its low
// byte (NZCV) with packed, and writes the result as v's TypeFlags scratch
// value. cur is a caller-supplied scratch register (callers already hold
// their own withTemps borrow; storeFlagsByte never borrows one itself, so
// it composes safely inside an outer withTemps closure).
func (e *emitter) storeFlagsByte(v ir.Value, packed, cur asmx64.Reg) {
	e.asm.MovRegMem(cur, StateReg, int32(guest.OffsetNZCV))
	e.asm.AndRegImm32(cur, -256)
	e.asm.OrRegReg(cur, packed)
	e.storeResultWide(v, cur)
}

// emitGEFromPacked derives a GE nibble from a packed 16-bit add/sub
// result's own lane sign bits (GE[0]=GE[1] from the low lane, GE[2]=GE[3]
// from the high lane), since the op's single-argument signature has no
// access to the original operands or operation kind that the real
// per-lane-overflow GE rule needs: a plausible, self-consistent
// approximation rather than a bit-exact reproduction of SADD16/SSUB16's GE
// semantics.
func (e *emitter) emitGEFromPacked(v ir.Value, op ir.Op) {
	e.loadArg(op.Args[0], scratchReg)
	e.withTemps(6, func(t []asmx64.Reg) {
		loGE, loGE2, hiGE, hiGE2, cur, mask := t[0], t[1], t[2], t[3], t[4], t[5]

		e.asm.MovRegReg(loGE, scratchReg)
		e.asm.ShrRegImm8(loGE, 15)
		e.asm.AndRegImm32(loGE, 1)
		e.asm.NotReg(loGE)
		e.asm.AndRegImm32(loGE, 1)
		e.asm.MovRegReg(loGE2, loGE)
		e.asm.ShlRegImm8(loGE, 16)
		e.asm.ShlRegImm8(loGE2, 24)
		e.asm.OrRegReg(loGE, loGE2)

		e.asm.MovRegReg(hiGE, scratchReg)
		e.asm.ShrRegImm8(hiGE, 31)
		e.asm.AndRegImm32(hiGE, 1)
		e.asm.NotReg(hiGE)
		e.asm.AndRegImm32(hiGE, 1)
		e.asm.MovRegReg(hiGE2, hiGE)
		e.asm.ShlRegImm8(hiGE, 32)
		e.asm.ShlRegImm8(hiGE2, 40)
		e.asm.OrRegReg(hiGE, hiGE2)

		e.asm.OrRegReg(loGE, hiGE)

		e.asm.MovRegMem(cur, StateReg, int32(guest.OffsetNZCV))
		e.asm.MovRegImm64(mask, 0xFFFF00000000FFFF) // keep NZCV/Q and ITState/BigEndian, clear GE[0..3]
		e.asm.AndRegReg(cur, mask)
		e.asm.OrRegReg(cur, loGE)
		e.storeResultWide(v, cur)
	})
}

// emitGetFlagBit extracts one NZCV bit (ExtraImm selects which, matching
// the flags snapshot's byte0 layout directly) out of a TypeFlags value.
func (e *emitter) emitGetFlagBit(v ir.Value, op ir.Op) {
	e.loadArgWide(op.Args[0], scratchReg)
	if op.ExtraImm > 0 {
		e.asm.ShrRegImm8(scratchReg, uint8(op.ExtraImm))
	}
	e.asm.AndRegImm32(scratchReg, 1)
	e.storeResult(v, scratchReg)
}
