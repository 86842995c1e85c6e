package backend

import (
	"github.com/a18532086/a32jit/internal/asmx64"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

// emitOp lowers one non-callback, non-terminator IR op. Pure ops read their
// operands into scratchReg/scratchReg2 (or, for the rarer ops needing more
// working registers, a withTemps borrow), compute with the asmx64
// primitives, and write the 32-bit (truncated) result to v's allocated
// home; impure ops touch the guest state block fields directly.
func (e *emitter) emitOp(v ir.Value, op ir.Op) {
	switch op.Opcode {
	case ir.OpConstant:
		e.loadArg(op.Args[0], scratchReg)
		e.storeResult(v, scratchReg)

	case ir.OpAdd, ir.OpSub, ir.OpAnd, ir.OpOr, ir.OpXor:
		e.loadArg(op.Args[0], scratchReg)
		e.loadArg(op.Args[1], scratchReg2)
		switch op.Opcode {
		case ir.OpAdd:
			e.asm.AddRegReg(scratchReg, scratchReg2)
		case ir.OpSub:
			e.asm.SubRegReg(scratchReg, scratchReg2)
		case ir.OpAnd:
			e.asm.AndRegReg(scratchReg, scratchReg2)
		case ir.OpOr:
			e.asm.OrRegReg(scratchReg, scratchReg2)
		case ir.OpXor:
			e.asm.XorRegReg(scratchReg, scratchReg2)
		}
		e.trunc32(scratchReg)
		e.storeResult(v, scratchReg)

	case ir.OpNot:
		e.loadArg(op.Args[0], scratchReg)
		e.asm.NotReg(scratchReg)
		e.trunc32(scratchReg)
		e.storeResult(v, scratchReg)

	case ir.OpNeg:
		e.loadArg(op.Args[0], scratchReg)
		e.asm.NegReg(scratchReg)
		e.trunc32(scratchReg)
		e.storeResult(v, scratchReg)

	case ir.OpLsl, ir.OpLsr, ir.OpAsr, ir.OpRor:
		e.emitShiftImm(v, op)

	case ir.OpRrx:
		e.loadArg(op.Args[0], scratchReg)
		e.loadArg(op.Args[1], scratchReg2)
		e.asm.ShrRegImm8(scratchReg, 1)
		e.asm.ShlRegImm8(scratchReg2, 31)
		e.asm.OrRegReg(scratchReg, scratchReg2)
		e.trunc32(scratchReg)
		e.storeResult(v, scratchReg)

	case ir.OpLslReg, ir.OpLsrReg, ir.OpAsrReg, ir.OpRorReg:
		e.emitShiftReg(v, op, false)
	case ir.OpLslRegCarry, ir.OpLsrRegCarry, ir.OpAsrRegCarry, ir.OpRorRegCarry:
		e.emitShiftReg(v, op, true)

	case ir.OpMul:
		e.loadArg(op.Args[0], scratchReg)
		e.loadArg(op.Args[1], scratchReg2)
		e.asm.IMulRegReg(scratchReg, scratchReg2)
		e.trunc32(scratchReg)
		e.storeResult(v, scratchReg)

	case ir.OpMulHighSigned, ir.OpMulHighUnsigned:
		e.emitMulHigh(v, op, op.Opcode == ir.OpMulHighSigned)

	case ir.OpSelect:
		e.emitSelect(v, op)

	case ir.OpZeroExtend:
		e.emitZeroExtend(v, op)
	case ir.OpSignExtend:
		e.emitSignExtend(v, op)
	case ir.OpTrunc:
		// Narrower-than-32 results still live in a 32-bit-wide home; the
		// bits beyond the narrowed width are simply never read by a
		// consumer that respects the op's declared Type, so Trunc is a
		// plain value copy here.
		e.loadArg(op.Args[0], scratchReg)
		e.storeResult(v, scratchReg)

	case ir.OpPackedAddS16, ir.OpPackedSubS16, ir.OpPackedAddU16, ir.OpPackedSubU16,
		ir.OpPackedAddSubXS16, ir.OpPackedSubAddXS16, ir.OpPackedAddSubXU16, ir.OpPackedSubAddXU16,
		ir.OpPackedHalvingAddSubXS16, ir.OpPackedHalvingSubAddXS16, ir.OpPackedHalvingAddS16, ir.OpPackedHalvingSubS16:
		e.emitPackedOp(v, op)

	case ir.OpDualMulAddS16:
		e.emitDualMulAdd(v, op)

	case ir.OpExtractLane16:
		e.loadArg(op.Args[0], scratchReg)
		lane := op.Args[1].Imm
		if lane != 0 {
			e.asm.ShrRegImm8(scratchReg, 16)
		}
		e.asm.AndRegImm32(scratchReg, 0xFFFF)
		e.storeResult(v, scratchReg)

	case ir.OpNZCVFromAdd:
		e.emitNZCVFromAddSub(v, op, true)
	case ir.OpNZCVFromSub:
		e.emitNZCVFromAddSub(v, op, false)
	case ir.OpNZCVFromLogic:
		e.emitNZCVFromLogic(v, op)
	case ir.OpGEFromPacked:
		e.emitGEFromPacked(v, op)
	case ir.OpGetFlagBit:
		e.emitGetFlagBit(v, op)

	case ir.OpGetRegister:
		rn := int32(op.Args[0].Imm)
		e.asm.MovRegMem32(scratchReg, StateReg, int32(guest.RegisterOffset(int(rn))))
		e.storeResult(v, scratchReg)
	case ir.OpSetRegister:
		rn := int32(op.Args[0].Imm)
		e.loadArg(op.Args[1], scratchReg)
		e.asm.MovMemReg32(StateReg, int32(guest.RegisterOffset(int(rn))), scratchReg)

	case ir.OpGetFlags:
		e.asm.MovRegMem(scratchReg, StateReg, int32(guest.OffsetNZCV))
		e.storeResultWide(v, scratchReg)
	case ir.OpSetFlags:
		e.loadArgWide(op.Args[0], scratchReg)
		e.asm.MovMemReg(StateReg, int32(guest.OffsetNZCV), scratchReg)

	case ir.OpGetFPSCR:
		e.asm.MovRegMem32(scratchReg, StateReg, int32(guest.OffsetFPSCRMode))
		e.asm.MovRegMem32(scratchReg2, StateReg, int32(guest.OffsetFPSCRCumulative))
		e.asm.ShlRegImm8(scratchReg2, 27) // cumulative exception bits occupy FPSCR[27:0]... packed low for this snapshot's own simplified encoding
		e.asm.OrRegReg(scratchReg, scratchReg2)
		e.storeResult(v, scratchReg)
	case ir.OpSetFPSCR:
		e.loadArg(op.Args[0], scratchReg)
		e.asm.MovMemReg32(StateReg, int32(guest.OffsetFPSCRMode), scratchReg)

	case ir.OpAddTicks:
		e.loadArgWide(op.Args[0], scratchReg)
		e.asm.MovRegMem(scratchReg2, StateReg, int32(guest.OffsetTicksRemaining))
		e.asm.SubRegReg(scratchReg2, scratchReg)
		e.asm.MovMemReg(StateReg, int32(guest.OffsetTicksRemaining), scratchReg2)
	case ir.OpGetTicksRemaining:
		e.asm.MovRegMem(scratchReg, StateReg, int32(guest.OffsetTicksRemaining))
		e.storeResult(v, scratchReg)

	case ir.OpExchangeBranch:
		e.loadArg(op.Args[0], scratchReg)
		e.asm.MovRegReg(scratchReg2, scratchReg)
		e.asm.AndRegImm32(scratchReg2, 1)
		e.asm.MovMemReg8(StateReg, int32(guest.OffsetCPSRT), scratchReg2)
		e.asm.AndRegImm32(scratchReg, -2)
		e.asm.MovMemReg32(StateReg, int32(guest.RegisterOffset(15)), scratchReg)

	case ir.OpClearExclusive:
		e.asm.MovRegImm32(scratchReg, 0)
		e.asm.MovMemReg8(StateReg, int32(guest.OffsetMonitorValid), scratchReg)

	default:
		panic("backend: unhandled opcode in emitOp")
	}
}

func (e *emitter) emitShiftImm(v ir.Value, op ir.Op) {
	amt := uint8(op.Args[1].Imm & 31)
	e.loadArg(op.Args[0], scratchReg)
	switch op.Opcode {
	case ir.OpLsl:
		if amt > 0 {
			e.asm.ShlRegImm8(scratchReg, amt)
		}
	case ir.OpLsr:
		if amt > 0 {
			e.asm.ShrRegImm8(scratchReg, amt)
		}
	case ir.OpAsr:
		e.asm.MovsxdReg(scratchReg, scratchReg)
		if amt > 0 {
			e.asm.SarRegImm8(scratchReg, amt)
		}
	case ir.OpRor:
		if amt > 0 {
			e.asm.MovRegReg(scratchReg2, scratchReg)
			e.asm.ShrRegImm8(scratchReg, amt)
			e.asm.ShlRegImm8(scratchReg2, 32-amt)
			e.asm.OrRegReg(scratchReg, scratchReg2)
		}
	}
	e.trunc32(scratchReg)
	e.storeResult(v, scratchReg)
}

// emitShiftReg lowers a register-amount barrel shift (Args=[value,amount]),
// clamping per the ARM register-shift rule: amount>=32 zeroes LSL/LSR,
// saturates ASR to the sign fill, and ROR's amount wraps modulo 32. The
// carry-out companions additionally report the bit shifted out last (0 for
// an amount of 0, which is a pure no-op per the architecture).
func (e *emitter) emitShiftReg(v ir.Value, op ir.Op, wantCarry bool) {
	e.loadArg(op.Args[0], scratchReg)  // value
	e.loadArg(op.Args[1], scratchReg2) // amount, 0-255

	ge32 := e.newLabel("shiftge32")
	done := e.newLabel("shiftdone")
	e.asm.CmpRegImm32(scratchReg2, 32)
	e.asm.JccLabel(asmx64.CondAE, ge32)

	e.withTemps(1, func(t []asmx64.Reg) {
		carryOut := t[0]
		e.asm.MovRegReg(carryOut, scratchReg)
		e.asm.PushReg(asmx64.RCX)
		e.asm.MovRegReg(asmx64.RCX, scratchReg2)
		switch op.Opcode {
		case ir.OpLslReg, ir.OpLslRegCarry:
			if wantCarry {
				e.asm.MovRegReg(carryOut, scratchReg)
				e.asm.ShlRegCL(scratchReg)
				// carry-out is the last bit shifted past bit31: (value >> (32-amount)) & 1,
				// approximated here via a second shift of the saved copy.
				e.emitShiftOutBit(carryOut, asmx64.RCX, true)
			} else {
				e.asm.ShlRegCL(scratchReg)
			}
		case ir.OpLsrReg, ir.OpLsrRegCarry:
			if wantCarry {
				e.emitShiftOutBit(carryOut, asmx64.RCX, false)
			}
			e.asm.ShrRegCL(scratchReg)
		case ir.OpAsrReg, ir.OpAsrRegCarry:
			e.asm.MovsxdReg(scratchReg, scratchReg)
			if wantCarry {
				e.emitShiftOutBit(carryOut, asmx64.RCX, false)
			}
			e.asm.SarRegCL(scratchReg)
		case ir.OpRorReg, ir.OpRorRegCarry:
			e.asm.RorRegCL(scratchReg)
			if wantCarry {
				e.asm.MovRegReg(carryOut, scratchReg)
				e.asm.ShrRegImm8(carryOut, 31)
				e.asm.AndRegImm32(carryOut, 1)
			}
		}
		e.asm.PopReg(asmx64.RCX)
		if wantCarry {
			e.trunc32(carryOut)
		}
		e.trunc32(scratchReg)
		if wantCarry {
			e.storeResult(v, carryOut)
		} else {
			e.storeResult(v, scratchReg)
		}
	})
	e.asm.JmpLabel(done)

	e.asm.Label(ge32)
	switch op.Opcode {
	case ir.OpLslReg, ir.OpLsrReg:
		e.asm.MovRegImm32(scratchReg, 0)
	case ir.OpLslRegCarry, ir.OpLsrRegCarry:
		e.asm.MovRegImm32(scratchReg, 0)
	case ir.OpAsrReg, ir.OpAsrRegCarry:
		e.asm.MovsxdReg(scratchReg, scratchReg)
		e.asm.SarRegImm8(scratchReg, 31)
	case ir.OpRorReg, ir.OpRorRegCarry:
		// amount>=32 for ROR wraps modulo 32 rather than saturating; the
		// re-entry below re-dispatches through the <32 path using amount&31.
	}
	if op.Opcode == ir.OpRorReg || op.Opcode == ir.OpRorRegCarry {
		e.asm.AndRegImm32(scratchReg2, 31)
		e.withTemps(1, func(t []asmx64.Reg) {
			carryOut := t[0]
			e.asm.PushReg(asmx64.RCX)
			e.asm.MovRegReg(asmx64.RCX, scratchReg2)
			e.asm.RorRegCL(scratchReg)
			e.asm.PopReg(asmx64.RCX)
			if wantCarry {
				e.asm.MovRegReg(carryOut, scratchReg)
				e.asm.ShrRegImm8(carryOut, 31)
				e.asm.AndRegImm32(carryOut, 1)
				e.trunc32(carryOut)
				e.storeResult(v, carryOut)
			}
		})
		if !wantCarry {
			e.trunc32(scratchReg)
			e.storeResult(v, scratchReg)
		}
	} else {
		e.trunc32(scratchReg)
		e.storeResult(v, scratchReg)
	}
	e.asm.Label(done)
}

// emitShiftOutBit computes, into dst, the single bit that an amount-wide
// shift of dst's current (zero-extended 32-bit) value carries out: bit
// 32-amount for a left shift (fromTop), read as bit 32 after a 64-bit left
// shift by the amount; bit amount-1 for a right shift, read as bit 0 after
// a left shift by one and a right shift by the amount. Exact for amounts
// 1-31; an amount of 0 yields 0.
func (e *emitter) emitShiftOutBit(dst, amountCL asmx64.Reg, fromTop bool) {
	if fromTop {
		e.asm.ShlRegCL(dst)
		e.asm.ShrRegImm8(dst, 32)
		e.asm.AndRegImm32(dst, 1)
	} else {
		e.asm.ShlRegImm8(dst, 1)
		e.asm.ShrRegCL(dst)
		e.asm.AndRegImm32(dst, 1)
	}
}
