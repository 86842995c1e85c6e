package ir

// Opcode is a stable micro-op identifier. Ordering has no semantic meaning; it is an enum, not a priority
// table (that's the decoder's table, not this one).
type Opcode int

const (
	OpInvalid Opcode = iota

	// --- Pure, foldable ops ---
	OpConstant // result = Args[0] (immediate)
	OpAdd
	OpSub
	OpAnd
	OpOr
	OpXor
	OpNot
	OpNeg
	OpLsl
	OpLsr
	OpAsr
	OpRor
	OpRrx // rotate-right-through-carry; takes carry-in as Args[1]
	OpMul
	OpMulHighSigned
	OpMulHighUnsigned
	OpZeroExtend
	OpSignExtend
	OpTrunc
	OpSelect // Args = [cond, ifTrue, ifFalse]

	// Register-amount barrel-shift ops (Args = [value, amount]). Unlike the
	// immediate-shift forms, which the frontend lowers to Lsl/Lsr/Asr/Ror
	// directly because the amount is a decode-time constant, a
	// shift-by-register amount is only known at run time, so the full
	// ARM register-shift clamping rule (0 is a no-op, 32 zeroes/fills,
	// >32 likewise) is baked into the opcode's defined meaning rather than
	// expanded into a tree of compares and selects in every block that uses
	// one.
	OpLslReg
	OpLsrReg
	OpAsrReg
	OpRorReg
	// Carry-out companions to the above (Args = [value, amount, carryIn];
	// result TypeU1).
	OpLslRegCarry
	OpLsrRegCarry
	OpAsrRegCarry
	OpRorRegCarry

	// Parallel-add/sub "media" pure computations: each packs two 16-bit
	// lanes from two 32-bit operands.
	OpPackedAddS16
	OpPackedSubS16
	OpPackedAddU16
	OpPackedSubU16
	OpPackedAddSubXS16 // ASX: lo = a.lo+b.hi, hi = a.hi-b.lo
	OpPackedSubAddXS16 // SAX: lo = a.lo-b.hi, hi = a.hi+b.lo
	OpPackedAddSubXU16
	OpPackedSubAddXU16
	OpPackedHalvingAddSubXS16 // SHASX
	OpPackedHalvingSubAddXS16 // SHSAX
	OpPackedHalvingAddS16     // SHADD16
	OpPackedHalvingSubS16     // SHSUB16

	// Dual signed multiply-add/sub with saturation (SMUAD/SMUSD/SMLAD).
	OpDualMulAddS16 // result, Q = a.lo*b.lo + a.hi*b.hi (+ accum), saturating

	// Flag-producing pure computations: result is TypeFlags, carrying NZCV
	// (and, for the packed family, GE) as a bundled value consumed only by
	// GetFlagBit/GetGE.
	OpNZCVFromAdd  // Args = [a, b, carryIn]; result flags for a+b(+carryIn)
	OpNZCVFromSub  // Args = [a, b, carryIn]; result flags for a-b-(1-carryIn)
	OpNZCVFromLogic // Args = [result, carryOut]; N/Z from result, C passthrough
	OpGEFromPacked  // Args = [packed-add/sub result tag]; GE nibble
	OpGetFlagBit    // Args = [flagsValue]; extract N/Z/C/V as U1 (ExtraImm selects which)
	OpExtractLane16 // Args = [u32, laneIndex]; low/high halfword

	// --- Impure ops (side effects; never DCE'd, never reordered across) ---
	OpGetRegister  // Args = [regNumImm]
	OpSetRegister  // Args = [regNumImm, value]
	OpGetFlags     // reads NZCV/Q/GE/IT as a snapshot value
	OpSetFlags     // writes NZCV/Q/GE/IT from a snapshot value
	OpGetFPSCR
	OpSetFPSCR
	OpReadMemory8
	OpReadMemory16
	OpReadMemory32
	OpReadMemory64
	OpWriteMemory8
	OpWriteMemory16
	OpWriteMemory32
	OpWriteMemory64
	OpExclusiveReadMemory32
	OpExclusiveWriteMemory32 // Args = [addr, value]; result = u1 success
	OpClearExclusive
	OpCallSVC        // Args = [immImm]
	OpExceptionRaised // Args = [kindImm]
	OpAddTicks       // Args = [n]
	OpGetTicksRemaining
	// OpExchangeBranch sets R15 to Args[0] with bit 0 cleared and the Thumb
	// state bit to Args[0]'s bit 0, the BX/BLX(reg) interworking rule
	// (ARM ARM A8.8.27) bundled as one effect rather than a GetReg/SetReg
	// pair plus a separate Thumb-state write, since the two always happen
	// together.
	OpExchangeBranch
)

// Pure reports whether op has no side effects and may be DCE'd if unused
// and constant-folded.
func (op Opcode) Pure() bool {
	switch op {
	case OpGetRegister, OpSetRegister, OpGetFlags, OpSetFlags, OpGetFPSCR, OpSetFPSCR,
		OpReadMemory8, OpReadMemory16, OpReadMemory32, OpReadMemory64,
		OpWriteMemory8, OpWriteMemory16, OpWriteMemory32, OpWriteMemory64,
		OpExclusiveReadMemory32, OpExclusiveWriteMemory32, OpClearExclusive,
		OpCallSVC, OpExceptionRaised, OpAddTicks, OpGetTicksRemaining, OpExchangeBranch:
		return false
	default:
		return true
	}
}

// ResultType reports the type of op's result given its already-typed args,
// used by the verifier pass to check argument/opcode signature agreement.
func (op Opcode) ResultType(argTypes []Type) Type {
	switch op {
	case OpSetRegister, OpSetFlags, OpSetFPSCR, OpWriteMemory8, OpWriteMemory16,
		OpWriteMemory32, OpWriteMemory64, OpClearExclusive, OpCallSVC,
		OpExceptionRaised, OpAddTicks:
		return TypeNone
	case OpGetRegister, OpGetFPSCR, OpReadMemory32, OpConstant, OpAdd, OpSub,
		OpAnd, OpOr, OpXor, OpNot, OpNeg, OpLsl, OpLsr, OpAsr, OpRor, OpRrx,
		OpMul, OpMulHighSigned, OpMulHighUnsigned, OpSelect, OpExclusiveReadMemory32,
		OpGetTicksRemaining, OpPackedAddS16, OpPackedSubS16, OpPackedAddU16, OpPackedSubU16,
		OpPackedAddSubXS16, OpPackedSubAddXS16, OpPackedAddSubXU16, OpPackedSubAddXU16,
		OpPackedHalvingAddSubXS16, OpPackedHalvingSubAddXS16, OpPackedHalvingAddS16, OpPackedHalvingSubS16,
		OpDualMulAddS16, OpExtractLane16,
		OpLslReg, OpLsrReg, OpAsrReg, OpRorReg:
		return TypeU32
	case OpReadMemory8:
		return TypeU8
	case OpReadMemory16:
		return TypeU16
	case OpReadMemory64:
		return TypeU64
	case OpGetFlags, OpNZCVFromAdd, OpNZCVFromSub, OpNZCVFromLogic, OpGEFromPacked:
		return TypeFlags
	case OpGetFlagBit, OpExclusiveWriteMemory32, OpLslRegCarry, OpLsrRegCarry, OpAsrRegCarry, OpRorRegCarry:
		return TypeU1
	case OpZeroExtend, OpSignExtend, OpTrunc:
		return TypeU32 // width narrowed by ExtraImm; callers pick width at emission
	default:
		return TypeNone
	}
}
