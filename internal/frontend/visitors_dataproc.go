package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/ir"
)

// Data-processing opcode field values (ARM ARM A5.2.1).
const (
	aluAND = 0x0
	aluEOR = 0x1
	aluSUB = 0x2
	aluRSB = 0x3
	aluADD = 0x4
	aluADC = 0x5
	aluSBC = 0x6
	aluRSC = 0x7
	aluTST = 0x8
	aluTEQ = 0x9
	aluCMP = 0xA
	aluCMN = 0xB
	aluORR = 0xC
	aluMOV = 0xD
	aluBIC = 0xE
	aluMVN = 0xF
)

// aluWritesRd reports whether opcode writes its Rd operand (the compare/test
// family only sets flags).
func aluWritesRd(opcode uint32) bool {
	switch opcode {
	case aluTST, aluTEQ, aluCMP, aluCMN:
		return false
	default:
		return true
	}
}

// aluIsLogical reports whether opcode's flag-setting form draws C from the
// shifter's carry-out rather than computing its own via NZCVFromAdd/Sub.
func aluIsLogical(opcode uint32) bool {
	switch opcode {
	case aluAND, aluEOR, aluTST, aluTEQ, aluORR, aluMOV, aluBIC, aluMVN:
		return true
	default:
		return false
	}
}

// applyALU computes the data-processing opcode's result and (if S is set)
// its flags snapshot, per ARM ARM A4.1.{2-20}.
func (t *Translator) applyALU(opcode uint32, rn, op2, shiftCarry ir.Value) (result, flags ir.Value) {
	curFlags := t.GetFlags()
	curCarry := t.flagBit(curFlags, flagC)

	switch opcode {
	case aluAND, aluTST:
		result = t.emit(ir.OpAnd, ir.TypeU32, ir.ValArg(rn), ir.ValArg(op2))
	case aluEOR, aluTEQ:
		result = t.emit(ir.OpXor, ir.TypeU32, ir.ValArg(rn), ir.ValArg(op2))
	case aluORR:
		result = t.emit(ir.OpOr, ir.TypeU32, ir.ValArg(rn), ir.ValArg(op2))
	case aluBIC:
		notOp2 := t.emit(ir.OpNot, ir.TypeU32, ir.ValArg(op2))
		result = t.emit(ir.OpAnd, ir.TypeU32, ir.ValArg(rn), ir.ValArg(notOp2))
	case aluMOV:
		result = op2
	case aluMVN:
		result = t.emit(ir.OpNot, ir.TypeU32, ir.ValArg(op2))
	case aluADD, aluCMN:
		result = t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(rn), ir.ValArg(op2))
		flags = t.emitExtra(ir.OpNZCVFromAdd, ir.TypeFlags, 0, ir.ValArg(rn), ir.ValArg(op2), ir.ImmArg(0))
	case aluADC:
		sum1 := t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(rn), ir.ValArg(op2))
		result = t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(sum1), ir.ValArg(t.zext1(curCarry)))
		flags = t.emit(ir.OpNZCVFromAdd, ir.TypeFlags, ir.ValArg(rn), ir.ValArg(op2), ir.ValArg(curCarry))
	case aluSUB, aluCMP:
		result = t.emit(ir.OpSub, ir.TypeU32, ir.ValArg(rn), ir.ValArg(op2))
		flags = t.emit(ir.OpNZCVFromSub, ir.TypeFlags, ir.ValArg(rn), ir.ValArg(op2), ir.ImmArg(1))
	case aluRSB:
		result = t.emit(ir.OpSub, ir.TypeU32, ir.ValArg(op2), ir.ValArg(rn))
		flags = t.emit(ir.OpNZCVFromSub, ir.TypeFlags, ir.ValArg(op2), ir.ValArg(rn), ir.ImmArg(1))
	case aluSBC:
		diff1 := t.emit(ir.OpSub, ir.TypeU32, ir.ValArg(rn), ir.ValArg(op2))
		notBorrow := t.zext1(curCarry)
		result = t.emit(ir.OpSub, ir.TypeU32, ir.ValArg(diff1), ir.ValArg(t.emit(ir.OpXor, ir.TypeU32, ir.ValArg(notBorrow), ir.ImmArg(1))))
		flags = t.emit(ir.OpNZCVFromSub, ir.TypeFlags, ir.ValArg(rn), ir.ValArg(op2), ir.ValArg(curCarry))
	case aluRSC:
		result = t.emit(ir.OpSub, ir.TypeU32, ir.ValArg(op2), ir.ValArg(rn))
		flags = t.emit(ir.OpNZCVFromSub, ir.TypeFlags, ir.ValArg(op2), ir.ValArg(rn), ir.ValArg(curCarry))
	}

	if aluIsLogical(opcode) {
		flags = t.emit(ir.OpNZCVFromLogic, ir.TypeFlags, ir.ValArg(result), ir.ValArg(shiftCarry))
	}
	return result, flags
}

// visitDataProcessing finishes a decoded data-processing instruction once
// the operand2 shifter result (with its carry-out) and Rn/Rd/S/opcode
// fields are known: it evaluates the condition, computes the ALU result and
// flags, and writes both back guarded by the condition.
func (t *Translator) visitDataProcessing(opcode, s, rn, rd uint32, op2, shiftCarry ir.Value) bool {
	cond, always := t.currentCond()
	rnVal := t.GetReg(int(rn))
	result, flags := t.applyALU(opcode, rnVal, op2, shiftCarry)

	if s != 0 {
		if always {
			t.SetFlags(flags)
		} else {
			t.SetFlagsCond(cond, flags)
		}
	}
	if aluWritesRd(opcode) {
		if rd == 15 {
			// Writes to PC fall outside the straight-line register file
			// convention; treat as an indirect branch via LinkBlock at a
			// fresh descriptor rather than modeling PC as a GetReg/SetReg
			// target.
			t.terminateIndirectBranch(cond, always, result)
			return false
		}
		if always {
			t.SetReg(int(rd), result)
		} else {
			t.SetRegCond(int(rd), cond, result)
		}
	}
	return true
}

// currentCond evaluates the condition field most recently seen by the
// calling visitor; set by setCondField before dispatch.
func (t *Translator) currentCond() (ir.Value, bool) {
	return t.pendingCond, t.pendingCondAlways
}

func (t *Translator) setCondField(cond uint32) {
	t.pendingCond, t.pendingCondAlways = t.EvaluateCondition(cond)
}

// terminateIndirectBranch ends the block with a computed-target branch,
// folding the condition into a CheckHalt/If-wrapped LinkBlock/ReturnToDispatch
// pair rather than writing R15 as a plain register.
func (t *Translator) terminateIndirectBranch(cond ir.Value, always bool, target ir.Value) {
	taken := &ir.Terminator{Kind: ir.TermReturnToDispatch}
	if always {
		t.SetReg(15, target)
		t.block.SetTerminator(taken)
		return
	}
	t.SetRegCond(15, cond, target)
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermIf, Cond: cond, Then: taken, Else: &ir.Terminator{Kind: ir.TermLinkBlockFast, Target: t.nextLocation()}})
}

func asT(b decode.Builder) *Translator { return b.(*Translator) }

// constBool materializes a compile-time-known carry value as a U1 constant.
func (t *Translator) constBool(v bool) ir.Value {
	imm := uint64(0)
	if v {
		imm = 1
	}
	return t.emit(ir.OpConstant, ir.TypeU1, ir.ImmArg(imm))
}

func visitDPImmediate(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	t.setCondField(f.Field('c'))
	opcode := f.Field('o')
	s := f.Field('s')
	rn := f.Field('n')
	rd := f.Field('d')
	rot := f.Field('r')
	imm8 := f.Field('i')

	// ARM ARM A5.2.4: imm32 is imm8 rotated right by 2*rot; rot==0 leaves C
	// unchanged, rot!=0 sets C to imm32's bit 31. Both rot and imm8 are
	// decode-time constants, so the rotation and the carry bit are plain Go
	// arithmetic rather than IR.
	shift := (2 * rot) & 31
	imm := imm8>>shift | imm8<<((32-shift)&31)
	if shift == 0 {
		imm = imm8
	}

	var carry ir.Value
	if rot == 0 {
		carry = t.flagBit(t.GetFlags(), flagC)
	} else {
		carry = t.constBool(imm&0x80000000 != 0)
	}
	op2 := t.Const(imm)
	return t.visitDataProcessing(opcode, s, rn, rd, op2, carry)
}

func visitDPRegImmShift(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	t.setCondField(f.Field('c'))
	opcode := f.Field('o')
	s := f.Field('s')
	rn := f.Field('n')
	rd := f.Field('d')
	shiftAmt := f.Field('h')
	shiftType := f.Field('t')
	rm := f.Field('m')

	curC := t.flagBit(t.GetFlags(), flagC)
	sh := t.shiftImm(t.GetReg(int(rm)), shiftType, shiftAmt, curC)
	return t.visitDataProcessing(opcode, s, rn, rd, sh.Value, sh.Carry)
}

func visitDPRegRegShift(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	t.setCondField(f.Field('c'))
	opcode := f.Field('o')
	s := f.Field('s')
	rn := f.Field('n')
	rd := f.Field('d')
	rs := f.Field('q')
	shiftType := f.Field('t')
	rm := f.Field('m')

	curC := t.flagBit(t.GetFlags(), flagC)
	amount := t.emit(ir.OpAnd, ir.TypeU32, ir.ValArg(t.GetReg(int(rs))), ir.ImmArg(0xFF))
	sh := t.shiftReg(t.GetReg(int(rm)), shiftType, amount, curC)
	return t.visitDataProcessing(opcode, s, rn, rd, sh.Value, sh.Carry)
}
