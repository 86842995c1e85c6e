package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/ir"
)

// Signedness/halving selector (field 'o') for the parallel add/subtract
// family (ARM ARM A5.4.3's op1 together with its U bit, folded into one
// 2-bit field here).
const (
	parallelSigned         = 0
	parallelSignedHalving  = 1
	parallelUnsigned       = 2
	parallelUnsignedHalving = 3
)

// Operation selector (field 'p'): which lanewise combination.
const (
	parallelAdd16 = 0
	parallelASX   = 1
	parallelSAX   = 2
	parallelSub16 = 3
)

func parallelOpcode(signedness, op uint32) (ir.Opcode, bool /*setsGE*/) {
	switch signedness {
	case parallelSigned:
		switch op {
		case parallelAdd16:
			return ir.OpPackedAddS16, true
		case parallelASX:
			return ir.OpPackedAddSubXS16, true
		case parallelSAX:
			return ir.OpPackedSubAddXS16, true
		case parallelSub16:
			return ir.OpPackedSubS16, true
		}
	case parallelSignedHalving:
		switch op {
		case parallelAdd16:
			return ir.OpPackedHalvingAddS16, false
		case parallelASX:
			return ir.OpPackedHalvingAddSubXS16, false
		case parallelSAX:
			return ir.OpPackedHalvingSubAddXS16, false
		case parallelSub16:
			return ir.OpPackedHalvingSubS16, false
		}
	case parallelUnsigned:
		switch op {
		case parallelAdd16:
			return ir.OpPackedAddU16, true
		case parallelASX:
			return ir.OpPackedAddSubXU16, true
		case parallelSAX:
			return ir.OpPackedSubAddXU16, true
		case parallelSub16:
			return ir.OpPackedSubU16, true
		}
	}
	return ir.OpInvalid, false
}

// visitParallelAddSub handles the SADD16/SSUB16/SASX/SSAX/UADD16/USUB16/
// UASX/USAX/SHADD16/SHSUB16/SHASX/SHSAX family.
func visitParallelAddSub(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	signedness := f.Field('o')
	op := f.Field('p')
	rn := f.Field('n')
	rd := f.Field('d')
	rm := f.Field('m')

	opcode, setsGE := parallelOpcode(signedness, op)
	if opcode == ir.OpInvalid {
		t.raiseUndefined()
		return false
	}

	a := t.GetReg(int(rn))
	bb := t.GetReg(int(rm))
	result := t.emit(opcode, ir.TypeU32, ir.ValArg(a), ir.ValArg(bb))

	if always {
		t.SetReg(int(rd), result)
	} else {
		t.SetRegCond(int(rd), cond, result)
	}
	if setsGE {
		flags := t.emit(ir.OpGEFromPacked, ir.TypeFlags, ir.ValArg(result))
		if always {
			t.SetFlags(flags)
		} else {
			t.SetFlagsCond(cond, flags)
		}
	}
	return true
}

// SMUAD and SMLAD share the dual 16x16 signed multiply-accumulate
// visitor; SMLAD additionally adds Ra.
func visitDualMultiply(b decode.Builder, f decode.Fields, hasAccumulate bool) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	rd := f.Field('d')
	rn := f.Field('n')
	rm := f.Field('m')

	a := t.GetReg(int(rn))
	bb := t.GetReg(int(rm))
	var result ir.Value
	if hasAccumulate {
		ra := f.Field('a')
		acc := t.GetReg(int(ra))
		result = t.emit(ir.OpDualMulAddS16, ir.TypeU32, ir.ValArg(a), ir.ValArg(bb), ir.ValArg(acc))
	} else {
		result = t.emit(ir.OpDualMulAddS16, ir.TypeU32, ir.ValArg(a), ir.ValArg(bb), ir.ImmArg(0))
	}
	if always {
		t.SetReg(int(rd), result)
	} else {
		t.SetRegCond(int(rd), cond, result)
	}
	return true
}

func visitSMUAD(b decode.Builder, f decode.Fields) bool { return visitDualMultiply(b, f, false) }
func visitSMLAD(b decode.Builder, f decode.Fields) bool { return visitDualMultiply(b, f, true) }

// visitMUL/visitMLA: 32-bit truncated signed/unsigned multiply (the two are
// equivalent at 32 bits), optionally accumulating.
func visitMUL(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	s := f.Field('f')
	rd := f.Field('d')
	rs := f.Field('r')
	rm := f.Field('m')
	accumulate := f.Field('a') != 0
	rn := f.Field('n')

	product := t.emit(ir.OpMul, ir.TypeU32, ir.ValArg(t.GetReg(int(rm))), ir.ValArg(t.GetReg(int(rs))))
	result := product
	if accumulate {
		result = t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(product), ir.ValArg(t.GetReg(int(rn))))
	}

	if always {
		t.SetReg(int(rd), result)
	} else {
		t.SetRegCond(int(rd), cond, result)
	}
	if s != 0 {
		flags := t.emit(ir.OpNZCVFromLogic, ir.TypeFlags, ir.ValArg(result), ir.ValArg(t.flagBit(t.GetFlags(), flagC)))
		if always {
			t.SetFlags(flags)
		} else {
			t.SetFlagsCond(cond, flags)
		}
	}
	return true
}
