package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/engineerr"
	"github.com/a18532086/a32jit/internal/ir"
)

// visitThumbMovImm: MOVS Rd, #imm8 (Thumb encoding T1). Always flag-setting;
// Thumb's unconditional 16-bit encodings carry no cond field of their own,
// so these visitors never call EvaluateCondition — the surrounding IT-block
// condition/mask state this repo does not model at the per-instruction
// level, a documented simplification.
func visitThumbMovImm(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	rd := f.Field('d')
	imm := f.Field('i')
	val := t.Const(imm)
	t.SetReg(int(rd), val)
	flags := t.emit(ir.OpNZCVFromLogic, ir.TypeFlags, ir.ValArg(val), ir.ValArg(t.flagBit(t.GetFlags(), flagC)))
	t.SetFlags(flags)
	return true
}

// visitThumbCmpImm: CMP Rd, #imm8 (T1): sets flags only.
func visitThumbCmpImm(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	rd := f.Field('d')
	imm := f.Field('i')
	rn := t.GetReg(int(rd))
	op2 := t.Const(imm)
	flags := t.emit(ir.OpNZCVFromSub, ir.TypeFlags, ir.ValArg(rn), ir.ValArg(op2), ir.ImmArg(1))
	t.SetFlags(flags)
	return true
}

// visitThumbAddImm3: ADDS Rd, Rn, #imm3 (T1).
func visitThumbAddImm3(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	rd := f.Field('d')
	rn := f.Field('n')
	imm := f.Field('i')
	a := t.GetReg(int(rn))
	op2 := t.Const(imm)
	result := t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(a), ir.ValArg(op2))
	flags := t.emitExtra(ir.OpNZCVFromAdd, ir.TypeFlags, 0, ir.ValArg(a), ir.ValArg(op2), ir.ImmArg(0))
	t.SetReg(int(rd), result)
	t.SetFlags(flags)
	return true
}

// visitThumbAddImm8: ADDS Rd, Rd, #imm8 (T2).
func visitThumbAddImm8(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	rd := f.Field('d')
	imm := f.Field('i')
	a := t.GetReg(int(rd))
	op2 := t.Const(imm)
	result := t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(a), ir.ValArg(op2))
	flags := t.emitExtra(ir.OpNZCVFromAdd, ir.TypeFlags, 0, ir.ValArg(a), ir.ValArg(op2), ir.ImmArg(0))
	t.SetReg(int(rd), result)
	t.SetFlags(flags)
	return true
}

// visitThumbAddReg: ADDS Rd, Rn, Rm (T1).
func visitThumbAddReg(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	rd := f.Field('d')
	rn := f.Field('n')
	rm := f.Field('m')
	a := t.GetReg(int(rn))
	bb := t.GetReg(int(rm))
	result := t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(a), ir.ValArg(bb))
	flags := t.emitExtra(ir.OpNZCVFromAdd, ir.TypeFlags, 0, ir.ValArg(a), ir.ValArg(bb), ir.ImmArg(0))
	t.SetReg(int(rd), result)
	t.SetFlags(flags)
	return true
}

// visitThumbBCond: conditional branch, 8-bit signed offset<<1 (T1).
func visitThumbBCond(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	simm8 := f.SignExtend(f.Field('i'), 8)
	target := uint32(int32(t.pc) + 4 + simm8*2)

	loc := t.Location()
	loc.PC = target
	taken := &ir.Terminator{Kind: ir.TermLinkBlockFast, Target: loc}
	if always {
		t.block.SetTerminator(taken)
		return false
	}
	next := t.Location()
	next.PC = t.pc + 2
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermIf, Cond: cond, Then: taken, Else: &ir.Terminator{Kind: ir.TermLinkBlockFast, Target: next}})
	return false
}

// visitThumbB: unconditional branch, 11-bit signed offset<<1 (T2).
func visitThumbB(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	simm11 := f.SignExtend(f.Field('i'), 11)
	target := uint32(int32(t.pc) + 4 + simm11*2)
	loc := t.Location()
	loc.PC = target
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermLinkBlockFast, Target: loc})
	return false
}

// visitThumbBLHi consumes the first halfword of a 32-bit BL encoding,
// recording the partial link-register base for the second halfword.
func visitThumbBLHi(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	simm11 := f.SignExtend(f.Field('i'), 11)
	t.thumbBLBase = uint32(int32(t.pc) + 4 + simm11*4096)
	t.thumbBLPending = true
	return true
}

// visitThumbBLLo consumes the second halfword, completing the branch.
func visitThumbBLLo(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	engineerr.Invariant(t.thumbBLPending, "Thumb BL low halfword decoded without a preceding high halfword")
	imm11 := f.Field('i')
	target := t.thumbBLBase + imm11*2
	t.thumbBLPending = false

	lr := t.Const((t.pc + 2) | 1)
	t.SetReg(14, lr)

	loc := t.Location()
	loc.PC = target
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermLinkBlockFast, Target: loc})
	return false
}
