package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/ir"
)

// visitBranch handles B/BL (cond 101L imm24). The link register write (for
// BL) and the terminator are both guarded by the same condition evaluation.
func visitBranch(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	link := f.Field('l') != 0
	simm24 := f.SignExtend(f.Field('i'), 24)
	target := uint32(int32(t.pc) + 8 + simm24*4)

	if link {
		lr := t.Const(t.pc + 4)
		if always {
			t.SetReg(14, lr)
		} else {
			t.SetRegCond(14, cond, lr)
		}
	}

	loc := t.Location()
	loc.PC = target
	taken := &ir.Terminator{Kind: ir.TermLinkBlockFast, Target: loc}
	if always {
		t.block.SetTerminator(taken)
		return false
	}
	fallthroughLoc := t.Location()
	fallthroughLoc.PC = t.pc + 4
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermIf, Cond: cond, Then: taken, Else: &ir.Terminator{Kind: ir.TermLinkBlockFast, Target: fallthroughLoc}})
	return false
}

// visitBX handles BX Rm: branch to Rm, adopting Rm's bit 0 as the new Thumb
// state.
func visitBX(b decode.Builder, f decode.Fields) bool {
	return branchExchange(asT(b), f, false)
}

// visitBLXReg handles BLX Rm, BX's link-setting sibling.
func visitBLXReg(b decode.Builder, f decode.Fields) bool {
	return branchExchange(asT(b), f, true)
}

func branchExchange(t *Translator, f decode.Fields, link bool) bool {
	cond, always := t.EvaluateCondition(f.Field('c'))
	rm := f.Field('m')

	target := t.GetReg(int(rm))
	if link {
		lr := t.Const(t.pc + 4)
		if always {
			t.SetReg(14, lr)
		} else {
			t.SetRegCond(14, cond, lr)
		}
	}

	exchange := func() {
		t.emit(ir.OpExchangeBranch, ir.TypeNone, ir.ValArg(target))
	}
	taken := &ir.Terminator{Kind: ir.TermReturnToDispatch}
	if always {
		exchange()
		t.block.SetTerminator(taken)
		return false
	}
	// The exchange write itself must also be conditional: wrap it using the
	// same Select-guard convention as any other conditional effect by
	// reading back R15 first (GetReg(15) is the no-op identity when cond is
	// false).
	notTaken := t.GetReg(15)
	guardedTarget := t.Select(cond, target, notTaken)
	t.emit(ir.OpExchangeBranch, ir.TypeNone, ir.ValArg(guardedTarget))
	fallthroughLoc := t.Location()
	fallthroughLoc.PC = t.pc + 4
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermIf, Cond: cond, Then: taken, Else: &ir.Terminator{Kind: ir.TermLinkBlockFast, Target: fallthroughLoc}})
	return false
}
