package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/ir"
)

// visitSVC handles the SVC instruction. Because CallSVC is an arbitrary
// embedder callback that may mutate guest state in ways the optimizer
// cannot see, SVC always ends its block. A conditional SVC defers to the
// interpreter for that one instruction, same as a conditional store.
func visitSVC(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	if !always {
		t.deferConditionalStore(cond)
		return false
	}
	imm := f.Field('i')
	t.emit(ir.OpCallSVC, ir.TypeNone, ir.ImmArg(uint64(imm)))
	next := t.Location()
	next.PC = t.pc + 4
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermReturnToDispatch, Target: next})
	return false
}

// visitBKPT handles BKPT: always raises a Breakpoint exception and returns
// to the dispatcher.
func visitBKPT(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	t.raiseException(ir.ExceptionBreakpoint)
	next := t.Location()
	next.PC = t.pc + 4
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermReturnToDispatch, Target: next})
	return false
}

// visitUndefined matches a pattern that is architecturally reserved (not
// merely unmatched by any table entry): it raises UndefinedInstruction the
// same way a decode miss does.
func visitUndefined(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	t.raiseUndefined()
	return false
}
