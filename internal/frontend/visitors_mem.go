package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/ir"
)

// visitLoadStoreImm handles LDR/STR/LDRB/STRB immediate-offset addressing
// (ARM ARM A5.2.8). Loads are guarded with the Select convention since a
// guest memory read has no side effect in this model; stores mutate guest
// memory, which a false condition must suppress entirely, so a conditional
// store ends the block and falls back to TermInterpret for that one
// instruction rather than trying to make an impure op conditional in-line.
//
// An unconditional transfer still ends the block right after the real
// memory op: internal/backend never compiles a memory access into native
// code itself (the embedder's Callbacks method is the only thing allowed
// to touch guest memory), so a real OpReadMemory*/OpWriteMemory* op is
// always the last thing in its block, letting the backend hand the access
// off to the dispatcher with a single uniform exit rather than needing a
// mid-block resume point.
func visitLoadStoreImm(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	p := f.Field('p') != 0
	u := f.Field('u') != 0
	byteXfer := f.Field('b') != 0
	w := f.Field('w') != 0
	load := f.Field('l') != 0
	rn := f.Field('n')
	rd := f.Field('d')
	imm12 := f.Field('i')

	if !load && !always {
		t.deferConditionalStore(cond)
		return false
	}

	base := t.GetReg(int(rn))
	offset := t.Const(imm12)
	var offsetAddr ir.Value
	if u {
		offsetAddr = t.emit(ir.OpAdd, ir.TypeU32, ir.ValArg(base), ir.ValArg(offset))
	} else {
		offsetAddr = t.emit(ir.OpSub, ir.TypeU32, ir.ValArg(base), ir.ValArg(offset))
	}
	transferAddr := base
	if p {
		transferAddr = offsetAddr
	}
	writeback := !p || w

	// Address writeback never depends on the transfer's own result, so it
	// is emitted before the memory op: that keeps the memory op followed by
	// at most one trailing SetRegister (the loaded value, for loads only),
	// the one shape internal/backend's callback-exit handoff understands.
	if writeback {
		if always {
			t.SetReg(int(rn), offsetAddr)
		} else {
			t.SetRegCond(int(rn), cond, offsetAddr)
		}
	}

	if load {
		var val ir.Value
		if byteXfer {
			v8 := t.emit(ir.OpReadMemory8, ir.TypeU8, ir.ValArg(transferAddr))
			val = t.emitExtra(ir.OpZeroExtend, ir.TypeU32, 32, ir.ValArg(v8))
		} else {
			val = t.emit(ir.OpReadMemory32, ir.TypeU32, ir.ValArg(transferAddr))
		}
		if always {
			if rd == 15 {
				t.terminateIndirectBranch(cond, always, val)
				return false
			}
			t.SetReg(int(rd), val)
		} else {
			t.SetRegCond(int(rd), cond, val)
		}
	} else {
		rdVal := t.GetReg(int(rd))
		if byteXfer {
			v8 := t.emitExtra(ir.OpTrunc, ir.TypeU8, 8, ir.ValArg(rdVal))
			t.emit(ir.OpWriteMemory8, ir.TypeNone, ir.ValArg(transferAddr), ir.ValArg(v8))
		} else {
			t.emit(ir.OpWriteMemory32, ir.TypeNone, ir.ValArg(transferAddr), ir.ValArg(rdVal))
		}
	}

	t.endBlockAfterMemoryOp()
	return false
}

// endBlockAfterMemoryOp terminates the block right after a real (always
// unconditional, by the time this is called) memory access, since the
// backend requires such an op to be the last thing in its block.
func (t *Translator) endBlockAfterMemoryOp() {
	if t.block.Terminated() {
		return
	}
	next := t.Location()
	next.PC = t.pc + 4
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermLinkBlockFast, Target: next})
}

// deferConditionalStore ends the block so a conditionally-executed store
// (whose side effect cannot be suppressed by the Select-guard convention)
// is handled one instruction at a time by the interpreter.
func (t *Translator) deferConditionalStore(cond ir.Value) {
	here := t.Location()
	here.PC = t.pc
	next := t.Location()
	next.PC = t.pc + 4
	t.block.SetTerminator(&ir.Terminator{
		Kind: ir.TermIf,
		Cond: cond,
		Then: &ir.Terminator{Kind: ir.TermInterpret, Target: here},
		Else: &ir.Terminator{Kind: ir.TermLinkBlockFast, Target: next},
	})
}

func visitLDREX(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	if !always {
		t.deferConditionalStore(cond) // LDREX mutates the exclusive monitor; treat like a store
		return false
	}
	rn := f.Field('n')
	rd := f.Field('d')
	addr := t.GetReg(int(rn))
	val := t.emit(ir.OpExclusiveReadMemory32, ir.TypeU32, ir.ValArg(addr))
	t.SetReg(int(rd), val)
	t.endBlockAfterMemoryOp()
	return false
}

func visitSTREX(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	if !always {
		t.deferConditionalStore(cond)
		return false
	}
	rn := f.Field('n')
	rd := f.Field('d')
	rm := f.Field('m')
	addr := t.GetReg(int(rn))
	val := t.GetReg(int(rm))
	success := t.emit(ir.OpExclusiveWriteMemory32, ir.TypeU1, ir.ValArg(addr), ir.ValArg(val))
	status := t.emitExtra(ir.OpZeroExtend, ir.TypeU32, 32, ir.ValArg(t.not1(success)))
	t.SetReg(int(rd), status)
	t.endBlockAfterMemoryOp()
	return false
}

func visitCLREX(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	t.emit(ir.OpClearExclusive, ir.TypeNone)
	return true
}
