package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/ir"
)

// visitCoprocessorRegisterTransfer handles MCR (store to coprocessor) and
// MRC (load from coprocessor), dispatching to whichever Coprocessor the
// translation Options bound to the instruction's cp_num. An absent
// coprocessor, or one that declines the specific operation, raises
// UndefinedInstruction.
func visitCoprocessorRegisterTransfer(b decode.Builder, f decode.Fields) bool {
	t := asT(b)
	cond, always := t.EvaluateCondition(f.Field('c'))
	load := f.Field('l') != 0
	crn := f.Field('n')
	rt := f.Field('t')
	cpnum := f.Field('p')
	opc1 := f.Field('o')
	opc2 := f.Field('e')
	crm := f.Field('m')

	cp := t.opts.Coprocessors[cpnum]
	if cp == nil {
		t.raiseUndefined()
		return false
	}

	if load {
		val, ok := cp.CompileGetOneWord(t, crn, crm, opc1, opc2)
		if !ok {
			t.raiseUndefined()
			return false
		}
		if always {
			t.SetReg(int(rt), val)
		} else {
			t.SetRegCond(int(rt), cond, val)
		}
		return true
	}
	if !always {
		// Coprocessor sends are treated like any other guest-visible side
		// effect whose suppression the Select convention cannot express.
		t.deferConditionalStore(cond)
		return false
	}
	value := t.GetReg(int(rt))
	if !cp.CompileSendOneWord(t, value, crn, crm, opc1, opc2) {
		t.raiseUndefined()
		return false
	}
	return true
}

// nopCoprocessor is a Coprocessor that declines every operation, the
// default for a cp_num slot the embedder never configured.
type nopCoprocessor struct{}

func (nopCoprocessor) CompileInternalOperation(*Translator, uint32, uint32, uint32, uint32, uint32) bool {
	return false
}
func (nopCoprocessor) CompileSendOneWord(*Translator, ir.Value, uint32, uint32, uint32, uint32) bool {
	return false
}
func (nopCoprocessor) CompileGetOneWord(*Translator, uint32, uint32, uint32, uint32) (ir.Value, bool) {
	return ir.NoValue, false
}
func (nopCoprocessor) CompileLoadWords(*Translator, bool, bool, uint32) bool  { return false }
func (nopCoprocessor) CompileStoreWords(*Translator, bool, bool, uint32) bool { return false }

// NopCoprocessor is the shared instance embedders can assign to a cp_num
// they want to explicitly mark "present but empty" (distinguishing it from
// "absent", which also raises undefined but through a nil-map lookup rather
// than an explicit stub).
var NopCoprocessor Coprocessor = nopCoprocessor{}
