package frontend

import "github.com/a18532086/a32jit/internal/ir"

// Coprocessor is the hook surface for guest MCR/MRC/CDP/LDC/STC
// instructions (this repository has no VFP visitors). Grounded on
// dynarmic's A32 coprocessor callback interface.
// A nil entry in Options.Coprocessors means "not present": the visitor
// emits ExceptionRaised(UndefinedInstruction), as it does when the
// coprocessor declines the instruction.
type Coprocessor interface {
	CompileInternalOperation(b *Translator, opc1, crd, crn, crm, opc2 uint32) bool
	CompileSendOneWord(b *Translator, value ir.Value, crn, crm, opc1, opc2 uint32) bool
	CompileGetOneWord(b *Translator, crn, crm, opc1, opc2 uint32) (ir.Value, bool)
	CompileLoadWords(b *Translator, long bool, hasOption bool, option uint32) bool
	CompileStoreWords(b *Translator, long bool, hasOption bool, option uint32) bool
}

// Options is the per-translation configuration a Translate call reads.
type Options struct {
	// DefineUnpredictableBehaviour is not read by Translate or any
	// visitor; UNPREDICTABLE guest inputs are translated the same way
	// whatever its value.
	DefineUnpredictableBehaviour bool
	// HookHint is not read by Translate or any later stage; it has no
	// effect on the IR or on emitted blocks.
	HookHint bool
	// MaxBlockInstructions bounds a single translation; the
	// frontend forces a LinkBlock terminator once reached.
	MaxBlockInstructions int
	// Coprocessors is indexed by CP number 0-15.
	Coprocessors [16]Coprocessor
	// ForceUnconditionalFirst treats the block's first instruction as
	// though its condition field evaluated AL, regardless of its actual
	// encoding. internal/dispatch sets this when re-entering at a
	// TermInterpret target: by construction, dispatch only reaches that
	// location because the guarded condition was already observed true, so
	// recompiling the same conditional form would just defer again and
	// never make progress.
	ForceUnconditionalFirst bool
}

// DefaultOptions returns this package's recommended defaults.
func DefaultOptions() Options {
	return Options{MaxBlockInstructions: 128}
}
