// Package frontend is the per-opcode IR builder: it advances
// a translation cursor over guest instruction words, decodes each via
// internal/decode, and dispatches to a visitor method that appends IR ops
// to the current Block. Grounded on the teacher's pvm/handlers.go
// (InstructionHandler per-opcode dispatch) generalized from "one opcode,
// one effect" to "one opcode, a short IR sequence", since a single A32
// instruction's effect (especially conditional ones) needs more than one
// micro-op.
package frontend

import (
	"github.com/a18532086/a32jit/internal/decode"
	"github.com/a18532086/a32jit/internal/engineerr"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

// Translator holds the in-progress Block and translation cursor for one
// call to Translate.
type Translator struct {
	block   *ir.Block
	cb      Callbacks
	opts    Options
	pc      uint32 // address of the instruction currently being visited
	word    uint32
	thumb   bool
	count   int

	// pendingCond/pendingCondAlways cache the current instruction's
	// condition evaluation between setCondField and the visitor body, so a
	// single EvaluateCondition call's IR is shared by every guarded effect
	// the instruction emits (register write, flag write, memory write).
	pendingCond       ir.Value
	pendingCondAlways bool

	// thumbBLBase/thumbBLPending carry the first halfword's partial target
	// across to the second halfword of a 32-bit-encoded Thumb BL, which the
	// ISA splits into two 16-bit instructions (visitors_thumb.go).
	thumbBLBase    uint32
	thumbBLPending bool
}

var _ decode.Builder = (*Translator)(nil)

// InstructionWord implements decode.Builder.
func (t *Translator) InstructionWord() uint32 { return t.word }

// Translate builds one IR Block starting at loc.
func Translate(loc guest.Location, cb Callbacks, opts Options) (*ir.Block, error) {
	t := &Translator{
		block: ir.New(loc),
		cb:    cb,
		opts:  opts,
		pc:    loc.PC,
		thumb: loc.IsThumb(),
	}

	// tickOp reserves this block's tick-cost op at index 0, ahead of any
	// instruction the loop below translates, so it always runs even when
	// the block ends at a callback op (Emit lowers Ops in order and stops
	// at the first one): a block that never gets to decrement the tick
	// budget because it happened to end in an SVC would let a guest
	// program halt() itself in an infinite loop of zero-cost blocks.
	// Patched below once the final instruction count is known.
	tickOp := t.emit(ir.OpAddTicks, ir.TypeNone, ir.ImmArg(0))

	for {
		if t.count >= opts.MaxBlockInstructions {
			t.block.SetTerminator(&ir.Terminator{Kind: ir.TermLinkBlock, Target: t.nextLocation()})
			break
		}
		word, err := cb.MemoryReadCode(t.pc)
		if err != nil {
			return nil, err
		}
		t.word = word

		var table decode.Table
		var size uint32
		if t.thumb {
			table, size = ThumbTable, 2
		} else if decode.IsUnconditionalSpace(word) {
			table, size = UnconditionalTable, 4
		} else {
			table, size = A32Table, 4
		}

		m, fields, err := decode.Decode(table, word)
		if err != nil {
			t.raiseUndefined()
			break
		}
		cont := m.Visit(t, fields)
		t.pc += size
		t.count++
		if !cont || t.block.Terminated() {
			break
		}
	}
	engineerr.Invariant(t.block.Terminated(), "frontend produced a block with no terminator")
	t.block.Ops[tickOp].Args[0] = ir.ImmArg(uint64(t.count))
	t.block.EndPC = t.pc
	return t.block, nil
}

func (t *Translator) nextLocation() guest.Location {
	loc := t.block.Location
	loc.PC = t.pc
	return loc
}

// --- IR construction helpers ---

func (t *Translator) emit(op ir.Opcode, typ ir.Type, args ...ir.Arg) ir.Value {
	return t.block.Append(ir.Op{Opcode: op, Type: typ, Args: args})
}

func (t *Translator) emitExtra(op ir.Opcode, typ ir.Type, extra uint64, args ...ir.Arg) ir.Value {
	return t.block.Append(ir.Op{Opcode: op, Type: typ, Args: args, ExtraImm: extra})
}

// Const materializes an immediate as an IR value.
func (t *Translator) Const(v uint32) ir.Value {
	return t.emit(ir.OpConstant, ir.TypeU32, ir.ImmArg(uint64(v)))
}

// GetReg reads guest register n.
func (t *Translator) GetReg(n int) ir.Value {
	return t.emit(ir.OpGetRegister, ir.TypeU32, ir.ImmArg(uint64(n)))
}

// SetReg writes guest register n unconditionally.
func (t *Translator) SetReg(n int, v ir.Value) {
	t.emit(ir.OpSetRegister, ir.TypeNone, ir.ImmArg(uint64(n)), ir.ValArg(v))
}

// SetRegCond writes guest register n only if cond (a U1 value) holds,
// realized as a Select guard around the write rather than a control-flow
// branch: a conditional effect is modeled as "wrapped in If(cond, ...)" at
// the data level via OpSelect, so conditional data-processing instructions
// stay branch-free for the optimizer and backend, which is what lets
// ConstantPropagation elide the guard entirely when cond is the AL
// constant.
func (t *Translator) SetRegCond(n int, cond, newVal ir.Value) {
	old := t.GetReg(n)
	guarded := t.emit(ir.OpSelect, ir.TypeU32, ir.ValArg(cond), ir.ValArg(newVal), ir.ValArg(old))
	t.SetReg(n, guarded)
}

// Select is OpSelect: cond ? a : b.
func (t *Translator) Select(cond, a, b ir.Value) ir.Value {
	return t.emit(ir.OpSelect, ir.TypeU32, ir.ValArg(cond), ir.ValArg(a), ir.ValArg(b))
}

// GetFlags reads the current NZCV/Q/GE/IT snapshot.
func (t *Translator) GetFlags() ir.Value {
	return t.emit(ir.OpGetFlags, ir.TypeFlags)
}

// SetFlags writes a new flags snapshot unconditionally.
func (t *Translator) SetFlags(v ir.Value) {
	t.emit(ir.OpSetFlags, ir.TypeNone, ir.ValArg(v))
}

// SetFlagsCond writes a new flags snapshot only if cond holds, same Select
// guard pattern as SetRegCond.
func (t *Translator) SetFlagsCond(cond, newFlags ir.Value) {
	old := t.GetFlags()
	guarded := t.emit(ir.OpSelect, ir.TypeFlags, ir.ValArg(cond), ir.ValArg(newFlags), ir.ValArg(old))
	t.SetFlags(guarded)
}

func (t *Translator) raiseException(kind ir.ExceptionKind) {
	t.emit(ir.OpExceptionRaised, ir.TypeNone, ir.ImmArg(uint64(kind)))
}

func (t *Translator) raiseUndefined() {
	t.raiseException(ir.ExceptionUndefined)
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermReturnToDispatch, Target: t.resumeHere()})
}

// resumeHere is the current instruction's own Location, used as the
// terminator Target on a block that ends in a callback op with no natural
// fallthrough of its own (an exception notification): the dispatcher reads
// this back as the pending callback's resume point once the embedder has
// serviced it.
func (t *Translator) resumeHere() guest.Location {
	loc := t.Location()
	loc.PC = t.pc
	return loc
}

// --- terminator helpers ---

func (t *Translator) TermReturnToDispatch() {
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermReturnToDispatch})
}

func (t *Translator) TermLinkBlock(loc guest.Location) {
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermLinkBlock, Target: loc})
}

func (t *Translator) TermLinkBlockFast(loc guest.Location) {
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermLinkBlockFast, Target: loc})
}

func (t *Translator) TermInterpret(loc guest.Location) {
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermInterpret, Target: loc})
}

func (t *Translator) TermPopRSBHint() {
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermPopRSBHint})
}

func (t *Translator) TermFastDispatchHint() {
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermFastDispatchHint})
}

// TermCheckHalt wraps then in a halt check: if halt-requested, return to
// dispatcher instead.
func (t *Translator) TermCheckHalt(then *ir.Terminator) {
	t.block.SetTerminator(&ir.Terminator{Kind: ir.TermCheckHalt, Then: then})
}

// PC returns the address of the instruction currently being visited.
func (t *Translator) PC() uint32 { return t.pc }

// Location returns the block's starting descriptor (for building successor
// locations that must carry the same execution-state bits).
func (t *Translator) Location() guest.Location { return t.block.Location }

// Thumb reports whether this block is being translated in Thumb state.
func (t *Translator) Thumb() bool { return t.thumb }
