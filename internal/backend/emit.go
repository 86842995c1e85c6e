package backend

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/a18532086/a32jit/internal/alloc"
	"github.com/a18532086/a32jit/internal/asmx64"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

// tempPool is a fixed set of general-purpose registers the emitter
// temporarily borrows, mid-op, via withTemps: push/pop-bracketed so the
// borrow is invisible to internal/alloc's view of which abstract RegIDs
// hold which live values (a value's home is never read or written while
// its register is borrowed, since a borrow never spans more than one op's
// lowering).
var tempPool = [...]asmx64.Reg{asmx64.RAX, asmx64.RDX, asmx64.RCX, asmx64.R8, asmx64.R9, asmx64.R10}

// emitter lowers one IR block into machine code. Grounded on the teacher's
// compiler.go Compile loop: walk ops in order, keep a couple of
// always-available scratch registers for expression temporaries, and
// finish with a fixed epilogue shape per exit.
type emitter struct {
	asm      *asmx64.Assembler
	alloc    *alloc.Allocation
	block    *ir.Block
	used     []asmx64.Reg // callee-saved registers this block's prologue pushes
	labelSeq int
}

// Emit lowers block into RWX machine code using allocation's register/
// scratch assignment, reserving space for it from buf.
func Emit(block *ir.Block, allocation *alloc.Allocation, buf *CodeBuffer) (*EmittedBlock, error) {
	e := &emitter{asm: asmx64.New(), alloc: allocation, block: block}
	e.used = calleeSavedInUse(e.liveCalleeIDs())
	e.emitPrologue()

	viaCallback := false
	for i := 0; i < len(block.Ops); i++ {
		op := block.Ops[i]
		if op.Opcode == ir.OpInvalid {
			continue
		}
		if isCallbackOp(op.Opcode) {
			e.emitCallbackExit(i, op)
			viaCallback = true
			break
		}
		e.emitOp(ir.Value(i), op)
	}
	if !viaCallback {
		e.emitTerminator(block.Terminator)
	}

	if err := e.asm.Resolve(); err != nil {
		return nil, errors.Wrap(err, "backend: resolve labels")
	}
	code, handle, err := buf.Allocate(len(e.asm.Code))
	if err != nil {
		return nil, err
	}
	copy(code, e.asm.Code)
	return &EmittedBlock{
		Location:    block.Location,
		Code:        code,
		CodePointer: uintptr(unsafe.Pointer(&code[0])),
		ChunkHandle: handle,
	}, nil
}

func (e *emitter) liveCalleeIDs() map[int]bool {
	ids := map[int]bool{}
	for _, a := range e.alloc.Values {
		if a.IsReg && int(a.Reg) < len(calleeSavedRegs) {
			ids[int(a.Reg)] = true
		}
	}
	return ids
}

func (e *emitter) emitPrologue() {
	for _, r := range e.used {
		e.asm.PushReg(r)
	}
}

// emitEpilogueAndRet pops every callee-saved register the prologue pushed,
// in reverse order, and returns. Every terminator leaf ends with this.
func (e *emitter) emitEpilogueAndRet() {
	for i := len(e.used) - 1; i >= 0; i-- {
		e.asm.PopReg(e.used[i])
	}
	e.asm.Ret()
}

func (e *emitter) newLabel(prefix string) string {
	e.labelSeq++
	return prefix + "_" + itoa(e.labelSeq)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// withTemps push/pop-brackets n registers from tempPool around fn, giving
// an op's lowering extra scratch capacity beyond the two always-reserved
// registers without disturbing any value internal/alloc currently homes in
// a caller-saved register.
func (e *emitter) withTemps(n int, fn func(t []asmx64.Reg)) {
	regs := tempPool[:n]
	for _, r := range regs {
		e.asm.PushReg(r)
	}
	fn(regs)
	for i := n - 1; i >= 0; i-- {
		e.asm.PopReg(regs[i])
	}
}

// loadArg materializes a (possibly immediate) argument's 32-bit value into
// dst, zero-extended into dst's full 64-bit register per this backend's
// value convention.
func (e *emitter) loadArg(a ir.Arg, dst asmx64.Reg) {
	if a.IsImm {
		e.asm.MovRegImm32(dst, uint32(a.Imm))
		return
	}
	e.loadValue(a.Val, dst)
}

func (e *emitter) loadValue(v ir.Value, dst asmx64.Reg) {
	asn := e.alloc.Values[v]
	if asn.Mode == alloc.Use && asn.IsReg {
		e.asm.MovRegReg(dst, hostReg(int(asn.Reg)))
		return
	}
	e.asm.MovRegMem32(dst, StateReg, int32(guest.ScratchOffset(asn.Slot)))
}

// loadValueWide is loadValue's 64-bit sibling, for TypeFlags/TypeU64 values
// that internal/alloc always backs with a scratch slot (forcesScratch).
func (e *emitter) loadValueWide(v ir.Value, dst asmx64.Reg) {
	asn := e.alloc.Values[v]
	e.asm.MovRegMem(dst, StateReg, int32(guest.ScratchOffset(asn.Slot)))
}

func (e *emitter) loadArgWide(a ir.Arg, dst asmx64.Reg) {
	if a.IsImm {
		e.asm.MovRegImm64(dst, a.Imm)
		return
	}
	e.loadValueWide(a.Val, dst)
}

// storeResult writes src (a 32-bit-or-narrower value, already truncated)
// into v's assigned home.
func (e *emitter) storeResult(v ir.Value, src asmx64.Reg) {
	asn := e.alloc.Values[v]
	if asn.Mode == alloc.Use && asn.IsReg {
		e.asm.MovRegReg32(hostReg(int(asn.Reg)), src)
		return
	}
	e.asm.MovMemReg32(StateReg, int32(guest.ScratchOffset(asn.Slot)), src)
}

// storeResultWide is storeResult's 64-bit sibling for TypeFlags/TypeU64
// results, which always resolve through UseScratch (forcesScratch).
func (e *emitter) storeResultWide(v ir.Value, src asmx64.Reg) {
	asn := e.alloc.Values[v]
	e.asm.MovMemReg(StateReg, int32(guest.ScratchOffset(asn.Slot)), src)
}

// trunc32 zero-extends reg's low 32 bits into the rest of its 64-bit
// register, the backend's one truncation primitive: every value is
// 32-bit-or-narrower unless its Type is TypeFlags/TypeU64/TypeU128.
func (e *emitter) trunc32(reg asmx64.Reg) { e.asm.MovRegReg32(reg, reg) }
