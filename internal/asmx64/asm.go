// Package asmx64 is a minimal, hand-rolled x86-64 instruction encoder,
// grounded on the teacher's pvm/jit/x86asm.go: a byte-level REX/ModRM/SIB
// emitter built purpose-first for the handful of instruction forms a JIT
// backend actually needs, not a general disassembler-grade encoder.
// golang.org/x/arch/x86/x86asm decodes machine code; it has no encoder
// half, so it cannot serve this concern.
package asmx64

// Reg is a physical x86-64 general-purpose register.
type Reg uint8

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// extended reports whether r needs REX.B/R/X (register numbers 8-15).
func (r Reg) extended() bool { return r >= R8 }

// low3 is the 3-bit register field value ModRM/SIB/opcode+reg encode.
func (r Reg) low3() byte { return byte(r) & 0x7 }

// Assembler accumulates emitted machine code bytes for one block. It is a
// pure byte buffer; internal/backend owns turning that buffer into
// executable memory (internal/backend/codebuf.go).
type Assembler struct {
	Code []byte
	// labels maps a symbolic label to its resolved offset once known, and
	// fixups records forward references to patch once the label resolves
	// (grounded on the teacher's two-pass label/fixup scheme in
	// pvm/jit/x86asm.go for forward jumps within one compiled block).
	labels  map[string]int
	fixups  []fixup
}

type fixup struct {
	label    string
	patchAt  int // offset of the rel32 field to patch
	instrEnd int // offset immediately after the instruction (rel32 base)
}

func New() *Assembler {
	return &Assembler{labels: map[string]int{}}
}

func (a *Assembler) emit(b ...byte) { a.Code = append(a.Code, b...) }

func (a *Assembler) emit32(v uint32) {
	a.emit(byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (a *Assembler) emit64(v uint64) {
	a.emit32(uint32(v))
	a.emit32(uint32(v >> 32))
}

// Label binds name to the current write position.
func (a *Assembler) Label(name string) {
	a.labels[name] = len(a.Code)
}

// rex builds a REX prefix byte; w selects 64-bit operand size, r/x/b extend
// the ModRM reg/SIB index/ModRM rm fields respectively. Returns 0 (and is
// simply not emitted) when none of the bits are set and w is false, since a
// bare 0x40 REX prefix is legal but pointless noise in the byte stream.
func rex(w, r, x, b bool) (byte, bool) {
	if !w && !r && !x && !b {
		return 0, false
	}
	v := byte(0x40)
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if x {
		v |= 0x02
	}
	if b {
		v |= 0x01
	}
	return v, true
}

func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | rm&7
}

func (a *Assembler) emitRex(w bool, regField, rmField Reg) {
	if v, ok := rex(w, regField.extended(), false, rmField.extended()); ok {
		a.emit(v)
	}
}

// MovRegImm64 emits `mov dst, imm64`.
func (a *Assembler) MovRegImm64(dst Reg, imm uint64) {
	a.emitRex(true, RAX, dst)
	a.emit(0xB8 + dst.low3())
	a.emit64(imm)
}

// MovRegImm32 emits `mov dst, imm32` (zero-extended into the 64-bit reg).
func (a *Assembler) MovRegImm32(dst Reg, imm uint32) {
	if v, ok := rex(false, false, false, dst.extended()); ok {
		a.emit(v)
	}
	a.emit(0xB8 + dst.low3())
	a.emit32(imm)
}

// MovRegReg emits `mov dst, src` (64-bit).
func (a *Assembler) MovRegReg(dst, src Reg) {
	a.emitRex(true, src, dst)
	a.emit(0x89, modrm(3, src.low3(), dst.low3()))
}

// MovRegReg32 emits the 32-bit-width `mov dst, src` (no REX.W): besides
// copying the low 32 bits, x86 always zero-extends a 32-bit GPR write into
// the full 64-bit register, which the backend relies on as its one
// truncation primitive (dst==src truncates dst to 32 bits in place).
func (a *Assembler) MovRegReg32(dst, src Reg) {
	if v, ok := rex(false, src.extended(), false, dst.extended()); ok {
		a.emit(v)
	}
	a.emit(0x89, modrm(3, src.low3(), dst.low3()))
}

// MovRegMem emits `mov dst, [base+disp32]` (64-bit load).
func (a *Assembler) MovRegMem(dst, base Reg, disp int32) {
	a.emitRex(true, dst, base)
	a.emit(0x8B)
	a.emitMemOperand(dst, base, disp)
}

// MovMemReg emits `mov [base+disp32], src` (64-bit store).
func (a *Assembler) MovMemReg(base Reg, disp int32, src Reg) {
	a.emitRex(true, src, base)
	a.emit(0x89)
	a.emitMemOperand(src, base, disp)
}

// MovRegMem32/MovMemReg32 are the 32-bit-width siblings, used for the guest
// state block's uint32 register fields.
func (a *Assembler) MovRegMem32(dst, base Reg, disp int32) {
	if v, ok := rex(false, dst.extended(), false, base.extended()); ok {
		a.emit(v)
	}
	a.emit(0x8B)
	a.emitMemOperand(dst, base, disp)
}

func (a *Assembler) MovMemReg32(base Reg, disp int32, src Reg) {
	if v, ok := rex(false, src.extended(), false, base.extended()); ok {
		a.emit(v)
	}
	a.emit(0x89)
	a.emitMemOperand(src, base, disp)
}

// MovMemReg8 emits `mov [base+disp32], src` storing src's low byte, used
// for the guest state block's single-byte bool/flag fields. Always emits a
// REX prefix (even when otherwise elidable) since src may be one of
// RSP/RBP/RSI/RDI, whose byte-register forms without REX name AH/CH/DH/BH
// instead of SPL/BPL/SIL/DIL.
func (a *Assembler) MovMemReg8(base Reg, disp int32, src Reg) {
	if v, ok := rex(false, src.extended(), false, base.extended()); ok {
		a.emit(v)
	} else {
		a.emit(0x40)
	}
	a.emit(0x88)
	a.emitMemOperand(src, base, disp)
}

// emitMemOperand writes the ModRM(+SIB)(+disp) encoding of [base+disp32]
// for reg as the ModRM.reg field. RSP/R12 as a base need a SIB byte (their
// ModRM encoding is reserved for RIP-relative/SIB forms); RBP/R13 as a base
// always take the disp32 form (mod=10), even with a zero displacement, since
// mod=00,rm=101 means RIP-relative instead of [RBP].
func (a *Assembler) emitMemOperand(reg, base Reg, disp int32) {
	needsSIB := base.low3() == RSP.low3()
	mod := byte(2) // disp32
	if disp == 0 && base.low3() != RBP.low3() {
		mod = 0
	}
	rm := base.low3()
	if needsSIB {
		rm = 4
	}
	a.emit(modrm(mod, reg.low3(), rm))
	if needsSIB {
		a.emit(0x24) // scale=1, index=none, base=RSP/R12
	}
	if mod == 2 {
		a.emit32(uint32(disp))
	} else if base.low3() == RBP.low3() {
		a.emit(0) // not reached: an RBP/R13 base always selects mod=2 above
	}
}

// aluOp is the ModRM.reg-field selector for the /r-form ALU instructions.
type aluOp byte

const (
	aluAdd aluOp = 0
	aluOr  aluOp = 1
	aluAdc aluOp = 2
	aluSbb aluOp = 3
	aluAnd aluOp = 4
	aluSub aluOp = 5
	aluXor aluOp = 6
	aluCmp aluOp = 7
)

func (a *Assembler) aluRegReg(op aluOp, dst, src Reg) {
	a.emitRex(true, src, dst)
	a.emit(0x01|byte(op)<<3, modrm(3, src.low3(), dst.low3()))
}

func (a *Assembler) AddRegReg(dst, src Reg) { a.aluRegReg(aluAdd, dst, src) }
func (a *Assembler) SubRegReg(dst, src Reg) { a.aluRegReg(aluSub, dst, src) }
func (a *Assembler) AndRegReg(dst, src Reg) { a.aluRegReg(aluAnd, dst, src) }
func (a *Assembler) OrRegReg(dst, src Reg)  { a.aluRegReg(aluOr, dst, src) }
func (a *Assembler) XorRegReg(dst, src Reg) { a.aluRegReg(aluXor, dst, src) }
func (a *Assembler) CmpRegReg(dst, src Reg) { a.aluRegReg(aluCmp, dst, src) }

// alu32RegReg is aluRegReg's 32-bit-width sibling (no REX.W): needed
// wherever the host flags produced by the instruction itself (CF/OF after
// ADD/SUB/ADC/SBB) must reflect a carry/overflow out of bit 31 rather than
// bit 63, which a 64-bit-width op would otherwise get wrong whenever the
// backend's zero-extended-in-a-64-bit-register value convention would
// silently change the answer.
func (a *Assembler) alu32RegReg(op aluOp, dst, src Reg) {
	if v, ok := rex(false, src.extended(), false, dst.extended()); ok {
		a.emit(v)
	}
	a.emit(0x01|byte(op)<<3, modrm(3, src.low3(), dst.low3()))
}

func (a *Assembler) Add32RegReg(dst, src Reg) { a.alu32RegReg(aluAdd, dst, src) }
func (a *Assembler) Sub32RegReg(dst, src Reg) { a.alu32RegReg(aluSub, dst, src) }
func (a *Assembler) Adc32RegReg(dst, src Reg) { a.alu32RegReg(aluAdc, dst, src) }
func (a *Assembler) Sbb32RegReg(dst, src Reg) { a.alu32RegReg(aluSbb, dst, src) }
func (a *Assembler) Cmp32RegReg(dst, src Reg) { a.alu32RegReg(aluCmp, dst, src) }

// aluRegImm32 emits the 81 /op id form (sign-extended imm32, 64-bit dest).
func (a *Assembler) aluRegImm32(op aluOp, dst Reg, imm int32) {
	a.emitRex(true, RAX, dst)
	a.emit(0x81, modrm(3, byte(op), dst.low3()))
	a.emit32(uint32(imm))
}

func (a *Assembler) AddRegImm32(dst Reg, imm int32) { a.aluRegImm32(aluAdd, dst, imm) }
func (a *Assembler) SubRegImm32(dst Reg, imm int32) { a.aluRegImm32(aluSub, dst, imm) }
func (a *Assembler) AndRegImm32(dst Reg, imm int32) { a.aluRegImm32(aluAnd, dst, imm) }
func (a *Assembler) CmpRegImm32(dst Reg, imm int32) { a.aluRegImm32(aluCmp, dst, imm) }

// NotReg/NegReg emit the F7 /2 and F7 /3 unary forms.
func (a *Assembler) NotReg(dst Reg) {
	a.emitRex(true, RAX, dst)
	a.emit(0xF7, modrm(3, 2, dst.low3()))
}
func (a *Assembler) NegReg(dst Reg) {
	a.emitRex(true, RAX, dst)
	a.emit(0xF7, modrm(3, 3, dst.low3()))
}

// shiftOp is the ModRM.reg-field selector for the C1/D3-form shifts.
type shiftOp byte

const (
	shiftRol shiftOp = 0
	shiftRor shiftOp = 1
	shiftShl shiftOp = 4
	shiftShr shiftOp = 5
	shiftSar shiftOp = 7
)

// ShiftRegImm8 emits `op dst, imm8` (C1 /n ib).
func (a *Assembler) ShiftRegImm8(op shiftOp, dst Reg, imm uint8) {
	a.emitRex(true, RAX, dst)
	a.emit(0xC1, modrm(3, byte(op), dst.low3()), imm)
}

// ShiftRegCL emits `op dst, cl` (D3 /n); the shift amount must already be
// in CL, the only encoding x86 allows for a register shift count.
func (a *Assembler) ShiftRegCL(op shiftOp, dst Reg) {
	a.emitRex(true, RAX, dst)
	a.emit(0xD3, modrm(3, byte(op), dst.low3()))
}

func (a *Assembler) ShlRegImm8(dst Reg, n uint8) { a.ShiftRegImm8(shiftShl, dst, n) }
func (a *Assembler) ShrRegImm8(dst Reg, n uint8) { a.ShiftRegImm8(shiftShr, dst, n) }
func (a *Assembler) SarRegImm8(dst Reg, n uint8) { a.ShiftRegImm8(shiftSar, dst, n) }
func (a *Assembler) RorRegImm8(dst Reg, n uint8) { a.ShiftRegImm8(shiftRor, dst, n) }

// ShlRegCL/ShrRegCL/SarRegCL/RorRegCL shift dst by the count in CL, the only
// encoding x86 allows for a variable shift amount.
func (a *Assembler) ShlRegCL(dst Reg) { a.ShiftRegCL(shiftShl, dst) }
func (a *Assembler) ShrRegCL(dst Reg) { a.ShiftRegCL(shiftShr, dst) }
func (a *Assembler) SarRegCL(dst Reg) { a.ShiftRegCL(shiftSar, dst) }
func (a *Assembler) RorRegCL(dst Reg) { a.ShiftRegCL(shiftRor, dst) }

// IMulRegReg emits the two-operand `imul dst, src` form (0F AF /r).
func (a *Assembler) IMulRegReg(dst, src Reg) {
	a.emitRex(true, dst, src)
	a.emit(0x0F, 0xAF, modrm(3, dst.low3(), src.low3()))
}

// PushReg/PopReg emit the single-byte 50+r/58+r forms.
func (a *Assembler) PushReg(r Reg) {
	if v, ok := rex(false, false, false, r.extended()); ok {
		a.emit(v)
	}
	a.emit(0x50 + r.low3())
}
func (a *Assembler) PopReg(r Reg) {
	if v, ok := rex(false, false, false, r.extended()); ok {
		a.emit(v)
	}
	a.emit(0x58 + r.low3())
}

// Ret emits a near return.
func (a *Assembler) Ret() { a.emit(0xC3) }

// CallReg emits an indirect call through a register (FF /2).
func (a *Assembler) CallReg(r Reg) {
	if v, ok := rex(false, false, false, r.extended()); ok {
		a.emit(v)
	}
	a.emit(0xFF, modrm(3, 2, r.low3()))
}

// JmpReg emits an indirect jump through a register (FF /4).
func (a *Assembler) JmpReg(r Reg) {
	if v, ok := rex(false, false, false, r.extended()); ok {
		a.emit(v)
	}
	a.emit(0xFF, modrm(3, 4, r.low3()))
}

// JmpLabel emits a near rel32 jump to a label, resolved (or recorded as a
// fixup for Resolve) against the label table.
func (a *Assembler) JmpLabel(name string) {
	a.emit(0xE9)
	a.recordFixup(name)
	a.emit32(0)
}

// Cond is an x86 condition code for Jcc (ARM condition codes are evaluated
// in guest IR terms well before this package sees them; this is purely the
// host encoding for whatever comparison the backend already reduced a
// branch to, e.g. JNZ after a TEST).
type Cond byte

const (
	CondO  Cond = 0x0
	CondNO Cond = 0x1
	CondB  Cond = 0x2 // below/carry
	CondAE Cond = 0x3 // above-or-equal/not-carry
	CondE  Cond = 0x4
	CondNE Cond = 0x5
	CondBE Cond = 0x6
	CondA  Cond = 0x7
	CondS  Cond = 0x8 // sign
	CondNS Cond = 0x9
	CondL  Cond = 0xC
	CondGE Cond = 0xD
	CondLE Cond = 0xE
	CondG  Cond = 0xF
)

// JccLabel emits a near rel32 conditional jump (0F 8x).
func (a *Assembler) JccLabel(cc Cond, name string) {
	a.emit(0x0F, 0x80+byte(cc))
	a.recordFixup(name)
	a.emit32(0)
}

// TestRegReg emits `test a, a` (85 /r), the standard "is zero" probe for a
// U1 value materialized in a register.
func (a *Assembler) TestRegReg(a_, b Reg) {
	a.emitRex(true, b, a_)
	a.emit(0x85, modrm(3, b.low3(), a_.low3()))
}

// SetccReg emits `setcc dst8` (0F 9x /0), writing 0/1 into dst's low byte.
// Callers that need the result zero-extended into the full register must
// clear dst (or mask it) first, since SETcc never touches the upper bytes.
func (a *Assembler) SetccReg(cc Cond, dst Reg) {
	if v, ok := rex(false, false, false, dst.extended()); ok {
		a.emit(v)
	}
	a.emit(0x0F, 0x90+byte(cc), modrm(3, 0, dst.low3()))
}

// MovzxReg8 emits `movzx dst, dst8l` treating src's low byte as an 8-bit
// zero-extend source (0F B6 /r).
func (a *Assembler) MovzxReg8(dst, src Reg) {
	a.emitRex(true, dst, src)
	a.emit(0x0F, 0xB6, modrm(3, dst.low3(), src.low3()))
}

// MovzxReg16 zero-extends src's low 16 bits into dst (0F B7 /r).
func (a *Assembler) MovzxReg16(dst, src Reg) {
	a.emitRex(true, dst, src)
	a.emit(0x0F, 0xB7, modrm(3, dst.low3(), src.low3()))
}

// MovsxReg8 sign-extends src's low byte into dst (0F BE /r).
func (a *Assembler) MovsxReg8(dst, src Reg) {
	a.emitRex(true, dst, src)
	a.emit(0x0F, 0xBE, modrm(3, dst.low3(), src.low3()))
}

// MovsxReg16 sign-extends src's low 16 bits into dst (0F BF /r).
func (a *Assembler) MovsxReg16(dst, src Reg) {
	a.emitRex(true, dst, src)
	a.emit(0x0F, 0xBF, modrm(3, dst.low3(), src.low3()))
}

// MovRegMem8 emits `movzx dst, byte [base+disp32]` (0F B6 /r), used to read
// the guest state block's single-byte bool/flag fields.
func (a *Assembler) MovRegMem8(dst, base Reg, disp int32) {
	a.emitRex(true, dst, base)
	a.emit(0x0F, 0xB6)
	a.emitMemOperand(dst, base, disp)
}

// MovsxdReg sign-extends src's low 32 bits into dst's 64 bits (63 /r).
func (a *Assembler) MovsxdReg(dst, src Reg) {
	a.emitRex(true, dst, src)
	a.emit(0x63, modrm(3, dst.low3(), src.low3()))
}

// Test32RegReg emits the 32-bit-width `test a, a` (85 /r, no REX.W), needed
// whenever SF must reflect bit 31 of a zero-extended-in-64-bits value
// rather than bit 63 (which is always clear under this backend's
// value-representation convention, and would make the 64-bit TestRegReg
// always report a false "nonnegative").
func (a *Assembler) Test32RegReg(a_, b Reg) {
	if v, ok := rex(false, b.extended(), false, a_.extended()); ok {
		a.emit(v)
	}
	a.emit(0x85, modrm(3, b.low3(), a_.low3()))
}

func (a *Assembler) recordFixup(name string) {
	if target, ok := a.labels[name]; ok {
		// Backward reference: recorded like a forward one and patched by
		// Resolve, using the offset just past the 4 placeholder bytes the
		// caller appends as the rel32 base.
		a.fixups = append(a.fixups, fixup{label: name, patchAt: len(a.Code), instrEnd: len(a.Code) + 4})
		_ = target
		return
	}
	a.fixups = append(a.fixups, fixup{label: name, patchAt: len(a.Code), instrEnd: len(a.Code) + 4})
}

// Resolve patches every recorded fixup now that all labels have been bound.
// Must be called once, after the whole block has been emitted.
func (a *Assembler) Resolve() error {
	for _, fx := range a.fixups {
		target, ok := a.labels[fx.label]
		if !ok {
			return errUnresolvedLabel(fx.label)
		}
		rel := int32(target - fx.instrEnd)
		a.Code[fx.patchAt] = byte(rel)
		a.Code[fx.patchAt+1] = byte(rel >> 8)
		a.Code[fx.patchAt+2] = byte(rel >> 16)
		a.Code[fx.patchAt+3] = byte(rel >> 24)
	}
	return nil
}

type errUnresolvedLabel string

func (e errUnresolvedLabel) Error() string { return "asmx64: unresolved label " + string(e) }
