package frontend

import "github.com/a18532086/a32jit/internal/ir"

// Barrel-shifter type encodings (ARM ARM A5.1.3).
const (
	shiftLSL = 0
	shiftLSR = 1
	shiftASR = 2
	shiftROR = 3
)

// shifted is the (value, carry-out) pair a shifter operand contributes; the
// carry-out is only meaningful to the logical-ops flag path.
type shifted struct {
	Value ir.Value
	Carry ir.Value
}

func (t *Translator) bit(v ir.Value, index uint32) ir.Value {
	return t.emit(ir.OpAnd, ir.TypeU1, ir.ValArg(t.emit(ir.OpLsr, ir.TypeU32, ir.ValArg(v), ir.ImmArg(uint64(index)))), ir.ImmArg(1))
}

// shiftImm applies an immediate shifter operand. amount and shiftType are
// decode-time constants (the instruction's shift_imm/shift_type fields), so
// the ARM ARM's "shift amount of 0 has special meaning for LSR/ASR/ROR"
// rule can be resolved entirely in Go rather than emitted as IR branches.
func (t *Translator) shiftImm(rm ir.Value, shiftType, amount uint32, carryIn ir.Value) shifted {
	switch shiftType {
	case shiftLSL:
		if amount == 0 {
			return shifted{rm, carryIn}
		}
		val := t.emit(ir.OpLsl, ir.TypeU32, ir.ValArg(rm), ir.ImmArg(uint64(amount)))
		carry := t.bit(rm, 32-amount)
		return shifted{val, carry}
	case shiftLSR:
		if amount == 0 {
			amount = 32
		}
		if amount == 32 {
			return shifted{t.Const(0), t.bit(rm, 31)}
		}
		val := t.emit(ir.OpLsr, ir.TypeU32, ir.ValArg(rm), ir.ImmArg(uint64(amount)))
		carry := t.bit(rm, amount-1)
		return shifted{val, carry}
	case shiftASR:
		if amount == 0 {
			amount = 32
		}
		if amount >= 32 {
			signBit := t.bit(rm, 31)
			val := t.emit(ir.OpAsr, ir.TypeU32, ir.ValArg(rm), ir.ImmArg(31))
			return shifted{val, signBit}
		}
		val := t.emit(ir.OpAsr, ir.TypeU32, ir.ValArg(rm), ir.ImmArg(uint64(amount)))
		carry := t.bit(rm, amount-1)
		return shifted{val, carry}
	case shiftROR:
		if amount == 0 {
			// RRX: rotate right through carry by one bit.
			hi := t.emit(ir.OpLsl, ir.TypeU32, ir.ValArg(t.zext1(carryIn)), ir.ImmArg(31))
			lo := t.emit(ir.OpLsr, ir.TypeU32, ir.ValArg(rm), ir.ImmArg(1))
			val := t.emit(ir.OpOr, ir.TypeU32, ir.ValArg(hi), ir.ValArg(lo))
			return shifted{val, t.bit(rm, 0)}
		}
		val := t.emit(ir.OpRor, ir.TypeU32, ir.ValArg(rm), ir.ImmArg(uint64(amount)))
		carry := t.bit(rm, amount-1)
		return shifted{val, carry}
	}
	return shifted{rm, carryIn}
}

// shiftReg applies a register-amount shifter operand; amount is only known
// at run time, so the clamping rule at 0/32/>32 is the defined meaning of
// the OpXxxReg/OpXxxRegCarry opcodes themselves rather than IR built here.
func (t *Translator) shiftReg(rm ir.Value, shiftType uint32, amount, carryIn ir.Value) shifted {
	var valOp, carryOp ir.Opcode
	switch shiftType {
	case shiftLSL:
		valOp, carryOp = ir.OpLslReg, ir.OpLslRegCarry
	case shiftLSR:
		valOp, carryOp = ir.OpLsrReg, ir.OpLsrRegCarry
	case shiftASR:
		valOp, carryOp = ir.OpAsrReg, ir.OpAsrRegCarry
	case shiftROR:
		valOp, carryOp = ir.OpRorReg, ir.OpRorRegCarry
	}
	val := t.emit(valOp, ir.TypeU32, ir.ValArg(rm), ir.ValArg(amount))
	carry := t.emit(carryOp, ir.TypeU1, ir.ValArg(rm), ir.ValArg(amount), ir.ValArg(carryIn))
	return shifted{val, carry}
}

// zext1 widens a U1 value to U32 (0 or 1).
func (t *Translator) zext1(v ir.Value) ir.Value {
	return t.emitExtra(ir.OpZeroExtend, ir.TypeU32, 32, ir.ValArg(v))
}
