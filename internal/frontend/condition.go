package frontend

import "github.com/a18532086/a32jit/internal/ir"

// Flag bit indices within an OpGetFlags snapshot, matching guest.State.NZCV's
// bit layout (bit3=N bit2=Z bit1=C bit0=V).
const (
	flagV = 0
	flagC = 1
	flagZ = 2
	flagN = 3
)

// A32 condition field encodings (ARM ARM A8.3).
const (
	condEQ = 0x0
	condNE = 0x1
	condCS = 0x2
	condCC = 0x3
	condMI = 0x4
	condPL = 0x5
	condVS = 0x6
	condVC = 0x7
	condHI = 0x8
	condLS = 0x9
	condGE = 0xA
	condLT = 0xB
	condGT = 0xC
	condLE = 0xD
	condAL = 0xE
)

func (t *Translator) flagBit(flags ir.Value, which int) ir.Value {
	return t.emitExtra(ir.OpGetFlagBit, ir.TypeU1, uint64(which), ir.ValArg(flags))
}

func (t *Translator) not1(v ir.Value) ir.Value {
	return t.emit(ir.OpNot, ir.TypeU1, ir.ValArg(v))
}

func (t *Translator) and1(a, b ir.Value) ir.Value {
	return t.emit(ir.OpAnd, ir.TypeU1, ir.ValArg(a), ir.ValArg(b))
}

func (t *Translator) or1(a, b ir.Value) ir.Value {
	return t.emit(ir.OpOr, ir.TypeU1, ir.ValArg(a), ir.ValArg(b))
}

func (t *Translator) xor1(a, b ir.Value) ir.Value {
	return t.emit(ir.OpXor, ir.TypeU1, ir.ValArg(a), ir.ValArg(b))
}

// EvaluateCondition compiles a 4-bit A32 condition field into a U1 IR value.
// The second return is true when cond is AL (0b1110): callers should skip
// emitting any guard at all rather than wrapping effects in an
// always-true Select, so straight-line code stays straight-line.
func (t *Translator) EvaluateCondition(cond uint32) (val ir.Value, alwaysTrue bool) {
	if cond == condAL {
		return ir.NoValue, true
	}
	if t.count == 0 && t.opts.ForceUnconditionalFirst {
		return ir.NoValue, true
	}
	flags := t.emit(ir.OpGetFlags, ir.TypeFlags)
	n := t.flagBit(flags, flagN)
	z := t.flagBit(flags, flagZ)
	c := t.flagBit(flags, flagC)
	v := t.flagBit(flags, flagV)

	switch cond {
	case condEQ:
		return z, false
	case condNE:
		return t.not1(z), false
	case condCS:
		return c, false
	case condCC:
		return t.not1(c), false
	case condMI:
		return n, false
	case condPL:
		return t.not1(n), false
	case condVS:
		return v, false
	case condVC:
		return t.not1(v), false
	case condHI:
		return t.and1(c, t.not1(z)), false
	case condLS:
		return t.or1(t.not1(c), z), false
	case condGE:
		return t.not1(t.xor1(n, v)), false
	case condLT:
		return t.xor1(n, v), false
	case condGT:
		return t.and1(t.not1(z), t.not1(t.xor1(n, v))), false
	case condLE:
		return t.or1(z, t.xor1(n, v)), false
	default: // 0b1111 in the conditional space is UNPREDICTABLE pre-v5, NV on some encodings
		return ir.NoValue, true
	}
}
