// Package ir is the typed, SSA-ish micro-op representation produced by the
// frontend and consumed by the optimizer, allocator, and backend. Grounded
// on the teacher's ParsedInstruction (pvm/pvm.go) generalized from a flat
// decoded-instruction record into a proper multi-op IR, since a single PVM
// instruction maps to a single effect while a single A32 instruction can
// expand into several micro-ops (e.g. a conditional data-processing
// instruction becomes a guarded sequence).
package ir

// Type is the result/argument type of a Value.
type Type int

const (
	TypeNone Type = iota
	TypeU1
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeU128
	TypeFlags // a bundled NZCV-producing result
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeU1:
		return "u1"
	case TypeU8:
		return "u8"
	case TypeU16:
		return "u16"
	case TypeU32:
		return "u32"
	case TypeU64:
		return "u64"
	case TypeU128:
		return "u128"
	case TypeFlags:
		return "flags"
	default:
		return "?"
	}
}

// Value identifies the result of some Op (or a block argument); it is an
// index into the owning Block's Ops slice, or -1 for "no value"
// (TypeNone-typed ops).
type Value int

const NoValue Value = -1

// Arg is an op argument: either an immediate or a
// reference to a prior op's result. Ops take a slice of Arg, never bare
// Values, so constant folding can rewrite an argument in place without
// restructuring the op list.
type Arg struct {
	// IsImm selects between the Imm and Val interpretations below.
	IsImm bool
	Imm   uint64
	Val   Value
}

// ImmArg builds a constant argument.
func ImmArg(v uint64) Arg { return Arg{IsImm: true, Imm: v} }

// ValArg builds a value-reference argument.
func ValArg(v Value) Arg { return Arg{Val: v} }
