package optimize

import "github.com/a18532086/a32jit/internal/ir"

// constantPropagation folds a pure op whose arguments are all compile-time
// constants into a single OpConstant. Folding rewrites the
// op in place (same Value index), so no other op's Args need updating.
func constantPropagation(b *ir.Block) {
	for i := range b.Ops {
		op := &b.Ops[i]
		if !op.Opcode.Pure() || op.Opcode == ir.OpConstant {
			continue
		}
		vals := make([]uint64, len(op.Args))
		allConst := true
		for j, a := range op.Args {
			if a.IsImm {
				vals[j] = a.Imm
				continue
			}
			def := b.Result(a.Val)
			if def == nil || def.Opcode != ir.OpConstant {
				allConst = false
				break
			}
			vals[j] = def.Args[0].Imm
		}
		if !allConst {
			continue
		}
		if folded, ok := foldPure(op.Opcode, op.ExtraImm, vals); ok {
			*op = ir.Op{Opcode: ir.OpConstant, Type: op.Type, Args: []ir.Arg{ir.ImmArg(folded)}, Uses: op.Uses}
		}
	}
}

func foldPure(op ir.Opcode, extra uint64, v []uint64) (uint64, bool) {
	u32 := func(i int) uint32 { return uint32(v[i]) }
	switch op {
	case ir.OpAdd:
		return uint64(u32(0) + u32(1)), true
	case ir.OpSub:
		return uint64(u32(0) - u32(1)), true
	case ir.OpAnd:
		return uint64(u32(0) & u32(1)), true
	case ir.OpOr:
		return uint64(u32(0) | u32(1)), true
	case ir.OpXor:
		return uint64(u32(0) ^ u32(1)), true
	case ir.OpNot:
		return uint64(^u32(0)), true
	case ir.OpNeg:
		return uint64(-u32(0)), true
	case ir.OpLsl:
		return uint64(u32(0) << (u32(1) & 31)), true
	case ir.OpLsr:
		return uint64(u32(0) >> (u32(1) & 31)), true
	case ir.OpAsr:
		return uint64(uint32(int32(u32(0)) >> (u32(1) & 31))), true
	case ir.OpRor:
		n := u32(1) & 31
		if n == 0 {
			return uint64(u32(0)), true
		}
		return uint64(u32(0)>>n | u32(0)<<(32-n)), true
	case ir.OpMul:
		return uint64(u32(0) * u32(1)), true
	case ir.OpSelect:
		if v[0] != 0 {
			return v[1], true
		}
		return v[2], true
	case ir.OpZeroExtend:
		return v[0], true
	case ir.OpSignExtend:
		width := extra
		shift := 64 - width
		return uint64(int64(v[0]<<shift) >> shift), true
	case ir.OpTrunc:
		width := extra
		if width >= 64 {
			return v[0], true
		}
		return v[0] & ((1 << width) - 1), true
	}
	return 0, false
}
