package optimize

import "github.com/a18532086/a32jit/internal/ir"

// constantMemoryReads folds a read from a constant, read-only guest address
// into a compile-time OpConstant. Code pages are the
// canonical case (a LDR of a literal pool entry embedded in .rodata), but
// the rule applies to any address the embedder marks read-only.
func constantMemoryReads(b *ir.Block, mem MemoryReader) {
	if mem == nil {
		return
	}
	for i := range b.Ops {
		op := &b.Ops[i]
		if len(op.Args) != 1 {
			continue
		}
		addrVal := constAddrValue(b, op.Args[0])
		if addrVal > 0xFFFFFFFF {
			continue
		}
		addr := uint32(addrVal)
		if !mem.IsReadOnlyMemory(addr) {
			continue
		}
		switch op.Opcode {
		case ir.OpReadMemory8:
			if v, err := mem.MemoryRead8(addr); err == nil {
				*op = ir.Op{Opcode: ir.OpConstant, Type: ir.TypeU8, Args: []ir.Arg{ir.ImmArg(uint64(v))}, Uses: op.Uses}
			}
		case ir.OpReadMemory16:
			if v, err := mem.MemoryRead16(addr); err == nil {
				*op = ir.Op{Opcode: ir.OpConstant, Type: ir.TypeU16, Args: []ir.Arg{ir.ImmArg(uint64(v))}, Uses: op.Uses}
			}
		case ir.OpReadMemory32:
			if v, err := mem.MemoryRead32(addr); err == nil {
				*op = ir.Op{Opcode: ir.OpConstant, Type: ir.TypeU32, Args: []ir.Arg{ir.ImmArg(uint64(v))}, Uses: op.Uses}
			}
		case ir.OpReadMemory64:
			if v, err := mem.MemoryRead64(addr); err == nil {
				*op = ir.Op{Opcode: ir.OpConstant, Type: ir.TypeU64, Args: []ir.Arg{ir.ImmArg(v)}, Uses: op.Uses}
			}
		}
	}
}

// constAddrValue returns a's value if it is an immediate, or the defining
// op's immediate if it resolves to a prior OpConstant; returns ^uint64(0)
// otherwise, which the caller skips as out of the 32-bit address range, so
// the read stays unfolded.
func constAddrValue(b *ir.Block, a ir.Arg) uint64 {
	if a.IsImm {
		return a.Imm
	}
	if def := b.Result(a.Val); def != nil && def.Opcode == ir.OpConstant && len(def.Args) == 1 {
		return def.Args[0].Imm
	}
	return ^uint64(0) // sentinel unlikely to be a valid, read-only guest address
}
