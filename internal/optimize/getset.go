package optimize

import "github.com/a18532086/a32jit/internal/ir"

// getSetElimination removes redundant guest-register traffic within a
// single block: a GetRegister that is preceded by a live
// SetRegister to the same register (with no intervening redefinition) is
// spliced out in favor of the set value directly, and a SetRegister that is
// overwritten before ever being read is dropped as a dead store. Because
// ir.Block is append-only and acyclic (an op can only reference an earlier
// index), both rewrites can be done in a single forward pass using a
// redirect table rather than a full reindexing.
func getSetElimination(b *ir.Block) {
	redirect := make([]ir.Value, len(b.Ops))
	for i := range redirect {
		redirect[i] = ir.Value(i)
	}

	lastSetValue := map[int]ir.Value{}
	lastSetOp := map[int]int{}
	readSinceSet := map[int]bool{}

	for i := range b.Ops {
		op := &b.Ops[i]
		for j, a := range op.Args {
			r := resolveArg(redirect, a)
			if !a.IsImm && r.Val != a.Val {
				// Move the use from the spliced-out read to its replacement,
				// so DeadCodeElimination's use counts stay accurate.
				b.Ops[a.Val].Uses--
				b.Ops[r.Val].Uses++
			}
			op.Args[j] = r
		}

		switch op.Opcode {
		case ir.OpGetRegister:
			reg := int(op.Args[0].Imm)
			readSinceSet[reg] = true
			if v, ok := lastSetValue[reg]; ok {
				redirect[i] = v
				op.Opcode = ir.OpInvalid
				op.Args = nil
			} else {
				lastSetValue[reg] = ir.Value(i)
			}
		case ir.OpSetRegister:
			reg := int(op.Args[0].Imm)
			if prevIdx, ok := lastSetOp[reg]; ok && !readSinceSet[reg] {
				b.Ops[prevIdx].Opcode = ir.OpInvalid
				b.Ops[prevIdx].Args = nil
			}
			lastSetOp[reg] = i
			lastSetValue[reg] = op.Args[1].Val
			if op.Args[1].IsImm {
				delete(lastSetValue, reg)
			}
			readSinceSet[reg] = false
		case ir.OpExchangeBranch, ir.OpCallSVC, ir.OpExceptionRaised:
			// These may redefine R15 (and, for ExchangeBranch, the Thumb
			// state bit) through means this pass does not track per-value;
			// conservatively forget everything we knew about register 15.
			delete(lastSetValue, 15)
			delete(lastSetOp, 15)
			readSinceSet[15] = true
		}
	}
}
