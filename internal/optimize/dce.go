package optimize

import "github.com/a18532086/a32jit/internal/ir"

// deadCodeElimination drops pure ops with a zero use count.
// Dead ops are tagged OpInvalid in place rather than compacted out of the
// slice, since compaction would renumber every later Value; the backend
// emitter skips OpInvalid ops when it walks the block. Eliminating an op
// decrements the use count of whatever it referenced, which is why the
// pipeline runs this pass twice: the second pass catches ops that only
// became dead because their sole consumer was removed in the first.
func deadCodeElimination(b *ir.Block) {
	for i := range b.Ops {
		op := &b.Ops[i]
		if op.Opcode == ir.OpInvalid || !op.Opcode.Pure() || op.Uses > 0 {
			continue
		}
		for _, a := range op.Args {
			if !a.IsImm {
				b.Ops[a.Val].Uses--
			}
		}
		op.Opcode = ir.OpInvalid
		op.Args = nil
	}
}
