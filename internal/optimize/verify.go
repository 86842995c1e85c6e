package optimize

import (
	"github.com/a18532086/a32jit/internal/engineerr"
	"github.com/a18532086/a32jit/internal/ir"
)

// verify is the debug-only VerificationPass: it checks that
// every live op's arguments only reference earlier, live indices, and that
// the terminator's composition depth stays within ir.MaxTerminatorDepth.
// Grounded on the teacher's own debug-build assertion style in
// pvm/recompiler.go ("must match struct layout or panic").
func verify(b *ir.Block) {
	for i, op := range b.Ops {
		if op.Opcode == ir.OpInvalid {
			continue
		}
		for _, a := range op.Args {
			if a.IsImm {
				continue
			}
			engineerr.Invariant(int(a.Val) < i, "op %d references non-prior value %d", i, a.Val)
			engineerr.Invariant(b.Ops[a.Val].Opcode != ir.OpInvalid, "op %d references dead value %d", i, a.Val)
		}
	}
	engineerr.Invariant(b.Terminator != nil, "block has no terminator")
	engineerr.Invariant(b.Terminator.Depth() <= ir.MaxTerminatorDepth, "terminator depth %d exceeds bound", b.Terminator.Depth())
}
