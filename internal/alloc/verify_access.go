package alloc

import (
	"github.com/a18532086/a32jit/internal/engineerr"
	"github.com/a18532086/a32jit/internal/ir"
)

// VerifyAccessModes cross-checks every live op's result against the
// Allocation's recorded AccessMode (UseScratch exactly for types that
// forcesScratch names), catching a Use/UseScratch confusion before it ever
// reaches emitted machine code. It is run in debug builds only
// (internal/dispatch gates the call on its debug flag).
func VerifyAccessModes(block *ir.Block, a *Allocation) error {
	for i, op := range block.Ops {
		if op.Opcode == ir.OpInvalid {
			continue
		}
		want := Use
		if forcesScratch(op.Type) {
			want = UseScratch
		}
		got, ok := a.Values[ir.Value(i)]
		if !ok {
			continue // value is dead or a TypeNone op with no result
		}
		if got.Mode != want {
			return engineerr.New(engineerr.KindInternalInvariantViolation, nil,
				"value %d (opcode %v): allocator assigned mode %d, op requires %d", i, op.Opcode, got.Mode, want)
		}
	}
	return nil
}
