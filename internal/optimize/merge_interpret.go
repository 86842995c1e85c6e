package optimize

import "github.com/a18532086/a32jit/internal/ir"

// mergeInterpretBlocks collapses a conditional terminator whose two arms
// both bail out to the interpreter at the same target into a single
// unconditional TermInterpret: if the instruction interprets
// either way, evaluating which way is pointless work for the backend.
func mergeInterpretBlocks(b *ir.Block) {
	t := b.Terminator
	if t == nil || t.Kind != ir.TermIf || t.Then == nil || t.Else == nil {
		return
	}
	if t.Then.Kind == ir.TermInterpret && t.Else.Kind == ir.TermInterpret && t.Then.Target.Equal(t.Else.Target) {
		b.Terminator = &ir.Terminator{Kind: ir.TermInterpret, Target: t.Then.Target}
	}
}
