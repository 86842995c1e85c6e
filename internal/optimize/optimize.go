// Package optimize runs the fixed-order IR cleanup passes: GetSetElimination,
// ConstantMemoryReads, ConstantPropagation, DeadCodeElimination (twice),
// MergeInterpretBlocks, and a debug-only VerificationPass. Grounded on the
// teacher's recompiler_helpers.go, which runs a small fixed sequence of
// peephole cleanups over a PVM basic block before handing it to the JIT
// backend; generalized here from PVM's flat-instruction peepholes to
// operate over ir.Block's typed, use-counted ops.
package optimize

import (
	"github.com/a18532086/a32jit/internal/frontend"
	"github.com/a18532086/a32jit/internal/ir"
)

// MemoryReader is the narrow slice of frontend.Callbacks the
// ConstantMemoryReads pass needs: enough to fold a read from guest
// read-only memory at a constant address into a compile-time constant.
type MemoryReader interface {
	IsReadOnlyMemory(addr uint32) bool
	MemoryRead8(addr uint32) (uint8, error)
	MemoryRead16(addr uint32) (uint16, error)
	MemoryRead32(addr uint32) (uint32, error)
	MemoryRead64(addr uint32) (uint64, error)
}

var _ MemoryReader = frontend.Callbacks(nil)

// Run applies every pass to block in the fixed documented order, in place.
// debug enables VerificationPass, which panics (via engineerr.Invariant) on
// the first invariant violation it finds rather than silently continuing.
func Run(block *ir.Block, mem MemoryReader, debug bool) {
	getSetElimination(block)
	constantMemoryReads(block, mem)
	constantPropagation(block)
	deadCodeElimination(block)
	deadCodeElimination(block)
	mergeInterpretBlocks(block)
	if debug {
		verify(block)
	}
}

// resolveArg follows an Arg to its ultimate constant-or-value form, given a
// redirect table built by earlier passes (GetSetElimination uses this to
// splice out redundant register reads without renumbering the block).
func resolveArg(redirect []ir.Value, a ir.Arg) ir.Arg {
	if a.IsImm {
		return a
	}
	return ir.ValArg(resolveValue(redirect, a.Val))
}

func resolveValue(redirect []ir.Value, v ir.Value) ir.Value {
	for redirect[v] != v {
		v = redirect[v]
	}
	return v
}
