// Package alloc is the linear-scan register allocator:
// it assigns each live IR value either an abstract host register or a
// guest-state scratch slot. Grounded on the teacher's recompiler.go, which
// tracks a small fixed set of "hot" PVM registers resident in host
// registers and spills the rest to BlockContext fields; generalized here
// into a real interval-based linear scan since an ARM block's IR has far
// more live temporaries than PVM's flat bytecode ever produced.
package alloc

import (
	"github.com/a18532086/a32jit/internal/ir"
)

// RegID is an abstract host register identity; internal/backend maps these
// onto concrete x86-64 registers. Keeping the allocator's register space
// abstract lets this package be tested without any backend dependency.
type RegID int

// NumCalleeSaved and NumCallerSaved bound the two register classes the
// tie-break policy (below) chooses between. Sized to leave the backend
// enough fixed-purpose registers (state-block pointer, stack pointer,
// scratch for memory-call argument marshalling) outside the allocatable
// pool.
const (
	NumCalleeSaved = 5
	NumCallerSaved = 6
	NumRegs        = NumCalleeSaved + NumCallerSaved
)

// calleeSaved reports whether r is in the callee-saved class (reg IDs
// [0, NumCalleeSaved)); callerSaved is the complement.
func calleeSaved(r RegID) bool { return int(r) < NumCalleeSaved }

// AccessMode distinguishes how a consumer reads an allocated value: Use is
// the ordinary path (register, or memory operand if spilled); UseScratch
// forces the value through its guest-state scratch-slot backing store, and
// is assigned to every value whose type cannot live in a single host
// register (see forcesScratch).
type AccessMode int

const (
	Use AccessMode = iota
	UseScratch
)

// Assignment is where one IR value lives after allocation.
type Assignment struct {
	Mode AccessMode
	// IsReg selects between the Reg and Slot interpretations below. A
	// UseScratch-mode assignment always has IsReg false.
	IsReg bool
	Reg   RegID
	Slot  int // index into guest.State.Scratch
}

// Allocation is the result of Allocate: a fixed slot or register for every
// live (non-dead) value in the block.
type Allocation struct {
	Values map[ir.Value]Assignment
}

type interval struct {
	def, lastUse int
	callCrossing bool
}

// forcesScratch reports whether v's type can never live in a single
// abstract host register and must instead always resolve through its
// scratch-slot backing store.
func forcesScratch(t ir.Type) bool {
	return t == ir.TypeFlags || t == ir.TypeU64 || t == ir.TypeU128
}

// Allocate runs one linear scan over block's single basic block, computing
// live intervals by def/last-use index and assigning registers or scratch
// slots accordingly.
func Allocate(block *ir.Block) *Allocation {
	n := len(block.Ops)
	intervals := make(map[ir.Value]*interval, n)

	callCrossingIdx := map[int]bool{}
	for i, op := range block.Ops {
		if op.Opcode == ir.OpInvalid {
			continue
		}
		if isCallBoundary(op.Opcode) {
			callCrossingIdx[i] = true
		}
	}

	for i := range block.Ops {
		op := &block.Ops[i]
		if op.Opcode == ir.OpInvalid {
			continue
		}
		intervals[ir.Value(i)] = &interval{def: i, lastUse: i}
		for _, a := range op.Args {
			if a.IsImm {
				continue
			}
			if iv, ok := intervals[a.Val]; ok {
				iv.lastUse = i
			}
		}
	}
	markTerminatorUse(block.Terminator, len(block.Ops)-1, intervals)

	for _, iv := range intervals {
		for idx := range callCrossingIdx {
			if idx > iv.def && idx <= iv.lastUse {
				iv.callCrossing = true
			}
		}
	}

	alloc := &Allocation{Values: make(map[ir.Value]Assignment, len(intervals))}
	freeCallee := make([]RegID, NumCalleeSaved)
	for i := range freeCallee {
		freeCallee[i] = RegID(i)
	}
	freeCaller := make([]RegID, NumCallerSaved)
	for i := range freeCaller {
		freeCaller[i] = RegID(NumCalleeSaved + i)
	}
	active := map[ir.Value]*interval{}
	nextSlot := 0

	order := orderedValues(intervals)
	for _, v := range order {
		iv := intervals[v]
		op := block.Result(v)

		expire(active, alloc, iv.def, &freeCallee, &freeCaller)

		if forcesScratch(op.Type) {
			alloc.Values[v] = Assignment{Mode: UseScratch, Slot: nextSlot}
			nextSlot++
			active[v] = iv
			continue
		}

		var pool *[]RegID
		if iv.callCrossing {
			pool = &freeCallee
			if len(*pool) == 0 {
				pool = &freeCaller
			}
		} else {
			pool = &freeCaller
			if len(*pool) == 0 {
				pool = &freeCallee
			}
		}
		if len(*pool) > 0 {
			r := (*pool)[len(*pool)-1]
			*pool = (*pool)[:len(*pool)-1]
			alloc.Values[v] = Assignment{Mode: Use, IsReg: true, Reg: r}
		} else {
			alloc.Values[v] = Assignment{Mode: Use, Slot: nextSlot}
			nextSlot++
		}
		active[v] = iv
	}
	return alloc
}

func orderedValues(intervals map[ir.Value]*interval) []ir.Value {
	out := make([]ir.Value, 0, len(intervals))
	for v := range intervals {
		out = append(out, v)
	}
	// Insertion order over a map is unspecified; sort by def index so the
	// scan processes values in program order, which is what makes "expire
	// anything whose interval ended before this value's def" correct.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && intervals[out[j-1]].def > intervals[out[j]].def; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func expire(active map[ir.Value]*interval, alloc *Allocation, currentDef int, freeCallee, freeCaller *[]RegID) {
	for v, iv := range active {
		if iv.lastUse >= currentDef {
			continue
		}
		a := alloc.Values[v]
		if a.IsReg {
			if calleeSaved(a.Reg) {
				*freeCallee = append(*freeCallee, a.Reg)
			} else {
				*freeCaller = append(*freeCaller, a.Reg)
			}
		}
		delete(active, v)
	}
}

func markTerminatorUse(t *ir.Terminator, atIdx int, intervals map[ir.Value]*interval) {
	if t == nil {
		return
	}
	if t.Kind == ir.TermIf && t.Cond != ir.NoValue {
		if iv, ok := intervals[t.Cond]; ok {
			iv.lastUse = atIdx
		}
	}
	markTerminatorUse(t.Then, atIdx, intervals)
	markTerminatorUse(t.Else, atIdx, intervals)
}

// isCallBoundary reports whether op potentially clobbers caller-saved host
// registers because its lowering calls back into Go (a memory access or
// SVC dispatch).
func isCallBoundary(op ir.Opcode) bool {
	switch op {
	case ir.OpReadMemory8, ir.OpReadMemory16, ir.OpReadMemory32, ir.OpReadMemory64,
		ir.OpWriteMemory8, ir.OpWriteMemory16, ir.OpWriteMemory32, ir.OpWriteMemory64,
		ir.OpExclusiveReadMemory32, ir.OpExclusiveWriteMemory32,
		ir.OpCallSVC, ir.OpExceptionRaised:
		return true
	default:
		return false
	}
}
