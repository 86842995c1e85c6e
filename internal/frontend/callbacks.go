package frontend

import "github.com/a18532086/a32jit/internal/ir"

// Callbacks is the embedder collaborator interface the engine drives guest
// memory access, timing, and exception/SVC notification through. The
// frontend only needs the code-fetch and read-only-memory predicate at
// translation time, and optimizer passes (constant memory folding) call
// back into it at compile time; the rest are consulted by internal/dispatch
// when it services a block's pending callback (emitted code never calls
// them directly).
type Callbacks interface {
	MemoryReadCode(addr uint32) (uint32, error)
	MemoryRead8(addr uint32) (uint8, error)
	MemoryRead16(addr uint32) (uint16, error)
	MemoryRead32(addr uint32) (uint32, error)
	MemoryRead64(addr uint32) (uint64, error)
	MemoryWrite8(addr uint32, v uint8) error
	MemoryWrite16(addr uint32, v uint16) error
	MemoryWrite32(addr uint32, v uint32) error
	MemoryWrite64(addr uint32, v uint64) error
	IsReadOnlyMemory(addr uint32) bool
	AddTicks(n uint64)
	GetTicksRemaining() uint64
	CallSVC(imm uint32)
	ExceptionRaised(pc uint32, kind ir.ExceptionKind)
}
