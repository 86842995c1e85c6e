package backend

import (
	"github.com/a18532086/a32jit/internal/guest"
)

// EmittedBlock is the result of compiling one IR block: its machine code
// (already written into RWX memory by CodeBuffer.Allocate) plus the
// bookkeeping internal/cache needs to reclaim it.
type EmittedBlock struct {
	Location guest.Location

	// Code is the slice of executable memory holding this block's machine
	// code, as returned by CodeBuffer.Allocate. CodePointer is the address
	// a caller jumps to (Code's first byte).
	Code        []byte
	CodePointer uintptr
	ChunkHandle uintptr

	// LinkSites has room for patchable ExitLinkBlockFast jump sites (the
	// rel32 field's offset and the target Location). Emit leaves it empty
	// and nothing in this repository patches emitted code, so every exit
	// returns to the dispatcher.
	LinkSites []LinkSite
}

// LinkSite is one patchable cross-block jump within an emitted block.
type LinkSite struct {
	Target  guest.Location
	Offset  int // byte offset within Code of the rel32 operand
	InstrEnd int // offset immediately after the jump instruction (rel32 base)
}
