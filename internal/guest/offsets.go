package guest

import "unsafe"

// Offsets the backend emitter bakes into generated machine code as
// displacements off the State pointer, held live in a reserved host
// register for the lifetime of a block. Computed via unsafe.Offsetof
// rather than hand-maintained literals, unlike the teacher's BlockContext
// comment-only offsets, so a struct-layout change cannot silently desync
// emitted code from Go code.
var (
	OffsetR              = unsafe.Offsetof(State{}.R)
	OffsetS              = unsafe.Offsetof(State{}.S)
	OffsetNZCV           = unsafe.Offsetof(State{}.NZCV)
	OffsetQ              = unsafe.Offsetof(State{}.Q)
	OffsetGE             = unsafe.Offsetof(State{}.GE)
	OffsetITState        = unsafe.Offsetof(State{}.ITState)
	OffsetBigEndian      = unsafe.Offsetof(State{}.BigEndian)
	OffsetCPSRT          = unsafe.Offsetof(State{}.cpsrT)
	OffsetFPSCRMode       = unsafe.Offsetof(State{}.FPSCRMode)
	OffsetFPSCRCumulative = unsafe.Offsetof(State{}.FPSCRCumulative)
	OffsetTicksRemaining = unsafe.Offsetof(State{}.TicksRemaining)
	OffsetHaltRequested  = unsafe.Offsetof(State{}.HaltRequested)
	OffsetRSB            = unsafe.Offsetof(State{}.RSB)
	OffsetRSBIndex       = unsafe.Offsetof(State{}.RSBIndex)
	OffsetScratch        = unsafe.Offsetof(State{}.Scratch)
	OffsetMonitor        = unsafe.Offsetof(State{}.Monitor)
	OffsetMonitorValid   = unsafe.Offsetof(State{}.Monitor) + unsafe.Offsetof(ExclusiveMonitor{}.Valid)
	OffsetMonitorAddress = unsafe.Offsetof(State{}.Monitor) + unsafe.Offsetof(ExclusiveMonitor{}.Address)
	OffsetFastDispatch   = unsafe.Offsetof(State{}.FastDispatch)

	OffsetPendingKind     = unsafe.Offsetof(State{}.Pending) + unsafe.Offsetof(PendingCallback{}.Kind)
	OffsetPendingAddr     = unsafe.Offsetof(State{}.Pending) + unsafe.Offsetof(PendingCallback{}.Addr)
	OffsetPendingValue    = unsafe.Offsetof(State{}.Pending) + unsafe.Offsetof(PendingCallback{}.Value)
	OffsetPendingDestReg  = unsafe.Offsetof(State{}.Pending) + unsafe.Offsetof(PendingCallback{}.DestReg)
	OffsetPendingResumePC = unsafe.Offsetof(State{}.Pending) + unsafe.Offsetof(PendingCallback{}.ResumePC)
)

// RegisterOffset returns the byte offset of guest register r (0-15) within
// State, for use by backend emitters addressing R[r] directly.
func RegisterOffset(r int) uintptr {
	return OffsetR + uintptr(r)*4
}

// ScratchOffset returns the byte offset of spill slot i (0-ScratchSlots-1).
func ScratchOffset(i int) uintptr {
	return OffsetScratch + uintptr(i)*8
}

// RSBEntrySize is sizeof(RSBEntry), used to compute RSB[i]'s offset.
const RSBEntrySize = unsafe.Sizeof(RSBEntry{})
