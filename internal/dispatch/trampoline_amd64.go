//go:build linux && amd64

package dispatch

import "unsafe"

// callJIT invokes entryPoint — the first byte of an internal/backend
// EmittedBlock — passing statePtr in RDI per the System V AMD64 ABI
// internal/backend compiles every block against, and returns the
// (ExitReason, payload) pair the block's epilogue left in RAX/RDX before
// its own ret. Grounded on the teacher's pvm/jit/asm/trampoline.go: pure Go
// assembly to avoid a cgo call's overhead on this hot path. Unlike the
// teacher's call_amd64.go, this trampoline carries no signal-handler
// wrapper for raw guest-memory faults, since this backend's emitted code
// never dereferences a guest address directly (every guest memory access
// routes through internal/dispatch's own Callbacks handoff at an
// ExitCallback boundary instead).
func callJIT(entryPoint uintptr, statePtr unsafe.Pointer) (exitReason, payload uint64)
