package guest

// ExecutionState bits that affect decode, packed into Location alongside the
// guest PC. Grounded on the teacher's location-agnostic PC-only cache key
// (pvm has a single flat PC space); A32 needs more bits because Thumb vs ARM
// decode tables, endianness, and IT-block state all change what a given
// instruction word means.
type ExecutionState uint32

const (
	// StateThumb selects the 16-bit Thumb decode table over the 32-bit A32
	// table.
	StateThumb ExecutionState = 1 << iota
	// StateBigEndian selects big-endian instruction-word and data fetches.
	StateBigEndian
	// StateSingleStep marks a descriptor that must stop after one guest
	// instruction (used by the debug single-step path).
	StateSingleStep
)

// itStateBits occupies the low byte of the packed IT/endian/FP-mode field:
// an ARM IT-block's condition/mask byte, 0 when not in an IT block.
type itStateBits = uint8

// FPSCRModeBits mirror the rounding-mode and vector-length bits of FPSCR
// that change the semantics (not just the result) of FP operations, and
// therefore must be part of the cache key: two blocks compiled under
// different rounding modes are not interchangeable.
type FPSCRModeBits uint32

// Location is the cache key identifying an entry point into translated
// code. Two Locations are equal iff all fields match bit-for-bit; Hash
// folds the tuple into a single uint64.
type Location struct {
	PC       uint32
	State    ExecutionState
	ITState  itStateBits
	FPSCRMod FPSCRModeBits
}

// Equal reports bit-for-bit equality: a descriptor maps to at most one
// live emitted block at a time, and this is the test that relation relies on.
func (l Location) Equal(o Location) bool {
	return l.PC == o.PC && l.State == o.State && l.ITState == o.ITState && l.FPSCRMod == o.FPSCRMod
}

// Hash bit-folds the descriptor tuple into a single value suitable for a
// map key or a truncated direct-mapped table index.
func (l Location) Hash() uint64 {
	h := uint64(l.PC)
	h = h*1099511628211 ^ uint64(l.State)
	h = h*1099511628211 ^ uint64(l.ITState)
	h = h*1099511628211 ^ uint64(l.FPSCRMod)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

// TruncatedHash returns the low bits of Hash used to index the
// fixed-size fast-dispatch table.
func (l Location) TruncatedHash(bits uint) uint64 {
	return l.Hash() & ((1 << bits) - 1)
}

func (l Location) IsThumb() bool { return l.State&StateThumb != 0 }
func (l Location) IsBigEndian() bool { return l.State&StateBigEndian != 0 }
func (l Location) IsSingleStep() bool { return l.State&StateSingleStep != 0 }
