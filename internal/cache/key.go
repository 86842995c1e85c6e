package cache

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/blake2b"
)

// CodeReader is the narrow slice of frontend.Callbacks HashRange needs:
// enough to re-read the guest bytes a compiled block was built from,
// without internal/cache importing internal/frontend (which would close a
// cycle back through internal/dispatch, the package that actually drives
// compilation).
type CodeReader interface {
	MemoryReadCode(addr uint32) (uint32, error)
}

// ContentHash identifies the guest byte range a cached block was compiled
// from, so a rewrite that writes back the same bytes it replaced can be
// told apart from one that actually changed anything.
type ContentHash [32]byte

// HashRange blake2b-256-hashes the instruction words covering [pc, endPC),
// word size fixed at 4 bytes regardless of Thumb's 2-byte granularity:
// internal/invalidate only ever compares two hashes computed by this same
// function over the same range, so the exact word size is immaterial as
// long as it's consistent. Grounded on the DOMAIN STACK's blake2b pull-in:
// there is no point hashing guest.Location itself (already a small
// comparable struct), so this hashes what the Location's block actually
// depends on instead.
func HashRange(cr CodeReader, pc, endPC uint32) (ContentHash, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return ContentHash{}, errors.Wrap(err, "cache: init blake2b")
	}
	var buf [4]byte
	for addr := pc; addr < endPC; addr += 4 {
		word, err := cr.MemoryReadCode(addr)
		if err != nil {
			return ContentHash{}, err
		}
		binary.LittleEndian.PutUint32(buf[:], word)
		h.Write(buf[:])
	}
	var out ContentHash
	copy(out[:], h.Sum(nil))
	return out, nil
}

// touchesRange reports whether the half-open guest byte range [lo, hi)
// overlaps [pc, endPC).
func touchesRange(pc, endPC, lo, hi uint32) bool {
	return pc < hi && lo < endPC
}
