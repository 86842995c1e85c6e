package dispatch

import "github.com/a18532086/a32jit/internal/guest"

// fastDispatchBits sizes the direct-mapped fast-dispatch table at 2^12
// entries, non-chaining: a collision simply evicts whatever Location
// previously held that slot. Fixed rather than configurable (see
// SPEC_FULL.md's fast-dispatch sizing decision) since this is a cache-
// friendly lookup table, not a general hash map.
const fastDispatchBits = 12
const fastDispatchSize = 1 << fastDispatchBits

type fastDispatchEntry struct {
	loc  guest.Location
	code uintptr
}

// fastDispatchTable is the Go-side mirror of guest.State.FastDispatch: this
// backend's "always exit through Go" simplification means emitted code
// never actually probes it natively (FastDispatchHint terminators exit
// to the dispatcher the same as any other terminator), so the table lives
// here and is consulted at the Go level instead of the pointer the state
// block reserves for it. Single-threaded per engine instance, so no
// locking: the dispatcher and nothing else ever touches it.
type fastDispatchTable struct {
	entries [fastDispatchSize]fastDispatchEntry
}

func newFastDispatchTable() *fastDispatchTable {
	return &fastDispatchTable{}
}

// probe returns loc's code pointer if the table's slot for loc's truncated
// hash currently holds loc itself.
func (f *fastDispatchTable) probe(loc guest.Location) (uintptr, bool) {
	e := f.entries[loc.TruncatedHash(fastDispatchBits)]
	if e.code != 0 && e.loc.Equal(loc) {
		return e.code, true
	}
	return 0, false
}

// populate records loc's code pointer, lazily, the way §4.5 documents:
// the dispatcher is the only writer.
func (f *fastDispatchTable) populate(loc guest.Location, code uintptr) {
	f.entries[loc.TruncatedHash(fastDispatchBits)] = fastDispatchEntry{loc: loc, code: code}
}

// Clear wipes every entry. Satisfies internal/invalidate.FastTable.
func (f *fastDispatchTable) Clear() {
	for i := range f.entries {
		f.entries[i] = fastDispatchEntry{}
	}
}
