// Package invalidate implements invalidate_range/invalidate_all (§4.7): it
// queues a caller's request, flags the guest state halted so a call made
// from inside an embedder callback while run() is executing returns
// promptly, and applies the actual cache eviction plus RSB/fast-dispatch
// reset and generation bump once the caller drains it. Grounded on the
// teacher's pvm/jit/cache.go Invalidate, generalized from PVM's single flat
// PC range to A32's block-covers-a-byte-range model.
package invalidate

import (
	"sync"

	"github.com/a18532086/a32jit/internal/cache"
	"github.com/a18532086/a32jit/internal/guest"
)

// FastTable is the narrow slice of internal/dispatch's fast-dispatch table
// an invalidation needs: just the ability to wipe it. Declared here
// (rather than invalidate importing dispatch) so internal/dispatch can
// depend on internal/invalidate without a cycle.
type FastTable interface {
	Clear()
}

type rangeReq struct{ start, end uint32 }

// Invalidator owns the monotonic invalidation-generation counter and the
// queue of not-yet-applied range/full invalidation requests.
type Invalidator struct {
	mu         sync.Mutex
	cache      *cache.Cache
	fast       FastTable
	generation uint64
	queued     []rangeReq
	queuedAll  bool
}

// New returns an Invalidator evicting from c and clearing fast on apply.
func New(c *cache.Cache, fast FastTable) *Invalidator {
	return &Invalidator{cache: c, fast: fast}
}

// Generation returns the current invalidation generation, captured into
// a save_context snapshot and compared on load_context.
func (inv *Invalidator) Generation() uint64 {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.generation
}

// QueueRange records [start, start+length) for invalidation and marks
// state halted. Safe to call from inside an embedder callback mid-run():
// this backend's blocks always return fully to Go before any callback
// runs (see internal/backend/emit_callback.go), so there is never a live
// native return address into code an invalidation might free — applying
// immediately on the next Drain, rather than truly deferring past a
// yield point, is safe and is this package's deliberate simplification of
// "runs synchronously once execution yields".
func (inv *Invalidator) QueueRange(state *guest.State, start, length uint32) {
	inv.mu.Lock()
	inv.queued = append(inv.queued, rangeReq{start: start, end: start + length})
	inv.mu.Unlock()
	state.HaltRequested = true
}

// QueueAll records a full invalidation request and marks state halted.
func (inv *Invalidator) QueueAll(state *guest.State) {
	inv.mu.Lock()
	inv.queuedAll = true
	inv.mu.Unlock()
	state.HaltRequested = true
}

// HasPending reports whether anything is queued.
func (inv *Invalidator) HasPending() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.queuedAll || len(inv.queued) > 0
}

// Drain applies every queued invalidation against state and returns the
// Locations evicted. A no-op if nothing is queued.
func (inv *Invalidator) Drain(state *guest.State) []guest.Location {
	inv.mu.Lock()
	all := inv.queuedAll
	ranges := inv.queued
	inv.queuedAll = false
	inv.queued = nil
	inv.mu.Unlock()

	if all {
		return inv.applyAll(state)
	}
	if len(ranges) == 0 {
		return nil
	}
	rs := make([][2]uint32, len(ranges))
	for i, r := range ranges {
		rs[i] = [2]uint32{r.start, r.end}
	}
	return inv.applyRanges(state, rs)
}

// applyRanges is the range invalidation algorithm: evict every block whose
// covered byte range overlaps one of ranges, then unconditionally reset
// the RSB and fast-dispatch table and bump the generation (the literal
// text only requires the bump on full invalidation; extending it to range
// invalidation too keeps save_context/load_context's staleness check
// correct for RSB entries a range invalidation might have made dangling).
func (inv *Invalidator) applyRanges(state *guest.State, ranges [][2]uint32) []guest.Location {
	evicted := inv.cache.ClearRanges(ranges)
	state.ResetRSB()
	inv.fast.Clear()
	inv.bumpGeneration()
	return evicted
}

// InvalidateAllNow applies a full invalidation immediately, without
// touching state.HaltRequested. Used by internal/dispatch's low-memory
// policy check, which runs synchronously mid-resolve and must not make
// the engine yield to its caller over what is purely internal bookkeeping
// (queueRange/queueAll's halt side effect exists for user- and
// callback-initiated invalidation, an unrelated concern).
func (inv *Invalidator) InvalidateAllNow(state *guest.State) []guest.Location {
	return inv.applyAll(state)
}

// applyAll is full invalidation: every cached block is discarded, the
// code buffer reclaims everything Cache.ClearAll releases, the RSB and
// fast-dispatch table are reset, and the generation counter bumps.
func (inv *Invalidator) applyAll(state *guest.State) []guest.Location {
	evicted := inv.cache.Locations()
	inv.cache.ClearAll()
	state.ResetRSB()
	inv.fast.Clear()
	inv.bumpGeneration()
	return evicted
}

func (inv *Invalidator) bumpGeneration() {
	inv.mu.Lock()
	inv.generation++
	inv.mu.Unlock()
}
