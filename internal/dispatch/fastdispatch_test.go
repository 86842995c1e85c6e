package dispatch

import (
	"testing"

	"github.com/a18532086/a32jit/internal/guest"
)

func TestFastDispatchProbeMiss(t *testing.T) {
	f := newFastDispatchTable()
	if _, ok := f.probe(guest.Location{PC: 0x100}); ok {
		t.Fatalf("probe on empty table: found")
	}
}

func TestFastDispatchPopulateThenProbe(t *testing.T) {
	f := newFastDispatchTable()
	loc := guest.Location{PC: 0x100}
	f.populate(loc, 0xdead0000)

	got, ok := f.probe(loc)
	if !ok {
		t.Fatalf("probe after populate: not found")
	}
	if got != 0xdead0000 {
		t.Fatalf("probe() = %#x, want %#x", got, 0xdead0000)
	}
}

func TestFastDispatchDistinctLocationsDoNotAlias(t *testing.T) {
	f := newFastDispatchTable()
	a := guest.Location{PC: 0x100}
	b := guest.Location{PC: 0x100, State: guest.StateThumb}

	f.populate(a, 0x1000)
	f.populate(b, 0x2000)

	// a and b differ only in State, so unless their truncated hashes
	// collide, both should still probe successfully.
	if a.TruncatedHash(fastDispatchBits) != b.TruncatedHash(fastDispatchBits) {
		gotA, ok := f.probe(a)
		if !ok || gotA != 0x1000 {
			t.Fatalf("probe(a) = %#x,%v, want 0x1000,true", gotA, ok)
		}
		gotB, ok := f.probe(b)
		if !ok || gotB != 0x2000 {
			t.Fatalf("probe(b) = %#x,%v, want 0x2000,true", gotB, ok)
		}
	}
}

func TestFastDispatchCollisionEvictsPreviousEntry(t *testing.T) {
	f := newFastDispatchTable()
	a := guest.Location{PC: 0x100}
	f.populate(a, 0x1000)

	// Force a collision: construct a second Location whose truncated hash
	// matches a's slot but which is not Equal to a, by scanning PCs.
	var b guest.Location
	found := false
	for pc := uint32(1); pc < 1<<20; pc++ {
		cand := guest.Location{PC: pc}
		if cand.TruncatedHash(fastDispatchBits) == a.TruncatedHash(fastDispatchBits) && !cand.Equal(a) {
			b = cand
			found = true
			break
		}
	}
	if !found {
		t.Skip("no colliding Location found in search range")
	}

	f.populate(b, 0x2000)

	// a's slot was overwritten by b (non-chaining table), so probing a
	// must now miss.
	if _, ok := f.probe(a); ok {
		t.Fatalf("probe(a) after collision: still found, want evicted")
	}
	got, ok := f.probe(b)
	if !ok || got != 0x2000 {
		t.Fatalf("probe(b) = %#x,%v, want 0x2000,true", got, ok)
	}
}

func TestFastDispatchClear(t *testing.T) {
	f := newFastDispatchTable()
	loc := guest.Location{PC: 0x100}
	f.populate(loc, 0x1000)

	f.Clear()

	if _, ok := f.probe(loc); ok {
		t.Fatalf("probe after Clear: found")
	}
}
