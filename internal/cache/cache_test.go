package cache

import (
	"testing"

	"github.com/a18532086/a32jit/internal/backend"
	"github.com/a18532086/a32jit/internal/guest"
)

func newTestBlock(t *testing.T, buf *backend.CodeBuffer, loc guest.Location) *backend.EmittedBlock {
	t.Helper()
	code, handle, err := buf.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return &backend.EmittedBlock{
		Location:    loc,
		Code:        code,
		CodePointer: uintptr(0x1000),
		ChunkHandle: handle,
	}
}

func TestCacheStoreLookup(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := New(buf, nil)

	loc := guest.Location{PC: 0x100}
	blk := newTestBlock(t, buf, loc)
	c.Store(blk, ContentHash{}, 0x104)

	got, ok := c.Lookup(loc)
	if !ok {
		t.Fatalf("Lookup(%v): not found", loc)
	}
	if got != blk {
		t.Fatalf("Lookup returned a different block")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}

	other := guest.Location{PC: 0x200}
	if _, ok := c.Lookup(other); ok {
		t.Fatalf("Lookup(%v): unexpectedly found", other)
	}
}

func TestCacheStoreReplacesExisting(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := New(buf, nil)

	loc := guest.Location{PC: 0x100}
	first := newTestBlock(t, buf, loc)
	c.Store(first, ContentHash{}, 0x104)

	second := newTestBlock(t, buf, loc)
	second.CodePointer = 0x2000
	c.Store(second, ContentHash{}, 0x104)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after replace", c.Len())
	}
	got, _ := c.Lookup(loc)
	if got.CodePointer != 0x2000 {
		t.Fatalf("Lookup after replace returned stale block")
	}
}

func TestCacheEvict(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := New(buf, nil)

	loc := guest.Location{PC: 0x100}
	c.Store(newTestBlock(t, buf, loc), ContentHash{}, 0x104)
	c.Evict(loc)

	if _, ok := c.Lookup(loc); ok {
		t.Fatalf("Lookup after Evict: still present")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after Evict", c.Len())
	}
	// Evicting an absent Location is a no-op, not an error.
	c.Evict(guest.Location{PC: 0x999})
}

func TestCacheClearAll(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := New(buf, nil)

	for _, pc := range []uint32{0x0, 0x10, 0x20} {
		loc := guest.Location{PC: pc}
		c.Store(newTestBlock(t, buf, loc), ContentHash{}, pc+4)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	c.ClearAll()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after ClearAll", c.Len())
	}
}

func TestCacheClearRanges(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := New(buf, nil)

	// Block A covers [0x0, 0x8), block B covers [0x100, 0x108), block C
	// covers [0x200, 0x208).
	locA := guest.Location{PC: 0x0}
	locB := guest.Location{PC: 0x100}
	locC := guest.Location{PC: 0x200}
	c.Store(newTestBlock(t, buf, locA), ContentHash{}, 0x8)
	c.Store(newTestBlock(t, buf, locB), ContentHash{}, 0x108)
	c.Store(newTestBlock(t, buf, locC), ContentHash{}, 0x208)

	// Overlaps only block A's range.
	evicted := c.ClearRanges([][2]uint32{{0x4, 0xC}})
	if len(evicted) != 1 || evicted[0] != locA {
		t.Fatalf("ClearRanges = %v, want [%v]", evicted, locA)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after partial ClearRanges", c.Len())
	}
	if _, ok := c.Lookup(locB); !ok {
		t.Fatalf("block B was evicted but its range wasn't touched")
	}
}

func TestCacheLocationsSortedByPC(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := New(buf, nil)

	pcs := []uint32{0x300, 0x100, 0x200}
	for _, pc := range pcs {
		loc := guest.Location{PC: pc}
		c.Store(newTestBlock(t, buf, loc), ContentHash{}, pc+4)
	}

	locs := c.Locations()
	if len(locs) != 3 {
		t.Fatalf("Locations() len = %d, want 3", len(locs))
	}
	for i := 1; i < len(locs); i++ {
		if locs[i-1].PC > locs[i].PC {
			t.Fatalf("Locations() not sorted by PC: %v", locs)
		}
	}
}

func TestTouchesRange(t *testing.T) {
	tests := []struct {
		name           string
		pc, endPC      uint32
		lo, hi         uint32
		wantOverlap    bool
	}{
		{"disjoint before", 0x0, 0x8, 0x8, 0x10, false},
		{"disjoint after", 0x10, 0x18, 0x0, 0x8, false},
		{"exact overlap", 0x0, 0x8, 0x0, 0x8, true},
		{"partial overlap low", 0x4, 0xC, 0x0, 0x8, true},
		{"partial overlap high", 0x0, 0x8, 0x4, 0xC, true},
		{"fully contains", 0x0, 0x10, 0x4, 0x8, true},
		{"fully contained", 0x4, 0x8, 0x0, 0x10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := touchesRange(tt.pc, tt.endPC, tt.lo, tt.hi)
			if got != tt.wantOverlap {
				t.Errorf("touchesRange(%#x,%#x,%#x,%#x) = %v, want %v", tt.pc, tt.endPC, tt.lo, tt.hi, got, tt.wantOverlap)
			}
		})
	}
}
