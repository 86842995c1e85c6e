package invalidate

import (
	"testing"

	gomock "go.uber.org/mock/gomock"

	"github.com/a18532086/a32jit/internal/backend"
	"github.com/a18532086/a32jit/internal/backendtest"
	"github.com/a18532086/a32jit/internal/cache"
	"github.com/a18532086/a32jit/internal/guest"
)

// fakeFastTable counts Clear calls instead of maintaining a real dispatch
// table, since invalidate only ever needs to tell the fast-dispatch layer
// to wipe itself.
type fakeFastTable struct{ clears int }

func (f *fakeFastTable) Clear() { f.clears++ }

func storeBlock(t *testing.T, c *cache.Cache, buf *backend.CodeBuffer, pc, endPC uint32) {
	t.Helper()
	_, handle, err := buf.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	loc := guest.Location{PC: pc}
	c.Store(&backend.EmittedBlock{Location: loc, ChunkHandle: handle}, cache.ContentHash{}, endPC)
}

func TestQueueRangeSetsHalted(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	fast := &fakeFastTable{}
	inv := New(c, fast)
	state := guest.New()

	if inv.HasPending() {
		t.Fatalf("HasPending before any queue: true")
	}

	inv.QueueRange(state, 0x100, 0x10)
	if !state.HaltRequested {
		t.Fatalf("QueueRange did not set HaltRequested")
	}
	if !inv.HasPending() {
		t.Fatalf("HasPending after QueueRange: false")
	}
}

func TestQueueAllSetsHalted(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	inv := New(c, &fakeFastTable{})
	state := guest.New()

	inv.QueueAll(state)
	if !state.HaltRequested {
		t.Fatalf("QueueAll did not set HaltRequested")
	}
	if !inv.HasPending() {
		t.Fatalf("HasPending after QueueAll: false")
	}
}

func TestDrainAppliesRangeInvalidation(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	fast := &fakeFastTable{}
	inv := New(c, fast)
	state := guest.New()

	storeBlock(t, c, buf, 0x0, 0x8)
	storeBlock(t, c, buf, 0x100, 0x108)

	before := inv.Generation()
	inv.QueueRange(state, 0x4, 0x4) // touches [0x0, 0x8) only
	evicted := inv.Drain(state)

	if len(evicted) != 1 || evicted[0].PC != 0x0 {
		t.Fatalf("Drain evicted = %v, want [{PC:0}]", evicted)
	}
	if c.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want 1", c.Len())
	}
	if fast.clears != 1 {
		t.Fatalf("fast.clears = %d, want 1", fast.clears)
	}
	if inv.Generation() != before+1 {
		t.Fatalf("Generation() = %d, want %d", inv.Generation(), before+1)
	}
	if inv.HasPending() {
		t.Fatalf("HasPending after Drain: true")
	}
}

func TestDrainAppliesFullInvalidation(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	fast := &fakeFastTable{}
	inv := New(c, fast)
	state := guest.New()

	storeBlock(t, c, buf, 0x0, 0x8)
	storeBlock(t, c, buf, 0x100, 0x108)

	before := inv.Generation()
	inv.QueueAll(state)
	evicted := inv.Drain(state)

	if len(evicted) != 2 {
		t.Fatalf("Drain evicted = %v, want 2 entries", evicted)
	}
	if c.Len() != 0 {
		t.Fatalf("cache.Len() = %d, want 0", c.Len())
	}
	if fast.clears != 1 {
		t.Fatalf("fast.clears = %d, want 1", fast.clears)
	}
	if inv.Generation() != before+1 {
		t.Fatalf("Generation() = %d, want %d", inv.Generation(), before+1)
	}
}

func TestDrainNoopWhenEmpty(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	fast := &fakeFastTable{}
	inv := New(c, fast)
	state := guest.New()

	before := inv.Generation()
	evicted := inv.Drain(state)
	if evicted != nil {
		t.Fatalf("Drain on empty queue returned %v, want nil", evicted)
	}
	if fast.clears != 0 {
		t.Fatalf("fast.clears = %d, want 0", fast.clears)
	}
	if inv.Generation() != before {
		t.Fatalf("Generation() changed on a no-op Drain")
	}
}

func TestInvalidateAllNowDoesNotTouchHalt(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	fast := &fakeFastTable{}
	inv := New(c, fast)
	state := guest.New()

	storeBlock(t, c, buf, 0x0, 0x8)

	before := inv.Generation()
	evicted := inv.InvalidateAllNow(state)

	if state.HaltRequested {
		t.Fatalf("InvalidateAllNow set HaltRequested, want untouched")
	}
	if len(evicted) != 1 {
		t.Fatalf("InvalidateAllNow evicted = %v, want 1 entry", evicted)
	}
	if c.Len() != 0 {
		t.Fatalf("cache.Len() = %d, want 0", c.Len())
	}
	if inv.Generation() != before+1 {
		t.Fatalf("Generation() = %d, want %d", inv.Generation(), before+1)
	}
}

func TestDrainAppliesFullInvalidationWithMockFastTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	fast := backendtest.NewMockFastTable(ctrl)
	fast.EXPECT().Clear().Times(1)
	inv := New(c, fast)
	state := guest.New()

	storeBlock(t, c, buf, 0x0, 0x8)

	inv.QueueAll(state)
	evicted := inv.Drain(state)
	if len(evicted) != 1 {
		t.Fatalf("Drain evicted = %v, want 1 entry", evicted)
	}
}

func TestQueueAllTakesPrecedenceOverRanges(t *testing.T) {
	buf := backend.NewCodeBuffer()
	c := cache.New(buf, nil)
	fast := &fakeFastTable{}
	inv := New(c, fast)
	state := guest.New()

	storeBlock(t, c, buf, 0x0, 0x8)
	storeBlock(t, c, buf, 0x100, 0x108)

	inv.QueueRange(state, 0x0, 0x4)
	inv.QueueAll(state)
	evicted := inv.Drain(state)

	if len(evicted) != 2 {
		t.Fatalf("Drain evicted = %v, want both entries once QueueAll was queued", evicted)
	}
}
