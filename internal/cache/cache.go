// Package cache is the block cache: a map from guest.Location to the
// EmittedBlock compiled for it, plus the bookkeeping internal/dispatch and
// internal/invalidate need to evict entries and reclaim their code memory.
// Grounded on the teacher's pvm/jit/cache.go block map, generalized from a
// PC-only key to the full guest.Location descriptor tuple.
package cache

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/a18532086/a32jit/internal/backend"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/telemetry"
)

// entry is one live cached block plus the content hash it was compiled
// against (readable through Hash; no eviction path compares it).
type entry struct {
	block *backend.EmittedBlock
	hash  ContentHash
	endPC uint32
}

// Cache owns every currently live EmittedBlock for one engine instance. It
// never evicts on its own initiative (internal/invalidate decides when a
// range or the whole cache goes stale); Cache only ever does what it's
// told: store, look up, and release code memory back to buf.
type Cache struct {
	mu      sync.Mutex
	entries map[guest.Location]entry
	buf     *backend.CodeBuffer
	metrics *telemetry.Metrics
}

// New returns an empty cache backed by buf. metrics may be nil in tests.
func New(buf *backend.CodeBuffer, metrics *telemetry.Metrics) *Cache {
	return &Cache{entries: map[guest.Location]entry{}, buf: buf, metrics: metrics}
}

// Lookup returns the live block for loc, if any.
func (c *Cache) Lookup(loc guest.Location) (*backend.EmittedBlock, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[loc]
	if !ok {
		return nil, false
	}
	return e.block, true
}

// Store installs a newly compiled block, replacing whatever previously
// lived at the same Location (a caller never compiles a Location that's
// already resolvable through Lookup, but Store tolerates it defensively by
// releasing the old block's code memory first).
func (c *Cache) Store(block *backend.EmittedBlock, hash ContentHash, endPC uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[block.Location]; ok {
		c.buf.Release(old.block.ChunkHandle)
	} else if c.metrics != nil {
		c.metrics.CacheSize.Inc()
	}
	c.entries[block.Location] = entry{block: block, hash: hash, endPC: endPC}
	if c.metrics != nil {
		c.metrics.BlocksCompiled.Inc()
	}
}

// Evict drops loc's entry, if present, releasing its code memory.
func (c *Cache) Evict(loc guest.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(loc)
}

func (c *Cache) evictLocked(loc guest.Location) {
	e, ok := c.entries[loc]
	if !ok {
		return
	}
	delete(c.entries, loc)
	c.buf.Release(e.block.ChunkHandle)
	if c.metrics != nil {
		c.metrics.BlocksEvicted.Inc()
		c.metrics.CacheSize.Dec()
	}
}

// ClearAll evicts every entry, releasing all code memory. Used by
// clear_cache and by the low-memory policy check before emission.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for loc := range c.entries {
		c.evictLocked(loc)
	}
}

// ClearRanges evicts every entry whose covered byte range [Location.PC,
// endPC) overlaps any of ranges, whether or not its bytes changed: stored
// hashes are not consulted here or by internal/invalidate. Returns the Locations evicted, so a caller (internal/invalidate) can
// also drop any RSB/fast-dispatch references to them.
func (c *Cache) ClearRanges(ranges [][2]uint32) []guest.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	var evicted []guest.Location
	for loc, e := range c.entries {
		for _, r := range ranges {
			if touchesRange(loc.PC, e.endPC, r[0], r[1]) {
				evicted = append(evicted, loc)
				break
			}
		}
	}
	for _, loc := range evicted {
		c.evictLocked(loc)
	}
	return evicted
}

// Hash returns loc's stored content hash. No engine code calls it;
// invalidation evicts overlapping blocks without comparing hashes.
func (c *Cache) Hash(loc guest.Location) (ContentHash, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[loc]
	return e.hash, ok
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Locations returns every live Location, sorted by PC for deterministic
// iteration (tests, disassembly dumps).
func (c *Cache) Locations() []guest.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]guest.Location, 0, len(c.entries))
	for loc := range c.entries {
		out = append(out, loc)
	}
	slices.SortFunc(out, func(a, b guest.Location) int {
		switch {
		case a.PC < b.PC:
			return -1
		case a.PC > b.PC:
			return 1
		default:
			return 0
		}
	})
	return out
}
