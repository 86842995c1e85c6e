package backend

import (
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// chunkSize is the size of one RWX mmap region. Grounded directly on the
// teacher's execmem.go DefaultCodeSize; this backend carves many
// independently freeable blocks out of each chunk instead of treating the
// whole mmap as one arena, since cache invalidation needs to reclaim
// individual blocks, not reset everything at once.
const chunkSize = 4 * 1024 * 1024

// CodeBuffer is a simple bump allocator over a pool of RWX mmap chunks. It
// never sub-frees within a chunk: a block that is invalidated just stops
// being referenced from internal/cache, and the whole chunk it lived in is
// only reclaimed once every block in it has been released (Release, called
// by internal/cache whenever it evicts or replaces a block). This chunk-granularity reclaim
// is a deliberate simplification over a real allocator with per-block
// free lists, acceptable because blocks are small and short-lived relative
// to a chunk.
type CodeBuffer struct {
	mu     sync.Mutex
	chunks []*codeChunk
}

type codeChunk struct {
	mem  []byte
	used int
	live int // number of blocks still referencing this chunk
}

// NewCodeBuffer returns an empty buffer; chunks are mapped lazily on first
// Allocate.
func NewCodeBuffer() *CodeBuffer { return &CodeBuffer{} }

// Allocate reserves size bytes of RWX memory and returns a slice backed by
// it (the caller writes its machine code into the slice directly) along
// with an opaque handle Release uses to account for reclaim.
func (c *CodeBuffer) Allocate(size int) (code []byte, handle uintptr, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if size <= 0 || size > chunkSize {
		return nil, 0, errors.Newf("backend: block size %d exceeds chunk size %d", size, chunkSize)
	}
	for i, ch := range c.chunks {
		if ch.used+size <= len(ch.mem) {
			code = ch.mem[ch.used : ch.used+size]
			ch.used += size
			ch.live++
			return code, uintptr(i + 1), nil
		}
	}
	mem, err := unix.Mmap(-1, 0, chunkSize, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, 0, errors.Wrap(err, "backend: mmap executable chunk")
	}
	ch := &codeChunk{mem: mem}
	ch.used = size
	ch.live = 1
	c.chunks = append(c.chunks, ch)
	return mem[:size], uintptr(len(c.chunks)), nil
}

// Release drops one block's reference to the chunk handle identifies,
// unmapping the chunk once nothing in it is live.
func (c *CodeBuffer) Release(handle uintptr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if handle == 0 || int(handle) > len(c.chunks) {
		return nil
	}
	ch := c.chunks[handle-1]
	if ch == nil {
		return nil
	}
	ch.live--
	if ch.live > 0 {
		return nil
	}
	err := unix.Munmap(ch.mem)
	c.chunks[handle-1] = nil
	return err
}

// Remaining reports the free space left in the chunk bump-allocation would
// currently extend into, without mapping a fresh one. internal/dispatch
// uses this as a low-water check: once it falls below a configured
// threshold, a full cache invalidation releases every live block, which
// eventually unmaps whatever chunks that frees, bounding the buffer's
// total footprint instead of growing it without limit across invalidation
// churn. An empty buffer reports a full chunkSize, since the next
// Allocate would simply map one.
func (c *CodeBuffer) Remaining() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.chunks) == 0 {
		return chunkSize
	}
	ch := c.chunks[len(c.chunks)-1]
	if ch == nil {
		return chunkSize
	}
	return int64(len(ch.mem) - ch.used)
}

// Close unmaps every remaining chunk, for engine shutdown.
func (c *CodeBuffer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for i, ch := range c.chunks {
		if ch == nil {
			continue
		}
		if err := unix.Munmap(ch.mem); err != nil && firstErr == nil {
			firstErr = err
		}
		c.chunks[i] = nil
	}
	return firstErr
}
