// Package slab implements the fixed-block allocator used to hand out
// shardmap.Entry headers. It amortises allocation the same way the
// original C allocator (goserver/src/common/processcache/allocator.c)
// does: chunks are carved out in ~4 MiB units, a bump pointer walks the
// current chunk, and freed blocks are recycled through an intrusive
// freelist rather than returned to the runtime.
//
// The "intrusive" part of the freelist is realised without unsafe pointer
// arithmetic: shardmap.Entry carries its own FreeNext field, used only while
// the entry sits outside any Table, exactly mirroring the C allocator's
// trick of overwriting a freed block's first machine word with the
// freelist's next pointer.
//
// A slab.Allocator is shared by every shard of one cache (ValueCache or
// ListCache), matching the original engine's single `struct MyAllocator`
// embedded in CProcessCache/CListCache.
//
// © 2025 processcache authors. MIT License.
package slab

import (
    "sync"
    "unsafe"

    "github.com/Voskan/processcache/internal/shardmap"
    "github.com/Voskan/processcache/internal/unsafehelpers"
)

// chunkBudget mirrors the original engine's CHUNK_SIZE (4 MiB per chunk).
const chunkBudget = 4 << 20

// Allocator hands out *shardmap.Entry values drawn from chunked backing
// arrays, recycling freed entries via an intrusive freelist. The zero value
// is not usable; use New.
type Allocator struct {
    mu sync.Mutex

    blockSize  uintptr // unsafe.Sizeof(shardmap.Entry{}), rounded for alignment
    chunkSize  uintptr // bytes per chunk, reported to the sweeper
    perChunk   int     // entries packed into one chunk

    chunks []*chunkBuf
    free   *shardmap.Entry
}

type chunkBuf struct {
    entries []shardmap.Entry
    used    int
}

// New constructs an allocator whose block size is sized for a single
// shardmap.Entry header.
func New() *Allocator {
    var probe shardmap.Entry
    blockSize := unsafehelpers.AlignUp(unsafe.Sizeof(probe), unsafe.Alignof(probe))

    // Mirror the C formula chunkSize = floor((4MiB-header)/blockSize)*blockSize
    // + header, using the size of a slice header as the stand-in "chunk
    // header" subtracted before packing, which is the closest Go-native
    // analogue to the C struct AllocMemChunk prefix.
    const chunkHeader = unsafe.Sizeof([]shardmap.Entry{})
    perChunk := int((chunkBudget - chunkHeader) / blockSize)
    if perChunk < 1 {
        perChunk = 1
    }
    chunkSize := uintptr(perChunk)*blockSize + chunkHeader

    return &Allocator{
        blockSize: blockSize,
        chunkSize: chunkSize,
        perChunk:  perChunk,
    }
}

// Alloc returns a block ready for the caller to initialise. The returned
// entry is not zeroed: a block popped from the freelist still carries
// whatever its previous occupant left behind, exactly as the original
// malloc-free/freelist engine behaves.
func (a *Allocator) Alloc() *shardmap.Entry {
    a.mu.Lock()
    defer a.mu.Unlock()

    if a.free != nil {
        e := a.free
        a.free = e.FreeNext
        return e
    }

    n := len(a.chunks)
    if n == 0 || a.chunks[n-1].used >= a.perChunk {
        a.chunks = append(a.chunks, &chunkBuf{entries: make([]shardmap.Entry, a.perChunk)})
        n = len(a.chunks)
    }
    c := a.chunks[n-1]
    e := &c.entries[c.used]
    c.used++
    return e
}

// Free returns a block to the freelist. The caller must have already
// released any externally-owned buffers the entry referenced (Val); Free
// itself only recycles the header.
func (a *Allocator) Free(e *shardmap.Entry) {
    a.mu.Lock()
    e.FreeNext = a.free
    a.free = e
    a.mu.Unlock()
}

// ChunkCount returns the number of chunks allocated so far.
func (a *Allocator) ChunkCount() int {
    a.mu.Lock()
    defer a.mu.Unlock()
    return len(a.chunks)
}

// ChunkBytes returns the byte size of a single chunk, for the sweeper's
// whole-cache memory estimate.
func (a *Allocator) ChunkBytes() int64 { return int64(a.chunkSize) }

// BlockSize returns the size, in bytes, of one entry header.
func (a *Allocator) BlockSize() int64 { return int64(a.blockSize) }

// Destroy releases all chunks. The allocator must not be used afterward —
// matching the original engine's contract that destroyAllocator() is a
// one-way operation.
func (a *Allocator) Destroy() {
    a.mu.Lock()
    a.chunks = nil
    a.free = nil
    a.mu.Unlock()
}
