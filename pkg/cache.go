// Package cache implements processcache's CORE: a sharded, TTL-keyed cache
// offering two storage modes — ValueCache (key → bytes) and ListCache
// (key → a sequence of record-separated byte segments) — built on a shared
// fixed-block slab allocator (internal/slab), a bucketed per-shard hash
// table (internal/shardmap), MD5/CRC32 key normalisation (internal/digest)
// and a round-robin expiry sweeper (internal/sweep).
//
// Both caches expose non-blocking best-effort concurrent access: Get takes
// a shard's read lock, every mutation takes its write lock, and no
// operation ever blocks on another shard.
//
// © 2025 processcache authors. MIT License.
package cache

import (
    "fmt"
    "time"
    "unsafe"

    "go.uber.org/zap"

    "github.com/Voskan/processcache/internal/digest"
    "github.com/Voskan/processcache/internal/shardmap"
    "github.com/Voskan/processcache/internal/slab"
    "github.com/Voskan/processcache/internal/sweep"
)

// engine bundles everything ValueCache and ListCache share: sharding,
// allocation, hashing and the expiry sweeper. Neither type is exported —
// callers only ever see *ValueCache / *ListCache.
type engine struct {
    name    string // "value" or "list", used as a metrics label
    shards  []*shard
    alloc   *slab.Allocator
    cursor  sweep.Cursor
    metrics metricsSink
    logger  *zap.Logger
    onExpire ExpireHook
}

func newEngine(name string, shardCount int, opts []Option) (*engine, error) {
    cfg := defaultConfig(shardCount)
    if err := applyOptions(cfg, opts); err != nil {
        return nil, err
    }

    e := &engine{
        name:     name,
        shards:   make([]*shard, cfg.shardCount),
        alloc:    slab.New(),
        metrics:  newMetricsSink(name, cfg.registry),
        logger:   cfg.logger,
        onExpire: cfg.onExpire,
    }
    for i := range e.shards {
        e.shards[i] = newShard(cfg.seed)
    }
    return e, nil
}

func (e *engine) shardFor(key []byte) (*shard, shardmap.Digest, int) {
    d := digest.Compute(key)
    idx := digest.ShardIndex(key, len(e.shards))
    return e.shards[idx], d, idx
}

// get implements the shared Get semantics for both cache modes: read-lock
// lookup, TTL check, defensive copy.
func (e *engine) get(key []byte) ([]byte, bool) {
    s, d, idx := e.shardFor(key)

    s.mu.RLock()
    ent, found := s.table.Search(d)
    var out []byte
    ok := false
    if found && ent.ExpireTime >= nowUnix() {
        ok = true
        if ent.ValLen > 0 {
            out = make([]byte, ent.ValLen)
            copy(out, ent.Val[:ent.ValLen])
        }
    }
    s.mu.RUnlock()

    if ok {
        e.metrics.incHit(idx)
    } else {
        e.metrics.incMiss(idx)
    }
    return out, ok
}

// SweepStats is the outcome of one Clean() call: exactly one shard's
// accounting. Call String() to render the "processcache: alloc:...K, ..."
// line only when a caller actually wants it — this is the Go-idiomatic
// replacement for the original's optional msgBuffer pointer (skip
// formatting unless the caller asks).
type SweepStats struct {
    ShardIndex    int
    LiveCount     int
    BucketMax     int
    SweepDeleted  int
    ShardMemoryKB int64
    AllocMemoryKB int64
}

// String renders the sweeper's telemetry line: "processcache: alloc:<A>K,
// storage:<I>, count:<M>, bucket:<B>, memory:<E>K, delete:<D>".
func (s SweepStats) String() string {
    return fmt.Sprintf(
        "processcache: alloc:%dK, storage:%d, count:%d, bucket:%d, memory:%dK, delete:%d",
        s.AllocMemoryKB, s.ShardIndex, s.LiveCount, s.BucketMax, s.ShardMemoryKB, s.SweepDeleted,
    )
}

// clean processes exactly one shard, round-robin, removing expired entries
// without shrinking the table, then reports memory accounting for that
// shard and the whole cache.
func (e *engine) clean() SweepStats {
    idx := e.cursor.Next(len(e.shards))
    s := e.shards[idx]
    now := nowUnix()

    var expiredDigests []shardmap.Digest
    var expiredVals [][]byte

    s.mu.Lock()
    deleted := 0
    shardmap.ForeachWithArg(s.table, func(now int64, ent *shardmap.Entry) {
        if ent.ExpireTime < now {
            if e.onExpire != nil {
                expiredDigests = append(expiredDigests, ent.Digest)
                var v []byte
                if ent.ValLen > 0 {
                    v = make([]byte, ent.ValLen)
                    copy(v, ent.Val[:ent.ValLen])
                }
                expiredVals = append(expiredVals, v)
            }
            s.table.RemoveExisting(ent)
            e.alloc.Free(ent)
            deleted++
        }
    }, now)
    bucketMax := s.table.BucketMax()
    liveCount := s.table.Count()
    s.mu.Unlock()

    for i, d := range expiredDigests {
        e.onExpire(d, expiredVals[i])
    }

    const ptrSize = int64(unsafe.Sizeof(uintptr(0)))
    blockSize := e.alloc.BlockSize()

    shardMemBytes := int64(bucketMax)*ptrSize + int64(liveCount)*blockSize
    allocBytes := int64(bucketMax)*ptrSize*int64(len(e.shards)) + int64(e.alloc.ChunkCount())*e.alloc.ChunkBytes()

    stats := SweepStats{
        ShardIndex:    idx,
        LiveCount:     liveCount,
        BucketMax:     bucketMax,
        SweepDeleted:  deleted,
        ShardMemoryKB: shardMemBytes / 1024,
        AllocMemoryKB: allocBytes / 1024,
    }

    e.metrics.observeSweep(idx, stats)
    if ce := e.logger.Check(zap.DebugLevel, "sweep"); ce != nil {
        ce.Write(zap.String("cache", e.name), zap.String("summary", stats.String()))
    }
    return stats
}

// close releases the engine's resources. Callers must ensure no operations
// are in flight — misuse afterward is explicitly undefined.
func (e *engine) close() {
    e.alloc.Destroy()
    e.shards = nil
}

func nowUnix() int64 { return time.Now().Unix() }
