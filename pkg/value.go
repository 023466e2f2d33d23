package cache

// value.go implements the opaque value cache: Set/Get over key → bytes
// entries, directly grounded on the original engine's
// CProcessCacheSet/CProcessCacheGet (process_cache.c).
//
// © 2025 processcache authors. MIT License.

import (
    "golang.org/x/sync/singleflight"

    "github.com/Voskan/processcache/internal/unsafehelpers"
)

// ValueCache is a sharded key→bytes cache with TTL-driven expiry.
type ValueCache struct {
    *engine
    loadGroup singleflight.Group
}

// NewValueCache constructs a value cache split across shardCount shards.
func NewValueCache(shardCount int, opts ...Option) (*ValueCache, error) {
    e, err := newEngine("value", shardCount, opts)
    if err != nil {
        return nil, err
    }
    return &ValueCache{engine: e}, nil
}

// Set stores data under key with the given absolute Unix expiry:
//   - an existing entry whose old payload is at least len(data) bytes is
//     overwritten in place;
//   - otherwise its payload is reallocated to exactly len(data) bytes;
//   - expireTime is updated unconditionally, even if non-positive (the
//     sweeper will then collect it on its next pass over this shard);
//   - a miss with expireUnixTime <= 0 is a no-op.
func (c *ValueCache) Set(key, data []byte, expireUnixTime int64) {
    s, d, _ := c.shardFor(key)

    s.mu.Lock()
    ent, found := s.table.Search(d)
    if found {
        if len(data) <= int(ent.ValLen) {
            if len(data) > 0 {
                copy(ent.Val[:len(data)], data)
            }
            ent.ValLen = int32(len(data))
        } else if len(data) > 0 {
            ent.Val = append([]byte(nil), data...)
            ent.ValLen = int32(len(data))
        } else {
            ent.Val = nil
            ent.ValLen = 0
        }
        ent.ExpireTime = expireUnixTime
    } else if expireUnixTime > 0 {
        ent = c.alloc.Alloc()
        ent.Digest = d
        if len(data) > 0 {
            ent.Val = append([]byte(nil), data...)
            ent.ValLen = int32(len(data))
        } else {
            ent.Val = nil
            ent.ValLen = 0
        }
        ent.ExpireTime = expireUnixTime
        s.table.Insert(ent)
    }
    s.mu.Unlock()
}

// SetString is Set for a string key, avoiding an allocation to convert it:
// the key is only ever read (hashed), never retained or mutated.
func (c *ValueCache) SetString(key string, data []byte, expireUnixTime int64) {
    c.Set(unsafehelpers.StringToBytes(key), data, expireUnixTime)
}

// Get returns a defensive copy of the live value stored under key, or
// found=false if absent or expired. The caller owns the returned slice.
func (c *ValueCache) Get(key []byte) (data []byte, found bool) {
    return c.get(key)
}

// GetString is Get for a string key.
func (c *ValueCache) GetString(key string) ([]byte, bool) {
    return c.get(unsafehelpers.StringToBytes(key))
}

// Clean sweeps exactly one shard (round-robin across calls), removing
// expired entries and reporting memory accounting for it. See SweepStats.
func (c *ValueCache) Clean() SweepStats {
    return c.clean()
}

// Close releases the cache's resources. No operation may be in flight when
// Close runs — further use afterward is undefined.
func (c *ValueCache) Close() {
    c.close()
}
