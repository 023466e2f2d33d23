package cache

// list.go implements the list-append cache: Push/Rem/Trim/Get over key → a
// sequence of record-separator-delimited byte segments, directly grounded
// on the original engine's CListCachePush/Rem/Trim/Get (list_cache.c).
//
// © 2025 processcache authors. MIT License.

import (
    "bytes"

    "github.com/Voskan/processcache/internal/unsafehelpers"
)

// recordSeparator delimits records within a list entry's payload, matching
// the original engine's RECORD_SEPRATOR.
const recordSeparator = 0x1E

// ListCache is a sharded key→record-list cache with TTL-driven expiry. Each
// key holds zero or more byte records, most-recently-pushed first,
// separated by recordSeparator.
type ListCache struct {
    *engine
}

// NewListCache constructs a list cache split across shardCount shards.
func NewListCache(shardCount int, opts ...Option) (*ListCache, error) {
    e, err := newEngine("list", shardCount, opts)
    if err != nil {
        return nil, err
    }
    return &ListCache{engine: e}, nil
}

// Push prepends data as a new leading record under key: the engine never
// inserts a record-separator itself — callers that want record semantics
// pass data already ending in 0x1E.
//   - an existing entry with a positive expireUnixTime and non-empty data
//     gets data ++ its old payload;
//   - expireTime is updated unconditionally whenever the entry is found,
//     exactly like Set;
//   - a miss creates an entry (possibly with empty data) as long as
//     expireUnixTime > 0; otherwise the call is a no-op.
func (c *ListCache) Push(key, data []byte, expireUnixTime int64) {
    s, d, _ := c.shardFor(key)

    s.mu.Lock()
    ent, found := s.table.Search(d)
    if found {
        if expireUnixTime > 0 && len(data) > 0 {
            merged := make([]byte, 0, len(data)+int(ent.ValLen))
            merged = append(merged, data...)
            merged = append(merged, ent.Val[:ent.ValLen]...)
            ent.Val = merged
            ent.ValLen = int32(len(merged))
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

// PushString is Push for a string key.
func (c *ListCache) PushString(key string, data []byte, expireUnixTime int64) {
    c.Push(unsafehelpers.StringToBytes(key), data, expireUnixTime)
}

// Rem removes the first record matching data from key's record list. A
// no-op if key is absent, its list is empty, or data is empty; an entry
// that has expired but has not yet been swept is still searched and
// modified. The leading record is
// checked first (a direct prefix-plus-separator compare); otherwise the
// list is scanned for an interior "SEP data SEP" occurrence.
func (c *ListCache) Rem(key, data []byte) {
    if len(data) == 0 {
        return
    }
    s, d, _ := c.shardFor(key)

    s.mu.Lock()
    ent, found := s.table.Search(d)
    if found && ent.ValLen > 0 {
        val := ent.Val[:ent.ValLen]
        n := len(data)

        if len(val) >= n && bytes.Equal(val[:n], data) && (len(val) == n || val[n] == recordSeparator) {
            // Leading record: drop it and its trailing separator, if any.
            skip := n
            if len(val) > n {
                skip = n + 1
            }
            remaining := len(val) - skip
            copy(ent.Val[:remaining], val[skip:])
            ent.ValLen = int32(remaining)
        } else {
            pattern := make([]byte, 0, n+2)
            pattern = append(pattern, recordSeparator)
            pattern = append(pattern, data...)
            pattern = append(pattern, recordSeparator)
            if idx := bytes.Index(val, pattern); idx >= 0 {
                removed := n + 1 // "SEP data", the trailing SEP stays as the next record's delimiter
                copy(ent.Val[idx:], val[idx+removed:])
                ent.ValLen -= int32(removed)
            }
        }
    }
    s.mu.Unlock()
}

// RemString is Rem for a string key.
func (c *ListCache) RemString(key string, data []byte) {
    c.Rem(unsafehelpers.StringToBytes(key), data)
}

// Trim keeps only the first count records of key's list, discarding the
// rest. count == 0 empties the list (entry stays, with a zero-length
// payload); count < 0 is a no-op; a count at or beyond the current record
// count is also a no-op. A miss is a no-op.
func (c *ListCache) Trim(key []byte, count int) {
    if count < 0 {
        return
    }
    s, d, _ := c.shardFor(key)

    s.mu.Lock()
    ent, found := s.table.Search(d)
    if found {
        if count == 0 {
            ent.ValLen = 0
        } else {
            val := ent.Val[:ent.ValLen]
            seps := 0
            for i, b := range val {
                if b == recordSeparator {
                    seps++
                    if seps == count {
                        ent.ValLen = int32(i + 1)
                        break
                    }
                }
            }
        }
    }
    s.mu.Unlock()
}

// TrimString is Trim for a string key.
func (c *ListCache) TrimString(key string, count int) {
    c.Trim(unsafehelpers.StringToBytes(key), count)
}

// Get returns a defensive copy of the live record list stored under key, or
// found=false if absent or expired. Records are separated by
// recordSeparator; splitting is left to the caller.
func (c *ListCache) Get(key []byte) (data []byte, found bool) {
    return c.get(key)
}

// GetString is Get for a string key.
func (c *ListCache) GetString(key string) ([]byte, bool) {
    return c.get(unsafehelpers.StringToBytes(key))
}

// Clean sweeps exactly one shard (round-robin across calls). See
// ValueCache.Clean / SweepStats.
func (c *ListCache) Clean() SweepStats {
    return c.clean()
}

// Close releases the cache's resources.
func (c *ListCache) Close() {
    c.close()
}
