// Package shardmap implements the bucketed hash table that backs a single
// cache shard: a table of chained buckets keyed by a 16-byte digest, plus a
// shard-wide intrusive ring that threads every live entry so the sweeper can
// walk (and safely remove from) the table without allocating a snapshot.
//
// The table never shrinks its bucket array — only grows, doubling when the
// load factor exceeds 1 — mirroring the "remove without shrink" contract the
// original C engine relies on (tommy_hashdyn_remove_existing_withoutshrink)
// so that a sweep in progress never invalidates a concurrently-held bucket
// index.
//
// shardmap itself holds no lock: the parent shard (pkg/shard.go) serialises
// all access with its own sync.RWMutex, exactly as a single CProcessStorage /
// CListStorage does in the original engine.
//
// © 2025 processcache authors. MIT License.
package shardmap

// DigestSize is the width, in bytes, of the key identity used by the table.
const DigestSize = 16

// Digest is the MD5 of a caller key, the table's sole identity for an entry.
type Digest [DigestSize]byte

// Entry is the node stored for every live key. It is never allocated
// directly by this package — callers draw instances from a slab allocator
// (see internal/slab) and hand already-populated pointers to Insert.
//
// Field layout purposefully keeps the three link fields adjacent and
// unexported: they are shardmap's own bookkeeping and must never be touched
// by the cache engine. FreeNext is the one exception — it belongs to the
// slab allocator's freelist and is only ever valid while the entry is not
// part of any table.
type Entry struct {
    Digest     Digest
    Val        []byte
    ValLen     int32
    ExpireTime int64

    // FreeNext chains this entry onto the slab allocator's freelist. It must
    // be left alone by shardmap and by cache code; only internal/slab reads
    // or writes it, and only while the entry is not live in any Table.
    FreeNext *Entry

    bucketNext *Entry
    ringPrev   *Entry
    ringNext   *Entry
}

const initialBuckets = 16

// Table is one shard's hash table. The zero value is not usable; use New.
type Table struct {
    seed    uint32
    buckets []*Entry
    count   int
    ring    *Entry // ring head; nil when the table is empty
}

// New constructs an empty table. seed is the hash seed mixed into every
// bucket-index computation (321 by default, shared across all shards).
func New(seed uint32) *Table {
    return &Table{
        seed:    seed,
        buckets: make([]*Entry, initialBuckets),
    }
}

// hash32 is a seeded 32-bit mix over a 16-byte digest. Any hash with
// acceptable collision behaviour over uniform MD5 input is sufficient here;
// we use an FNV-1a-shaped mix seeded with the caller's seed as the starting
// basis rather than FNV's canonical offset basis.
func hash32(seed uint32, d Digest) uint32 {
    h := seed
    for _, b := range d {
        h ^= uint32(b)
        h *= 16777619
    }
    return h
}

func (t *Table) bucketIndex(d Digest) uint32 {
    return hash32(t.seed, d) % uint32(len(t.buckets))
}

// Search looks up digest and returns its entry, if live.
func (t *Table) Search(d Digest) (*Entry, bool) {
    idx := t.bucketIndex(d)
    for e := t.buckets[idx]; e != nil; e = e.bucketNext {
        if e.Digest == d {
            return e, true
        }
    }
    return nil, false
}

// Insert adds a freshly populated entry (e.Digest must already be set). The
// caller guarantees no entry with the same digest is already present.
func (t *Table) Insert(e *Entry) {
    idx := t.bucketIndex(e.Digest)
    e.bucketNext = t.buckets[idx]
    t.buckets[idx] = e
    t.count++
    t.ringAppend(e)

    if t.count > len(t.buckets) {
        t.grow()
    }
}

// RemoveExisting unlinks e from the table without shrinking the bucket
// array. e must currently be a member of this table.
func (t *Table) RemoveExisting(e *Entry) {
    idx := t.bucketIndex(e.Digest)
    cur := t.buckets[idx]
    if cur == e {
        t.buckets[idx] = e.bucketNext
    } else {
        for cur != nil && cur.bucketNext != e {
            cur = cur.bucketNext
        }
        if cur != nil {
            cur.bucketNext = e.bucketNext
        }
    }
    e.bucketNext = nil
    t.count--
    t.ringRemove(e)
}

// grow doubles the bucket array and rehashes every live entry by walking the
// ring — never called from a mid-iteration context since it is only
// triggered from Insert, which never races with Foreach/ForeachWithArg under
// the shard's write lock.
func (t *Table) grow() {
    newBuckets := make([]*Entry, len(t.buckets)*2)
    t.buckets = newBuckets
    if t.ring == nil {
        return
    }
    start := t.ring
    e := start
    for {
        idx := t.bucketIndex(e.Digest)
        e.bucketNext = t.buckets[idx]
        t.buckets[idx] = e
        e = e.ringNext
        if e == start {
            break
        }
    }
}

// BucketMax returns the current bucket-array capacity.
func (t *Table) BucketMax() int { return len(t.buckets) }

// Count returns the number of live entries.
func (t *Table) Count() int { return t.count }

/* -------------------------------------------------------------------------
   Ring bookkeeping: a plain forward-scan-safe iteration ring, generalised
   from an LRU clock hand to a TTL-driven, non-capacity-bounded table.
   ------------------------------------------------------------------------- */

func (t *Table) ringAppend(e *Entry) {
    if t.ring == nil {
        e.ringNext, e.ringPrev = e, e
        t.ring = e
        return
    }
    tail := t.ring.ringPrev
    tail.ringNext = e
    e.ringPrev = tail
    e.ringNext = t.ring
    t.ring.ringPrev = e
}

func (t *Table) ringRemove(e *Entry) {
    if e.ringNext == e {
        t.ring = nil
    } else {
        e.ringPrev.ringNext = e.ringNext
        e.ringNext.ringPrev = e.ringPrev
        if t.ring == e {
            t.ring = e.ringNext
        }
    }
    e.ringNext, e.ringPrev = nil, nil
}

// Foreach visits every live entry. fn may remove the entry it is currently
// visiting (RemoveExisting(e)); it must not remove any other entry.
func (t *Table) Foreach(fn func(e *Entry)) {
    ForeachWithArg(t, func(_ struct{}, e *Entry) { fn(e) }, struct{}{})
}

// ForeachWithArg is Foreach with an extra argument threaded through, mirroring
// the original engine's tommy_hashdyn_foreach_arg used by the sweeper.
//
// Termination is driven by a count snapshot, not by node identity: fn is
// allowed to remove the entry it's currently visiting, which splices that
// node out of the ring, so a node reached back to the starting node would
// never recur once the start itself has been removed.
func ForeachWithArg[A any](t *Table, fn func(arg A, e *Entry), arg A) {
    remaining := t.count
    e := t.ring
    for remaining > 0 {
        next := e.ringNext
        fn(arg, e)
        remaining--
        e = next
    }
}
