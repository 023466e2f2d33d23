package cache

import (
    "bytes"
    "testing"
    "time"
)

func mustListCache(t *testing.T, shards int, opts ...Option) *ListCache {
    t.Helper()
    c, err := NewListCache(shards, opts...)
    if err != nil {
        t.Fatalf("NewListCache: %v", err)
    }
    return c
}

func futureExpiry() int64 { return time.Now().Add(time.Minute).Unix() }

// The engine never inserts record separators itself — every test here
// supplies them as part of the pushed data, the way a real caller would.

// TestListCachePushPrependsMostRecentFirst: each Push becomes the new
// leading record.
func TestListCachePushPrependsMostRecentFirst(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("feed")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())

    got, ok := c.Get(key)
    if !ok {
        t.Fatalf("Get miss after two pushes")
    }
    want := []byte("b\x1ea\x1e")
    if !bytes.Equal(got, want) {
        t.Fatalf("Get = %q, want %q", got, want)
    }
}

func TestListCachePushOnMissWithNonPositiveExpiryIsNoop(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    c.Push([]byte("k"), []byte("v\x1e"), 0)
    if _, ok := c.Get([]byte("k")); ok {
        t.Fatalf("Push with expireUnixTime<=0 on a miss should not create an entry")
    }
}

func TestListCachePushOnMissCreatesEmptyEntryWithoutData(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    c.Push([]byte("k"), nil, futureExpiry())

    got, ok := c.Get([]byte("k"))
    if !ok {
        t.Fatalf("Push with empty data and a positive expiry should still create an entry")
    }
    if len(got) != 0 {
        t.Fatalf("Get = %q, want empty", got)
    }
}

func TestListCachePushExpiryUpdatedUnconditionally(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    // A second Push with a non-positive expiry must still overwrite it, even
    // though the entry already existed and is still live — matching Set's
    // unconditional expireTime overwrite.
    c.Push(key, []byte("b\x1e"), 0)

    if _, ok := c.Get(key); ok {
        t.Fatalf("entry should have been expired by the unconditional expireTime overwrite")
    }
}

func TestListCachePushWithNonPositiveExpirySkipsMerge(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    exp := futureExpiry()
    c.Push(key, []byte("a\x1e"), exp)
    // expireUnixTime<=0 means no merge happens at all (matches the original
    // engine's `if (expireTime > 0 && valLen > 0)` guard on the merge path),
    // but a follow-up Push with a positive expiry still merges correctly.
    c.Push(key, []byte("b\x1e"), 0)
    c.Push(key, []byte("c\x1e"), exp)

    got, ok := c.Get(key)
    if !ok {
        t.Fatalf("entry unexpectedly expired")
    }
    if !bytes.Equal(got, []byte("c\x1ea\x1e")) {
        t.Fatalf("Get = %q, want %q", got, "c\x1ea\x1e")
    }
}

// TestListCacheRemLeadingRecord removes the first record in the list.
func TestListCacheRemLeadingRecord(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("feed")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())

    c.Rem(key, []byte("b"))

    got, _ := c.Get(key)
    want := []byte("a\x1e")
    if !bytes.Equal(got, want) {
        t.Fatalf("Get after removing leading record = %q, want %q", got, want)
    }
}

// TestListCacheRemInteriorRecord removes a record in the middle of the list.
func TestListCacheRemInteriorRecord(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("feed")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())
    c.Push(key, []byte("c\x1e"), futureExpiry())

    c.Rem(key, []byte("b"))

    got, _ := c.Get(key)
    want := []byte("c\x1ea\x1e")
    if !bytes.Equal(got, want) {
        t.Fatalf("Get after removing interior record = %q, want %q", got, want)
    }
}

func TestListCacheRemTrailingRecord(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("feed")
    // Push order matches Scenario D's construction of "c|b|a|": the oldest
    // record, "a", was pushed first and still ends in a separator.
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())
    c.Push(key, []byte("c\x1e"), futureExpiry())

    c.Rem(key, []byte("a"))

    got, _ := c.Get(key)
    want := []byte("c\x1eb\x1e")
    if !bytes.Equal(got, want) {
        t.Fatalf("Get after removing trailing record = %q, want %q", got, want)
    }
}

func TestListCacheRemNoMatchIsNoop(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Rem(key, []byte("does-not-exist"))

    got, _ := c.Get(key)
    if !bytes.Equal(got, []byte("a\x1e")) {
        t.Fatalf("Rem with no match mutated the list: %q", got)
    }
}

func TestListCacheRemEmptyDataIsNoop(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Rem(key, nil)

    got, _ := c.Get(key)
    if !bytes.Equal(got, []byte("a\x1e")) {
        t.Fatalf("Rem with empty data mutated the list: %q", got)
    }
}

// TestListCacheTrim truncates a list to its first N records, keeping their
// trailing separator.
func TestListCacheTrim(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("feed")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())
    c.Push(key, []byte("c\x1e"), futureExpiry())

    c.Trim(key, 2)

    got, ok := c.Get(key)
    want := []byte("c\x1eb\x1e")
    if !ok || !bytes.Equal(got, want) {
        t.Fatalf("Get after Trim(2) = %q, %v, want %q", got, ok, want)
    }
}

// TestListCacheTrimZeroEmptiesList verifies Trim(key, 0) empties the list
// while keeping the entry.
func TestListCacheTrimZeroEmptiesList(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())

    c.Trim(key, 0)

    got, ok := c.Get(key)
    if !ok {
        t.Fatalf("Trim(0) should leave the entry present but empty")
    }
    if len(got) != 0 {
        t.Fatalf("Get after Trim(0) = %q, want empty", got)
    }
}

func TestListCacheTrimNegativeIsNoop(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())
    c.Trim(key, -1)

    got, _ := c.Get(key)
    if !bytes.Equal(got, []byte("b\x1ea\x1e")) {
        t.Fatalf("Trim with negative count mutated the list: %q", got)
    }
}

func TestListCacheTrimBeyondRecordCountIsNoop(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    c.Push(key, []byte("a\x1e"), futureExpiry())
    c.Push(key, []byte("b\x1e"), futureExpiry())
    c.Trim(key, 100)

    got, _ := c.Get(key)
    if !bytes.Equal(got, []byte("b\x1ea\x1e")) {
        t.Fatalf("Trim beyond the record count mutated the list: %q", got)
    }
}

func TestListCacheHonoursExpiry(t *testing.T) {
    c := mustListCache(t, 1)
    defer c.Close()

    key := []byte("k")
    c.Push(key, []byte("a\x1e"), time.Now().Add(-time.Second).Unix())

    if _, ok := c.Get(key); ok {
        t.Fatalf("Get returned an already-expired list entry")
    }
}
