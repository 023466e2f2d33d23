package cache

// loader.go adds a read-through convenience on top of ValueCache: GetOrLoad
// de-duplicates concurrent cache misses for the same key into a single
// backing-store call, via golang.org/x/sync/singleflight — generalising the
// teacher's pkg/loader.go loaderGroup to this package's non-generic,
// []byte-keyed cache.
//
// © 2025 processcache authors. MIT License.

import (
    "context"
    "encoding/hex"

    "github.com/Voskan/processcache/internal/digest"
)

// Loader fetches the value for key from whatever backs the cache (a
// database, an upstream service, ...) on a miss.
type Loader func(ctx context.Context, key []byte) (data []byte, expireUnixTime int64, err error)

// GetOrLoad returns the live value for key, calling load and populating the
// cache on a miss. Concurrent callers racing on the same key share one
// load call; the digest of key (not the raw key bytes) is used as the
// singleflight de-duplication token, matching how the cache itself treats
// key identity.
func (c *ValueCache) GetOrLoad(ctx context.Context, key []byte, load Loader) ([]byte, error) {
    if data, ok := c.Get(key); ok {
        return data, nil
    }

    d := digest.Compute(key)
    token := hex.EncodeToString(d[:])

    v, err, _ := c.loadGroup.Do(token, func() (interface{}, error) {
        data, expireUnixTime, err := load(ctx, key)
        if err != nil {
            return nil, err
        }
        c.Set(key, data, expireUnixTime)
        return data, nil
    })
    if err != nil {
        return nil, err
    }
    return v.([]byte), nil
}
