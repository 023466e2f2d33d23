package cache

import "errors"

// Sentinel construction errors, validated before any shard is touched.
var (
    ErrInvalidShardCount = errors.New("processcache: shard count must be > 0")
)
