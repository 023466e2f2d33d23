package cache

// shard.go is the sharded segment of processcache: an engine splits its
// keyspace across N independent shards, each a shardmap.Table guarded by its
// own RWMutex, to minimise lock contention — the direct Go-native
// counterpart of the original engine's per-bucket pthread_rwlock_t.
//
// © 2025 processcache authors. MIT License.

import (
    "sync"

    "github.com/Voskan/processcache/internal/shardmap"
)

type shard struct {
    mu    sync.RWMutex
    table *shardmap.Table
}

func newShard(seed uint32) *shard {
    return &shard{table: shardmap.New(seed)}
}
