package cache

// config.go defines the functional options applied when constructing a
// ValueCache or ListCache: defaults are filled in first, options are
// applied in order, and the result is validated once before the cache
// goes live.
//
// © 2025 processcache authors. MIT License.

import (
    "github.com/prometheus/client_golang/prometheus"
    "go.uber.org/zap"
)

// ExpireHook is invoked by the sweeper, after its shard's write lock has
// been released, once per entry it reclaims. digest is the entry's MD5
// identity (the engine never retains the caller's original key, mirroring
// the original C engine); val is a defensive copy of the entry's payload at
// the moment of expiry, or nil if the entry held no payload.
//
// A hook must not block for long: it runs inline on whichever goroutine
// called Clean.
type ExpireHook func(digest [16]byte, val []byte)

// Option configures a ValueCache or ListCache at construction time.
type Option func(*config)

type config struct {
    shardCount int
    seed       uint32
    logger     *zap.Logger
    registry   *prometheus.Registry
    onExpire   ExpireHook
}

func defaultConfig(shardCount int) *config {
    return &config{
        shardCount: shardCount,
        seed:       321, // HASH_INIT_VAL in the original engine
        logger:     zap.NewNop(),
    }
}

// WithLogger plugs an external zap.Logger. The cache never logs on the hot
// path (Set/Get); the only entries it emits are sweep summaries (Debug).
// Allocation failure is not logged: it aborts through the Go runtime.
func WithLogger(l *zap.Logger) Option {
    return func(c *config) {
        if l != nil {
            c.logger = l
        }
    }
}

// WithMetrics enables Prometheus metrics collection for the cache instance.
// A nil registry (the default) keeps the no-op sink so the hot path never
// pays for a metric update.
func WithMetrics(reg *prometheus.Registry) Option {
    return func(c *config) {
        c.registry = reg
    }
}

// WithExpireHook registers a callback invoked for every entry the sweeper
// reclaims due to TTL expiry. See ExpireHook for the calling contract.
func WithExpireHook(hook ExpireHook) Option {
    return func(c *config) {
        c.onExpire = hook
    }
}

// WithHashSeed overrides the table's hash seed (default 321, matching the
// original engine's HASH_INIT_VAL). Exposed mainly for testing collision
// behaviour; production callers should leave it at the default.
func WithHashSeed(seed uint32) Option {
    return func(c *config) {
        c.seed = seed
    }
}

func applyOptions(cfg *config, opts []Option) error {
    for _, opt := range opts {
        opt(cfg)
    }
    if cfg.shardCount <= 0 {
        return ErrInvalidShardCount
    }
    return nil
}
