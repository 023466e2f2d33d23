// Package digest wraps the two external collaborators the cache core treats
// as pure helpers: MD5 for key identity and CRC32 for shard selection. Both
// are pulled from the standard library — these are fixed, exact algorithms
// rather than a free choice of "a hash", so there is no third-party hashing
// dependency to wire in here; see DESIGN.md for the boundary rationale.
//
// © 2025 processcache authors. MIT License.
package digest

import (
    "crypto/md5"
    "hash/crc32"

    "github.com/Voskan/processcache/internal/shardmap"
)

// Compute returns the MD5 digest of key, used as the in-shard identity.
func Compute(key []byte) shardmap.Digest {
    return shardmap.Digest(md5.Sum(key))
}

// ShardIndex selects the shard for key, independent of the digest, so the
// selector stays cheap and the digest remains the sole in-shard identity.
func ShardIndex(key []byte, shardCount int) int {
    return int(crc32.ChecksumIEEE(key) % uint32(shardCount))
}
