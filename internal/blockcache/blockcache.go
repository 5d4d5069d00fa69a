// Package blockcache is an optional, caller-owned cache of decoded
// frame content keyed by a digest of the compressed input, for callers
// that repeatedly decompress identical frames (content-addressed
// stores, dedup replay). It is never consulted unless a caller
// explicitly attaches one; Decompressor's default, zero-value
// behavior is unaffected.
//
// Grounded on internal/spinner's tinylfu.T[K,V] block cache
// (blkCache/blkHash/blkEvict in spinner.go): same generics API, same
// hash-then-cache shape, applied here to whole decoded frames instead
// of filesystem blocks.
package blockcache

import (
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// Digest hashes a compressed frame's bytes into the cache key space.
func Digest(compressed []byte) uint64 {
	return xxhash.Sum64(compressed)
}

// Cache holds decoded frame content, evicting least-valuable entries
// under a tinylfu policy once it exceeds its configured capacity.
type Cache struct {
	t *tinylfu.T[uint64, []byte]
}

// New returns a Cache holding up to capacity decoded frames.
func New(capacity int) *Cache {
	return &Cache{
		t: tinylfu.New[uint64, []byte](capacity, capacity*10, identityHash,
			tinylfu.OnEvict(logEvict)),
	}
}

func identityHash(k uint64) uint64 { return k }

func logEvict(digest uint64, _ []byte) {
	slog.Debug("blockcache evict", "digest", digest)
}

// Get returns the cached decode of a frame with the given digest.
func (c *Cache) Get(digest uint64) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.t.Get(digest)
}

// Add stores decoded, a copy of which the caller retains ownership of
// (blockcache makes its own copy internally), under digest.
func (c *Cache) Add(digest uint64, decoded []byte) {
	if c == nil {
		return
	}
	owned := make([]byte, len(decoded))
	copy(owned, decoded)
	c.t.Add(digest, owned)
}
