package driven

import "context"

// Cache is a time-bounded, bounded-capacity memoization store.
// The aggregator owns three instances (search, document, updates), each
// with its own capacity and TTL.
//
// Implementations must be safe for concurrent use and must never let a
// reader observe a partially written entry. Eviction and TTL expiry must
// be safe to run interleaved with lookups.
type Cache interface {
	// Get returns the value stored under key, or found=false on a miss
	// or an expired entry.
	Get(ctx context.Context, key string) (value []byte, found bool)

	// Put inserts or overwrites the value under key. At capacity the
	// implementation evicts by a bounded policy (oldest expiry first).
	Put(ctx context.Context, key string, value []byte)

	// Close releases resources.
	Close() error
}
