package ports

import (
	"context"
	"time"
)

// CacheStore is a whole-entry key-value store for fetched payloads.
// Entries never expire; they live until Delete or InvalidateAll.
type CacheStore interface {
	// Get returns the payload stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Put stores payload under key, replacing any previous entry whole.
	// Concurrent puts for the same key must leave one complete payload.
	Put(ctx context.Context, key string, payload []byte) error
	// Delete removes a single entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// InvalidateAll removes every entry.
	InvalidateAll(ctx context.Context) error
}

// CachePurger is implemented by stores that can drop entries by age.
type CachePurger interface {
	// PurgeOlderThan removes entries last written before cutoff and reports how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
