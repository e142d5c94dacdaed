package ports

import (
	"context"
	"time"

	"github.com/aretw0/launchtree/pkg/domain"
)

// ResultCache defines how analysis results are persisted between runs.
type ResultCache interface {
	// Put stores an entry under key, replacing any previous one.
	Put(ctx context.Context, key string, entry *domain.CacheEntry) error

	// Get returns the entry for key. Missing entries return domain.ErrCacheMiss.
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work on a key across processes sharing a cache, so that
// concurrent analyses of the same invocation build the tree once.
type Locker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if it is never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
