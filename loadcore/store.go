package loadcore

import (
	"context"
	"time"
)

// Store is the shared byte-level persistence contract backing a Repository.
// Implementations own their internal concurrency safety; callers may invoke
// any method from multiple pipelines at once.
type Store interface {
	Driver() Driver
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
}
