package cache

import (
	"context"
	"time"
)

// BytesCache is a minimal TTL cache. Callers treat it as best-effort:
// a cache failure must never fail the request being served.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
