package ports

import (
	"context"
	"freight-service/internal/domain"
	"time"
)

// Coordinates together with the instant they were resolved.
// Freshness is decided by the reader, not by the cache.
type CachedCoordinates struct {
	Coordinates domain.Coordinates
	ResolvedAt  time.Time
}

// Key/value store of resolved coordinates keyed by normalized postal code.
// Implementations must be safe for concurrent use. Put overwrites.
type CoordinateCache interface {
	Get(ctx context.Context, key string) (CachedCoordinates, bool, error)
	Put(ctx context.Context, key string, entry CachedCoordinates) error
}
