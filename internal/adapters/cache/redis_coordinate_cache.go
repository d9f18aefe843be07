package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/platform/obs"
	"freight-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "freight:coords:"

// RedisCoordinateCache shares resolved coordinates between service replicas.
// Keys expire after retention so Redis does not accumulate dead postal codes;
// retention should be at least the resolver TTL.
type RedisCoordinateCache struct {
	client    redis.UniversalClient
	retention time.Duration
}

var _ ports.CoordinateCache = (*RedisCoordinateCache)(nil)

func NewRedisCoordinateCache(client redis.UniversalClient, retention time.Duration) *RedisCoordinateCache {
	return &RedisCoordinateCache{client: client, retention: retention}
}

type redisEntry struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func (c *RedisCoordinateCache) Get(ctx context.Context, key string) (_ ports.CachedCoordinates, _ bool, err error) {
	defer obs.Time(ctx, "coords.redis.Get")(&err)

	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.CachedCoordinates{}, false, nil
	}
	if err != nil {
		return ports.CachedCoordinates{}, false, fmt.Errorf("get coordinate cache %q: %w", key, err)
	}

	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return ports.CachedCoordinates{}, false, fmt.Errorf("decode coordinate cache %q: %w", key, err)
	}

	return ports.CachedCoordinates{
		Coordinates: domain.Coordinates{Lat: e.Lat, Lng: e.Lng},
		ResolvedAt:  e.ResolvedAt,
	}, true, nil
}

func (c *RedisCoordinateCache) Put(ctx context.Context, key string, entry ports.CachedCoordinates) error {
	raw, err := json.Marshal(redisEntry{
		Lat:        entry.Coordinates.Lat,
		Lng:        entry.Coordinates.Lng,
		ResolvedAt: entry.ResolvedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode coordinate cache %q: %w", key, err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.retention).Err(); err != nil {
		return fmt.Errorf("set coordinate cache %q: %w", key, err)
	}
	return nil
}
