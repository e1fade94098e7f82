package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// AvailabilityCache keeps recently read seat availability in Redis.
// The ledger stays authoritative; entries only shorten search reads.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache wraps an existing client
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Key returns the cache key for an entity, e.g. seats:trip:12
func Key(ref models.EntityRef) string {
	return "seats:" + string(ref.Type) + ":" + strconv.FormatInt(ref.ID, 10)
}

// Get returns the cached available count. ok is false on a miss.
func (c *AvailabilityCache) Get(ctx context.Context, ref models.EntityRef) (int, bool, error) {
	val, err := c.client.Get(ctx, Key(ref)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read availability cache: %w", err)
	}
	return val, true, nil
}

// Set stores the available count for the configured TTL
func (c *AvailabilityCache) Set(ctx context.Context, ref models.EntityRef, available int) error {
	if err := c.client.Set(ctx, Key(ref), available, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write availability cache: %w", err)
	}
	return nil
}

// Invalidate drops the entry after a ledger mutation
func (c *AvailabilityCache) Invalidate(ctx context.Context, ref models.EntityRef) error {
	if err := c.client.Del(ctx, Key(ref)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability cache: %w", err)
	}
	return nil
}
