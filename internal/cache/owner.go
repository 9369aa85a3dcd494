package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ownerKeyPrefix is the Redis key prefix for resolved API keys.
	ownerKeyPrefix = "coffee:owner:"

	// DefaultOwnerTTL is the default lifetime of a cached key resolution.
	DefaultOwnerTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when no owner is cached for a key hash.
var ErrCacheMiss = errors.New("cache miss")

// GetOwner returns the owner id cached under keyHash.
// keyHash must be a hash of the API key, never the key itself.
func (c *Cache) GetOwner(ctx context.Context, keyHash string) (string, error) {
	ownerID, err := c.client.Get(ctx, ownerKey(keyHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	if ownerID == "" {
		return "", ErrCacheMiss
	}
	return ownerID, nil
}

// SetOwner caches a successful key resolution.
func (c *Cache) SetOwner(ctx context.Context, keyHash, ownerID string) error {
	if err := c.client.Set(ctx, ownerKey(keyHash), ownerID, c.ownerTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// DeleteOwner drops a cached resolution, e.g. after a user is disabled.
func (c *Cache) DeleteOwner(ctx context.Context, keyHash string) error {
	return c.client.Del(ctx, ownerKey(keyHash)).Err()
}

// OwnerTTL returns the configured lifetime of cached resolutions.
func (c *Cache) OwnerTTL() time.Duration {
	return c.ownerTTL
}

func ownerKey(keyHash string) string {
	return ownerKeyPrefix + keyHash
}
