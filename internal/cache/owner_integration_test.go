//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coffeelog/coffee/internal/testutil"
)

func newOwnerCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	c, err := New(ctx, redisURL, time.Minute)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func TestIntegrationOwnerCache_SetGet(t *testing.T) {
	ctx, c := newOwnerCacheTestEnv(t)

	hash := testutil.UniqueID("hash")
	if err := c.SetOwner(ctx, hash, "owner-1"); err != nil {
		t.Fatalf("SetOwner failed: %v", err)
	}

	got, err := c.GetOwner(ctx, hash)
	if err != nil {
		t.Fatalf("GetOwner failed: %v", err)
	}
	if got != "owner-1" {
		t.Errorf("GetOwner = %q, want owner-1", got)
	}

	ttl, err := c.Client().TTL(ctx, ownerKey(hash)).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected TTL %v", ttl)
	}
}

func TestIntegrationOwnerCache_Miss(t *testing.T) {
	ctx, c := newOwnerCacheTestEnv(t)

	_, err := c.GetOwner(ctx, testutil.UniqueID("absent"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestIntegrationOwnerCache_Delete(t *testing.T) {
	ctx, c := newOwnerCacheTestEnv(t)

	hash := testutil.UniqueID("hash")
	if err := c.SetOwner(ctx, hash, "owner-1"); err != nil {
		t.Fatalf("SetOwner failed: %v", err)
	}
	if err := c.DeleteOwner(ctx, hash); err != nil {
		t.Fatalf("DeleteOwner failed: %v", err)
	}

	if _, err := c.GetOwner(ctx, hash); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}
