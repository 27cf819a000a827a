package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/slidekit/layout/internal/cache"
)

func newRedisCache(t *testing.T, opts ...cache.RedisOption) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedis(client, opts...), mr
}

func TestRedisSetGet(t *testing.T) {
	c, _ := newRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "pres:abc", []byte(`{"title":"Q3"}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "pres:abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"title":"Q3"}` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestRedisMissingKey(t *testing.T) {
	c, _ := newRedisCache(t)

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisExpiry(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(11 * time.Minute)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestRedisDelete(t *testing.T) {
	c, _ := newRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	c, mr := newRedisCache(t, cache.WithKeyPrefix("layout:"))
	ctx := context.Background()

	if err := c.Set(ctx, "pres:abc", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("layout:pres:abc") {
		t.Fatalf("expected prefixed key in redis, keys: %v", mr.Keys())
	}
	if _, err := c.Get(ctx, "pres:abc"); err != nil {
		t.Fatalf("Get through prefix failed: %v", err)
	}
}
