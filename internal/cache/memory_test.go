package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slidekit/layout/internal/cache"
)

func TestMemorySetGet(t *testing.T) {
	c := cache.NewMemory()
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

func TestMemoryMissingKey(t *testing.T) {
	c := cache.NewMemory()

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := cache.NewMemory(cache.WithClock(clock))
	ctx := context.Background()

	if err := c.Set(ctx, "pres:abc", []byte("payload"), 10*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(9 * time.Minute)
	if _, err := c.Get(ctx, "pres:abc"); err != nil {
		t.Fatalf("entry should still be live: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Get(ctx, "pres:abc"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryZeroTTLUsesDefault(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := cache.NewMemory(cache.WithClock(clock))
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(cache.DefaultTTL - time.Second)
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("entry should still be live: %v", err)
	}

	now = now.Add(2 * time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected expiry after default TTL, got %v", err)
	}
}

func TestMemoryNegativeTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := cache.NewMemory(cache.WithClock(clock))
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), -1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(1000 * time.Hour)
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("non-expiring entry should survive: %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	c := cache.NewMemory()
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
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting absent key should be a no-op: %v", err)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("abc"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	first[0] = 'x'

	second, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(second) != "abc" {
		t.Fatalf("cached value mutated through returned slice: %q", second)
	}
}

func TestNullCache(t *testing.T) {
	c := cache.NewNull()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("null cache should never hit, got %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}
