package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisScopeCache(t *testing.T) (*RedisScopeCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisScopeCache(client, time.Minute, nil), server
}

func TestRedisScopeCacheRoundTrip(t *testing.T) {
	cache, _ := newRedisScopeCache(t)
	ctx := context.Background()

	if _, gen, ok := cache.Get(ctx, "Finance"); ok || gen != 0 {
		t.Fatalf("expected miss at generation 0, got ok=%v gen=%d", ok, gen)
	}
	cache.Set(ctx, "Finance", 0, []string{"doc-1", "doc-2"})

	ids, gen, ok := cache.Get(ctx, "Finance")
	if !ok || gen != 0 {
		t.Fatalf("expected hit at generation 0, got ok=%v gen=%d", ok, gen)
	}
	if !reflect.DeepEqual(ids, []string{"doc-1", "doc-2"}) {
		t.Fatalf("unexpected ids %v", ids)
	}
	if _, _, ok := cache.Get(ctx, "HR"); ok {
		t.Fatalf("expected departments to be cached independently")
	}
}

func TestRedisScopeCacheInvalidateBumpsGeneration(t *testing.T) {
	cache, _ := newRedisScopeCache(t)
	ctx := context.Background()

	cache.Set(ctx, "Finance", 0, []string{"doc-1"})
	cache.Invalidate(ctx)

	_, gen, ok := cache.Get(ctx, "Finance")
	if ok {
		t.Fatalf("expected miss after invalidation")
	}
	if gen != 1 {
		t.Fatalf("expected generation 1, got %d", gen)
	}
	cache.Set(ctx, "Finance", gen, []string{"doc-1", "doc-2"})
	if ids, _, ok := cache.Get(ctx, "Finance"); !ok || len(ids) != 2 {
		t.Fatalf("expected refreshed entry, got ok=%v ids=%v", ok, ids)
	}
}

func TestRedisScopeCacheDropsResultComputedBeforeInvalidate(t *testing.T) {
	cache, _ := newRedisScopeCache(t)
	ctx := context.Background()

	_, gen, ok := cache.Get(ctx, "Finance")
	if ok {
		t.Fatalf("expected initial miss")
	}
	// A mutation commits while the resolver is still computing the old scope.
	cache.Invalidate(ctx)
	cache.Set(ctx, "Finance", gen, []string{"doc-old"})

	if ids, _, ok := cache.Get(ctx, "Finance"); ok {
		t.Fatalf("stale scope served after invalidation: %v", ids)
	}
}

func TestRedisScopeCacheBackendFailureIsMiss(t *testing.T) {
	cache, server := newRedisScopeCache(t)
	ctx := context.Background()

	cache.Set(ctx, "Finance", 0, []string{"doc-1"})
	server.SetError("ERR backend unavailable")

	ids, gen, ok := cache.Get(ctx, "Finance")
	if ok || ids != nil {
		t.Fatalf("expected miss on backend failure, got ok=%v ids=%v", ok, ids)
	}
	if gen >= 0 {
		t.Fatalf("expected negative generation on failure, got %d", gen)
	}
	cache.Set(ctx, "Finance", gen, []string{"doc-2"})
	cache.Invalidate(ctx)

	server.SetError("")
	if ids, _, ok := cache.Get(ctx, "Finance"); !ok || !reflect.DeepEqual(ids, []string{"doc-1"}) {
		t.Fatalf("expected original entry to survive failed writes, got ok=%v ids=%v", ok, ids)
	}
}

func TestResolveRefreshesCacheAfterInvalidate(t *testing.T) {
	f := newTrackerFixture(t)
	f.create(t, clerk, letterInput())

	cache, _ := newRedisScopeCache(t)
	resolver := NewScopeResolver(f.db, testCatalog, cache)
	ctx := context.Background()

	ids, err := resolver.Resolve(ctx, "Administration")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cached, _, ok := cache.Get(ctx, "Administration"); !ok || !reflect.DeepEqual(cached, ids) {
		t.Fatalf("expected resolved ids cached, got ok=%v ids=%v", ok, cached)
	}

	cache.Invalidate(ctx)
	f.create(t, clerk, letterInput())
	refreshed, err := resolver.Resolve(ctx, "Administration")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(refreshed) != len(ids)+1 {
		t.Fatalf("expected new document in refreshed scope, got %v", refreshed)
	}
}
