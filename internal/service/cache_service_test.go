package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu    sync.Mutex
	items map[string][]byte
	ttls  map[string]time.Duration
	err   error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func TestCacheServiceRoundTripAndMetrics(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, 30*time.Second, nil)
	ctx := context.Background()

	var count int
	require.False(t, cache.Get(ctx, "k", &count))

	cache.Set(ctx, "k", 7, 0)
	require.Equal(t, 30*time.Second, repo.ttls["k"])
	require.True(t, cache.Get(ctx, "k", &count))
	require.Equal(t, 7, count)

	cache.Invalidate(ctx, "k")
	require.False(t, repo.has("k"))

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestCacheServiceSoftFails(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.err = errors.New("redis down")
	cache := NewCacheService(repo, nil, 0, nil)
	ctx := context.Background()

	var count int
	require.False(t, cache.Get(ctx, "k", &count))
	cache.Set(ctx, "k", 1, time.Minute)
	cache.Invalidate(ctx, "k")
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilCache *CacheService
	require.False(t, nilCache.Enabled())
	var count int
	require.False(t, nilCache.Get(context.Background(), "k", &count))
	nilCache.Set(context.Background(), "k", 1, 0)

	require.False(t, NewCacheService(nil, nil, 0, nil).Enabled())
}
