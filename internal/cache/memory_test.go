package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"Process_Insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryCache(t *testing.T, maxEntries int, opts ...MemoryOption) (*MemoryCache, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	cache, err := newMemoryCache(maxEntries, append([]MemoryOption{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, clock
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 10)
	ctx := context.Background()

	err := cache.Set(ctx, "test-key", "test-value", 1*time.Hour)
	require.NoError(t, err)

	value, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, "test-value", value)
}

func TestMemoryCache_Get_NotFound(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 10)

	value, err := cache.Get(context.Background(), "non-existent")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestMemoryCache_Get_Expired(t *testing.T) {
	cache, clock := newTestMemoryCache(t, 10)
	ctx := context.Background()

	err := cache.Set(ctx, "expiring-key", "expiring-value", 60*time.Second)
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	value, err := cache.Get(ctx, "expiring-key")
	require.NoError(t, err)
	assert.Equal(t, "expiring-value", value)

	// An entry exactly ttl old is stale
	clock.Advance(1 * time.Second)
	value, err = cache.Get(ctx, "expiring-key")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestMemoryCache_GetEntry_ReportsAge(t *testing.T) {
	cache, clock := newTestMemoryCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "metrics", "v1", time.Minute))
	clock.Advance(30 * time.Second)

	entry, err := cache.GetEntry(ctx, "metrics")
	require.NoError(t, err)
	assert.Equal(t, "v1", entry.Value)
	assert.Equal(t, 30*time.Second, entry.Age)

	// Overwriting restarts the age
	require.NoError(t, cache.Set(ctx, "metrics", "v2", time.Minute))
	entry, err = cache.GetEntry(ctx, "metrics")
	require.NoError(t, err)
	assert.Equal(t, "v2", entry.Value)
	assert.Equal(t, time.Duration(0), entry.Age)

	clock.Advance(time.Minute)
	_, err = cache.GetEntry(ctx, "metrics")
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestMemoryCache_Set_InvalidTTL(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 10)
	ctx := context.Background()

	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"zero TTL", 0},
		{"negative TTL", -1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.Set(ctx, "test-key", "test-value", tt.ttl)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "TTL must be positive")
		})
	}
}

func TestMemoryCache_Set_Overwrite(t *testing.T) {
	cache, clock := newTestMemoryCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value1", 10*time.Second))
	clock.Advance(8 * time.Second)
	require.NoError(t, cache.Set(ctx, "key", "value2", 10*time.Second))

	// Overwrite resets insertedAt
	clock.Advance(8 * time.Second)
	value, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value2", value)
	assert.Equal(t, 1, cache.Size())
}

func TestMemoryCache_Delete(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "test-key", "test-value", 1*time.Hour))
	require.NoError(t, cache.Delete(ctx, "test-key"))

	value, err := cache.Get(ctx, "test-key")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, models.ErrCacheMiss)
	assert.Equal(t, 0, cache.Size())
}

func TestMemoryCache_Delete_NonExistent(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 10)

	err := cache.Delete(context.Background(), "non-existent")
	assert.NoError(t, err)
}

func TestMemoryCache_EvictsOldestInsertion(t *testing.T) {
	var evicted []string
	cache, _ := newTestMemoryCache(t, 3, WithEvictionHook(func(key string) {
		evicted = append(evicted, key)
	}))
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, key, time.Hour))
	}

	// Reading "a" does not protect it: eviction is by insertion, not access
	_, err := cache.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "d", "d", time.Hour))

	_, err = cache.Get(ctx, "a")
	assert.ErrorIs(t, err, models.ErrCacheMiss)
	for _, key := range []string{"b", "c", "d"} {
		value, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, key, value)
	}
	assert.Equal(t, []string{"a"}, evicted)
	assert.Equal(t, 3, cache.Size())
}

func TestMemoryCache_OverwriteMovesKeyToNewest(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, time.Hour))
	require.NoError(t, cache.Set(ctx, "b", 2, time.Hour))
	require.NoError(t, cache.Set(ctx, "a", 3, time.Hour))
	require.NoError(t, cache.Set(ctx, "c", 4, time.Hour))

	_, err := cache.Get(ctx, "b")
	assert.ErrorIs(t, err, models.ErrCacheMiss)

	value, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, value)
}

func TestMemoryCache_NeverExceedsMaxEntries(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 5)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("key-%d", i), i, time.Hour))
		assert.LessOrEqual(t, cache.Size(), 5)
	}

	for i := 45; i < 50; i++ {
		value, err := cache.Get(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, value)
	}
}

func TestNewMemoryCache_InvalidMaxEntries(t *testing.T) {
	for _, maxEntries := range []int{0, -1} {
		cache, err := NewMemoryCache(maxEntries)
		assert.Nil(t, cache)
		assert.ErrorIs(t, err, models.ErrInvalidCacheConfig)
	}
}

func TestMemoryCache_DifferentTypes(t *testing.T) {
	cache, _ := newTestMemoryCache(t, 10)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"string", "key1", "string-value"},
		{"int", "key2", 42},
		{"struct", "key3", struct{ Name string }{Name: "test"}},
		{"slice", "key4", []string{"a", "b", "c"}},
		{"map", "key5", map[string]int{"a": 1, "b": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, tt.key, tt.value, 1*time.Hour))

			value, err := cache.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache, err := newMemoryCache(64)
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = cache.Set(ctx, fmt.Sprintf("concurrent-%d-%d", id, j), id*100+j, time.Hour)
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = cache.Get(ctx, fmt.Sprintf("concurrent-%d-%d", id, j))
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Size(), 64)

	require.NoError(t, cache.Set(ctx, "final-test", "works", 1*time.Hour))
	value, err := cache.Get(ctx, "final-test")
	require.NoError(t, err)
	assert.Equal(t, "works", value)
}

func TestMemoryCache_Sweep(t *testing.T) {
	cache, clock := newTestMemoryCache(t, 20)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("short-%d", i), i, 50*time.Millisecond))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("long-%d", i), i, 10*time.Hour))
	}
	assert.Equal(t, 15, cache.Size())

	clock.Advance(100 * time.Millisecond)
	cache.sweep()

	assert.Equal(t, 5, cache.Size())
	for i := 0; i < 5; i++ {
		value, err := cache.Get(ctx, fmt.Sprintf("long-%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, value)
	}
}

func TestMemoryCache_CleanupRoutineStops(t *testing.T) {
	cache, err := newMemoryCache(4, WithSweepInterval(10*time.Millisecond))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", "value", 5*time.Millisecond))

	assert.Eventually(t, func() bool {
		return cache.Size() == 0
	}, time.Second, 10*time.Millisecond)

	assert.NoError(t, cache.Close())
	// Close is idempotent
	assert.NoError(t, cache.Close())
}

func BenchmarkMemoryCache_Set(b *testing.B) {
	cache, _ := newMemoryCache(1024)
	defer cache.Close()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("bench-key-%d", i%2048), "bench-value", 1*time.Hour)
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	cache, _ := newMemoryCache(16)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "bench-key", "bench-value", 1*time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.Get(ctx, "bench-key")
	}
}
