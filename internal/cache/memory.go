package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"Process_Insights/internal/models"
)

// MemoryCache implements Service using in-memory storage.
// Entries are kept in insertion order; when full, the oldest insertion goes first.
type MemoryCache struct {
	data          map[string]*list.Element
	order         *list.List // front is the least recently inserted
	maxEntries    int
	now           func() time.Time
	sweepInterval time.Duration
	onEvict       EvictionHook
	mutex         sync.RWMutex
	stop          chan struct{}
	stopOnce      sync.Once
}

// cacheEntry represents a single cache entry
type cacheEntry struct {
	key        string
	value      interface{}
	insertedAt time.Time
	ttl        time.Duration
}

func (e *cacheEntry) fresh(now time.Time) bool {
	return now.Sub(e.insertedAt) < e.ttl
}

// MemoryOption configures a MemoryCache
type MemoryOption func(*MemoryCache)

// WithClock overrides time.Now
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryCache) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSweepInterval sets how often expired entries are purged
func WithSweepInterval(interval time.Duration) MemoryOption {
	return func(m *MemoryCache) {
		if interval > 0 {
			m.sweepInterval = interval
		}
	}
}

// WithEvictionHook registers a callback for capacity evictions
func WithEvictionHook(hook EvictionHook) MemoryOption {
	return func(m *MemoryCache) {
		m.onEvict = hook
	}
}

// NewMemoryCache creates a new in-memory cache holding at most maxEntries
func NewMemoryCache(maxEntries int, opts ...MemoryOption) (Service, error) {
	c, err := newMemoryCache(maxEntries, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// newMemoryCache creates the concrete implementation
func newMemoryCache(maxEntries int, opts ...MemoryOption) (*MemoryCache, error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("%w: max entries must be at least 1, got %d", models.ErrInvalidCacheConfig, maxEntries)
	}

	cache := &MemoryCache{
		data:          make(map[string]*list.Element),
		order:         list.New(),
		maxEntries:    maxEntries,
		now:           time.Now,
		sweepInterval: 5 * time.Minute,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}

	// Start cleanup routine
	go cache.cleanupExpired()

	return cache, nil
}

// Get retrieves a cached value for the given key
func (m *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	entry, err := m.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// GetEntry retrieves a cached value together with its age
func (m *MemoryCache) GetEntry(ctx context.Context, key string) (*Entry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	elem, exists := m.data[key]
	if !exists {
		return nil, models.ErrCacheMiss
	}

	now := m.now()
	entry := elem.Value.(*cacheEntry)
	if !entry.fresh(now) {
		// Stale entries stay until overwritten, evicted or swept
		return nil, models.ErrCacheMiss
	}

	return &Entry{Value: entry.value, Age: now.Sub(entry.insertedAt)}, nil
}

// Set stores a value in the cache with the specified TTL.
// Overwriting a key counts as a new insertion.
func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if elem, exists := m.data[key]; exists {
		m.order.Remove(elem)
		delete(m.data, key)
	}

	for m.order.Len() >= m.maxEntries {
		m.evictOldest()
	}

	m.data[key] = m.order.PushBack(&cacheEntry{
		key:        key,
		value:      value,
		insertedAt: m.now(),
		ttl:        ttl,
	})

	return nil
}

// Delete removes an entry from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if elem, exists := m.data[key]; exists {
		m.order.Remove(elem)
		delete(m.data, key)
	}
	return nil
}

// Close stops the background sweep
func (m *MemoryCache) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	return nil
}

// Size returns the current number of cached entries, stale ones included
func (m *MemoryCache) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.order.Len()
}

// evictOldest drops the least recently inserted entry. Caller holds the lock.
func (m *MemoryCache) evictOldest() {
	front := m.order.Front()
	if front == nil {
		return
	}
	entry := m.order.Remove(front).(*cacheEntry)
	delete(m.data, entry.key)

	if m.onEvict != nil {
		m.onEvict(entry.key)
	}
}

// cleanupExpired removes expired entries from the cache until Close is called
func (m *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep removes every stale entry
func (m *MemoryCache) sweep() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	for elem := m.order.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*cacheEntry)
		if !entry.fresh(now) {
			m.order.Remove(elem)
			delete(m.data, entry.key)
		}
		elem = next
	}
}
