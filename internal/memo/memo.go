// Package memo memoizes dataset fetches in a bounded, TTL-scoped cache.
// Misses go through the retrying fetch client; failures are never cached.
package memo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Process_Insights/internal/cache"
	"Process_Insights/internal/fetchclient"
	"Process_Insights/internal/logger"
	"Process_Insights/internal/metrics"
	"Process_Insights/internal/models"
)

// Memo couples a cache with the fetch client used to fill it
type Memo struct {
	client     fetchclient.Service
	store      cache.Service
	logger     logger.Service
	metrics    *metrics.Metrics
	defaultTTL time.Duration
}

// New creates a memo. metrics may be nil.
func New(client fetchclient.Service, store cache.Service, log logger.Service, m *metrics.Metrics, defaultTTL time.Duration) (*Memo, error) {
	if client == nil || store == nil || log == nil {
		return nil, errors.New("memo requires a fetch client, a cache and a logger")
	}
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("%w: default TTL must be positive, got %s", models.ErrInvalidCacheConfig, defaultTTL)
	}

	return &Memo{
		client:     client,
		store:      store,
		logger:     log,
		metrics:    m,
		defaultTTL: defaultTTL,
	}, nil
}

// DefaultTTL returns the TTL used when Fetch is called with ttl == 0
func (m *Memo) DefaultTTL() time.Duration {
	return m.defaultTTL
}

// Fetch returns the cached value for key while it is younger than ttl,
// whatever TTL the entry was stored with.
// Otherwise it runs thunk through the fetch client and caches a success.
// A ttl of zero selects the memo's default TTL.
func Fetch[T any](ctx context.Context, m *Memo, key string, thunk func(ctx context.Context) (T, error), ttl time.Duration) (T, error) {
	var zero T
	start := time.Now()

	if ttl == 0 {
		ttl = m.defaultTTL
	}
	if ttl < 0 {
		return zero, fmt.Errorf("%w: TTL must not be negative, got %s", models.ErrInvalidCacheConfig, ttl)
	}

	if value, ok := lookup[T](ctx, m, key, ttl); ok {
		m.metrics.RecordCacheHit(key)
		m.logger.LogSuccess(ctx, logger.OpCacheHit, key, "Served dataset from cache", map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return value, nil
	}

	m.metrics.RecordCacheMiss(key)
	m.logger.LogInfo(ctx, logger.OpCacheMiss, fmt.Sprintf("Cache miss for dataset: %s", key), map[string]interface{}{
		"dataset": key,
	})

	value, err := fetchclient.Do(ctx, m.client, thunk)
	m.metrics.RecordFetch(key, err == nil, time.Since(start))
	if err != nil {
		m.logger.LogError(ctx, logger.OpDatasetFetch, key, "Failed to fetch dataset", err, models.LogSeverityMedium, map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return zero, err
	}

	if err := m.store.Set(ctx, key, value, ttl); err != nil {
		// The caller still gets the fresh value
		m.logger.LogError(ctx, logger.OpCacheSet, key, "Failed to cache dataset", err, models.LogSeverityLow, nil)
	}

	m.logger.LogSuccess(ctx, logger.OpDatasetFetch, key, "Fetched dataset", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"ttl_seconds": ttl.Seconds(),
	})

	return value, nil
}

// Invalidate drops the cached value for key so the next Fetch goes to the source
func (m *Memo) Invalidate(ctx context.Context, key string) error {
	if err := m.store.Delete(ctx, key); err != nil {
		m.logger.LogError(ctx, logger.OpCacheInvalidate, key, "Failed to invalidate dataset", err, models.LogSeverityLow, nil)
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}

	m.logger.LogSuccess(ctx, logger.OpCacheInvalidate, key, "Invalidated dataset", nil)
	return nil
}

// lookup reads key from the cache. An entry at least ttl old is a miss even
// when the cache would still keep it. Backend errors and undecodable values
// count as misses.
func lookup[T any](ctx context.Context, m *Memo, key string, ttl time.Duration) (T, bool) {
	var zero T

	entry, err := m.store.GetEntry(ctx, key)
	if err != nil {
		if !errors.Is(err, models.ErrCacheMiss) {
			m.logger.LogError(ctx, logger.OpCacheMiss, key, "Cache read failed", err, models.LogSeverityLow, nil)
		}
		return zero, false
	}
	if entry.Age >= ttl {
		return zero, false
	}

	value, err := decode[T](entry.Value)
	if err != nil {
		m.logger.LogError(ctx, logger.OpCacheDecode, key, "Cached value could not be decoded", err, models.LogSeverityLow, nil)
		return value, false
	}
	return value, true
}

// decode converts a cached value back into T. In-process caches hand back
// the stored value itself; Redis hands back its JSON encoding.
func decode[T any](raw interface{}) (T, error) {
	var out T

	switch v := raw.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return out, fmt.Errorf("%w: nil cached pointer", models.ErrInvalidPayload)
		}
		return *v, nil
	case json.RawMessage:
		return out, unmarshal(v, &out)
	case []byte:
		return out, unmarshal(v, &out)
	case string:
		return out, unmarshal([]byte(v), &out)
	default:
		return out, fmt.Errorf("%w: cached value has type %T", models.ErrInvalidPayload, raw)
	}
}

func unmarshal(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
	}
	return nil
}
