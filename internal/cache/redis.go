package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Process_Insights/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "dataset:"
	redisOrderKey  = "cache:insertion_order"
	redisSeqKey    = "cache:insertion_seq"
)

// RedisCache implements Service using Redis.
// Values are stored as JSON with their insertion time and a Redis TTL; insertion order lives in a
// sorted set scored by a monotonic sequence so the oldest insertions can be trimmed.
type RedisCache struct {
	client     *redis.Client
	maxEntries int
	onEvict    EvictionHook
}

// NewRedisCache creates a new Redis-based cache holding at most maxEntries
func NewRedisCache(redisURL string, maxEntries int, onEvict EvictionHook) (Service, error) {
	c, err := newRedisCache(redisURL, maxEntries, onEvict)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// newRedisCache creates the concrete implementation
func newRedisCache(redisURL string, maxEntries int, onEvict EvictionHook) (*RedisCache, error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("%w: max entries must be at least 1, got %d", models.ErrInvalidCacheConfig, maxEntries)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client:     client,
		maxEntries: maxEntries,
		onEvict:    onEvict,
	}, nil
}

// redisEntry is the stored form of a value: its JSON and when it was inserted
type redisEntry struct {
	InsertedAt time.Time       `json:"inserted_at"`
	Value      json.RawMessage `json:"value"`
}

// Get retrieves a cached value for the given key as raw JSON
func (r *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	entry, err := r.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// GetEntry retrieves the raw JSON for key together with its age
func (r *RedisCache) GetEntry(ctx context.Context, key string) (*Entry, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired or never stored; drop it from the insertion order
			r.client.ZRem(ctx, redisOrderKey, key)
			return nil, models.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var stored redisEntry
	if err := json.Unmarshal(data, &stored); err != nil || stored.Value == nil {
		return nil, fmt.Errorf("%w: unreadable entry for %s", models.ErrInvalidPayload, key)
	}

	age := time.Since(stored.InsertedAt)
	if age < 0 {
		age = 0
	}

	// Return the raw JSON, let the caller handle unmarshaling
	return &Entry{Value: stored.Value, Age: age}, nil
}

// Set stores a value in Redis with the specified TTL, then trims the oldest insertions
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	data, err := json.Marshal(redisEntry{InsertedAt: time.Now().UTC(), Value: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	seq, err := r.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+key, data, ttl)
		pipe.ZAdd(ctx, redisOrderKey, redis.Z{Score: float64(seq), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return r.trim(ctx)
}

// trim evicts the least recently inserted keys beyond maxEntries
func (r *RedisCache) trim(ctx context.Context) error {
	count, err := r.client.ZCard(ctx, redisOrderKey).Result()
	if err != nil {
		return fmt.Errorf("redis trim failed: %w", err)
	}

	excess := count - int64(r.maxEntries)
	if excess <= 0 {
		return nil
	}

	victims, err := r.client.ZRange(ctx, redisOrderKey, 0, excess-1).Result()
	if err != nil {
		return fmt.Errorf("redis trim failed: %w", err)
	}
	if len(victims) == 0 {
		return nil
	}

	members := make([]interface{}, 0, len(victims))
	keys := make([]string, 0, len(victims))
	for _, victim := range victims {
		members = append(members, victim)
		keys = append(keys, redisKeyPrefix+victim)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, redisOrderKey, members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis trim failed: %w", err)
	}

	if r.onEvict != nil {
		for _, victim := range victims {
			r.onEvict(victim)
		}
	}
	return nil
}

// Delete removes an entry from Redis
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKeyPrefix+key)
		pipe.ZRem(ctx, redisOrderKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
