package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
)

// Store is a JSON value cache keyed by string.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var (
	RDB *redis.Client

	mu      sync.RWMutex
	current Store = NewMemory()
)

// Connect initialises the Redis client and makes it the default store.
// On ping failure the in-memory store stays active and the error is returned
// so the caller can log it.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	RDB = client
	Use(NewRedis(client))
	return nil
}

// Use swaps the default store.
func Use(s Store) {
	mu.Lock()
	current = s
	mu.Unlock()
}

// Default returns the active store.
func Default() Store {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Get(ctx context.Context, key string, dest interface{}) bool {
	return Default().Get(ctx, key, dest)
}

func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return Default().Set(ctx, key, value, ttl)
}

func Del(ctx context.Context, keys ...string) error {
	return Default().Del(ctx, keys...)
}

// Forget is an alias for Del (Laravel-style).
func Forget(ctx context.Context, key string) error {
	return Del(ctx, key)
}

// Has reports whether key is present.
func Has(ctx context.Context, key string) bool {
	var raw json.RawMessage
	return Get(ctx, key, &raw)
}

// ─── Redis ───────────────────────────────────────────────────────────────────

type redisStore struct{ rdb *redis.Client }

func NewRedis(rdb *redis.Client) Store { return &redisStore{rdb: rdb} }

func (s *redisStore) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

func (s *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, ttl).Err()
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// ─── Memory ──────────────────────────────────────────────────────────────────

type memItem struct {
	data    []byte
	expires time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

// NewMemory returns a process-local store, used when Redis is absent.
func NewMemory() Store {
	return &memoryStore{items: make(map[string]memItem), now: time.Now}
}

func (s *memoryStore) Get(_ context.Context, key string, dest interface{}) bool {
	s.mu.Lock()
	it, ok := s.items[key]
	if ok && !it.expires.IsZero() && s.now().After(it.expires) {
		delete(s.items, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok || json.Unmarshal(it.data, dest) != nil {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("memory").Inc()
	return true
}

func (s *memoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	it := memItem{data: data}
	if ttl > 0 {
		it.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.items, k)
	}
	s.mu.Unlock()
	return nil
}
