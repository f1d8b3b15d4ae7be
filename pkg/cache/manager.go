package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	// ErrCacheMiss indicates the requested key was not found in any tier.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultMemoryBudget bounds the in-memory tier at 50 MiB.
const DefaultMemoryBudget = 50 << 20

// ManagerConfig holds cache manager configuration.
type ManagerConfig struct {
	// MemoryBudget is the byte budget for the in-memory tier.
	MemoryBudget int64

	// Redis enables the second tier when non-nil.
	Redis *redis.Client

	// Logger for cache events. Optional.
	Logger zerolog.Logger
}

// Manager coordinates the memory and Redis cache tiers.
type Manager struct {
	memory *memoryTier
	redis  *redis.Client
	logger zerolog.Logger
}

// NewManager creates a cache manager. The Redis tier is optional; with a
// nil client the cache is memory-only.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.MemoryBudget <= 0 {
		cfg.MemoryBudget = DefaultMemoryBudget
	}
	return &Manager{
		memory: newMemoryTier(cfg.MemoryBudget),
		redis:  cfg.Redis,
		logger: cfg.Logger,
	}
}

// Get retrieves a cache entry by key, checking memory before Redis.
// Returns ErrCacheMiss if no tier holds a fresh entry.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	cacheKey := key.String()

	if entry, ok := m.memory.get(cacheKey); ok {
		CacheHits.WithLabelValues("memory").Inc()
		return entry, nil
	}

	if m.redis == nil {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	data, err := m.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = m.redis.Del(ctx, cacheKey).Err()
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	// Promote to the memory tier for subsequent lookups.
	m.memory.set(cacheKey, &entry)

	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Set stores a cache entry in all configured tiers. Entries with no
// remaining TTL are dropped.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	cacheKey := key.String()
	m.memory.set(cacheKey, entry)

	if m.redis == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Add(float64(len(data)))
	return nil
}

// Clear drops every cached response from all tiers.
func (m *Manager) Clear(ctx context.Context) error {
	m.memory.clear()

	if m.redis == nil {
		return nil
	}

	// Only our namespaced keys; the Redis instance may be shared.
	iter := m.redis.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}

	if len(keys) > 0 {
		if err := m.redis.Del(ctx, keys...).Err(); err != nil {
			CacheErrors.WithLabelValues("clear").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
	}

	CacheSize.WithLabelValues("redis").Set(0)
	return nil
}

// Stats reports entry count and approximate byte usage of the memory tier.
type Stats struct {
	Entries int
	Bytes   int64
}

// Stats returns a read-only snapshot of memory tier usage.
func (m *Manager) Stats() Stats {
	entries, bytes := m.memory.stats()
	return Stats{Entries: entries, Bytes: bytes}
}
