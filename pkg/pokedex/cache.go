package pokedex

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the entity cache.
var (
	entityCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_entity_cache_hits_total",
		Help: "Total entity cache hits by key type",
	}, []string{"key"}) // "id", "name"

	entityCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokeapi_entity_cache_misses_total",
		Help: "Total entity cache misses",
	})

	entityCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokeapi_entity_cache_entries",
		Help: "Number of entities held in the process-lifetime cache",
	})
)

// RecentCapacity bounds the most-recently-used list.
const RecentCapacity = 10

// EntityCache is a process-lifetime store of decoded Pokemon, indexed by
// numeric id and by normalized name, with a bounded most-recent-first list.
// All operations are safe for concurrent use.
type EntityCache struct {
	mu     sync.Mutex
	byID   map[int]*Pokemon
	byName map[string]*Pokemon
	recent []*Pokemon // most recent first, unique by id
}

// NewEntityCache creates an empty entity cache.
func NewEntityCache() *EntityCache {
	return &EntityCache{
		byID:   make(map[int]*Pokemon),
		byName: make(map[string]*Pokemon),
	}
}

// ByID returns the cached entity for id, or nil.
func (c *EntityCache) ByID(id int) *Pokemon {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[id]
	if !ok {
		entityCacheMisses.Inc()
		return nil
	}
	entityCacheHits.WithLabelValues("id").Inc()
	return p
}

// ByName returns the cached entity for the (normalized) name, or nil.
func (c *EntityCache) ByName(name string) *Pokemon {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byName[NormalizeName(name)]
	if !ok {
		entityCacheMisses.Inc()
		return nil
	}
	entityCacheHits.WithLabelValues("name").Inc()
	return p
}

// Put stores the entity under both its id and its normalized name,
// replacing any prior value for the same id, and promotes it to the front
// of the recent list.
func (c *EntityCache) Put(p *Pokemon) {
	if p == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prior, ok := c.byID[p.ID]; ok {
		// One entry per id: drop the stale name index when a re-fetch
		// changed the canonical name.
		delete(c.byName, NormalizeName(prior.Name))
	}
	c.byID[p.ID] = p
	c.byName[NormalizeName(p.Name)] = p
	entityCacheEntries.Set(float64(len(c.byID)))

	// Recent list: remove any entry with the same id, prepend, truncate.
	filtered := c.recent[:0]
	for _, r := range c.recent {
		if r.ID != p.ID {
			filtered = append(filtered, r)
		}
	}
	c.recent = append([]*Pokemon{p}, filtered...)
	if len(c.recent) > RecentCapacity {
		c.recent = c.recent[:RecentCapacity]
	}
}

// Recent returns the most-recently-stored entities, newest first, at most
// RecentCapacity items, unique by id.
func (c *EntityCache) Recent() []*Pokemon {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Pokemon, len(c.recent))
	copy(out, c.recent)
	return out
}

// Len returns the number of cached entities.
func (c *EntityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}

// RecentLen returns the length of the recent list.
func (c *EntityCache) RecentLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recent)
}

// Clear drops every cached entity and the recent list.
func (c *EntityCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byID = make(map[int]*Pokemon)
	c.byName = make(map[string]*Pokemon)
	c.recent = nil
	entityCacheEntries.Set(0)
}
