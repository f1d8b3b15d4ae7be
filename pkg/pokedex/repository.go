package pokedex

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nordgaard/pokefetch/pkg/cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher issues decoded requests against the remote API. *client.Client
// satisfies it; tests substitute fakes.
type Fetcher interface {
	GetJSON(ctx context.Context, endpoint string, v any) error
}

// Store persists decoded entities. The repository makes no assumption about
// storage shape beyond "accepts a decoded Pokemon".
type Store interface {
	SavePokemon(ctx context.Context, p *Pokemon) error
}

// DefaultBatchPause is the empirical inter-item delay in GetBatch. It
// smooths bursts on top of the rate limiter and is tunable; it is not a
// substitute for the limiter itself.
const DefaultBatchPause = 50 * time.Millisecond

// DefaultSearchLimit caps the listing fetched for client-side search.
const DefaultSearchLimit = 1000

// RepositoryConfig holds repository configuration.
type RepositoryConfig struct {
	// Fetcher is the API client (required).
	Fetcher Fetcher

	// ResponseCache is the transport-level cache, cleared together with
	// the entity cache. Optional.
	ResponseCache *cache.Manager

	// Store receives each freshly decoded entity. Optional.
	Store Store

	// BatchPause is the inter-item delay in GetBatch.
	BatchPause time.Duration

	// SearchLimit caps the listing size used by Search.
	SearchLimit int
}

// Stats is a read-only snapshot of repository cache state.
type Stats struct {
	Cached        int
	Recent        int
	SearchEntries int
	ResponseBytes int64
}

// Repository is the cache-first facade over the entity cache and the API
// client. External callers (UI, storage) go through it exclusively.
type Repository struct {
	fetcher   Fetcher
	respCache *cache.Manager
	store     Store
	entities  *EntityCache
	logger    zerolog.Logger

	batchPause  time.Duration
	searchLimit int

	mu       sync.Mutex
	searches map[string][]NamedResource
	lastErr  error
}

// NewRepository creates a repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.BatchPause <= 0 {
		cfg.BatchPause = DefaultBatchPause
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultSearchLimit
	}

	return &Repository{
		fetcher:     cfg.Fetcher,
		respCache:   cfg.ResponseCache,
		store:       cfg.Store,
		entities:    NewEntityCache(),
		logger:      log.With().Str("component", "repository").Logger(),
		batchPause:  cfg.BatchPause,
		searchLimit: cfg.SearchLimit,
		searches:    make(map[string][]NamedResource),
	}, nil
}

// GetByID returns the entity for id, from cache when present, otherwise
// fetched, decoded, and cached. Fetch errors propagate unchanged and are
// also recorded as the repository's last error.
func (r *Repository) GetByID(ctx context.Context, id int) (*Pokemon, error) {
	if p := r.entities.ByID(id); p != nil {
		r.logger.Debug().Int("pokemon_id", id).Bool("cache_hit", true).Msg("Entity cache hit")
		return p, nil
	}

	return r.fetch(ctx, fmt.Sprintf("/pokemon/%d", id))
}

// GetByName returns the entity for name (case-insensitive, spaces map to
// hyphens), cache-first. A successful fetch caches under both id and name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Pokemon, error) {
	normalized := NormalizeName(name)
	if p := r.entities.ByName(normalized); p != nil {
		r.logger.Debug().Str("pokemon", normalized).Bool("cache_hit", true).Msg("Entity cache hit")
		return p, nil
	}

	return r.fetch(ctx, "/pokemon/"+normalized)
}

// fetch performs the shared network-fallback-and-populate path.
func (r *Repository) fetch(ctx context.Context, endpoint string) (*Pokemon, error) {
	var p Pokemon
	if err := r.fetcher.GetJSON(ctx, endpoint, &p); err != nil {
		r.recordError(err)
		return nil, err
	}

	r.entities.Put(&p)
	r.clearError()

	if r.store != nil {
		if err := r.store.SavePokemon(ctx, &p); err != nil {
			// Persistence is best-effort; the fetch itself succeeded.
			r.logger.Warn().Err(err).Int("pokemon_id", p.ID).Msg("Failed to persist entity")
		}
	}

	r.logger.Debug().
		Int("pokemon_id", p.ID).
		Str("pokemon", p.Name).
		Msg("Fetched and cached entity")

	return &p, nil
}

// Search fetches (or reuses the cached) large listing and filters it by
// case-insensitive substring match on name. Result sets are memoized per
// lowercased query for the repository lifetime.
func (r *Repository) Search(ctx context.Context, query string) ([]NamedResource, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	r.mu.Lock()
	if cached, ok := r.searches[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	var page Page
	endpoint := fmt.Sprintf("/pokemon?limit=%d&offset=0", r.searchLimit)
	if err := r.fetcher.GetJSON(ctx, endpoint, &page); err != nil {
		r.recordError(err)
		return nil, err
	}

	var matches []NamedResource
	for _, item := range page.Results {
		if strings.Contains(strings.ToLower(item.Name), key) {
			matches = append(matches, item)
		}
	}

	r.mu.Lock()
	r.searches[key] = matches
	r.mu.Unlock()

	r.logger.Debug().
		Str("query", key).
		Int("matches", len(matches)).
		Msg("Search complete")

	return matches, nil
}

// GetBatch fetches each id sequentially via GetByID. Individual failures
// are logged and skipped, never aborting the batch. A configurable pause
// between items smooths bursts beyond the limiter's own guarantee.
func (r *Repository) GetBatch(ctx context.Context, ids []int) []*Pokemon {
	results := make([]*Pokemon, 0, len(ids))

	for i, id := range ids {
		if i > 0 {
			select {
			case <-ctx.Done():
				r.logger.Warn().
					Int("fetched", len(results)).
					Int("requested", len(ids)).
					Msg("Batch fetch cancelled")
				return results
			case <-time.After(r.batchPause):
			}
		}

		p, err := r.GetByID(ctx, id)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Int("pokemon_id", id).
				Msg("Skipping failed batch item")
			continue
		}
		results = append(results, p)
	}

	return results
}

// Recent returns the bounded most-recently-fetched list, newest first.
func (r *Repository) Recent() []*Pokemon {
	return r.entities.Recent()
}

// ClearCache synchronously clears the entity cache, the search result
// cache, the recent list, and the transport-level response cache.
func (r *Repository) ClearCache(ctx context.Context) error {
	r.entities.Clear()

	r.mu.Lock()
	r.searches = make(map[string][]NamedResource)
	r.lastErr = nil
	r.mu.Unlock()

	if r.respCache != nil {
		if err := r.respCache.Clear(ctx); err != nil {
			return fmt.Errorf("clear response cache: %w", err)
		}
	}

	r.logger.Info().Msg("Caches cleared")
	return nil
}

// Stats returns a read-only snapshot of cache usage.
func (r *Repository) Stats() Stats {
	r.mu.Lock()
	searchEntries := len(r.searches)
	r.mu.Unlock()

	stats := Stats{
		Cached:        r.entities.Len(),
		Recent:        r.entities.RecentLen(),
		SearchEntries: searchEntries,
	}
	if r.respCache != nil {
		stats.ResponseBytes = r.respCache.Stats().Bytes
	}
	return stats
}

// LastError returns the most recent single-entity fetch error, for UI
// polling. Cleared by the next successful fetch and by ClearCache.
func (r *Repository) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func (r *Repository) recordError(err error) {
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
}

func (r *Repository) clearError() {
	r.mu.Lock()
	r.lastErr = nil
	r.mu.Unlock()
}
