// Package cache provides response-level caching for PokeAPI requests.
//
// Cached values are raw HTTP response bodies keyed by request URL. Two tiers
// are supported:
//
//   - an in-memory LRU tier bounded by a configurable byte budget
//   - an optional Redis tier for persistence across processes
//
// The cache is an optimization layer for the HTTP client: a fresh hit
// short-circuits the network round trip, but a miss or cache error always
// falls through to a real request. Error responses are never cached.
//
// # Basic Usage
//
//	manager := cache.NewManager(cache.ManagerConfig{
//		MemoryBudget: 50 << 20,
//	})
//
//	key := cache.Key{URL: "https://pokeapi.co/api/v2/pokemon/1"}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the API, then:
//		// manager.Set(ctx, key, entry)
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - pokeapi_cache_hits_total{layer} - Cache hits by tier
//   - pokeapi_cache_misses_total - Cache misses
//   - pokeapi_cache_size_bytes{layer} - Current cache size by tier
//   - pokeapi_cache_evictions_total - Memory tier LRU evictions
//   - pokeapi_cache_errors_total{operation} - Cache operation errors
package cache
