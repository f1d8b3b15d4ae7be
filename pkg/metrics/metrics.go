// Package metrics provides the centralized Prometheus registry for the
// PokeAPI client. All metrics are defined in their respective packages
// (client, cache, ratelimit, pokedex, bulk) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics, plus the HTTP handler for exposing them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - pokeapi_rate_limit_waits_total (Counter): Rate limiter waits that actually slept
//   - pokeapi_rate_limit_wait_seconds (Histogram): Time spent waiting on the limiter
//   - pokeapi_rate_limit_interval_seconds (Gauge): Configured minimum inter-request interval
//
// Response Cache Metrics (pkg/cache):
//   - pokeapi_cache_hits_total{layer="memory"|"redis"} (Counter): Cache hits by layer
//   - pokeapi_cache_misses_total (Counter): Cache misses
//   - pokeapi_cache_size_bytes{layer} (Gauge): Current cache size in bytes
//   - pokeapi_cache_evictions_total (Counter): Memory tier LRU evictions
//   - pokeapi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - pokeapi_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - pokeapi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - pokeapi_errors_total{class} (Counter): Errors by class (not_found, server, rate_limit, network, decoding)
//
// Retry Metrics (pkg/client):
//   - pokeapi_retries_total{error_class} (Counter): Retry attempts by error class
//   - pokeapi_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - pokeapi_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Entity Cache Metrics (pkg/pokedex):
//   - pokeapi_entity_cache_hits_total{key="id"|"name"} (Counter): Entity cache hits by key type
//   - pokeapi_entity_cache_misses_total (Counter): Entity cache misses
//   - pokeapi_entity_cache_entries (Gauge): Entities held in the process-lifetime cache
//
// Bulk Fetch Metrics (pkg/bulk):
//   - pokeapi_bulk_progress_fraction (Gauge): Completion fraction of the in-flight bulk run
//   - pokeapi_bulk_items_total{outcome="fetched"|"skipped"} (Counter): Bulk items by outcome
//
// Example Prometheus Queries:
//
//   # Response Cache Hit Rate
//   sum(rate(pokeapi_cache_hits_total[5m])) /
//   (sum(rate(pokeapi_cache_hits_total[5m])) + sum(rate(pokeapi_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(pokeapi_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(pokeapi_request_duration_seconds_bucket[5m]))
//
//   # Bulk Fetch Completion
//   pokeapi_bulk_progress_fraction
