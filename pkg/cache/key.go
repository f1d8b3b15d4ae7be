package cache

import "strings"

// keyPrefix namespaces all cache keys, which also makes Clear safe to run
// against a shared Redis instance.
const keyPrefix = "pokeapi:resp:"

// Key identifies a cached response. Responses are cached per request URL,
// query string included, so paginated listings cache independently per page.
type Key struct {
	// URL is the full request URL.
	URL string
}

// String generates the deterministic storage key.
// Format: pokeapi:resp:<url without trailing slash>
func (k Key) String() string {
	return keyPrefix + strings.TrimSuffix(k.URL, "/")
}
