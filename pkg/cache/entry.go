package cache

import (
	"net/http"
	"time"
)

// DefaultTTL is the fallback freshness window when a response carries no
// usable Expires header. PokeAPI data is near-static, so a short default
// errs on the side of freshness without hammering the API.
const DefaultTTL = 5 * time.Minute

// Entry represents a cached API response.
type Entry struct {
	// Data is the raw response body.
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// Header holds the response headers.
	Header http.Header `json:"header"`

	// CachedAt is when the response was stored.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`
}

// IsExpired returns true if the entry has passed its freshness window.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Size returns the approximate in-memory footprint of the entry in bytes.
// Header overhead is ignored; the body dominates for API responses.
func (e *Entry) Size() int {
	return len(e.Data)
}

// NewEntry builds an Entry from a response body and headers, deriving the
// freshness window from the Expires header when present.
func NewEntry(body []byte, statusCode int, header http.Header) *Entry {
	now := time.Now()
	return &Entry{
		Data:       body,
		StatusCode: statusCode,
		Header:     header.Clone(),
		CachedAt:   now,
		Expires:    parseExpires(header, now),
	}
}

// parseExpires parses the Expires header, falling back to DefaultTTL when
// the header is absent, unparsable, or already in the past.
func parseExpires(header http.Header, now time.Time) time.Time {
	expiresStr := header.Get("Expires")
	if expiresStr == "" {
		return now.Add(DefaultTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return now.Add(DefaultTTL)
	}

	if expires.Before(now) {
		return now.Add(DefaultTTL)
	}

	return expires
}
