// Package client provides the core PokeAPI HTTP client with rate limiting,
// response caching, and error classification.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nordgaard/pokefetch/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_requests_total",
		Help: "Total PokeAPI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeapi_request_duration_seconds",
		Help:    "PokeAPI request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_errors_total",
		Help: "Total PokeAPI errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the public PokeAPI v2 base URL.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Limiter gates outbound requests. One limiter instance is shared by every
// outbound call path in the process; inject the same instance everywhere.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API (default: DefaultBaseURL).
	BaseURL string

	// UserAgent identifies this client to the API (required).
	UserAgent string

	// Limiter is the shared outbound rate limiter (required).
	Limiter Limiter

	// Cache is the optional response-level cache.
	Cache *cache.Manager

	// RequestTimeout bounds a single HTTP exchange.
	RequestTimeout time.Duration

	// OverallTimeout bounds the whole operation including retries.
	OverallTimeout time.Duration

	// Retry configuration for transient failures.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(limiter Limiter, userAgent string) Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      userAgent,
		Limiter:        limiter,
		RequestTimeout: 30 * time.Second,
		OverallTimeout: 60 * time.Second,
		Retry:          DefaultRetryConfig(),
	}
}

// Client is the PokeAPI HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	cache      *cache.Manager
	limiter    Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = 60 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", ErrInvalidEndpoint, cfg.BaseURL)
	}

	logger := log.With().Str("component", "pokeapi-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: base,
		cache:   cfg.Cache,
		limiter: cfg.Limiter,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Get performs a rate-limited GET against the given endpoint path (for
// example "/pokemon/25" or "/pokemon?limit=1000") and returns the response
// body. Responses are served from and populated into the response cache.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	requestURL, err := c.resolveEndpoint(endpoint)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassInvalidEndpoint)).Inc()
		return nil, err
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Cache lookup short-circuits the network path. Only successful
	// responses ever enter the cache, so a hit can never mask an error
	// outcome for the same URL.
	if c.cache != nil {
		key := cache.Key{URL: requestURL}
		if entry, cacheErr := c.cache.Get(ctx, key); cacheErr == nil {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Bool("cache_hit", true).
				Msg("Serving response from cache")
			requestsTotal.WithLabelValues(endpoint, "cache").Inc()
			return entry.Data, nil
		} else if cacheErr != cache.ErrCacheMiss {
			c.logger.Warn().Err(cacheErr).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.OverallTimeout)
	defer cancel()

	var body []byte
	var lastErr error

	retryErr := retryWithBackoff(ctx, c.logger, c.config.Retry, func() error {
		body, lastErr = c.doAttempt(ctx, endpoint, requestURL)
		return lastErr
	}, Classify)

	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

// GetJSON performs Get and decodes the JSON body into v. Wire field names
// are snake_case; v's struct tags carry the mapping. Decode failures are
// reported as ErrDecoding, distinct from transport failures.
func (c *Client) GetJSON(ctx context.Context, endpoint string, v any) error {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecoding)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Response decode failed")
		return &APIError{
			Class:    ErrorClassDecoding,
			Endpoint: endpoint,
			Err:      fmt.Errorf("%w: %v", ErrDecoding, err),
		}
	}

	return nil
}

// doAttempt executes a single rate-limited request attempt.
func (c *Client) doAttempt(ctx context.Context, endpoint, requestURL string) ([]byte, error) {
	// The limiter timestamp advances on every attempted send, so retries
	// stay inside the global budget too.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &APIError{
			Class:    ErrorClassInvalidEndpoint,
			Endpoint: endpoint,
			Err:      fmt.Errorf("%w: %v", ErrInvalidEndpoint, err),
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{
			Class:    ErrorClassNetwork,
			Endpoint: endpoint,
			Err:      fmt.Errorf("%w: %v", ErrNetwork, err),
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		class, sentinel := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("API request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Endpoint:   endpoint,
			Err:        sentinel,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			Class:    ErrorClassNetwork,
			Endpoint: endpoint,
			Err:      fmt.Errorf("%w: read response body: %v", ErrNetwork, err),
		}
	}

	if c.cache != nil {
		entry := cache.NewEntry(body, resp.StatusCode, resp.Header)
		if cacheErr := c.cache.Set(ctx, cache.Key{URL: requestURL}, entry); cacheErr != nil {
			c.logger.Warn().Err(cacheErr).Str("endpoint", endpoint).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return body, nil
}

// resolveEndpoint joins the endpoint path with the base URL and validates
// the result. Fails fast with ErrInvalidEndpoint before any network work.
func (c *Client) resolveEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return "", fmt.Errorf("%w: empty endpoint", ErrInvalidEndpoint)
	}

	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, endpoint, err)
	}
	if ref.IsAbs() {
		return "", fmt.Errorf("%w: %q must be a relative path", ErrInvalidEndpoint, endpoint)
	}

	base := *c.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + ref.Path
	base.RawQuery = ref.RawQuery

	resolved := base.String()
	if _, err := url.ParseRequestURI(resolved); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, endpoint, err)
	}

	return resolved, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}
