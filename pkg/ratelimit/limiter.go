// Package ratelimit enforces a global minimum interval between outbound
// API requests. PokeAPI has no documented hard limit; the interval keeps
// the client a polite consumer and is shared by every outbound call path.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limiter behavior.
var (
	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokeapi_rate_limit_waits_total",
		Help: "Total number of rate limiter waits that actually slept",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokeapi_rate_limit_wait_seconds",
		Help:    "Time spent waiting for rate limiter permission",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})

	rateLimitInterval = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokeapi_rate_limit_interval_seconds",
		Help: "Configured minimum interval between requests",
	})
)

// DefaultInterval is the default minimum spacing between requests.
const DefaultInterval = 100 * time.Millisecond

// IntervalLimiter blocks callers until at least the configured interval has
// elapsed since the previous granted request. Safe for concurrent use from
// multiple goroutines; grants are serialized internally.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// New creates a limiter that spaces grants at least minInterval apart.
// A non-positive interval falls back to DefaultInterval.
func New(minInterval time.Duration, logger zerolog.Logger) *IntervalLimiter {
	if minInterval <= 0 {
		minInterval = DefaultInterval
	}
	rateLimitInterval.Set(minInterval.Seconds())
	return &IntervalLimiter{
		interval: minInterval,
		// Burst 1: a single token refilled once per interval, so two grants
		// can never be closer together than the interval.
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		logger:  logger,
	}
}

// Wait blocks until the limiter grants permission or the context is
// cancelled. It never fails for any other reason.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	start := time.Now()

	if err := l.limiter.Wait(ctx); err != nil {
		l.logger.Debug().Err(err).Msg("Rate limiter wait cancelled")
		return err
	}

	waited := time.Since(start)
	rateLimitWaitSeconds.Observe(waited.Seconds())
	if waited > time.Millisecond {
		rateLimitWaitsTotal.Inc()
		l.logger.Debug().
			Dur("waited", waited).
			Msg("Rate limiter delayed request")
	}

	return nil
}

// Interval returns the currently configured minimum interval.
func (l *IntervalLimiter) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

// SetInterval reconfigures the minimum spacing at runtime. The pacing
// constants are empirical, so callers may tune them without rebuilding
// the limiter.
func (l *IntervalLimiter) SetInterval(minInterval time.Duration) {
	if minInterval <= 0 {
		minInterval = DefaultInterval
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = minInterval
	l.limiter.SetLimit(rate.Every(minInterval))
	rateLimitInterval.Set(minInterval.Seconds())

	l.logger.Info().
		Dur("interval", minInterval).
		Msg("Rate limiter interval updated")
}
