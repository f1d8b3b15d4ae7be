// Package bulk drives large multi-request imports against the paginated
// listing endpoint, with progress reporting, per-item failure recovery,
// and graceful degradation to a built-in fallback set.
package bulk

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nordgaard/pokefetch/pkg/pokedex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for bulk fetch runs.
var (
	bulkProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokeapi_bulk_progress_fraction",
		Help: "Completion fraction of the in-flight bulk fetch run",
	})

	bulkItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_bulk_items_total",
		Help: "Bulk fetch items by outcome",
	}, []string{"outcome"}) // "fetched", "skipped"
)

// State is the orchestrator's run state.
type State string

const (
	// StateIdle means no run has started (or Reset was called).
	StateIdle State = "idle"

	// StateListing means the initial listing call is in flight.
	StateListing State = "listing"

	// StateFetching means per-item detail fetches are in progress.
	StateFetching State = "fetching"

	// StateDone means a run finished and results are published.
	StateDone State = "done"

	// StateFailed means the initial listing call failed and the fallback
	// set is published.
	StateFailed State = "failed"
)

// Default pacing. The constants are empirical anti-throttling heuristics
// layered on top of the rate limiter; tune through Config.
const (
	DefaultTargetLimit   = 1000
	DefaultPauseEvery    = 10
	DefaultPauseDuration = 25 * time.Millisecond
	DefaultMaxMoves      = 50
)

// Config holds orchestrator configuration.
type Config struct {
	// Fetcher is the API client (required).
	Fetcher pokedex.Fetcher

	// TargetLimit caps the listing size of a run.
	TargetLimit int

	// PauseEvery inserts a smoothing pause after every Nth item.
	PauseEvery int

	// PauseDuration is the length of the smoothing pause.
	PauseDuration time.Duration

	// MaxMoves caps the related-move references resolved per entity.
	MaxMoves int
}

// Orchestrator runs at most one bulk import per process lifetime (unless
// explicitly Reset) and answers related-move queries from its dedup caches.
type Orchestrator struct {
	fetcher pokedex.Fetcher
	logger  zerolog.Logger

	targetLimit   int
	pauseEvery    int
	pauseDuration time.Duration
	maxMoves      int

	mu        sync.Mutex
	state     State
	fraction  float64
	message   string
	results   []*pokedex.Pokemon
	runErr    error
	discarded []string
	byID      map[int]*pokedex.Pokemon
	byName    map[string]*pokedex.Pokemon
	moveCache map[string]*moveDetail
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.TargetLimit <= 0 {
		cfg.TargetLimit = DefaultTargetLimit
	}
	if cfg.PauseEvery <= 0 {
		cfg.PauseEvery = DefaultPauseEvery
	}
	if cfg.PauseDuration <= 0 {
		cfg.PauseDuration = DefaultPauseDuration
	}
	if cfg.MaxMoves <= 0 {
		cfg.MaxMoves = DefaultMaxMoves
	}

	return &Orchestrator{
		fetcher:       cfg.Fetcher,
		logger:        log.With().Str("component", "bulk-fetch").Logger(),
		targetLimit:   cfg.TargetLimit,
		pauseEvery:    cfg.PauseEvery,
		pauseDuration: cfg.PauseDuration,
		maxMoves:      cfg.MaxMoves,
		state:         StateIdle,
		byID:          make(map[int]*pokedex.Pokemon),
		byName:        make(map[string]*pokedex.Pokemon),
		moveCache:     make(map[string]*moveDetail),
	}, nil
}

// Run executes the bulk import: one listing call, then sequential detail
// fetches in listing order. It is a no-op when a run is already in flight
// or a prior run's results are non-empty. Per-item failures are skipped;
// only a listing failure fails the run, publishing the fallback set.
// Cancellation halts further items and publishes the partial result.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.state == StateListing || o.state == StateFetching || len(o.results) > 0 {
		o.mu.Unlock()
		o.logger.Debug().Str("state", string(o.state)).Msg("Bulk fetch already ran, skipping")
		return nil
	}
	o.state = StateListing
	o.fraction = 0
	o.message = "Loading pokemon list"
	o.runErr = nil
	o.discarded = nil
	o.mu.Unlock()
	bulkProgress.Set(0)

	o.logger.Info().Int("limit", o.targetLimit).Msg("Bulk fetch starting")

	var page pokedex.Page
	endpoint := fmt.Sprintf("/pokemon?limit=%d&offset=0", o.targetLimit)
	if err := o.fetcher.GetJSON(ctx, endpoint, &page); err != nil {
		o.failWithFallback(err)
		return err
	}

	total := len(page.Results)
	if total == 0 {
		o.failWithFallback(fmt.Errorf("listing returned no items"))
		return fmt.Errorf("listing returned no items")
	}

	o.setPhase(StateFetching, 0, fmt.Sprintf("Fetching 0/%d", total))

	completed := 0
	for i, item := range page.Results {
		select {
		case <-ctx.Done():
			o.finish(completed, total, true)
			return ctx.Err()
		default:
		}

		var p pokedex.Pokemon
		if err := o.fetcher.GetJSON(ctx, "/pokemon/"+item.Name, &p); err != nil {
			bulkItemsTotal.WithLabelValues("skipped").Inc()
			o.logger.Warn().
				Err(err).
				Str("pokemon", item.Name).
				Msg("Skipping failed bulk item")
			o.mu.Lock()
			o.discarded = append(o.discarded, item.Name)
			o.mu.Unlock()
		} else {
			bulkItemsTotal.WithLabelValues("fetched").Inc()
			o.mu.Lock()
			if _, seen := o.byID[p.ID]; !seen {
				o.results = append(o.results, &p)
			}
			o.byID[p.ID] = &p
			o.byName[pokedex.NormalizeName(p.Name)] = &p
			o.mu.Unlock()
		}

		completed++
		o.setProgress(float64(completed)/float64(total), fmt.Sprintf("Fetching %d/%d: %s", completed, total, item.Name))

		// Smoothing pause every Nth item, independent of the limiter.
		if (i+1)%o.pauseEvery == 0 {
			select {
			case <-ctx.Done():
				o.finish(completed, total, true)
				return ctx.Err()
			case <-time.After(o.pauseDuration):
			}
		}
	}

	o.finish(completed, total, false)
	return nil
}

// finish publishes the accumulated results sorted by ascending id.
func (o *Orchestrator) finish(completed, total int, cancelled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sort.Slice(o.results, func(i, j int) bool {
		return o.results[i].ID < o.results[j].ID
	})

	o.state = StateDone
	if cancelled {
		// Partial result: valid, non-authoritative data.
		o.message = fmt.Sprintf("Cancelled after %d/%d", completed, total)
		o.logger.Warn().
			Int("completed", completed).
			Int("total", total).
			Msg("Bulk fetch cancelled, partial results published")
		return
	}

	o.fraction = 1
	bulkProgress.Set(1)
	o.message = fmt.Sprintf("Loaded %d pokemon", len(o.results))
	o.logger.Info().
		Int("fetched", len(o.results)).
		Msg("Bulk fetch complete")
}

// failWithFallback publishes the static fallback set after a fatal
// listing failure.
func (o *Orchestrator) failWithFallback(err error) {
	fallback := FallbackPokemon()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateFailed
	o.runErr = err
	o.results = fallback
	for _, p := range fallback {
		o.byID[p.ID] = p
		o.byName[pokedex.NormalizeName(p.Name)] = p
	}
	o.fraction = 0
	o.message = "Using built-in fallback data"

	o.logger.Error().
		Err(err).
		Int("fallback_items", len(fallback)).
		Msg("Bulk listing failed, using static fallback set")
}

func (o *Orchestrator) setPhase(state State, fraction float64, message string) {
	o.mu.Lock()
	o.state = state
	o.fraction = fraction
	o.message = message
	o.mu.Unlock()
	bulkProgress.Set(fraction)
}

func (o *Orchestrator) setProgress(fraction float64, message string) {
	o.mu.Lock()
	// Monotonic within a run.
	if fraction > o.fraction {
		o.fraction = fraction
	}
	o.message = message
	o.mu.Unlock()
	bulkProgress.Set(fraction)
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress returns the current completion fraction, status message, and
// whether a run is in flight.
func (o *Orchestrator) Progress() (fraction float64, message string, loading bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fraction, o.message, o.state == StateListing || o.state == StateFetching
}

// Results returns the published result set, sorted by ascending id.
func (o *Orchestrator) Results() []*pokedex.Pokemon {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]*pokedex.Pokemon, len(o.results))
	copy(out, o.results)
	return out
}

// Discarded returns the names of items skipped during the last run.
func (o *Orchestrator) Discarded() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]string, len(o.discarded))
	copy(out, o.discarded)
	return out
}

// Err returns the fatal listing error of a failed run, or nil.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runErr
}

// Reset clears all run state and dedup caches, allowing a fresh Run.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateIdle
	o.fraction = 0
	o.message = ""
	o.results = nil
	o.runErr = nil
	o.discarded = nil
	o.byID = make(map[int]*pokedex.Pokemon)
	o.byName = make(map[string]*pokedex.Pokemon)
	o.moveCache = make(map[string]*moveDetail)
	bulkProgress.Set(0)
}

// cachedParent resolves a parent entity from the bulk dedup caches.
func (o *Orchestrator) cachedParent(id int) *pokedex.Pokemon {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.byID[id]
}
