package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nordgaard/pokefetch/internal/storage"
	"github.com/nordgaard/pokefetch/pkg/cache"
	"github.com/nordgaard/pokefetch/pkg/client"
	"github.com/nordgaard/pokefetch/pkg/logging"
	"github.com/nordgaard/pokefetch/pkg/metrics"
	"github.com/nordgaard/pokefetch/pkg/pokedex"
	"github.com/nordgaard/pokefetch/pkg/ratelimit"
)

// app bundles the wired components shared by all subcommands.
type app struct {
	cfg    config
	logger zerolog.Logger
	client *client.Client
	repo   *pokedex.Repository
	store  *storage.Store
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		verbose     bool
		pretty      bool
		metricsAddr string
	)

	a := &app{}

	root := &cobra.Command{
		Use:          "pokefetch",
		Short:        "Fetch, cache, and browse PokeAPI data from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if verbose {
				level = logging.LevelDebug
			}
			logging.Setup(logging.Config{Level: level, Pretty: pretty})

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			if err := a.wire(cmd.Context(), cfg); err != nil {
				return err
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, a.logger)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "pokefetch.toml", "path to TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable log output")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for the Prometheus /metrics endpoint")

	root.AddCommand(newFetchCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newMovesCmd(a))

	return root
}

// wire builds the limiter, cache, client, and repository from the loaded
// configuration.
func (a *app) wire(ctx context.Context, cfg config) error {
	a.cfg = cfg
	a.logger = logging.NewLogger("pokefetch")

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			a.logger.Warn().Err(err).Str("addr", cfg.RedisAddr).
				Msg("Redis unreachable, continuing with memory cache only")
			redisClient = nil
		}
	}

	respCache := cache.NewManager(cache.ManagerConfig{
		MemoryBudget: cfg.CacheBudgetBytes,
		Redis:        redisClient,
		Logger:       logging.NewLogger("cache"),
	})

	limiter := ratelimit.New(cfg.minInterval(), logging.NewLogger("ratelimit"))

	apiClient, err := client.New(client.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Limiter:   limiter,
		Cache:     respCache,
	})
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}
	a.client = apiClient

	var store pokedex.Store
	if cfg.DBPath != "" {
		s, err := storage.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
		}
		a.store = s
		store = s
	}

	repo, err := pokedex.NewRepository(pokedex.RepositoryConfig{
		Fetcher:       apiClient,
		ResponseCache: respCache,
		Store:         store,
	})
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	a.repo = repo

	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	logger.Info().Str("addr", addr).Msg("Serving Prometheus metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}
