package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nordgaard/pokefetch/pkg/cache"
	"github.com/nordgaard/pokefetch/pkg/client"
	"github.com/nordgaard/pokefetch/pkg/ratelimit"
)

// config is the on-disk TOML configuration of the tool. Every field has a
// working default so a missing file is not an error.
type config struct {
	BaseURL          string `toml:"base_url"`
	UserAgent        string `toml:"user_agent"`
	MinIntervalMs    int    `toml:"min_interval_ms"`
	RedisAddr        string `toml:"redis_addr"`
	DBPath           string `toml:"db_path"`
	CacheBudgetBytes int64  `toml:"cache_budget_bytes"`
}

func defaultConfig() config {
	return config{
		BaseURL:          client.DefaultBaseURL,
		UserAgent:        "pokefetch/0.1.0 (github.com/nordgaard/pokefetch)",
		MinIntervalMs:    int(ratelimit.DefaultInterval / time.Millisecond),
		CacheBudgetBytes: cache.DefaultMemoryBudget,
	}
}

// loadConfig reads the TOML file at path over the defaults. An empty path
// or a missing file yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) minInterval() time.Duration {
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}
