package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names read by Load.
const (
	EnvPrefix = "EMPIRIA_"
	EnvFile   = "EMPIRIA_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EMPIRIA_CONFIG is set
//  3. env (prefix EMPIRIA_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// EMPIRIA_FEED_TTL_SECONDS -> feed_ttl_seconds. Underscores are kept so
	// keys stay flat and match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot run the service.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.FeedTTLSeconds < 0:
		return fmt.Errorf("%w: feed_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.OutcomeQueueSize < 1:
		return fmt.Errorf("%w: outcome_queue_size must be positive", ErrInvalidConfig)
	case c.OutcomeWorkerCount < 1:
		return fmt.Errorf("%w: outcome_worker_count must be positive", ErrInvalidConfig)
	case c.AdjusterIntervalSeconds < 0:
		return fmt.Errorf("%w: adjuster_interval_seconds must not be negative", ErrInvalidConfig)
	case c.MentorQueueLimit < 0:
		return fmt.Errorf("%w: mentor_queue_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
