// Package config defines service configuration and its loading.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and EMPIRIA_ env vars on top of New.
// - Load failures wrap ErrLoadConfig or ErrInvalidConfig.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// Env is reported by /health, e.g. "development" or "production".
	Env string `koanf:"env"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file holding the feeds. ":memory:" keeps them in
	// process memory.
	DBPath string `koanf:"db_path"`

	// FeedTTLSeconds is how long a loaded feed is served before a re-read.
	// Zero reads the store on every request.
	FeedTTLSeconds int `koanf:"feed_ttl_seconds"`

	// OutcomeQueueSize bounds the in-memory outcome queue.
	OutcomeQueueSize int `koanf:"outcome_queue_size"`

	// OutcomeWorkerCount sets the number of outcome writers.
	OutcomeWorkerCount int `koanf:"outcome_worker_count"`

	// DedupeSize caps the remembered outcome feedback ids.
	DedupeSize int `koanf:"dedupe_size"`

	// AdjusterIntervalSeconds sets the salary check period. Zero disables it.
	AdjusterIntervalSeconds int `koanf:"adjuster_interval_seconds"`

	// SalaryAlertThreshold is the placed-salary mean below which tuning is
	// recommended.
	SalaryAlertThreshold int `koanf:"salary_alert_threshold"`

	// MentorQueueLimit caps GET /mentor_queue. Zero means unlimited.
	MentorQueueLimit int `koanf:"mentor_queue_limit"`

	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS.
	CORSOrigin string `koanf:"cors_origin"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Env:                     "development",
		LogLevel:                "info",
		Addr:                    ":8000",
		DBPath:                  "empiria.db",
		FeedTTLSeconds:          60,
		OutcomeQueueSize:        1024,
		OutcomeWorkerCount:      2,
		DedupeSize:              50_000,
		AdjusterIntervalSeconds: 300,
		SalaryAlertThreshold:    500_000,
		MentorQueueLimit:        0,
		CORSOrigin:              "*",
	}
}

// FeedTTL returns FeedTTLSeconds as a duration.
func (c *Config) FeedTTL() time.Duration {
	return time.Duration(c.FeedTTLSeconds) * time.Second
}

// AdjusterInterval returns AdjusterIntervalSeconds as a duration.
func (c *Config) AdjusterInterval() time.Duration {
	return time.Duration(c.AdjusterIntervalSeconds) * time.Second
}
