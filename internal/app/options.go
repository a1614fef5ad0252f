package service

import (
	"time"

	"github.com/okian/empiria/internal/adapters/repository"
	"github.com/okian/empiria/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite file. repository.MemoryPath keeps the feeds in memory.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithStore uses store instead of opening a database. Stop leaves it open.
func WithStore(store repository.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithFeedTTL sets how long loaded feeds are served from cache.
func WithFeedTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.feedTTL = ttl
		}
	}
}

// WithWorkerCount sets the number of outcome writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the outcome queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the feedback id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithAdjusterInterval sets the salary check period. Zero disables the check.
func WithAdjusterInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.adjusterInterval = d
		}
	}
}

// WithSalaryThreshold sets the placed-salary mean that triggers a tuning warning.
func WithSalaryThreshold(threshold float64) Option {
	return func(s *Service) { s.salaryThreshold = threshold }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
