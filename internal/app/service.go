// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/empiria/internal/adapters/feed"
	eventqueue "github.com/okian/empiria/internal/adapters/mq/queue"
	workerpool "github.com/okian/empiria/internal/adapters/mq/worker"
	"github.com/okian/empiria/internal/adapters/repository"
	"github.com/okian/empiria/internal/domain/dedupe"
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/pipeline"
	"github.com/okian/empiria/pkg/logger"
	"github.com/okian/empiria/pkg/metrics"
)

// Service owns the feed store, the feed cache and the outcome intake.
type Service struct {
	mu sync.RWMutex

	// Core components
	db      *sql.DB
	store   repository.Store
	feeds   *feed.Cache
	deduper dedupe.Deduper
	queue   eventqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	dbPath           string
	feedTTL          time.Duration
	workerCount      int
	queueSize        int
	dedupeSize       int
	adjusterInterval time.Duration
	salaryThreshold  float64

	// State
	started      bool
	stopCh       chan struct{}
	adjusterDone chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:           repository.MemoryPath,
		feedTTL:          time.Minute,
		workerCount:      2,
		queueSize:        1024,
		dedupeSize:       dedupe.DefaultMaxSize,
		adjusterInterval: 5 * time.Minute,
		salaryThreshold:  500_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and starts the outcome workers and the salary
// adjuster. Workers outlive ctx cancellation so Stop can drain the queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting intelligence service...")

	if s.store == nil {
		db, err := repository.OpenDB(s.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.db = db
		s.store = repository.NewSQLiteStore(db, repository.WithLogger(s.logger.Named("store")))
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
	}

	s.feeds = feed.New(s.store,
		feed.WithTTL(s.feedTTL),
		feed.WithLogger(s.logger.Named("feed")),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	feeds, deduper := s.feeds, s.deduper
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store,
		workerpool.WithOnAppended(func(context.Context, eventqueue.Event) {
			feeds.Invalidate(feed.Outcomes)
		}),
		// Forget a lost outcome's id so a resend is stored.
		workerpool.WithOnFailed(func(ctx context.Context, e eventqueue.Event, _ error) {
			deduper.Unrecord(ctx, e.FeedbackID)
		}),
	)
	s.pool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	s.adjusterDone = make(chan struct{})
	if s.adjusterInterval > 0 {
		go s.runAdjuster(context.WithoutCancel(ctx), s.adjusterInterval, s.feeds)
	} else {
		close(s.adjusterDone)
	}

	s.started = true
	s.logger.Info(ctx, "intelligence service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("feedTTL", s.feedTTL),
	)
	return nil
}

// Stop closes intake, drains queued outcomes and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping intelligence service...")

	close(s.stopCh)
	<-s.adjusterDone

	var err error
	if s.pool != nil {
		if perr := s.pool.Shutdown(ctx); perr != nil {
			err = perr
		}
	}
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
		s.db = nil
		s.store = nil
	}

	s.started = false
	s.logger.Info(ctx, "intelligence service stopped")
	return err
}

// Store returns the feed store. It is nil before Start.
func (s *Service) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Students returns the cached student feed.
func (s *Service) Students(ctx context.Context) ([]model.StudentRecord, error) {
	return s.feedCache().Students(ctx)
}

// Outcomes returns the cached outcome feed.
func (s *Service) Outcomes(ctx context.Context) ([]model.OutcomeRecord, error) {
	return s.feedCache().Outcomes(ctx)
}

// Skills returns the cached skills catalog.
func (s *Service) Skills(ctx context.Context) ([]model.SkillDemand, error) {
	return s.feedCache().Skills(ctx)
}

// Invalidate drops cached feeds, all of them when none are named. Call it
// after writing to the store outside the outcome intake.
func (s *Service) Invalidate(feeds ...string) {
	if c := s.feedCache(); c != nil {
		c.Invalidate(feeds...)
	}
}

// CachedStudents is the size of the cached student feed.
func (s *Service) CachedStudents() int {
	if c := s.feedCache(); c != nil {
		return c.CachedStudents()
	}
	return 0
}

// SeenAndRecord atomically checks if a feedback id was seen and records it if not.
// Returns true if the id was already seen, false if it was newly recorded.
// Before Start every id reports as seen, so nothing is accepted.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if s.deduper == nil {
		return true
	}
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a feedback id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if s.deduper == nil {
		return
	}
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits an outcome for asynchronous append.
func (s *Service) Enqueue(ctx context.Context, e model.OutcomeEvent) error {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return eventqueue.ErrClosed
	}

	s.logger.Debug(ctx, "enqueueing outcome",
		logger.String("feedback_id", e.FeedbackID),
		logger.String("id", e.Outcome.ID),
	)
	if err := q.Enqueue(ctx, e); err != nil {
		s.logger.Warn(ctx, "outcome rejected",
			logger.String("feedback_id", e.FeedbackID),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// CheckSalaries runs one self-learning pass over the outcome feed. ok is
// false when no placed outcome exists or the feed cannot be read.
func (s *Service) CheckSalaries(ctx context.Context) (pipeline.SalaryStats, bool) {
	return s.checkSalaries(ctx, s.feedCache())
}

// checkSalaries takes the cache as an argument since the adjuster runs while
// Stop holds the lock.
func (s *Service) checkSalaries(ctx context.Context, feeds *feed.Cache) (stats pipeline.SalaryStats, ok bool) {
	outcomes, err := feeds.Outcomes(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("adjuster", "feed")
		s.logger.Warn(ctx, "salary check skipped", logger.Error(err))
		return pipeline.SalaryStats{}, false
	}
	stats, ok = pipeline.SalaryReport(outcomes, s.salaryThreshold)
	if !ok {
		return stats, false
	}
	metrics.RecordAdjusterRun(stats.Average)
	if stats.Low {
		s.logger.Warn(ctx, "salaries low - tuning recommended",
			logger.Float64("average", stats.Average),
			logger.Int("placed", stats.Placed),
			logger.Float64("threshold", s.salaryThreshold),
		)
	}
	return stats, true
}

func (s *Service) runAdjuster(ctx context.Context, interval time.Duration, feeds *feed.Cache) {
	defer close(s.adjusterDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkSalaries(ctx, feeds)
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
		"feedTTL":    s.feedTTL.String(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(goroutines)
	stats["memoryBytes"] = mem.Alloc
	stats["goroutines"] = goroutines

	if !s.started {
		return stats
	}

	stats["workerCount"] = s.pool.Size()
	stats["queueLength"] = s.queue.Len(ctx)
	stats["seenFeedbackIds"] = s.deduper.Size()
	stats["cachedStudents"] = s.feeds.CachedStudents()

	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "store counts unavailable", logger.Error(err))
		stats["storeError"] = err.Error()
		return stats
	}
	stats["students"] = counts.Students
	stats["outcomes"] = counts.Outcomes
	stats["skills"] = counts.Skills
	return stats
}

func (s *Service) feedCache() *feed.Cache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feeds
}
