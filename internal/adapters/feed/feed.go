// Package feed serves the student, outcome and skill feeds from a TTL cache
// in front of storage. Concurrent misses for the same feed share one load.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/pkg/logger"
	"github.com/okian/empiria/pkg/metrics"
)

// Feed names, used as singleflight keys and metric labels.
const (
	Students = "students"
	Outcomes = "outcomes"
	Skills   = "skills"
)

const defaultTTL = 60 * time.Second

// Source loads a feed from storage.
type Source interface {
	ListStudents(ctx context.Context) ([]model.StudentRecord, error)
	ListOutcomes(ctx context.Context) ([]model.OutcomeRecord, error)
	ListSkills(ctx context.Context) ([]model.SkillDemand, error)
}

// Snapshot is a parallel read of all three feeds. Each feed is cached on its
// own, so a refresh of one may land between the reads of the others. Callers
// must not modify the slices; they are shared with the cache.
type Snapshot struct {
	Students []model.StudentRecord
	Outcomes []model.OutcomeRecord
	Skills   []model.SkillDemand
}

type entry[T any] struct {
	mu       sync.RWMutex
	rows     []T
	loadedAt time.Time
	valid    bool
	gen      uint64
}

func (e *entry[T]) fresh(now time.Time, ttl time.Duration) ([]T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.valid || ttl <= 0 || now.Sub(e.loadedAt) >= ttl {
		return nil, false
	}
	return e.rows, true
}

func (e *entry[T]) generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gen
}

// store keeps rows unless the entry was invalidated after the load started.
func (e *entry[T]) store(rows []T, at time.Time, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return
	}
	e.rows, e.loadedAt, e.valid = rows, at, true
}

func (e *entry[T]) invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.valid = false
	e.gen++
}

func (e *entry[T]) size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.valid {
		return 0
	}
	return len(e.rows)
}

// Cache is a TTL cache over a Source.
type Cache struct {
	src    Source
	ttl    time.Duration
	now    func() time.Time
	logger logger.Logger
	group  singleflight.Group

	students entry[model.StudentRecord]
	outcomes entry[model.OutcomeRecord]
	skills   entry[model.SkillDemand]
}

// New creates a cache over src. A non-positive TTL disables caching while
// still collapsing concurrent loads.
func New(src Source, opts ...Option) *Cache {
	c := &Cache{src: src, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("feed")
	}
	return c
}

// Students returns the student feed.
func (c *Cache) Students(ctx context.Context) ([]model.StudentRecord, error) {
	return load(ctx, c, Students, &c.students, c.src.ListStudents)
}

// Outcomes returns the outcome feed.
func (c *Cache) Outcomes(ctx context.Context) ([]model.OutcomeRecord, error) {
	return load(ctx, c, Outcomes, &c.outcomes, c.src.ListOutcomes)
}

// Skills returns the skill-demand catalog.
func (c *Cache) Skills(ctx context.Context) ([]model.SkillDemand, error) {
	return load(ctx, c, Skills, &c.skills, c.src.ListSkills)
}

// Snapshot loads the three feeds in parallel.
func (c *Cache) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.Students(gctx)
		snap.Students = rows
		return err
	})
	g.Go(func() error {
		rows, err := c.Outcomes(gctx)
		snap.Outcomes = rows
		return err
	})
	g.Go(func() error {
		rows, err := c.Skills(gctx)
		snap.Skills = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Invalidate drops the named feeds, or all feeds when none are named. A load
// already in flight is not stored.
func (c *Cache) Invalidate(feeds ...string) {
	if len(feeds) == 0 {
		feeds = []string{Students, Outcomes, Skills}
	}
	for _, name := range feeds {
		switch name {
		case Students:
			c.students.invalidate()
		case Outcomes:
			c.outcomes.invalidate()
		case Skills:
			c.skills.invalidate()
		default:
			continue
		}
		c.group.Forget(name)
	}
}

// CachedStudents is the size of the cached student feed, 0 when cold.
func (c *Cache) CachedStudents() int {
	return c.students.size()
}

func load[T any](ctx context.Context, c *Cache, name string, e *entry[T], fetch func(context.Context) ([]T, error)) ([]T, error) {
	if rows, ok := e.fresh(c.now(), c.ttl); ok {
		metrics.RecordFeedCacheHit(name)
		return rows, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		if rows, ok := e.fresh(c.now(), c.ttl); ok {
			return rows, nil
		}
		gen := e.generation()
		start := time.Now()
		// The load outlives a caller that gives up; others may be waiting on it.
		rows, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			metrics.RecordFeedError(name)
			c.logger.Error(ctx, "feed load failed", logger.String("feed", name), logger.Error(err))
			return nil, err
		}
		e.store(rows, c.now(), gen)
		metrics.RecordFeedRefresh(name, len(rows))
		c.logger.Debug(ctx, "feed loaded",
			logger.String("feed", name),
			logger.Int("rows", len(rows)),
			logger.Duration("took", time.Since(start)),
		)
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s feed: %w", name, err)
	}
	rows, ok := v.([]T)
	if !ok {
		return nil, fmt.Errorf("load %s feed: unexpected type %T", name, v)
	}
	return rows, nil
}
