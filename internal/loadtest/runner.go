package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/empiria/pkg/logger"
)

// Verification errors.
var (
	ErrUnhealthy  = errors.New("service is not healthy")
	ErrNotSettled = errors.New("accepted outcomes did not reach the store")
	ErrViews      = errors.New("views disagree with the store")
)

const pollInterval = 50 * time.Millisecond

// Run submits the generated outcomes and verifies the service absorbed them.
// Stats are returned even when verification fails.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	log := logger.Get().Named("loadtest")
	c := newClient(cfg.BaseURL, cfg.Timeout)
	var stats Stats

	log.Info(ctx, "starting outcome load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("outcomes", cfg.NumOutcomes),
		logger.Int("duplicatePct", cfg.DuplicatePct),
		logger.Int("workers", cfg.Workers),
	)

	// Step 1: Check service health
	var health map[string]any
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	// Step 2: Baseline
	before, err := storeCounts(ctx, c)
	if err != nil {
		return stats, err
	}
	stats.OutcomesBefore = before.Outcomes

	// Step 3: Submit concurrently
	stream := generate(cfg.NumOutcomes, cfg.DuplicatePct, cfg.Seed)
	start := time.Now()
	submit(ctx, c, cfg.Workers, stream, &stats)
	stats.Duration = time.Since(start)

	log.Info(ctx, "submission completed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("backpressure", stats.Backpressure),
		logger.Int("failed", stats.Failed),
		logger.Float64("perSecond", stats.Throughput()),
	)

	// Step 4: Wait for the workers to append everything accepted
	want := stats.OutcomesBefore + stats.Accepted
	deadline := time.Now().Add(cfg.SettleWait)
	for {
		after, err := storeCounts(ctx, c)
		if err != nil {
			return stats, err
		}
		stats.OutcomesAfter = after.Outcomes
		if after.Outcomes >= want {
			break
		}
		if time.Now().After(deadline) {
			return stats, fmt.Errorf("%w: have %d, want %d", ErrNotSettled, after.Outcomes, want)
		}
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	// Step 5: The views must still agree with the store
	if err := verifyViews(ctx, c); err != nil {
		return stats, err
	}

	log.Info(ctx, "load test passed",
		logger.Int("outcomesBefore", stats.OutcomesBefore),
		logger.Int("outcomesAfter", stats.OutcomesAfter),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

func submit(ctx context.Context, c *client, workers int, stream []Outcome, stats *Stats) {
	if workers < 1 {
		workers = 1
	}
	var accepted, duplicate, backpressure, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, o := range stream {
		g.Go(func() error {
			status, ack, err := c.postJSON(gctx, "/outcome_feedback", o)
			switch {
			case err != nil:
				failed.Add(1)
			case status == http.StatusAccepted:
				accepted.Add(1)
			case status == http.StatusOK && ack.Duplicate:
				duplicate.Add(1)
			case status == http.StatusTooManyRequests:
				backpressure.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Submitted = len(stream)
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Backpressure = int(backpressure.Load())
	stats.Failed = int(failed.Load())
}

type counts struct {
	Students int `json:"students"`
	Outcomes int `json:"outcomes"`
}

func storeCounts(ctx context.Context, c *client) (counts, error) {
	var got counts
	if err := c.getJSON(ctx, "/stats", &got); err != nil {
		return counts{}, err
	}
	return got, nil
}

func verifyViews(ctx context.Context, c *client) error {
	var (
		stored  counts
		summary struct {
			TotalStudents int `json:"total_students"`
		}
		records []map[string]any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stored, err = storeCounts(gctx, c)
		return err
	})
	g.Go(func() error { return c.getJSON(gctx, "/kpi_summary", &summary) })
	g.Go(func() error { return c.getJSON(gctx, "/student_intelligence", &records) })
	if err := g.Wait(); err != nil {
		return err
	}
	if summary.TotalStudents != stored.Students || len(records) != stored.Students {
		return fmt.Errorf("%w: store has %d students, kpi_summary %d, student_intelligence %d",
			ErrViews, stored.Students, summary.TotalStudents, len(records))
	}
	return nil
}
