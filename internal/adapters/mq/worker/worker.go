// Package worker persists queued outcomes in the background.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/empiria/internal/adapters/mq/queue"
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/pkg/logger"
	"github.com/okian/empiria/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Appender writes one outcome to the outcomes store.
type Appender interface {
	AppendOutcome(ctx context.Context, o model.OutcomeRecord) error
}

// Queue defines how workers receive outcomes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// AppendedFunc runs after an outcome was persisted.
type AppendedFunc func(ctx context.Context, e queue.Event)

// FailedFunc runs when an outcome could not be persisted.
type FailedFunc func(ctx context.Context, e queue.Event, err error)

// Worker drains the queue until it is closed or ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker appends outcomes read from a Queue.
type InMemoryWorker struct {
	queue      Queue
	appender   Appender
	onAppended AppendedFunc
	onFailed   FailedFunc
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with the given options.
func NewInMemoryWorker(q Queue, appender Appender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		appender: appender,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes outcomes until the queue closes, ctx ends or Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "outcome append failed", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without draining the queue.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, e queue.Event) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.appender.AppendOutcome(ctx, e.Outcome); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "append_failed")
		w.logger.Error(ctx, "append failed",
			logger.String("feedback_id", e.FeedbackID),
			logger.Error(err),
		)
		if w.onFailed != nil {
			w.onFailed(ctx, e, err)
		}
		return fmt.Errorf("append outcome %s: %w", e.FeedbackID, err)
	}

	metrics.RecordOutcomeAppended()
	if w.onAppended != nil {
		w.onAppended(ctx, e)
	}
	w.logger.Debug(ctx, "outcome appended",
		logger.String("feedback_id", e.FeedbackID),
		logger.String("cert_type", e.Outcome.CertType),
	)
	return nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one uses runtime.NumCPU.
// opts apply to every worker; each worker is named after its index.
func NewPool(workerCount int, q Queue, appender Appender, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, appender, wopts...)
	}
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var err error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-waitCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			err = fmt.Errorf("worker pool shutdown: %w", waitCtx.Err())
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return err
}
