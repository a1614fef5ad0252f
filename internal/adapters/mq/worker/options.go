package worker

import "github.com/okian/empiria/pkg/logger"

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnAppended registers a hook run after each successful append.
func WithOnAppended(fn AppendedFunc) Option {
	return func(w *InMemoryWorker) {
		w.onAppended = fn
	}
}

// WithOnFailed registers a hook run when an append fails.
func WithOnFailed(fn FailedFunc) Option {
	return func(w *InMemoryWorker) {
		w.onFailed = fn
	}
}
