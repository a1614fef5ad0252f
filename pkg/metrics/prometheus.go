// Package metrics provides Prometheus metrics for the empiria service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// Pipeline
	pipelineRuns       *prometheus.CounterVec
	pipelineLatency    *prometheus.HistogramVec
	studentsScored     prometheus.Counter
	statusDistribution *prometheus.GaugeVec

	// Feeds
	feedRefreshes *prometheus.CounterVec
	feedErrors    *prometheus.CounterVec
	feedCacheHits *prometheus.CounterVec
	feedRecords   *prometheus.GaugeVec

	// Outcome intake
	outcomeQueueSize     prometheus.Gauge
	outcomeQueueCapacity prometheus.Gauge
	outcomesEnqueued     prometheus.Counter
	outcomesDropped      prometheus.Counter
	outcomesDuplicate    prometheus.Counter
	outcomesAppended     prometheus.Counter

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Adjuster
	adjusterRuns        prometheus.Counter
	placedSalaryAverage prometheus.Gauge

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "empiria",
		subsystem:        "intelligence",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")

	m.pipelineRuns = m.counterVec("pipeline_runs_total",
		"Full scoring passes by view", "view")
	m.pipelineLatency = m.histogramVec("pipeline_latency_milliseconds",
		"Latency of a full scoring pass by view", "view")
	m.studentsScored = m.counter("students_scored_total",
		"Students run through the full analytics chain")
	m.statusDistribution = m.gaugeVec("status_students",
		"Students per CSI status as of the last scoring pass", "status")

	m.feedRefreshes = m.counterVec("feed_refreshes_total",
		"Feed reloads from storage", "feed")
	m.feedErrors = m.counterVec("feed_errors_total",
		"Failed feed reloads", "feed")
	m.feedCacheHits = m.counterVec("feed_cache_hits_total",
		"Feed reads served from the TTL cache", "feed")
	m.feedRecords = m.gaugeVec("feed_records",
		"Records in the cached feed snapshot", "feed")

	m.outcomeQueueSize = m.gauge("outcome_queue_size",
		"Outcomes waiting to be appended")
	m.outcomeQueueCapacity = m.gauge("outcome_queue_capacity",
		"Maximum outcome queue capacity")
	m.outcomesEnqueued = m.counter("outcomes_enqueued_total",
		"Outcome submissions accepted onto the queue")
	m.outcomesDropped = m.counter("outcomes_dropped_total",
		"Outcome submissions rejected by backpressure")
	m.outcomesDuplicate = m.counter("outcomes_duplicate_total",
		"Outcome submissions rejected as duplicates")
	m.outcomesAppended = m.counter("outcomes_appended_total",
		"Outcomes persisted by workers")

	m.workerActiveCount = m.gauge("worker_active_count",
		"Number of running outcome workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time to persist one outcome in milliseconds")
	m.workerErrors = m.counter("worker_errors_total",
		"Outcomes the workers failed to persist")

	m.adjusterRuns = m.counter("adjuster_runs_total",
		"Self-learning adjuster passes")
	m.placedSalaryAverage = m.gauge("placed_salary_average",
		"Average salary over placed outcomes at the last adjuster pass")

	m.systemMemoryUsage = m.gauge("system_memory_bytes",
		"Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutines",
		"Number of goroutines")
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent counts an internal error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordPipelineRun records one full scoring pass of a view.
func RecordPipelineRun(view string, latencyMs float64) {
	globalManager.pipelineRuns.WithLabelValues(view).Inc()
	globalManager.pipelineLatency.WithLabelValues(view).Observe(latencyMs)
}

// AddStudentsScored adds n students to the scored counter.
func AddStudentsScored(n int) {
	globalManager.studentsScored.Add(float64(n))
}

// UpdateStatusDistribution sets the per-status gauge.
func UpdateStatusDistribution(status string, count int) {
	globalManager.statusDistribution.WithLabelValues(status).Set(float64(count))
}

// RecordFeedRefresh records a reload of feed holding records rows.
func RecordFeedRefresh(feed string, records int) {
	globalManager.feedRefreshes.WithLabelValues(feed).Inc()
	globalManager.feedRecords.WithLabelValues(feed).Set(float64(records))
}

// RecordFeedError records a failed reload.
func RecordFeedError(feed string) {
	globalManager.feedErrors.WithLabelValues(feed).Inc()
}

// RecordFeedCacheHit records a read served from cache.
func RecordFeedCacheHit(feed string) {
	globalManager.feedCacheHits.WithLabelValues(feed).Inc()
}

// UpdateOutcomeQueue sets the queue size and capacity gauges.
func UpdateOutcomeQueue(size, capacity int) {
	globalManager.outcomeQueueSize.Set(float64(size))
	globalManager.outcomeQueueCapacity.Set(float64(capacity))
}

// RecordOutcomeEnqueued counts an accepted submission.
func RecordOutcomeEnqueued() { globalManager.outcomesEnqueued.Inc() }

// RecordOutcomeDropped counts a submission refused by backpressure.
func RecordOutcomeDropped() { globalManager.outcomesDropped.Inc() }

// RecordOutcomeDuplicate counts a duplicate submission.
func RecordOutcomeDuplicate() { globalManager.outcomesDuplicate.Inc() }

// RecordOutcomeAppended counts a persisted outcome.
func RecordOutcomeAppended() { globalManager.outcomesAppended.Inc() }

// UpdateWorkerActiveCount sets the running worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes the time to persist one outcome.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed append.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordAdjusterRun records an adjuster pass and the placed salary average.
func RecordAdjusterRun(average float64) {
	globalManager.adjusterRuns.Inc()
	globalManager.placedSalaryAverage.Set(average)
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry served at /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
