// Package metrics provides Prometheus metrics for the skillswap exchange service.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Transition outcomes used as label values.
const (
	OutcomeApplied   = "applied"
	OutcomeRejected  = "rejected"
	OutcomeForbidden = "forbidden"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
)

// Manager manages all Prometheus metrics for the exchange service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Exchange lifecycle
	exchangesCreated   prometheus.Counter
	transitions        *prometheus.CounterVec
	idempotentReplays  prometheus.Counter
	exchangesByStatus  *prometheus.GaugeVec
	membersTotal       prometheus.Gauge
	settlements        prometheus.Counter
	creditsSettled     prometheus.Counter
	settlementFailures *prometheus.CounterVec

	// Store
	storeTxnLatency    *prometheus.HistogramVec
	storeConflicts     prometheus.Counter
	storeCommitAborts  prometheus.Counter
	storeLedgerEntries prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Notification queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Notification workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	notifications           *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skillswap",
		subsystem:        "exchange",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		refreshInterval:  defaultRefreshInterval,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval is how often gauges sampled from outside (system, status
// counts) should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.exchangesCreated = m.counter("exchanges_created_total", "Total number of exchanges requested")
	m.transitions = m.counterVec("transitions_total", "Transition requests by target status and outcome", "target", "outcome")
	m.idempotentReplays = m.counter("idempotent_replays_total", "Create requests answered from an already used idempotency key")
	m.exchangesByStatus = m.gaugeVec("exchanges", "Current number of exchanges per status", "status")
	m.membersTotal = m.gauge("members", "Number of registered members")
	m.settlements = m.counter("settlements_total", "Completed exchanges whose credits were transferred")
	m.creditsSettled = m.counter("credits_settled_total", "Time credits moved from requesters to providers")
	m.settlementFailures = m.counterVec("settlement_failures_total", "Settlements rolled back by reason", "reason")

	m.storeTxnLatency = m.histogramVec("store_txn_latency_milliseconds", "Store transaction latency in milliseconds", "op")
	m.storeConflicts = m.counter("store_conflicts_total", "Optimistic transaction conflicts that were retried")
	m.storeCommitAborts = m.counter("store_commit_aborts_total", "Transactions abandoned after exhausting conflict retries")
	m.storeLedgerEntries = m.counter("store_ledger_entries_total", "Ledger journal entries written")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Notifications waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Notification queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Notification queue fill ratio (0-1)")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Notifications enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Notifications dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Notifications dropped because the queue was full or closed")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Time spent enqueuing a notification")

	m.workerCount = m.gauge("workers", "Notification workers started")
	m.workerActiveCount = m.gauge("workers_active", "Notification workers currently delivering")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Notification delivery latency")
	m.workerErrors = m.counter("worker_errors_total", "Notification deliveries that failed")
	m.notifications = m.counterVec("notifications_total", "Notification deliveries by sink and outcome", "sink", "outcome")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Most recent GC pause in milliseconds")
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

// Exchange lifecycle.

// RecordExchangeCreated increments the created exchanges counter.
func RecordExchangeCreated() {
	globalManager.exchangesCreated.Inc()
}

// RecordTransition counts a transition request.
func RecordTransition(target, outcome string) {
	globalManager.transitions.WithLabelValues(target, outcome).Inc()
}

// RecordIdempotentReplay counts a create answered from a used idempotency key.
func RecordIdempotentReplay() {
	globalManager.idempotentReplays.Inc()
}

// UpdateExchangesByStatus sets the per-status gauge.
func UpdateExchangesByStatus(counts map[string]int) {
	for status, n := range counts {
		globalManager.exchangesByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// UpdateMembersTotal sets the registered member gauge.
func UpdateMembersTotal(count int) {
	globalManager.membersTotal.Set(float64(count))
}

// RecordSettlement counts a settled exchange and the credits it moved.
func RecordSettlement(credits float64) {
	globalManager.settlements.Inc()
	if credits > 0 {
		globalManager.creditsSettled.Add(credits)
	}
}

// RecordSettlementFailure counts a rolled back settlement.
func RecordSettlementFailure(reason string) {
	globalManager.settlementFailures.WithLabelValues(reason).Inc()
}

// Store.

// RecordStoreTxnLatency records the latency of one store operation, retries included.
func RecordStoreTxnLatency(op string, latencyMs float64) {
	globalManager.storeTxnLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreConflict counts a retried transaction conflict.
func RecordStoreConflict() {
	globalManager.storeConflicts.Inc()
}

// RecordStoreCommitAbort counts a transaction abandoned after its retries.
func RecordStoreCommitAbort() {
	globalManager.storeCommitAborts.Inc()
}

// RecordLedgerEntries counts journal entries written.
func RecordLedgerEntries(n int) {
	globalManager.storeLedgerEntries.Add(float64(n))
}

// HTTP.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue.

// UpdateQueueSize sets the number of queued notifications.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Workers.

// UpdateWorkerCount sets the number of started workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of workers currently delivering.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records notification delivery latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordNotification counts a delivery attempt to sink.
func RecordNotification(sink, outcome string) {
	globalManager.notifications.WithLabelValues(sink, outcome).Inc()
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// RecordSystemSnapshot samples memory, goroutines and the last GC pause.
func RecordSystemSnapshot() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		pause := ms.PauseNs[(ms.NumGC+255)%256]
		globalManager.systemGCPauseTime.Observe(float64(pause) / float64(time.Millisecond))
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// GetManager returns the global manager.
func GetManager() *Manager {
	return globalManager
}
