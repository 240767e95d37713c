// Package metrics provides Prometheus instrumentation for a running
// pkg/session tree: event throughput, commit latency, batch size, and
// session lifecycle gauges. Grounded on the prior pkg/middleware
// (Prometheus middleware half of Phase 13's observability work), but
// restructured from an HTTP-routing middleware (router.Middleware wraps a
// next() call per request) into a Recorder whose methods pkg/session calls
// directly at the points where the bridge transport already has work units
// (handleEvent, CommitBatch, finalizeClose, ReadLoop, handleResyncRequest)
// — this engine has no HTTP request
// chain for a middleware to wrap.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Recorder's metric names and registry.
type Config struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	Buckets     []float64
	Registry    prometheus.Registerer
}

// Option configures a Config.
type Option func(*Config)

func WithNamespace(namespace string) Option { return func(c *Config) { c.Namespace = namespace } }
func WithSubsystem(subsystem string) Option { return func(c *Config) { c.Subsystem = subsystem } }
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}
func WithBuckets(buckets []float64) Option { return func(c *Config) { c.Buckets = buckets } }
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "loom",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder holds the Prometheus collectors for a tree of sessions. A single
// Recorder is normally shared across every session a process hosts, matching
// the prior one-singleton-per-process globalMetrics instance, but here
// it is an explicit value passed to session.Config rather than a package
// global — nothing in this engine requires more than one, but singletons
// make testing multiple independent trees in one process impossible.
type Recorder struct {
	eventsTotal    *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	eventErrors    *prometheus.CounterVec
	opsPerBatch    prometheus.Histogram
	batchesSent    prometheus.Counter
	activeSessions prometheus.Gauge
	sessionMemory  prometheus.Histogram
	transportErrors *prometheus.CounterVec
	reconnectsTotal prometheus.Counter
}

// New creates a Recorder registered against opts' registry (DefaultRegisterer
// unless overridden). Safe to call more than once against a custom registry;
// calling it twice against the default registry will panic on the duplicate
// registration, same as promauto everywhere else in this ecosystem.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "events_total", Help: "Total number of bridge events dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "event_duration_seconds", Help: "Event-to-commit duration in seconds",
			ConstLabels: config.ConstLabels, Buckets: config.Buckets,
		}, []string{"event"}),

		eventErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "event_errors_total", Help: "Total number of handler/render errors",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "kind"}),

		opsPerBatch: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "ops_per_batch", Help: "Number of mutation ops in each committed batch",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),

		batchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "batches_sent_total", Help: "Total number of batches sent to the native bridge",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "active_sessions", Help: "Number of live bridge sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionMemory: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "session_tree_nodes", Help: "Approximate VNode tree size per session at close",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{8, 32, 128, 512, 2048, 8192},
		}),

		transportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "transport_errors_total", Help: "Total transport errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		reconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace, Subsystem: config.Subsystem,
			Name: "reconnects_total", Help: "Total number of successful resync replays",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordEvent records one dispatched event's outcome and latency.
func (r *Recorder) RecordEvent(name string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		r.eventErrors.WithLabelValues(name, categorize(err)).Inc()
	}
	r.eventsTotal.WithLabelValues(name, status).Inc()
	r.eventDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordBatch records the size of a batch sent to the bridge.
func (r *Recorder) RecordBatch(opCount int) {
	if r == nil {
		return
	}
	r.batchesSent.Inc()
	r.opsPerBatch.Observe(float64(opCount))
}

// SessionOpened increments the active-session gauge.
func (r *Recorder) SessionOpened() {
	if r != nil {
		r.activeSessions.Inc()
	}
}

// SessionClosed decrements the active-session gauge and records the final
// tree size for capacity planning.
func (r *Recorder) SessionClosed(treeNodes int) {
	if r == nil {
		return
	}
	r.activeSessions.Dec()
	r.sessionMemory.Observe(float64(treeNodes))
}

// RecordTransportError records a read/write/decode error by category.
func (r *Recorder) RecordTransportError(errType string) {
	if r != nil {
		r.transportErrors.WithLabelValues(errType).Inc()
	}
}

// RecordResync records a successful resync replay after a reconnect.
func (r *Recorder) RecordResync() {
	if r != nil {
		r.reconnectsTotal.Inc()
	}
}

var (
	globalDefault   *Recorder
	globalDefaultMu sync.Mutex
)

// Default lazily creates and returns a process-wide Recorder against the
// default Prometheus registry, for callers that don't want to thread a
// *Recorder through session construction explicitly.
func Default() *Recorder {
	globalDefaultMu.Lock()
	defer globalDefaultMu.Unlock()
	if globalDefault == nil {
		globalDefault = New()
	}
	return globalDefault
}

// categorize buckets an error into a low-cardinality label, the same
// motivation as the prior categorizeError: raw error messages make poor
// Prometheus label values.
func categorize(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "panic"):
		return "panic"
	case strings.Contains(msg, "closed"):
		return "closed"
	case strings.Contains(msg, "queue full"), strings.Contains(msg, "rate"):
		return "backpressure"
	default:
		return "internal"
	}
}
