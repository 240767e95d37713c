package engine

import (
	"log/slog"
	"time"
)

// Config tunes an Engine's scheduling and layout defaults (orig §6).
// Grounded on the prior functional-options idiom, e.g.
// pkg/middleware/metrics.go's MetricsOption func(*MetricsConfig).
type Config struct {
	FrameBudget      time.Duration
	WorkerPoolSize   int
	IsolateThreshold int
	LayoutDefaults   LayoutDefaults
	LogLevel         slog.Level
}

// LayoutDefaults are the fallback layout parameters applied when a
// component declares no layout props of its own.
type LayoutDefaults struct {
	Direction string
	Padding   float64
	Gap       float64
}

// Option configures a Config.
type Option func(*Config)

// defaultConfig matches the five priority-tier frame budget (orig §4.6):
// a 16ms worst case keeps the Idle tier inside one 60fps frame.
func defaultConfig() Config {
	return Config{
		FrameBudget:      16 * time.Millisecond,
		WorkerPoolSize:   4,
		IsolateThreshold: 64,
		LayoutDefaults:   LayoutDefaults{Direction: "column"},
		LogLevel:         slog.LevelInfo,
	}
}

// NewConfig builds a Config from defaults plus the given options.
func NewConfig(opts ...Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithFrameBudget sets the cooperative scheduler's per-tick time budget.
func WithFrameBudget(d time.Duration) Option {
	return func(c *Config) { c.FrameBudget = d }
}

// WithWorkerPoolSize sets Config.WorkerPoolSize. The value is only stored:
// no diff workers are started, and every diff runs inline.
func WithWorkerPoolSize(n int) Option {
	return func(c *Config) { c.WorkerPoolSize = n }
}

// WithIsolateThreshold sets Config.IsolateThreshold. The value is only
// stored: pkg/reconcile diffs every subtree inline on the calling goroutine,
// whatever its size.
func WithIsolateThreshold(n int) Option {
	return func(c *Config) { c.IsolateThreshold = n }
}

// WithLayoutDefaults overrides the fallback layout parameters.
func WithLayoutDefaults(d LayoutDefaults) Option {
	return func(c *Config) { c.LayoutDefaults = d }
}

// WithLogLevel sets the engine's slog level.
func WithLogLevel(level slog.Level) Option {
	return func(c *Config) { c.LogLevel = level }
}
