// Package metrics exposes pattern registry activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	rematch "github.com/SimonDaKappa/go-rematch"
)

// Observer implements rematch.Observer on top of Prometheus collectors.
type Observer struct {
	registry *prometheus.Registry

	compiles        *prometheus.CounterVec
	compileErrors   *prometheus.CounterVec
	reuses          *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
}

var _ rematch.Observer = (*Observer)(nil)

// Config configures the observer.
type Config struct {
	// Prefix is added to all metric names (default: "rematch").
	Prefix string

	// Buckets for the compile duration histogram (in seconds).
	// Default: [0.00001, 0.0001, 0.001, 0.01, 0.1]
	Buckets []float64
}

// DefaultBuckets returns the default compile duration buckets.
func DefaultBuckets() []float64 {
	return []float64{0.00001, 0.0001, 0.001, 0.01, 0.1}
}

// NewObserver creates an observer with its own Prometheus registry.
func NewObserver(cfg Config) *Observer {
	if cfg.Prefix == "" {
		cfg.Prefix = "rematch"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = DefaultBuckets()
	}

	labelNames := []string{"type"}

	o := &Observer{
		registry: prometheus.NewRegistry(),
	}

	o.compiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: cfg.Prefix + "_pattern_compiles_total",
			Help: "Total number of pattern compilations",
		},
		labelNames,
	)

	o.compileErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: cfg.Prefix + "_pattern_compile_errors_total",
			Help: "Total number of patterns that failed to compile",
		},
		labelNames,
	)

	o.reuses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: cfg.Prefix + "_pattern_reuses_total",
			Help: "Total number of lookups served by an already compiled pattern",
		},
		labelNames,
	)

	o.compileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    cfg.Prefix + "_pattern_compile_duration_seconds",
			Help:    "Pattern compilation duration in seconds",
			Buckets: cfg.Buckets,
		},
		labelNames,
	)

	o.registry.MustRegister(o.compiles, o.compileErrors, o.reuses, o.compileDuration)
	return o
}

// PatternCompiled implements rematch.Observer.
func (o *Observer) PatternCompiled(id rematch.PatternID, took time.Duration, err error) {
	o.compiles.WithLabelValues(id.Type).Inc()
	o.compileDuration.WithLabelValues(id.Type).Observe(took.Seconds())
	if err != nil {
		o.compileErrors.WithLabelValues(id.Type).Inc()
	}
}

// PatternReused implements rematch.Observer.
func (o *Observer) PatternReused(id rematch.PatternID) {
	o.reuses.WithLabelValues(id.Type).Inc()
}

// Registry returns the Prometheus registry holding the observer's metrics.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// for collection by the node_exporter textfile collector.
func (o *Observer) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, o.registry)
}
