// Package metrics records pipeline stage timings with Prometheus.
package metrics

import (
	"time"

	"jsonapi/pipeline"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the observer.
type Config struct {
	// Namespace is the Prometheus namespace for all metrics.
	// Default: "jsonapi"
	Namespace string

	// Buckets are the histogram buckets for stage duration, in seconds.
	Buckets []float64

	// Registry is the registerer to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

func DefaultConfig() Config {
	return Config{
		Namespace: "jsonapi",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer implements pipeline.Observer.
type Observer struct {
	duration *prometheus.HistogramVec
	halts    *prometheus.CounterVec
}

var _ pipeline.Observer = (*Observer)(nil)

// New builds an observer and registers its collectors. Zero fields of cfg
// fall back to DefaultConfig.
func New(cfg Config) (*Observer, error) {
	def := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = def.Buckets
	}
	if cfg.Registry == nil {
		cfg.Registry = def.Registry
	}

	o := &Observer{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   cfg.Buckets,
		}, []string{"archetype", "stage"}),
		halts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "pipeline",
			Name:      "halts_total",
			Help:      "Pipelines halted by a stage error.",
		}, []string{"archetype", "stage"}),
	}
	for _, c := range []prometheus.Collector{o.duration, o.halts} {
		if err := cfg.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) ObserveStage(archetype pipeline.Archetype, stage string, elapsed time.Duration, err error) {
	o.duration.WithLabelValues(string(archetype), stage).Observe(elapsed.Seconds())
	if err != nil {
		o.halts.WithLabelValues(string(archetype), stage).Inc()
	}
}
