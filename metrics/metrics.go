// Package metrics exposes Prometheus instruments for generation and traversal.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskrealm"

// Metrics groups every instrument on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	AreasGenerated        prometheus.Counter
	WorldPathsGenerated   prometheus.Counter
	NodesCompleted        *prometheus.CounterVec
	LevelsCompleted       *prometheus.CounterVec
	Rejections            *prometheus.CounterVec
	ObjectivesRegenerated *prometheus.CounterVec
	GenerationDuration    *prometheus.HistogramVec
	ActiveConnections     prometheus.Gauge
}

// New registers all instruments on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		AreasGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "areas_generated_total",
			Help:      "Total number of free-roam areas generated.",
		}),
		WorldPathsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "world_paths_generated_total",
			Help:      "Total number of world paths generated.",
		}),
		NodesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_completed_total",
			Help:      "Total number of area nodes completed, partitioned by node type.",
		}, []string{"type"}),
		LevelsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "levels_completed_total",
			Help:      "Total number of world-path levels completed, partitioned by level type.",
		}, []string{"type"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Total number of rejected moves and completions, partitioned by target and reason.",
		}, []string{"target", "reason"}),
		ObjectivesRegenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objectives_regenerated_total",
			Help:      "Total number of objectives replaced because they were no longer achievable, partitioned by original kind.",
		}, []string{"kind"}),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating graphs, partitioned by graph kind.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"graph"}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Number of open websocket connections.",
		}),
	}
}

// ObserveGeneration records the time since start for graph.
func (m *Metrics) ObserveGeneration(graph string, start time.Time) {
	m.GenerationDuration.WithLabelValues(graph).Observe(time.Since(start).Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
