package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector holds all Prometheus metrics for the application.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph metrics
	LoadedNodes *prometheus.GaugeVec
	LoadedEdges *prometheus.GaugeVec

	// Puzzle metrics
	RoundsStarted  prometheus.Counter
	RoundsCorrect  prometheus.Counter
	RoundsGivenUp  prometheus.Counter
	PuzzlesMissing prometheus.Counter

	// Analysis metrics
	AnalysisCalls    prometheus.Counter
	AnalysisFailures prometheus.Counter
}

// NewCollector creates a metrics collector with its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LoadedNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Nodes in the loaded graph snapshot",
			},
			[]string{"category"},
		),
		LoadedEdges: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_edges",
				Help:      "Edges in the loaded graph snapshot",
			},
			[]string{"category"},
		),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "puzzle_rounds_started_total",
			Help:      "Puzzle rounds started",
		}),
		RoundsCorrect: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "puzzle_rounds_correct_total",
			Help:      "Puzzle rounds resolved by a correct guess",
		}),
		RoundsGivenUp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "puzzle_rounds_exhausted_total",
			Help:      "Puzzle rounds resolved by exhaustion or skip",
		}),
		PuzzlesMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "puzzle_not_found_total",
			Help:      "Round seeds that found no valid pair",
		}),
		AnalysisCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_calls_total",
			Help:      "Connection-analysis requests sent",
		}),
		AnalysisFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_failures_total",
			Help:      "Connection-analysis requests that failed",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.LoadedNodes,
		c.LoadedEdges,
		c.RoundsStarted,
		c.RoundsCorrect,
		c.RoundsGivenUp,
		c.PuzzlesMissing,
		c.AnalysisCalls,
		c.AnalysisFailures,
	)
	return c
}

// Registry exposes the underlying registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
