// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the engine's labels (file, query, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint, since a one-shot load-and-query
//     run may exit before any scraper comes around.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends without changes to the engine.
package prompush

import (
	"fmt"

	"moviecorpus/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	rowCounter   *prometheus.CounterVec // "corpus_rows_total"
	loadDuration *prometheus.SummaryVec // "corpus_file_load_seconds"

	queryCounter  *prometheus.CounterVec // "corpus_queries_total"
	queryDuration *prometheus.SummaryVec // "corpus_query_duration_seconds"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (e.g. "moviecorpus").
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "moviecorpus"
	}

	reg := prometheus.NewRegistry()

	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpus_rows_total",
			Help: "Rows per source file, partitioned by load status (loaded, dropped).",
		},
		[]string{"file", "status"},
	)
	loadDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "corpus_file_load_seconds",
			Help:       "Duration of loading each source file, in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"file"},
	)
	queryCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpus_queries_total",
			Help: "Total aggregation query executions, partitioned by query and status.",
		},
		[]string{"query", "status"},
	)
	queryDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "corpus_query_duration_seconds",
			Help:       "Duration of aggregation queries in seconds, partitioned by query and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"query", "status"},
	)

	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(loadDuration); err != nil {
		return nil, fmt.Errorf("prompush: register load summary: %w", err)
	}
	if err := reg.Register(queryCounter); err != nil {
		return nil, fmt.Errorf("prompush: register query counter: %w", err)
	}
	if err := reg.Register(queryDuration); err != nil {
		return nil, fmt.Errorf("prompush: register query summary: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		rowCounter:    rowCounter,
		loadDuration:  loadDuration,
		queryCounter:  queryCounter,
		queryDuration: queryDuration,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "corpus_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["file"], labels["status"]).Add(delta)

	case "corpus_queries_total":
		if b.queryCounter == nil {
			return
		}
		b.queryCounter.WithLabelValues(labels["query"], labels["status"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case "corpus_file_load_seconds":
		if b.loadDuration == nil {
			return
		}
		b.loadDuration.WithLabelValues(labels["file"]).Observe(value)

	case "corpus_query_duration_seconds":
		if b.queryDuration == nil {
			return
		}
		b.queryDuration.WithLabelValues(labels["query"], labels["status"]).Observe(value)
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
