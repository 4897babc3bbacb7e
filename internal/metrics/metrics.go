// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the corpus engine.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems live in subpackages (e.g. prompush); the rest
//     of the codebase depends only on this interface.
//
// The primary use case is instrumentation of the dataset load (rows kept and
// dropped per source file) and of the aggregation queries (latency, outcome)
// without coupling the engine to a specific metrics system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordFileLoad records the outcome of loading one corpus source file:
// rows kept, rows dropped (soft-failed), and how long the load took.
func RecordFileLoad(file string, kept, dropped int, d time.Duration) {
	if kept > 0 {
		backend.IncCounter("corpus_rows_total", float64(kept), Labels{"file": file, "status": "loaded"})
	}
	if dropped > 0 {
		backend.IncCounter("corpus_rows_total", float64(dropped), Labels{"file": file, "status": "dropped"})
	}
	backend.ObserveHistogram("corpus_file_load_seconds", d.Seconds(), Labels{"file": file})
}

// RecordQuery is a convenience for the common pattern:
// measure latency + success/failure per aggregation query.
func RecordQuery(query string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"query":  query,
		"status": status,
	}

	backend.IncCounter("corpus_queries_total", 1, lbls)
	backend.ObserveHistogram("corpus_query_duration_seconds", d.Seconds(), lbls)
}
