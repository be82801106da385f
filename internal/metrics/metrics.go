// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the warehouse pipeline.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the storage factory pattern: the driver depends only on
//     this interface, concrete metric systems live in subpackages.
//
// The primary use case is instrumenting the run stages (extract, normalize,
// resolve, load) and the row accounting around them without coupling the
// pipeline to a specific metrics system such as Prometheus or Datadog.
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

// Nop returns the discarding backend, the default until SetBackend is
// called. Tests use it to restore the initial state.
func Nop() Backend { return nopBackend{} }

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

// RecordStage is a convenience for the common pattern: measure latency plus
// success/failure per pipeline stage.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("ecometl_stage_total", 1, lbls)
	backend.ObserveHistogram("ecometl_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds mirror the run report fields, e.g.:
//   - "extracted"
//   - "extract_skipped"
//   - "normalize_dropped"
//   - "rejected"
//   - "loaded"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ecometl_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordTableRows counts rows written to one warehouse table during the
// load stage.
func RecordTableRows(job, table string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ecometl_table_rows_total", float64(delta), Labels{
		"job":   job,
		"table": table,
	})
}
