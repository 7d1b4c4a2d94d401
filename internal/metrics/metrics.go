// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from view lifecycle operations.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog), the
//     same way storage backends live under internal/storage.
//
// The primary use case is instrumentation of plan execution (create, drop,
// refresh per view) and of the periodic refresh loop.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
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
// It is meant to be called once at startup, before any plan runs.
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

// RecordStep measures latency and success/failure of one view operation.
// job names the caller (e.g. "viewctl"), step the operation and view
// ("refresh:daily_totals").
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("view_step_total", 1, lbls)
	backend.ObserveHistogram("view_step_duration_seconds", d.Seconds(), lbls)
}

// RecordStatements counts SQL statements executed for a job.
func RecordStatements(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("view_statements_total", float64(delta), Labels{
		"job": job,
	})
}

// RecordDowngrade counts refreshes that asked for CONCURRENTLY but were
// emitted as a plain refresh.
func RecordDowngrade(job, view string) {
	backend.IncCounter("view_refresh_downgraded_total", 1, Labels{
		"job":  job,
		"view": view,
	})
}

// RecordSkip counts views skipped by a bulk operation, with a reason such as
// "not_materialized".
func RecordSkip(job, view, reason string) {
	backend.IncCounter("view_skipped_total", 1, Labels{
		"job":    job,
		"view":   view,
		"reason": reason,
	})
}
