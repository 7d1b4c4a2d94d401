// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the view labels (step, status, view, reason) onto Prometheus
//     labels; job becomes the Pushgateway grouping key.
//   - Pushing collected metrics to a Pushgateway instead of exposing an HTTP
//     scrape endpoint, since viewctl runs are often one-shot.
package prompush

import (
	"fmt"

	"sqlviews/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // view_step_total
	stepDuration *prometheus.SummaryVec // view_step_duration_seconds

	statementCounter prometheus.Counter     // view_statements_total
	downgradeCounter *prometheus.CounterVec // view_refresh_downgraded_total
	skipCounter      *prometheus.CounterVec // view_skipped_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name; defaults to "viewctl".
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "viewctl"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_step_total",
			Help: "Total number of view operations, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "view_step_duration_seconds",
			Help:       "Duration of view operations in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	statementCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "view_statements_total",
			Help: "Total number of SQL statements executed for this job.",
		},
	)
	downgradeCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_refresh_downgraded_total",
			Help: "Concurrent refreshes emitted as plain refreshes, per view.",
		},
		[]string{"view"},
	)
	skipCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_skipped_total",
			Help: "Views skipped by bulk operations, per view and reason.",
		},
		[]string{"view", "reason"},
	)

	for _, c := range []struct {
		what string
		col  prometheus.Collector
	}{
		{"step counter", stepCounter},
		{"step summary", stepDuration},
		{"statement counter", statementCounter},
		{"downgrade counter", downgradeCounter},
		{"skip counter", skipCounter},
	} {
		if err := reg.Register(c.col); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", c.what, err)
		}
	}

	return &Backend{
		gatewayURL:       gatewayURL,
		jobName:          jobName,
		reg:              reg,
		stepCounter:      stepCounter,
		stepDuration:     stepDuration,
		statementCounter: statementCounter,
		downgradeCounter: downgradeCounter,
		skipCounter:      skipCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "view_step_total":
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case "view_statements_total":
		if b.statementCounter == nil {
			return
		}
		b.statementCounter.Add(delta)

	case "view_refresh_downgraded_total":
		if b.downgradeCounter == nil {
			return
		}
		b.downgradeCounter.WithLabelValues(labels["view"]).Add(delta)

	case "view_skipped_total":
		if b.skipCounter == nil {
			return
		}
		b.skipCounter.WithLabelValues(labels["view"], labels["reason"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "view_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
