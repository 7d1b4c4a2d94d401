// Package datadog sends view metrics to a DogStatsD agent.
//
// Counters become DogStatsD counts and durations become histograms. Labels
// are sent as sorted "key:value" tags. With Namespace "sqlviews." the
// metric view_step_total arrives as sqlviews.view_step_total.
package datadog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"sqlviews/internal/metrics"
)

// Config selects the agent and the prefix and tags for every metric.
type Config struct {
	// Addr is "host:port" (UDP) or "unix:///path/to/dsd.socket".
	Addr string
	// Namespace prefixes metric names; statsd appends a "." when missing.
	Namespace string
	// GlobalTags are added to every metric, e.g. "service:viewctl".
	GlobalTags []string
}

// Backend implements metrics.Backend on a statsd.Client. The zero Backend
// drops everything.
type Backend struct {
	client *statsd.Client
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend dials the agent at cfg.Addr.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("datadog: Addr is required")
	}
	c, err := statsd.New(cfg.Addr, options(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client for %s: %w", cfg.Addr, err)
	}
	return &Backend{client: c}, nil
}

func options(cfg Config) []statsd.Option {
	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	return opts
}

// IncCounter sends a count. DogStatsD counts are integral, so the delta is
// truncated.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(name, int64(delta), tags(labels), 1)
}

// ObserveHistogram sends a histogram sample.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Histogram(name, value, tags(labels), 1)
}

// Flush writes buffered and aggregated metrics to the agent. The client
// stays open, so serve mode can flush after every tick.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Flush()
}

// Close flushes and closes the client.
func (b *Backend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func tags(labels metrics.Labels) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for k, v := range labels {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
