package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"sqlviews/internal/metrics"
)

// gathered returns the backend's registry as "name{k=v,...}" -> value.
// Counters report their value, summaries their sample count and sum (the
// latter under a "_sum" suffix).
func gathered(t *testing.T, b *Backend) map[string]float64 {
	t.Helper()

	families, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	out := map[string]float64{}
	for _, mf := range families {
		addFamily(out, mf)
	}
	return out
}

func addFamily(out map[string]float64, mf *dto.MetricFamily) {
	for _, m := range mf.GetMetric() {
		var pairs []string
		for _, lp := range m.GetLabel() {
			pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
		}
		sort.Strings(pairs)
		key := mf.GetName() + "{" + strings.Join(pairs, ",") + "}"
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			out[key] = m.GetCounter().GetValue()
		case dto.MetricType_SUMMARY:
			out[key] = float64(m.GetSummary().GetSampleCount())
			out[key+"_sum"] = m.GetSummary().GetSampleSum()
		}
	}
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway URL returns error", jobName: "nightly", wantErr: true},
		{name: "empty job name uses default", gatewayURL: "http://pushgateway:9091", wantJobName: "viewctl"},
		{name: "explicit job name is preserved", jobName: "nightly", gatewayURL: "http://pushgateway:9091", wantJobName: "nightly"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = (%v, %v), want (nil, error)", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("backend.jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

// A refresh cycle over two views, recorded through the backend, lands in
// the registry under the view_* collectors; unknown names are dropped.
func TestRefreshCycleIsCollected(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("viewctl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	ok := metrics.Labels{"job": "viewctl", "step": "refresh:daily_totals", "status": "success"}
	b.IncCounter("view_step_total", 1, ok)
	b.IncCounter("view_step_total", 1, ok)
	b.ObserveHistogram("view_step_duration_seconds", 0.5, ok)
	b.ObserveHistogram("view_step_duration_seconds", 1.5, ok)
	b.IncCounter("view_statements_total", 8, metrics.Labels{"job": "viewctl"})
	b.IncCounter("view_refresh_downgraded_total", 1, metrics.Labels{"view": "public.leaderboard"})
	b.IncCounter("view_skipped_total", 1, metrics.Labels{"view": "recent_users", "reason": "not_materialized"})
	b.IncCounter("rows_loaded_total", 10, nil)
	b.ObserveHistogram("parse_seconds", 2, ok)

	want := map[string]float64{
		"view_step_total{status=success,step=refresh:daily_totals}":                2,
		"view_step_duration_seconds{status=success,step=refresh:daily_totals}":     2,
		"view_step_duration_seconds{status=success,step=refresh:daily_totals}_sum": 2,
		"view_statements_total{}":                                                  8,
		"view_refresh_downgraded_total{view=public.leaderboard}":                   1,
		"view_skipped_total{reason=not_materialized,view=recent_users}":            1,
	}
	got := gathered(t, b)
	if len(got) != len(want) {
		t.Fatalf("gathered %d series, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

// TestZeroBackendIsNop ensures a zero-value Backend does not panic.
func TestZeroBackendIsNop(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("view_step_total", 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter("view_statements_total", 1, nil)
	b.IncCounter("view_refresh_downgraded_total", 1, metrics.Labels{"view": "v"})
	b.IncCounter("view_skipped_total", 1, metrics.Labels{"view": "v", "reason": "r"})
	b.ObserveHistogram("view_step_duration_seconds", 1, metrics.Labels{})
}

// TestFlushPushesToGatewayJob checks the PUT lands on the job's group.
func TestFlushPushesToGatewayJob(t *testing.T) {
	t.Parallel()

	type push struct {
		method, path, body string
	}
	pushes := make(chan push, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		pushes <- push{r.Method, r.URL.Path, string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("nightly", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter("view_step_total", 1, metrics.Labels{"step": "refresh:daily_totals", "status": "success"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	select {
	case p := <-pushes:
		if p.method != http.MethodPut || p.path != "/metrics/job/nightly" {
			t.Fatalf("push = %s %s, want PUT /metrics/job/nightly", p.method, p.path)
		}
		if !strings.Contains(p.body, "view_step_total") {
			t.Fatalf("push body does not carry view_step_total")
		}
	default:
		t.Fatalf("Flush() sent nothing to the Pushgateway")
	}
}

func BenchmarkIncCounterStep(b *testing.B) {
	backend, err := NewBackend("viewctl", "http://example.com")
	if err != nil {
		b.Fatalf("NewBackend() error = %v", err)
	}
	labels := metrics.Labels{"step": "refresh:daily_totals", "status": "success"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.IncCounter("view_step_total", 1, labels)
	}
}
