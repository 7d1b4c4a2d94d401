package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"sqlviews/internal/metrics"
)

func TestNewBackendRequiresAddr(t *testing.T) {
	t.Parallel()

	b, err := NewBackend(Config{})
	if err == nil || b != nil {
		t.Fatalf("NewBackend(empty) = (%v, %v), want (nil, error)", b, err)
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   metrics.Labels
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "sorted", in: metrics.Labels{"view": "totals", "job": "viewctl"}, want: []string{"job:viewctl", "view:totals"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tags(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("tags() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("tags()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestBackendSendsNamespacedMetrics listens on a local UDP socket and checks
// that the namespace and global tags are applied by the client.
func TestBackendSendsNamespacedMetrics(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer pc.Close()

	b, err := NewBackend(Config{Addr: pc.LocalAddr().String(), Namespace: "sqlviews.", GlobalTags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	defer b.Close()

	b.IncCounter("view_step_total", 1, metrics.Labels{"step": "refresh:leaderboard"})
	b.ObserveHistogram("view_step_duration_seconds", 0.2, metrics.Labels{"step": "refresh:leaderboard"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got strings.Builder
	buf := make([]byte, 8192)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = pc.SetReadDeadline(deadline)
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			break
		}
		got.Write(buf[:n])
		got.WriteByte('\n')
		s := got.String()
		if strings.Contains(s, "sqlviews.view_step_total:1|c") && strings.Contains(s, "sqlviews.view_step_duration_seconds:") {
			break
		}
	}

	s := got.String()
	for _, want := range []string{"sqlviews.view_step_total:1|c", "sqlviews.view_step_duration_seconds:0.2|h", "env:test", "step:refresh:leaderboard"} {
		if !strings.Contains(s, want) {
			t.Fatalf("payload = %q, want it to contain %q", s, want)
		}
	}
}

func TestZeroBackendIsNop(t *testing.T) {
	t.Parallel()

	var zero Backend
	zero.IncCounter("view_step_total", 1, nil)
	zero.ObserveHistogram("view_step_duration_seconds", 1, nil)
	if err := zero.Flush(); err != nil {
		t.Fatalf("zero Flush() error = %v", err)
	}
	if err := zero.Close(); err != nil {
		t.Fatalf("zero Close() error = %v", err)
	}
}
