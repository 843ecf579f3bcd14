package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	registry := prometheus.NewRegistry()
	if err := registry.Register(m); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	m.Accepted()
	if got := testutil.ToFloat64(m.Busy); got != 1 {
		t.Errorf("busy = %v, want 1", got)
	}

	m.Settled(2*time.Second, "")
	m.Accepted()
	m.Settled(time.Second, "rate_limit")
	m.RejectedSubmission("busy")
	m.RejectedSubmission("empty")
	m.RejectedSubmission("busy")

	if got := testutil.ToFloat64(m.Submissions); got != 2 {
		t.Errorf("submissions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Busy); got != 0 {
		t.Errorf("busy = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.Failures.WithLabelValues("rate_limit")); got != 1 {
		t.Errorf("failures{rate_limit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Rejected.WithLabelValues("busy")); got != 2 {
		t.Errorf("rejected{busy} = %v, want 2", got)
	}

	count, err := testutil.GatherAndCount(registry, "cookieschat_chat_generation_seconds")
	if err != nil {
		t.Fatalf("GatherAndCount() error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one histogram series, got %d", count)
	}
}
