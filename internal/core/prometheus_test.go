package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()

	rec.Observe(ctx, "create_task", true, 10*time.Millisecond)
	rec.Observe(ctx, "create_task", true, 10*time.Millisecond)
	rec.Observe(ctx, "create_task", false, 10*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	if got := promtestutil.ToFloat64(rec.operations.WithLabelValues("create_task", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := promtestutil.ToFloat64(rec.operations.WithLabelValues("create_task", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if count := promtestutil.CollectAndCount(rec.durations); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}

func TestPrometheusMetricsRecorderRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
