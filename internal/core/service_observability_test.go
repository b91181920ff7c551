package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"obracore/pkg/domain"
)

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.log("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.log("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.log("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.log("error", msg) }

func (l *captureLogger) has(prefix string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.entries {
		if entry == prefix {
			return true
		}
	}
	return false
}

type captureAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *captureAudit) Record(_ context.Context, entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *captureAudit) last(t *testing.T) AuditEntry {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		t.Fatalf("no audit entries recorded")
	}
	return a.entries[len(a.entries)-1]
}

type metricsSample struct {
	operation string
	success   bool
	duration  time.Duration
}

type captureMetrics struct {
	mu      sync.Mutex
	samples []metricsSample
}

func (m *captureMetrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, metricsSample{operation, success, duration})
}

type captureTracer struct {
	mu    sync.Mutex
	spans []string
	ends  []error
}

func (t *captureTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	t.mu.Lock()
	t.spans = append(t.spans, operation)
	t.mu.Unlock()
	return ctx, captureSpan{tracer: t}
}

type captureSpan struct{ tracer *captureTracer }

func (s captureSpan) End(err error) {
	s.tracer.mu.Lock()
	s.tracer.ends = append(s.tracer.ends, err)
	s.tracer.mu.Unlock()
}

func newObservedService(t *testing.T) (*Service, *captureLogger, *captureAudit, *captureMetrics, *captureTracer) {
	t.Helper()
	logger := &captureLogger{}
	audit := &captureAudit{}
	metrics := &captureMetrics{}
	tracer := &captureTracer{}
	svc := NewInMemoryService(NewDefaultRulesEngine(),
		WithLogger(logger),
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
	)
	return svc, logger, audit, metrics, tracer
}

func TestSuccessfulOperationIsObserved(t *testing.T) {
	svc, logger, audit, metrics, tracer := newObservedService(t)

	created, _, err := svc.CreateGalleryProject(context.Background(), domain.GalleryProject{Name: "Observado"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	entry := audit.last(t)
	if entry.Operation != "create_gallery_project" || entry.Status != AuditStatusSuccess {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.Entity != domain.EntityGalleryProject || entry.Action != domain.ActionCreate {
		t.Fatalf("unexpected audit classification: %+v", entry)
	}
	if entry.EntityID != created.ID {
		t.Fatalf("audit entry missing generated id: %+v", entry)
	}
	if entry.Timestamp.IsZero() {
		t.Fatalf("audit entry missing timestamp")
	}

	if len(metrics.samples) != 1 || !metrics.samples[0].success || metrics.samples[0].operation != "create_gallery_project" {
		t.Fatalf("unexpected metrics: %+v", metrics.samples)
	}
	if len(tracer.spans) != 1 || tracer.spans[0] != "create_gallery_project" {
		t.Fatalf("unexpected spans: %+v", tracer.spans)
	}
	if len(tracer.ends) != 1 || tracer.ends[0] != nil {
		t.Fatalf("span not ended cleanly: %+v", tracer.ends)
	}
	if !logger.has("debug: operation committed") {
		t.Fatalf("commit not logged: %+v", logger.entries)
	}
}

func TestFailedOperationIsObserved(t *testing.T) {
	svc, logger, audit, metrics, tracer := newObservedService(t)

	_, _, err := svc.UpdateTask(context.Background(), "ghost", func(*domain.ScheduleTask) error { return nil })
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	entry := audit.last(t)
	if entry.Status != AuditStatusError || entry.Error == "" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if len(metrics.samples) != 1 || metrics.samples[0].success {
		t.Fatalf("unexpected metrics: %+v", metrics.samples)
	}
	if len(tracer.ends) != 1 || tracer.ends[0] == nil {
		t.Fatalf("span must carry the error: %+v", tracer.ends)
	}
	if !logger.has("error: operation failed") {
		t.Fatalf("failure not logged: %+v", logger.entries)
	}
}

func TestRejectedOperationIsAudited(t *testing.T) {
	svc, _, audit, _, _ := newObservedService(t)
	ctx := context.Background()

	if _, _, err := svc.CreateTask(ctx, domain.ScheduleTask{Base: domain.Base{ID: "t1"}, Name: "Wiring", Status: domain.TaskStatusNotStarted}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := svc.UpdateTaskStatus(ctx, "t1", domain.TaskStatusCompleted); err == nil {
		t.Fatalf("expected rejection")
	}

	entry := audit.last(t)
	if entry.Status != AuditStatusError {
		t.Fatalf("expected error status: %+v", entry)
	}
}

func TestClockOverrideDrivesDurations(t *testing.T) {
	ticks := 0
	clock := func() time.Time {
		ticks++
		return time.Unix(0, int64(ticks)*int64(time.Second)).UTC()
	}
	metrics := &captureMetrics{}
	svc := NewInMemoryService(NewRulesEngine(), WithMetricsRecorder(metrics), WithClock(clock))

	if _, _, err := svc.CreateGalleryProject(context.Background(), domain.GalleryProject{Name: "Reloj"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(metrics.samples) != 1 || metrics.samples[0].duration != time.Second {
		t.Fatalf("unexpected duration: %+v", metrics.samples)
	}
}
