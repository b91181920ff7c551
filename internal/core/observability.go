package core

import (
	"context"
	"time"

	"obracore/pkg/domain"
)

// Logger receives structured log events from the service. Args are alternating
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus classifies the outcome of an audited operation.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one service operation for the audit trail.
type AuditEntry struct {
	Operation  string
	Entity     domain.EntityType
	Action     domain.Action
	EntityID   string
	Status     AuditStatus
	Error      string
	Duration   time.Duration
	Timestamp  time.Time
	Violations []domain.Violation
}

// AuditRecorder receives audit entries for completed operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// MetricsRecorder observes operation timing and outcome.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan ends a traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// Option customizes a Service.
type Option func(*Service)

// WithLogger installs a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditRecorder installs an audit sink.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.audit = recorder
		}
	}
}

// WithMetricsRecorder installs a metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMediaStore installs the blob store used by AttachEvidenceMedia.
func WithMediaStore(store MediaStore) Option {
	return func(s *Service) {
		s.media = store
	}
}

// WithClock overrides the service clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// run executes fn inside a store transaction wrapped with tracing, metrics,
// audit, and logging. entityID is resolved after the transaction so audit
// entries can carry generated ids.
func (s *Service) run(ctx context.Context, op string, entity domain.EntityType, action domain.Action, entityID func() string, fn func(tx Transaction) error) (Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	started := s.now()
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := s.now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)

	entry := AuditEntry{
		Operation:  op,
		Entity:     entity,
		Action:     action,
		Status:     AuditStatusSuccess,
		Duration:   duration,
		Timestamp:  s.now(),
		Violations: res.Violations,
	}
	if entityID != nil {
		entry.EntityID = entityID()
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)

	if err != nil {
		s.logger.Error("operation failed", "operation", op, "entity", string(entity), "error", err)
	} else {
		s.logger.Debug("operation committed", "operation", op, "entity", string(entity), "entity_id", entry.EntityID)
	}
	return res, err
}
