// Package core wires the schedule and gallery synchronization services over a
// persistent store, the commit-time rules engine, and the ambient
// observability stack.
package core

import (
	"time"

	"obracore/internal/blob"
	"obracore/internal/infra/persistence/memory"
	"obracore/pkg/domain"
)

// MediaStore is the blob backend used for evidence media attachments.
type MediaStore = blob.Store

// Service exposes the transactional consistency operations for both store
// pairs. All cross-entity fan-out happens inside a single transaction per
// operation.
type Service struct {
	store   PersistentStore
	media   MediaStore
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	now     func() time.Time
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// Read side -----------------------------------------------------------------

// GetSchedule returns a schedule snapshot or NotFoundError.
func (s *Service) GetSchedule(id string) (domain.ProjectSchedule, error) {
	schedule, ok := s.store.GetSchedule(id)
	if !ok {
		return domain.ProjectSchedule{}, domain.NotFoundError{Entity: domain.EntitySchedule, ID: id}
	}
	return schedule, nil
}

// ListSchedules returns all schedule snapshots.
func (s *Service) ListSchedules() []domain.ProjectSchedule { return s.store.ListSchedules() }

// GetTask returns a task snapshot or NotFoundError.
func (s *Service) GetTask(id string) (domain.ScheduleTask, error) {
	task, ok := s.store.GetTask(id)
	if !ok {
		return domain.ScheduleTask{}, domain.NotFoundError{Entity: domain.EntityTask, ID: id}
	}
	return task, nil
}

// ListTasks returns all task snapshots.
func (s *Service) ListTasks() []domain.ScheduleTask { return s.store.ListTasks() }

// GetMilestone returns a milestone snapshot or NotFoundError.
func (s *Service) GetMilestone(id string) (domain.Milestone, error) {
	milestone, ok := s.store.GetMilestone(id)
	if !ok {
		return domain.Milestone{}, domain.NotFoundError{Entity: domain.EntityMilestone, ID: id}
	}
	return milestone, nil
}

// ListMilestones returns all milestone snapshots.
func (s *Service) ListMilestones() []domain.Milestone { return s.store.ListMilestones() }

// GetGalleryProject returns a gallery project snapshot or NotFoundError.
func (s *Service) GetGalleryProject(id string) (domain.GalleryProject, error) {
	project, ok := s.store.GetGalleryProject(id)
	if !ok {
		return domain.GalleryProject{}, domain.NotFoundError{Entity: domain.EntityGalleryProject, ID: id}
	}
	return project, nil
}

// ListGalleryProjects returns all gallery project snapshots.
func (s *Service) ListGalleryProjects() []domain.GalleryProject {
	return s.store.ListGalleryProjects()
}

// GetEvidence returns an evidence snapshot or NotFoundError.
func (s *Service) GetEvidence(id string) (domain.Evidence, error) {
	evidence, ok := s.store.GetEvidence(id)
	if !ok {
		return domain.Evidence{}, domain.NotFoundError{Entity: domain.EntityEvidence, ID: id}
	}
	return evidence, nil
}

// ListEvidence returns all evidence snapshots.
func (s *Service) ListEvidence() []domain.Evidence { return s.store.ListEvidence() }
