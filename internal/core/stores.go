package core

import (
	"context"

	"obracore/pkg/domain"
)

// Store pair owner names reported by UnsupportedError.
const (
	ownerSchedule = "schedule"
	ownerGallery  = "gallery"
)

// ProjectStore is the shared surface implemented by both store pair facades.
// Each facade serves the operations its pair owns and rejects the rest with
// UnsupportedError, so a consumer wired to the wrong pair fails loudly instead
// of silently writing nothing.
type ProjectStore interface {
	CreateSchedule(ctx context.Context, schedule domain.ProjectSchedule) (domain.ProjectSchedule, Result, error)
	UpdateSchedule(ctx context.Context, id string, mutator func(*domain.ProjectSchedule) error) (domain.ProjectSchedule, Result, error)
	DeleteSchedule(ctx context.Context, id string) (Result, error)
	CreateTask(ctx context.Context, task domain.ScheduleTask) (domain.ScheduleTask, Result, error)
	UpdateTask(ctx context.Context, id string, mutator func(*domain.ScheduleTask) error) (domain.ScheduleTask, Result, error)
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) (domain.ScheduleTask, Result, error)
	UpdateTaskProgress(ctx context.Context, id string, progress float64) (domain.ScheduleTask, Result, error)
	DeleteTask(ctx context.Context, id string) (Result, error)
	CreateMilestone(ctx context.Context, milestone domain.Milestone) (domain.Milestone, Result, error)
	UpdateMilestone(ctx context.Context, id string, mutator func(*domain.Milestone) error) (domain.Milestone, Result, error)
	DeleteMilestone(ctx context.Context, id string) (Result, error)
	CreateGalleryProject(ctx context.Context, project domain.GalleryProject) (domain.GalleryProject, Result, error)
	UpdateGalleryProject(ctx context.Context, id string, mutator func(*domain.GalleryProject) error) (domain.GalleryProject, Result, error)
	DeleteGalleryProject(ctx context.Context, id string) (Result, error)
	ToggleFavorite(ctx context.Context, id string) (domain.GalleryProject, Result, error)
	CreateEvidence(ctx context.Context, evidence domain.Evidence) (domain.Evidence, Result, error)
	UpdateEvidence(ctx context.Context, id string, mutator func(*domain.Evidence) error) (domain.Evidence, Result, error)
	DeleteEvidence(ctx context.Context, id string) (Result, error)
}

// ScheduleStore serves the schedule/task/milestone pair.
type ScheduleStore struct {
	svc *Service
}

// NewScheduleStore wraps the service as the schedule-pair facade.
func NewScheduleStore(svc *Service) *ScheduleStore { return &ScheduleStore{svc: svc} }

// GalleryStore serves the gallery-project/evidence pair.
type GalleryStore struct {
	svc *Service
}

// NewGalleryStore wraps the service as the gallery-pair facade.
func NewGalleryStore(svc *Service) *GalleryStore { return &GalleryStore{svc: svc} }

var (
	_ ProjectStore = (*ScheduleStore)(nil)
	_ ProjectStore = (*GalleryStore)(nil)
)

func (s *ScheduleStore) CreateSchedule(ctx context.Context, schedule domain.ProjectSchedule) (domain.ProjectSchedule, Result, error) {
	return s.svc.CreateSchedule(ctx, schedule)
}

func (s *ScheduleStore) UpdateSchedule(ctx context.Context, id string, mutator func(*domain.ProjectSchedule) error) (domain.ProjectSchedule, Result, error) {
	return s.svc.UpdateSchedule(ctx, id, mutator)
}

func (s *ScheduleStore) DeleteSchedule(ctx context.Context, id string) (Result, error) {
	return s.svc.DeleteSchedule(ctx, id)
}

func (s *ScheduleStore) CreateTask(ctx context.Context, task domain.ScheduleTask) (domain.ScheduleTask, Result, error) {
	return s.svc.CreateTask(ctx, task)
}

func (s *ScheduleStore) UpdateTask(ctx context.Context, id string, mutator func(*domain.ScheduleTask) error) (domain.ScheduleTask, Result, error) {
	return s.svc.UpdateTask(ctx, id, mutator)
}

func (s *ScheduleStore) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) (domain.ScheduleTask, Result, error) {
	return s.svc.UpdateTaskStatus(ctx, id, status)
}

func (s *ScheduleStore) UpdateTaskProgress(ctx context.Context, id string, progress float64) (domain.ScheduleTask, Result, error) {
	return s.svc.UpdateTaskProgress(ctx, id, progress)
}

func (s *ScheduleStore) DeleteTask(ctx context.Context, id string) (Result, error) {
	return s.svc.DeleteTask(ctx, id)
}

func (s *ScheduleStore) CreateMilestone(ctx context.Context, milestone domain.Milestone) (domain.Milestone, Result, error) {
	return s.svc.CreateMilestone(ctx, milestone)
}

func (s *ScheduleStore) UpdateMilestone(ctx context.Context, id string, mutator func(*domain.Milestone) error) (domain.Milestone, Result, error) {
	return s.svc.UpdateMilestone(ctx, id, mutator)
}

func (s *ScheduleStore) DeleteMilestone(ctx context.Context, id string) (Result, error) {
	return s.svc.DeleteMilestone(ctx, id)
}

func (s *ScheduleStore) CreateGalleryProject(context.Context, domain.GalleryProject) (domain.GalleryProject, Result, error) {
	return domain.GalleryProject{}, Result{}, domain.UnsupportedError{Op: "CreateGalleryProject", Owner: ownerGallery}
}

func (s *ScheduleStore) UpdateGalleryProject(context.Context, string, func(*domain.GalleryProject) error) (domain.GalleryProject, Result, error) {
	return domain.GalleryProject{}, Result{}, domain.UnsupportedError{Op: "UpdateGalleryProject", Owner: ownerGallery}
}

func (s *ScheduleStore) DeleteGalleryProject(context.Context, string) (Result, error) {
	return Result{}, domain.UnsupportedError{Op: "DeleteGalleryProject", Owner: ownerGallery}
}

func (s *ScheduleStore) ToggleFavorite(context.Context, string) (domain.GalleryProject, Result, error) {
	return domain.GalleryProject{}, Result{}, domain.UnsupportedError{Op: "ToggleFavorite", Owner: ownerGallery}
}

func (s *ScheduleStore) CreateEvidence(context.Context, domain.Evidence) (domain.Evidence, Result, error) {
	return domain.Evidence{}, Result{}, domain.UnsupportedError{Op: "CreateEvidence", Owner: ownerGallery}
}

func (s *ScheduleStore) UpdateEvidence(context.Context, string, func(*domain.Evidence) error) (domain.Evidence, Result, error) {
	return domain.Evidence{}, Result{}, domain.UnsupportedError{Op: "UpdateEvidence", Owner: ownerGallery}
}

func (s *ScheduleStore) DeleteEvidence(context.Context, string) (Result, error) {
	return Result{}, domain.UnsupportedError{Op: "DeleteEvidence", Owner: ownerGallery}
}

func (g *GalleryStore) CreateSchedule(context.Context, domain.ProjectSchedule) (domain.ProjectSchedule, Result, error) {
	return domain.ProjectSchedule{}, Result{}, domain.UnsupportedError{Op: "CreateSchedule", Owner: ownerSchedule}
}

func (g *GalleryStore) UpdateSchedule(context.Context, string, func(*domain.ProjectSchedule) error) (domain.ProjectSchedule, Result, error) {
	return domain.ProjectSchedule{}, Result{}, domain.UnsupportedError{Op: "UpdateSchedule", Owner: ownerSchedule}
}

func (g *GalleryStore) DeleteSchedule(context.Context, string) (Result, error) {
	return Result{}, domain.UnsupportedError{Op: "DeleteSchedule", Owner: ownerSchedule}
}

func (g *GalleryStore) CreateTask(context.Context, domain.ScheduleTask) (domain.ScheduleTask, Result, error) {
	return domain.ScheduleTask{}, Result{}, domain.UnsupportedError{Op: "CreateTask", Owner: ownerSchedule}
}

func (g *GalleryStore) UpdateTask(context.Context, string, func(*domain.ScheduleTask) error) (domain.ScheduleTask, Result, error) {
	return domain.ScheduleTask{}, Result{}, domain.UnsupportedError{Op: "UpdateTask", Owner: ownerSchedule}
}

func (g *GalleryStore) UpdateTaskStatus(context.Context, string, domain.TaskStatus) (domain.ScheduleTask, Result, error) {
	return domain.ScheduleTask{}, Result{}, domain.UnsupportedError{Op: "UpdateTaskStatus", Owner: ownerSchedule}
}

func (g *GalleryStore) UpdateTaskProgress(context.Context, string, float64) (domain.ScheduleTask, Result, error) {
	return domain.ScheduleTask{}, Result{}, domain.UnsupportedError{Op: "UpdateTaskProgress", Owner: ownerSchedule}
}

func (g *GalleryStore) DeleteTask(context.Context, string) (Result, error) {
	return Result{}, domain.UnsupportedError{Op: "DeleteTask", Owner: ownerSchedule}
}

func (g *GalleryStore) CreateMilestone(context.Context, domain.Milestone) (domain.Milestone, Result, error) {
	return domain.Milestone{}, Result{}, domain.UnsupportedError{Op: "CreateMilestone", Owner: ownerSchedule}
}

func (g *GalleryStore) UpdateMilestone(context.Context, string, func(*domain.Milestone) error) (domain.Milestone, Result, error) {
	return domain.Milestone{}, Result{}, domain.UnsupportedError{Op: "UpdateMilestone", Owner: ownerSchedule}
}

func (g *GalleryStore) DeleteMilestone(context.Context, string) (Result, error) {
	return Result{}, domain.UnsupportedError{Op: "DeleteMilestone", Owner: ownerSchedule}
}

func (g *GalleryStore) CreateGalleryProject(ctx context.Context, project domain.GalleryProject) (domain.GalleryProject, Result, error) {
	return g.svc.CreateGalleryProject(ctx, project)
}

func (g *GalleryStore) UpdateGalleryProject(ctx context.Context, id string, mutator func(*domain.GalleryProject) error) (domain.GalleryProject, Result, error) {
	return g.svc.UpdateGalleryProject(ctx, id, mutator)
}

func (g *GalleryStore) DeleteGalleryProject(ctx context.Context, id string) (Result, error) {
	return g.svc.DeleteGalleryProject(ctx, id)
}

func (g *GalleryStore) ToggleFavorite(ctx context.Context, id string) (domain.GalleryProject, Result, error) {
	return g.svc.ToggleFavorite(ctx, id)
}

func (g *GalleryStore) CreateEvidence(ctx context.Context, evidence domain.Evidence) (domain.Evidence, Result, error) {
	return g.svc.CreateEvidence(ctx, evidence)
}

func (g *GalleryStore) UpdateEvidence(ctx context.Context, id string, mutator func(*domain.Evidence) error) (domain.Evidence, Result, error) {
	return g.svc.UpdateEvidence(ctx, id, mutator)
}

func (g *GalleryStore) DeleteEvidence(ctx context.Context, id string) (Result, error) {
	return g.svc.DeleteEvidence(ctx, id)
}
