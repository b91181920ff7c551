package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateSchedule(ProjectSchedule) (ProjectSchedule, error)
	UpdateSchedule(id string, mutator func(*ProjectSchedule) error) (ProjectSchedule, error)
	DeleteSchedule(id string) error
	CreateTask(ScheduleTask) (ScheduleTask, error)
	UpdateTask(id string, mutator func(*ScheduleTask) error) (ScheduleTask, error)
	DeleteTask(id string) error
	CreateMilestone(Milestone) (Milestone, error)
	UpdateMilestone(id string, mutator func(*Milestone) error) (Milestone, error)
	DeleteMilestone(id string) error
	CreateGalleryProject(GalleryProject) (GalleryProject, error)
	UpdateGalleryProject(id string, mutator func(*GalleryProject) error) (GalleryProject, error)
	DeleteGalleryProject(id string) error
	CreateEvidence(Evidence) (Evidence, error)
	UpdateEvidence(id string, mutator func(*Evidence) error) (Evidence, error)
	DeleteEvidence(id string) error
	FindSchedule(id string) (ProjectSchedule, bool)
	FindTask(id string) (ScheduleTask, bool)
	FindMilestone(id string) (Milestone, bool)
	FindGalleryProject(id string) (GalleryProject, bool)
	FindEvidence(id string) (Evidence, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over storage backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetSchedule(id string) (ProjectSchedule, bool)
	ListSchedules() []ProjectSchedule
	GetTask(id string) (ScheduleTask, bool)
	ListTasks() []ScheduleTask
	GetMilestone(id string) (Milestone, bool)
	ListMilestones() []Milestone
	GetGalleryProject(id string) (GalleryProject, bool)
	ListGalleryProjects() []GalleryProject
	GetEvidence(id string) (Evidence, bool)
	ListEvidence() []Evidence
}
