// Package domain defines the entity value types, invariants, and rule
// evaluation primitives used by obracore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntitySchedule identifies a project schedule record.
	EntitySchedule EntityType = "project_schedule"
	// EntityTask identifies a schedule task record.
	EntityTask EntityType = "schedule_task"
	// EntityMilestone identifies a milestone record.
	EntityMilestone EntityType = "milestone"
	// EntityGalleryProject identifies a gallery project record.
	EntityGalleryProject EntityType = "gallery_project"
	// EntityEvidence identifies an evidence record.
	EntityEvidence EntityType = "evidence"
)

// TaskStatus enumerates the canonical task workflow states.
type TaskStatus string

// Canonical task statuses used for scheduling and transition validation.
const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusOnHold     TaskStatus = "on_hold"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority ranks tasks for presentation and escalation.
type TaskPriority string

// Task priorities recognised by the schedule store.
const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// TaskCategory groups tasks by construction discipline.
type TaskCategory string

// Task categories recognised by the schedule store.
const (
	TaskCategoryDesign        TaskCategory = "design"
	TaskCategoryPermits       TaskCategory = "permits"
	TaskCategoryConstruction  TaskCategory = "construction"
	TaskCategoryDelivery      TaskCategory = "delivery"
	TaskCategoryInspection    TaskCategory = "inspection"
	TaskCategoryDocumentation TaskCategory = "documentation"
	TaskCategoryOther         TaskCategory = "other"
)

// MilestoneImportance ranks milestones.
type MilestoneImportance string

// Milestone importance levels.
const (
	MilestoneImportanceLow      MilestoneImportance = "low"
	MilestoneImportanceNormal   MilestoneImportance = "normal"
	MilestoneImportanceHigh     MilestoneImportance = "high"
	MilestoneImportanceCritical MilestoneImportance = "critical"
)

// EvidenceCategory classifies evidence records captured on site.
type EvidenceCategory string

// Evidence categories recognised by the gallery store.
const (
	EvidenceCategoryProgress  EvidenceCategory = "progress"
	EvidenceCategoryQuality   EvidenceCategory = "quality"
	EvidenceCategorySafety    EvidenceCategory = "safety"
	EvidenceCategoryCompleted EvidenceCategory = "completed"
	EvidenceCategoryOther     EvidenceCategory = "other"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleTask represents one unit of work inside a project schedule. Dates are
// ISO-8601 date strings; Progress is the completed fraction in [0,1].
type ScheduleTask struct {
	Base
	Name           string       `json:"name" validate:"required"`
	Description    *string      `json:"description,omitempty"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	Progress       float64      `json:"progress" validate:"gte=0,lte=1"`
	Status         TaskStatus   `json:"status" validate:"required"`
	Priority       TaskPriority `json:"priority"`
	AssignedTo     []string     `json:"assigned_to"`
	Category       TaskCategory `json:"category"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	ActualHours    *float64     `json:"actual_hours,omitempty" validate:"omitempty,gte=0"`
}

// Milestone marks a dated checkpoint within a schedule.
type Milestone struct {
	Base
	Name          string              `json:"name" validate:"required"`
	Description   *string             `json:"description,omitempty"`
	TargetDate    string              `json:"target_date"`
	IsCompleted   bool                `json:"is_completed"`
	CompletedDate *string             `json:"completed_date,omitempty"`
	Importance    MilestoneImportance `json:"importance"`
}

// ProjectSchedule owns a value-copy of its tasks and milestones; the task and
// milestone stores hold the canonical per-id records. The derived fields are
// recomputed on every schedule write.
type ProjectSchedule struct {
	Base
	ProjectID      string         `json:"project_id" validate:"required"`
	Name           string         `json:"name" validate:"required"`
	Description    *string        `json:"description,omitempty"`
	Tasks          []ScheduleTask `json:"tasks"`
	Milestones     []Milestone    `json:"milestones"`
	Version        int64          `json:"version"`
	LastModifiedBy string         `json:"last_modified_by"`
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	TotalProgress  float64        `json:"total_progress"`
}

// RefreshDerived recomputes the stored aggregates from the embedded task list.
func (s *ProjectSchedule) RefreshDerived() {
	s.TotalTasks = len(s.Tasks)
	s.CompletedTasks = 0
	s.TotalProgress = 0
	if len(s.Tasks) == 0 {
		return
	}
	var sum float64
	for _, t := range s.Tasks {
		if t.Status == TaskStatusCompleted {
			s.CompletedTasks++
		}
		sum += t.Progress
	}
	s.TotalProgress = sum / float64(len(s.Tasks))
}

// TaskIndex returns the position of the task with the given id in the embedded
// list, or -1 when absent.
func (s ProjectSchedule) TaskIndex(id string) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// MilestoneIndex returns the position of the milestone with the given id in
// the embedded list, or -1 when absent.
func (s ProjectSchedule) MilestoneIndex(id string) int {
	for i, m := range s.Milestones {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// GalleryProject is a showcased construction project. EvidenceIDs is the
// back-reference list maintained by the evidence synchronization rules; it
// never contains duplicates. Base.UpdatedAt carries the last-updated stamp.
type GalleryProject struct {
	Base
	ProjectID   *string  `json:"project_id,omitempty"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Style       string   `json:"style"`
	Location    string   `json:"location"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	ImageURL    string   `json:"image_url"`
	EvidenceIDs []string `json:"evidence_ids"`
	IsFavorite  bool     `json:"is_favorite"`
}

// HasEvidence reports whether the back-reference list already holds id.
func (p GalleryProject) HasEvidence(id string) bool {
	for _, existing := range p.EvidenceIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// MediaFile references one stored media object attached to an evidence record.
type MediaFile struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	BlobKey     string `json:"blob_key,omitempty"`
}

// EvidenceMedia groups the media files captured for an evidence record.
type EvidenceMedia struct {
	Files []MediaFile `json:"files"`
}

// Evidence records captured proof of work on a project. Records created
// through the gallery derivation path use the synthetic id
// "evidence_<projectID>" but remain independently mutable afterward.
type Evidence struct {
	Base
	ProjectID   string           `json:"project_id" validate:"required"`
	Title       string           `json:"title" validate:"required"`
	Description *string          `json:"description,omitempty"`
	Category    EvidenceCategory `json:"category"`
	Media       EvidenceMedia    `json:"media"`
	Tags        []string         `json:"tags"`
	CapturedBy  string           `json:"captured_by"`
	CapturedAt  time.Time        `json:"captured_at"`
	Version     int64            `json:"version"`
}

// SyntheticEvidenceID derives the evidence id linked to a gallery project.
func SyntheticEvidenceID(projectID string) string {
	return "evidence_" + projectID
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before ChangePayload
	After  ChangePayload
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}
