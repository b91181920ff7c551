package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(entity EntityType, value any) error {
	err := structValidator.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return ValidationError{
			Entity:  entity,
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
		}
	}
	return ValidationError{Entity: entity, Message: err.Error()}
}

var validTaskStatuses = map[TaskStatus]struct{}{
	TaskStatusNotStarted: {},
	TaskStatusInProgress: {},
	TaskStatusOnHold:     {},
	TaskStatusCompleted:  {},
	TaskStatusCancelled:  {},
}

// Validate checks the task's field constraints and the status/progress
// coupling invariants. It never mutates the receiver.
func (t ScheduleTask) Validate() error {
	if err := validateStruct(EntityTask, t); err != nil {
		return err
	}
	if _, ok := validTaskStatuses[t.Status]; !ok {
		return ValidationError{Entity: EntityTask, Field: "Status", Message: fmt.Sprintf("unknown status %q", t.Status)}
	}
	if t.Status == TaskStatusCompleted && t.Progress != 1.0 {
		return ValidationError{Entity: EntityTask, Field: "Progress", Message: "completed task must have progress 1.0"}
	}
	if t.Status == TaskStatusNotStarted && t.Progress != 0.0 {
		return ValidationError{Entity: EntityTask, Field: "Progress", Message: "not started task must have progress 0.0"}
	}
	return nil
}

// Validate checks the milestone's field constraints and the completion-date
// invariant.
func (m Milestone) Validate() error {
	if err := validateStruct(EntityMilestone, m); err != nil {
		return err
	}
	if m.IsCompleted && (m.CompletedDate == nil || *m.CompletedDate == "") {
		return ValidationError{Entity: EntityMilestone, Field: "CompletedDate", Message: "completed milestone requires a completion date"}
	}
	return nil
}

// Validate checks the schedule's own constraints and those of every embedded
// task and milestone, so a schedule write can never smuggle an invalid leaf
// into the stores.
func (s ProjectSchedule) Validate() error {
	if err := validateStruct(EntitySchedule, s); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID != "" {
			if _, dup := seen[t.ID]; dup {
				return ValidationError{Entity: EntitySchedule, Field: "Tasks", Message: fmt.Sprintf("duplicate task id %s", t.ID)}
			}
			seen[t.ID] = struct{}{}
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, m := range s.Milestones {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the gallery project's constraints, including the
// no-duplicate invariant on the evidence back-reference list.
func (p GalleryProject) Validate() error {
	if err := validateStruct(EntityGalleryProject, p); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(p.EvidenceIDs))
	for _, id := range p.EvidenceIDs {
		if _, dup := seen[id]; dup {
			return ValidationError{Entity: EntityGalleryProject, Field: "EvidenceIDs", Message: fmt.Sprintf("duplicate evidence id %s", id)}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Validate checks the evidence record's field constraints.
func (e Evidence) Validate() error {
	return validateStruct(EntityEvidence, e)
}
