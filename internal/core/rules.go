package core

import (
	"context"
	"encoding/json"
	"fmt"

	"obracore/pkg/domain"
)

// taskTransitions is the status state machine. Completed and cancelled are
// terminal; cancelled is reachable from any non-terminal state.
var taskTransitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusNotStarted: {domain.TaskStatusInProgress, domain.TaskStatusCancelled},
	domain.TaskStatusInProgress: {domain.TaskStatusOnHold, domain.TaskStatusCompleted, domain.TaskStatusCancelled},
	domain.TaskStatusOnHold:     {domain.TaskStatusInProgress, domain.TaskStatusCancelled},
	domain.TaskStatusCompleted:  {},
	domain.TaskStatusCancelled:  {},
}

// validateTransition rejects status moves not permitted by the task state
// machine. Staying in the current status is always allowed.
func validateTransition(from, to domain.TaskStatus) error {
	if from == to {
		return nil
	}
	allowed, ok := taskTransitions[from]
	if !ok {
		return domain.ValidationError{Entity: domain.EntityTask, Field: "Status", Message: fmt.Sprintf("unknown status %s", from)}
	}
	for _, next := range allowed {
		if next == to {
			return nil
		}
	}
	return domain.ValidationError{Entity: domain.EntityTask, Field: "Status", Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

func decodeChangePayload[T any](payload domain.ChangePayload) (T, bool) {
	var value T
	if !payload.HasRecord() {
		return value, false
	}
	if err := json.Unmarshal(payload.Raw(), &value); err != nil {
		return value, false
	}
	return value, true
}

// TaskTransitionRule blocks commits whose change log moves a task through an
// illegal status transition. It is a backstop behind the service-level check:
// direct transaction writes are held to the same machine.
func TaskTransitionRule() domain.Rule {
	return taskTransitionRule{}
}

type taskTransitionRule struct{}

func (taskTransitionRule) Name() string { return "task_transition" }

func (taskTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityTask || change.Action != domain.ActionUpdate {
			continue
		}
		before, ok := decodeChangePayload[domain.ScheduleTask](change.Before)
		if !ok {
			continue
		}
		after, ok := decodeChangePayload[domain.ScheduleTask](change.After)
		if !ok {
			continue
		}
		if err := validateTransition(before.Status, after.Status); err != nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "task_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("task %s: %v", after.ID, err),
				Entity:   domain.EntityTask,
				EntityID: after.ID,
			})
		}
	}
	return res, nil
}

// ScheduleIntegrityRule blocks commits that leave the schedule store and the
// task/milestone stores out of sync: every embedded id must exist in its leaf
// store, and no leaf may be embedded by two schedules.
func ScheduleIntegrityRule() domain.Rule {
	return scheduleIntegrityRule{}
}

type scheduleIntegrityRule struct{}

func (scheduleIntegrityRule) Name() string { return "schedule_integrity" }

func (scheduleIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	touchedSchedules := false
	for _, change := range changes {
		switch change.Entity {
		case domain.EntitySchedule, domain.EntityTask, domain.EntityMilestone:
			touchedSchedules = true
		}
	}
	if !touchedSchedules {
		return res, nil
	}

	taskOwners := map[string]string{}
	milestoneOwners := map[string]string{}
	for _, schedule := range view.ListSchedules() {
		for _, task := range schedule.Tasks {
			if _, ok := view.FindTask(task.ID); !ok {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "schedule_integrity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("schedule %s embeds task %s absent from the task store", schedule.ID, task.ID),
					Entity:   domain.EntitySchedule,
					EntityID: schedule.ID,
				})
			}
			if owner, dup := taskOwners[task.ID]; dup {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "schedule_integrity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("task %s is embedded by schedules %s and %s", task.ID, owner, schedule.ID),
					Entity:   domain.EntityTask,
					EntityID: task.ID,
				})
				continue
			}
			taskOwners[task.ID] = schedule.ID
		}
		for _, milestone := range schedule.Milestones {
			if milestone.IsCompleted && (milestone.CompletedDate == nil || *milestone.CompletedDate == "") {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "schedule_integrity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("completed milestone %s has no completion date", milestone.ID),
					Entity:   domain.EntityMilestone,
					EntityID: milestone.ID,
				})
			}
			if _, ok := view.FindMilestone(milestone.ID); !ok {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "schedule_integrity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("schedule %s embeds milestone %s absent from the milestone store", schedule.ID, milestone.ID),
					Entity:   domain.EntitySchedule,
					EntityID: schedule.ID,
				})
			}
			if owner, dup := milestoneOwners[milestone.ID]; dup {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "schedule_integrity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("milestone %s is embedded by schedules %s and %s", milestone.ID, owner, schedule.ID),
					Entity:   domain.EntityMilestone,
					EntityID: milestone.ID,
				})
				continue
			}
			milestoneOwners[milestone.ID] = schedule.ID
		}
	}
	return res, nil
}

// NewDefaultRulesEngine returns an engine with the standard commit rules registered.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(TaskTransitionRule())
	engine.Register(ScheduleIntegrityRule())
	return engine
}
