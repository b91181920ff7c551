package core

import (
	"context"

	"obracore/pkg/domain"
)

// upsertTask writes the task value into the leaf store, creating or replacing
// as needed, and returns the stored value.
func upsertTask(tx Transaction, task domain.ScheduleTask) (domain.ScheduleTask, error) {
	if task.ID != "" {
		if _, ok := tx.FindTask(task.ID); ok {
			return tx.UpdateTask(task.ID, func(cur *domain.ScheduleTask) error {
				*cur = task
				return nil
			})
		}
	}
	return tx.CreateTask(task)
}

func upsertMilestone(tx Transaction, milestone domain.Milestone) (domain.Milestone, error) {
	if milestone.ID != "" {
		if _, ok := tx.FindMilestone(milestone.ID); ok {
			return tx.UpdateMilestone(milestone.ID, func(cur *domain.Milestone) error {
				*cur = milestone
				return nil
			})
		}
	}
	return tx.CreateMilestone(milestone)
}

// taskOwner scans the current snapshot for the first schedule embedding the
// task id. Absence of an owner is not an error; fan-out is simply skipped.
func taskOwner(tx Transaction, taskID string) (domain.ProjectSchedule, bool) {
	for _, schedule := range tx.Snapshot().ListSchedules() {
		if schedule.TaskIndex(taskID) >= 0 {
			return schedule, true
		}
	}
	return domain.ProjectSchedule{}, false
}

func milestoneOwner(tx Transaction, milestoneID string) (domain.ProjectSchedule, bool) {
	for _, schedule := range tx.Snapshot().ListSchedules() {
		if schedule.MilestoneIndex(milestoneID) >= 0 {
			return schedule, true
		}
	}
	return domain.ProjectSchedule{}, false
}

// CreateSchedule persists a schedule as the write-through source for its
// embedded tasks and milestones: every embedded entry is upserted into its
// leaf store within the same transaction.
func (s *Service) CreateSchedule(ctx context.Context, schedule domain.ProjectSchedule) (domain.ProjectSchedule, Result, error) {
	var created domain.ProjectSchedule
	res, err := s.run(ctx, "create_schedule", domain.EntitySchedule, domain.ActionCreate,
		func() string { return created.ID },
		func(tx Transaction) error {
			// The embedded slices share backing arrays with the caller's
			// value; copy them so the stored-value write-back stays local.
			schedule.Tasks = append([]domain.ScheduleTask(nil), schedule.Tasks...)
			schedule.Milestones = append([]domain.Milestone(nil), schedule.Milestones...)
			for i := range schedule.Tasks {
				stored, err := upsertTask(tx, schedule.Tasks[i])
				if err != nil {
					return err
				}
				schedule.Tasks[i] = stored
			}
			for i := range schedule.Milestones {
				stored, err := upsertMilestone(tx, schedule.Milestones[i])
				if err != nil {
					return err
				}
				schedule.Milestones[i] = stored
			}
			var err error
			created, err = tx.CreateSchedule(schedule)
			return err
		})
	return created, res, err
}

// UpdateSchedule applies the mutator to the stored schedule and re-derives the
// task and milestone stores from the resulting embedded lists.
func (s *Service) UpdateSchedule(ctx context.Context, id string, mutator func(*domain.ProjectSchedule) error) (domain.ProjectSchedule, Result, error) {
	var updated domain.ProjectSchedule
	res, err := s.run(ctx, "update_schedule", domain.EntitySchedule, domain.ActionUpdate,
		func() string { return id },
		func(tx Transaction) error {
			draft, ok := tx.FindSchedule(id)
			if !ok {
				return domain.NotFoundError{Entity: domain.EntitySchedule, ID: id}
			}
			if err := mutator(&draft); err != nil {
				return err
			}
			// The mutator may install caller-owned slices; copy before the
			// write-back so the caller's backing arrays stay untouched.
			draft.Tasks = append([]domain.ScheduleTask(nil), draft.Tasks...)
			draft.Milestones = append([]domain.Milestone(nil), draft.Milestones...)
			for i := range draft.Tasks {
				stored, err := upsertTask(tx, draft.Tasks[i])
				if err != nil {
					return err
				}
				draft.Tasks[i] = stored
			}
			for i := range draft.Milestones {
				stored, err := upsertMilestone(tx, draft.Milestones[i])
				if err != nil {
					return err
				}
				draft.Milestones[i] = stored
			}
			var err error
			updated, err = tx.UpdateSchedule(id, func(cur *domain.ProjectSchedule) error {
				*cur = draft
				return nil
			})
			return err
		})
	return updated, res, err
}

// DeleteSchedule removes the schedule and every task and milestone embedded in it.
func (s *Service) DeleteSchedule(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_schedule", domain.EntitySchedule, domain.ActionDelete,
		func() string { return id },
		func(tx Transaction) error {
			schedule, ok := tx.FindSchedule(id)
			if !ok {
				return domain.NotFoundError{Entity: domain.EntitySchedule, ID: id}
			}
			for _, task := range schedule.Tasks {
				if _, ok := tx.FindTask(task.ID); ok {
					if err := tx.DeleteTask(task.ID); err != nil {
						return err
					}
				}
			}
			for _, milestone := range schedule.Milestones {
				if _, ok := tx.FindMilestone(milestone.ID); ok {
					if err := tx.DeleteMilestone(milestone.ID); err != nil {
						return err
					}
				}
			}
			return tx.DeleteSchedule(id)
		})
}

// CreateTask inserts the task into the leaf store (upsert: ids embedded by a
// prior schedule write are replaced in place) and fans the value out into the
// owning schedule's embedded list.
func (s *Service) CreateTask(ctx context.Context, task domain.ScheduleTask) (domain.ScheduleTask, Result, error) {
	var created domain.ScheduleTask
	res, err := s.run(ctx, "create_task", domain.EntityTask, domain.ActionCreate,
		func() string { return created.ID },
		func(tx Transaction) error {
			var err error
			created, err = upsertTask(tx, task)
			if err != nil {
				return err
			}
			return s.fanOutTask(tx, created)
		})
	return created, res, err
}

// UpdateTask applies the mutator to the stored task and replaces the matching
// entry in the owning schedule's embedded list.
func (s *Service) UpdateTask(ctx context.Context, id string, mutator func(*domain.ScheduleTask) error) (domain.ScheduleTask, Result, error) {
	var updated domain.ScheduleTask
	res, err := s.run(ctx, "update_task", domain.EntityTask, domain.ActionUpdate,
		func() string { return id },
		func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateTask(id, mutator)
			if err != nil {
				return err
			}
			return s.fanOutTask(tx, updated)
		})
	return updated, res, err
}

// UpdateTaskStatus transitions the task through the status state machine.
// Entering completed forces progress to 1; entering not_started forces 0.
// Illegal transitions are rejected before any write.
func (s *Service) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) (domain.ScheduleTask, Result, error) {
	return s.UpdateTask(ctx, id, func(task *domain.ScheduleTask) error {
		if err := validateTransition(task.Status, status); err != nil {
			return err
		}
		task.Status = status
		switch status {
		case domain.TaskStatusCompleted:
			task.Progress = 1
		case domain.TaskStatusNotStarted:
			task.Progress = 0
		}
		return nil
	})
}

// UpdateTaskProgress sets the completed fraction of the task.
func (s *Service) UpdateTaskProgress(ctx context.Context, id string, progress float64) (domain.ScheduleTask, Result, error) {
	return s.UpdateTask(ctx, id, func(task *domain.ScheduleTask) error {
		task.Progress = progress
		return nil
	})
}

// DeleteTask removes the task from the leaf store and filters it out of the
// owning schedule's embedded list.
func (s *Service) DeleteTask(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_task", domain.EntityTask, domain.ActionDelete,
		func() string { return id },
		func(tx Transaction) error {
			owner, hasOwner := taskOwner(tx, id)
			if err := tx.DeleteTask(id); err != nil {
				return err
			}
			if !hasOwner {
				return nil
			}
			_, err := tx.UpdateSchedule(owner.ID, func(schedule *domain.ProjectSchedule) error {
				idx := schedule.TaskIndex(id)
				if idx >= 0 {
					schedule.Tasks = append(schedule.Tasks[:idx], schedule.Tasks[idx+1:]...)
				}
				return nil
			})
			return err
		})
}

// CreateMilestone inserts the milestone and fans it out into the owning schedule.
func (s *Service) CreateMilestone(ctx context.Context, milestone domain.Milestone) (domain.Milestone, Result, error) {
	var created domain.Milestone
	res, err := s.run(ctx, "create_milestone", domain.EntityMilestone, domain.ActionCreate,
		func() string { return created.ID },
		func(tx Transaction) error {
			var err error
			created, err = upsertMilestone(tx, milestone)
			if err != nil {
				return err
			}
			return s.fanOutMilestone(tx, created)
		})
	return created, res, err
}

// UpdateMilestone applies the mutator to the stored milestone and replaces the
// matching entry in the owning schedule's embedded list.
func (s *Service) UpdateMilestone(ctx context.Context, id string, mutator func(*domain.Milestone) error) (domain.Milestone, Result, error) {
	var updated domain.Milestone
	res, err := s.run(ctx, "update_milestone", domain.EntityMilestone, domain.ActionUpdate,
		func() string { return id },
		func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateMilestone(id, mutator)
			if err != nil {
				return err
			}
			return s.fanOutMilestone(tx, updated)
		})
	return updated, res, err
}

// DeleteMilestone removes the milestone and filters it out of the owning schedule.
func (s *Service) DeleteMilestone(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_milestone", domain.EntityMilestone, domain.ActionDelete,
		func() string { return id },
		func(tx Transaction) error {
			owner, hasOwner := milestoneOwner(tx, id)
			if err := tx.DeleteMilestone(id); err != nil {
				return err
			}
			if !hasOwner {
				return nil
			}
			_, err := tx.UpdateSchedule(owner.ID, func(schedule *domain.ProjectSchedule) error {
				idx := schedule.MilestoneIndex(id)
				if idx >= 0 {
					schedule.Milestones = append(schedule.Milestones[:idx], schedule.Milestones[idx+1:]...)
				}
				return nil
			})
			return err
		})
}

// fanOutTask replaces the stored task value inside its owning schedule's
// embedded list, bumping the schedule version and refreshing derived fields.
func (s *Service) fanOutTask(tx Transaction, task domain.ScheduleTask) error {
	owner, ok := taskOwner(tx, task.ID)
	if !ok {
		return nil
	}
	_, err := tx.UpdateSchedule(owner.ID, func(schedule *domain.ProjectSchedule) error {
		idx := schedule.TaskIndex(task.ID)
		if idx >= 0 {
			schedule.Tasks[idx] = task
		} else {
			schedule.Tasks = append(schedule.Tasks, task)
		}
		return nil
	})
	return err
}

func (s *Service) fanOutMilestone(tx Transaction, milestone domain.Milestone) error {
	owner, ok := milestoneOwner(tx, milestone.ID)
	if !ok {
		return nil
	}
	_, err := tx.UpdateSchedule(owner.ID, func(schedule *domain.ProjectSchedule) error {
		idx := schedule.MilestoneIndex(milestone.ID)
		if idx >= 0 {
			schedule.Milestones[idx] = milestone
		} else {
			schedule.Milestones = append(schedule.Milestones, milestone)
		}
		return nil
	})
	return err
}
