package memory

import (
	"fmt"
	"time"

	"obracore/pkg/domain"
)

var _ Transaction = (*transaction)(nil)

// transaction applies mutations to a private clone of the store state. Nothing
// becomes visible to readers until RunInTransaction swaps the clone in. All
// writes within one transaction share a single timestamp.
type transaction struct {
	store   *Store
	state   memoryState
	now     time.Time
	changes []Change
}

func (t *transaction) recordChange(entity domain.EntityType, action domain.Action, before, after any) {
	change := Change{Entity: entity, Action: action}
	if before != nil {
		payload, err := domain.NewChangePayloadFromValue(before)
		mustApply("encode change before", err)
		change.Before = payload
	}
	if after != nil {
		payload, err := domain.NewChangePayloadFromValue(after)
		mustApply("encode change after", err)
		change.After = payload
	}
	t.changes = append(t.changes, change)
}

// Snapshot exposes the in-flight state for reads within the transaction.
func (t *transaction) Snapshot() TransactionView {
	return newTransactionView(&t.state)
}

// Schedules -----------------------------------------------------------------

func (t *transaction) CreateSchedule(schedule ProjectSchedule) (ProjectSchedule, error) {
	if schedule.ID == "" {
		schedule.ID = t.store.newID()
	}
	if _, exists := t.state.schedules[schedule.ID]; exists {
		return ProjectSchedule{}, fmt.Errorf("schedule %s already exists", schedule.ID)
	}
	now := t.now
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	schedule.Version = 1
	schedule.RefreshDerived()
	if err := schedule.Validate(); err != nil {
		return ProjectSchedule{}, err
	}
	t.state.schedules[schedule.ID] = cloneSchedule(schedule)
	t.recordChange(domain.EntitySchedule, domain.ActionCreate, nil, schedule)
	return cloneSchedule(schedule), nil
}

func (t *transaction) UpdateSchedule(id string, mutator func(*ProjectSchedule) error) (ProjectSchedule, error) {
	existing, ok := t.state.schedules[id]
	if !ok {
		return ProjectSchedule{}, domain.NotFoundError{Entity: domain.EntitySchedule, ID: id}
	}
	before := cloneSchedule(existing)
	updated := cloneSchedule(existing)
	if err := mutator(&updated); err != nil {
		return ProjectSchedule{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = t.now
	updated.Version = existing.Version + 1
	updated.RefreshDerived()
	if err := updated.Validate(); err != nil {
		return ProjectSchedule{}, err
	}
	t.state.schedules[id] = cloneSchedule(updated)
	t.recordChange(domain.EntitySchedule, domain.ActionUpdate, before, updated)
	return cloneSchedule(updated), nil
}

func (t *transaction) DeleteSchedule(id string) error {
	existing, ok := t.state.schedules[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntitySchedule, ID: id}
	}
	delete(t.state.schedules, id)
	t.recordChange(domain.EntitySchedule, domain.ActionDelete, existing, nil)
	return nil
}

// Tasks ---------------------------------------------------------------------

func (t *transaction) CreateTask(task ScheduleTask) (ScheduleTask, error) {
	if task.ID == "" {
		task.ID = t.store.newID()
	}
	if _, exists := t.state.tasks[task.ID]; exists {
		return ScheduleTask{}, fmt.Errorf("task %s already exists", task.ID)
	}
	now := t.now
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = domain.TaskStatusNotStarted
	}
	if err := task.Validate(); err != nil {
		return ScheduleTask{}, err
	}
	t.state.tasks[task.ID] = cloneTask(task)
	t.recordChange(domain.EntityTask, domain.ActionCreate, nil, task)
	return cloneTask(task), nil
}

func (t *transaction) UpdateTask(id string, mutator func(*ScheduleTask) error) (ScheduleTask, error) {
	existing, ok := t.state.tasks[id]
	if !ok {
		return ScheduleTask{}, domain.NotFoundError{Entity: domain.EntityTask, ID: id}
	}
	before := cloneTask(existing)
	updated := cloneTask(existing)
	if err := mutator(&updated); err != nil {
		return ScheduleTask{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = t.now
	if err := updated.Validate(); err != nil {
		return ScheduleTask{}, err
	}
	t.state.tasks[id] = cloneTask(updated)
	t.recordChange(domain.EntityTask, domain.ActionUpdate, before, updated)
	return cloneTask(updated), nil
}

func (t *transaction) DeleteTask(id string) error {
	existing, ok := t.state.tasks[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityTask, ID: id}
	}
	delete(t.state.tasks, id)
	t.recordChange(domain.EntityTask, domain.ActionDelete, existing, nil)
	return nil
}

// Milestones ----------------------------------------------------------------

func (t *transaction) CreateMilestone(milestone Milestone) (Milestone, error) {
	if milestone.ID == "" {
		milestone.ID = t.store.newID()
	}
	if _, exists := t.state.milestones[milestone.ID]; exists {
		return Milestone{}, fmt.Errorf("milestone %s already exists", milestone.ID)
	}
	now := t.now
	milestone.CreatedAt = now
	milestone.UpdatedAt = now
	if err := milestone.Validate(); err != nil {
		return Milestone{}, err
	}
	t.state.milestones[milestone.ID] = cloneMilestone(milestone)
	t.recordChange(domain.EntityMilestone, domain.ActionCreate, nil, milestone)
	return cloneMilestone(milestone), nil
}

func (t *transaction) UpdateMilestone(id string, mutator func(*Milestone) error) (Milestone, error) {
	existing, ok := t.state.milestones[id]
	if !ok {
		return Milestone{}, domain.NotFoundError{Entity: domain.EntityMilestone, ID: id}
	}
	before := cloneMilestone(existing)
	updated := cloneMilestone(existing)
	if err := mutator(&updated); err != nil {
		return Milestone{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = t.now
	if err := updated.Validate(); err != nil {
		return Milestone{}, err
	}
	t.state.milestones[id] = cloneMilestone(updated)
	t.recordChange(domain.EntityMilestone, domain.ActionUpdate, before, updated)
	return cloneMilestone(updated), nil
}

func (t *transaction) DeleteMilestone(id string) error {
	existing, ok := t.state.milestones[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityMilestone, ID: id}
	}
	delete(t.state.milestones, id)
	t.recordChange(domain.EntityMilestone, domain.ActionDelete, existing, nil)
	return nil
}

// Gallery projects ----------------------------------------------------------

func (t *transaction) CreateGalleryProject(project GalleryProject) (GalleryProject, error) {
	if project.ID == "" {
		project.ID = t.store.newID()
	}
	if _, exists := t.state.gallery[project.ID]; exists {
		return GalleryProject{}, fmt.Errorf("gallery project %s already exists", project.ID)
	}
	now := t.now
	project.CreatedAt = now
	project.UpdatedAt = now
	if err := project.Validate(); err != nil {
		return GalleryProject{}, err
	}
	t.state.gallery[project.ID] = cloneGalleryProject(project)
	t.recordChange(domain.EntityGalleryProject, domain.ActionCreate, nil, project)
	return cloneGalleryProject(project), nil
}

func (t *transaction) UpdateGalleryProject(id string, mutator func(*GalleryProject) error) (GalleryProject, error) {
	existing, ok := t.state.gallery[id]
	if !ok {
		return GalleryProject{}, domain.NotFoundError{Entity: domain.EntityGalleryProject, ID: id}
	}
	before := cloneGalleryProject(existing)
	updated := cloneGalleryProject(existing)
	if err := mutator(&updated); err != nil {
		return GalleryProject{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = t.now
	if err := updated.Validate(); err != nil {
		return GalleryProject{}, err
	}
	t.state.gallery[id] = cloneGalleryProject(updated)
	t.recordChange(domain.EntityGalleryProject, domain.ActionUpdate, before, updated)
	return cloneGalleryProject(updated), nil
}

func (t *transaction) DeleteGalleryProject(id string) error {
	existing, ok := t.state.gallery[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityGalleryProject, ID: id}
	}
	delete(t.state.gallery, id)
	t.recordChange(domain.EntityGalleryProject, domain.ActionDelete, existing, nil)
	return nil
}

// Evidence ------------------------------------------------------------------

func (t *transaction) CreateEvidence(evidence Evidence) (Evidence, error) {
	if evidence.ID == "" {
		evidence.ID = t.store.newID()
	}
	if _, exists := t.state.evidence[evidence.ID]; exists {
		return Evidence{}, fmt.Errorf("evidence %s already exists", evidence.ID)
	}
	now := t.now
	evidence.CreatedAt = now
	evidence.UpdatedAt = now
	evidence.Version = 1
	if evidence.CapturedAt.IsZero() {
		evidence.CapturedAt = now
	}
	if err := evidence.Validate(); err != nil {
		return Evidence{}, err
	}
	t.state.evidence[evidence.ID] = cloneEvidence(evidence)
	t.recordChange(domain.EntityEvidence, domain.ActionCreate, nil, evidence)
	return cloneEvidence(evidence), nil
}

func (t *transaction) UpdateEvidence(id string, mutator func(*Evidence) error) (Evidence, error) {
	existing, ok := t.state.evidence[id]
	if !ok {
		return Evidence{}, domain.NotFoundError{Entity: domain.EntityEvidence, ID: id}
	}
	before := cloneEvidence(existing)
	updated := cloneEvidence(existing)
	if err := mutator(&updated); err != nil {
		return Evidence{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = t.now
	updated.Version = existing.Version + 1
	if err := updated.Validate(); err != nil {
		return Evidence{}, err
	}
	t.state.evidence[id] = cloneEvidence(updated)
	t.recordChange(domain.EntityEvidence, domain.ActionUpdate, before, updated)
	return cloneEvidence(updated), nil
}

func (t *transaction) DeleteEvidence(id string) error {
	existing, ok := t.state.evidence[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityEvidence, ID: id}
	}
	delete(t.state.evidence, id)
	t.recordChange(domain.EntityEvidence, domain.ActionDelete, existing, nil)
	return nil
}

// Finds ---------------------------------------------------------------------

func (t *transaction) FindSchedule(id string) (ProjectSchedule, bool) {
	return t.Snapshot().FindSchedule(id)
}

func (t *transaction) FindTask(id string) (ScheduleTask, bool) {
	return t.Snapshot().FindTask(id)
}

func (t *transaction) FindMilestone(id string) (Milestone, bool) {
	return t.Snapshot().FindMilestone(id)
}

func (t *transaction) FindGalleryProject(id string) (GalleryProject, bool) {
	return t.Snapshot().FindGalleryProject(id)
}

func (t *transaction) FindEvidence(id string) (Evidence, bool) {
	return t.Snapshot().FindEvidence(id)
}

// transactionView is the read-only adapter handed to rules and View callers.
type transactionView struct {
	state *memoryState
}

var _ TransactionView = transactionView{}

func newTransactionView(state *memoryState) transactionView {
	return transactionView{state: state}
}

func (v transactionView) ListSchedules() []ProjectSchedule {
	out := make([]ProjectSchedule, 0, len(v.state.schedules))
	for _, schedule := range v.state.schedules {
		out = append(out, cloneSchedule(schedule))
	}
	return out
}

func (v transactionView) ListTasks() []ScheduleTask {
	out := make([]ScheduleTask, 0, len(v.state.tasks))
	for _, task := range v.state.tasks {
		out = append(out, cloneTask(task))
	}
	return out
}

func (v transactionView) ListMilestones() []Milestone {
	out := make([]Milestone, 0, len(v.state.milestones))
	for _, milestone := range v.state.milestones {
		out = append(out, cloneMilestone(milestone))
	}
	return out
}

func (v transactionView) ListGalleryProjects() []GalleryProject {
	out := make([]GalleryProject, 0, len(v.state.gallery))
	for _, project := range v.state.gallery {
		out = append(out, cloneGalleryProject(project))
	}
	return out
}

func (v transactionView) ListEvidence() []Evidence {
	out := make([]Evidence, 0, len(v.state.evidence))
	for _, evidence := range v.state.evidence {
		out = append(out, cloneEvidence(evidence))
	}
	return out
}

func (v transactionView) FindSchedule(id string) (ProjectSchedule, bool) {
	schedule, ok := v.state.schedules[id]
	if !ok {
		return ProjectSchedule{}, false
	}
	return cloneSchedule(schedule), true
}

func (v transactionView) FindTask(id string) (ScheduleTask, bool) {
	task, ok := v.state.tasks[id]
	if !ok {
		return ScheduleTask{}, false
	}
	return cloneTask(task), true
}

func (v transactionView) FindMilestone(id string) (Milestone, bool) {
	milestone, ok := v.state.milestones[id]
	if !ok {
		return Milestone{}, false
	}
	return cloneMilestone(milestone), true
}

func (v transactionView) FindGalleryProject(id string) (GalleryProject, bool) {
	project, ok := v.state.gallery[id]
	if !ok {
		return GalleryProject{}, false
	}
	return cloneGalleryProject(project), true
}

func (v transactionView) FindEvidence(id string) (Evidence, bool) {
	evidence, ok := v.state.evidence[id]
	if !ok {
		return Evidence{}, false
	}
	return cloneEvidence(evidence), true
}
