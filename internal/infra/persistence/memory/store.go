// Package memory provides the canonical in-memory transactional store for the
// obracore domain. It is the store the consistency engine runs on; the sql
// drivers wrap it and mirror its state.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"obracore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// ProjectSchedule aliases domain.ProjectSchedule for in-memory persistence operations.
	ProjectSchedule = domain.ProjectSchedule
	// ScheduleTask aliases domain.ScheduleTask.
	ScheduleTask = domain.ScheduleTask
	// Milestone aliases domain.Milestone.
	Milestone = domain.Milestone
	// GalleryProject aliases domain.GalleryProject.
	GalleryProject = domain.GalleryProject
	// Evidence aliases domain.Evidence.
	Evidence = domain.Evidence
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

func mustApply(label string, err error) {
	if err != nil {
		panic(fmt.Errorf("memory store %s: %w", label, err))
	}
}

type memoryState struct {
	schedules  map[string]ProjectSchedule
	tasks      map[string]ScheduleTask
	milestones map[string]Milestone
	gallery    map[string]GalleryProject
	evidence   map[string]Evidence
}

func newMemoryState() memoryState {
	return memoryState{
		schedules:  make(map[string]ProjectSchedule),
		tasks:      make(map[string]ScheduleTask),
		milestones: make(map[string]Milestone),
		gallery:    make(map[string]GalleryProject),
		evidence:   make(map[string]Evidence),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.schedules {
		cloned.schedules[k] = cloneSchedule(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	for k, v := range s.milestones {
		cloned.milestones[k] = cloneMilestone(v)
	}
	for k, v := range s.gallery {
		cloned.gallery[k] = cloneGalleryProject(v)
	}
	for k, v := range s.evidence {
		cloned.evidence[k] = cloneEvidence(v)
	}
	return cloned
}

func cloneTask(t ScheduleTask) ScheduleTask {
	cp := t
	cp.AssignedTo = append([]string(nil), t.AssignedTo...)
	return cp
}

func cloneMilestone(m Milestone) Milestone { return m }

func cloneSchedule(s ProjectSchedule) ProjectSchedule {
	cp := s
	if s.Tasks != nil {
		cp.Tasks = make([]ScheduleTask, len(s.Tasks))
		for i, t := range s.Tasks {
			cp.Tasks[i] = cloneTask(t)
		}
	}
	cp.Milestones = append([]Milestone(nil), s.Milestones...)
	return cp
}

func cloneGalleryProject(p GalleryProject) GalleryProject {
	cp := p
	cp.EvidenceIDs = append([]string(nil), p.EvidenceIDs...)
	return cp
}

func cloneEvidence(e Evidence) Evidence {
	cp := e
	cp.Tags = append([]string(nil), e.Tags...)
	cp.Media.Files = append([]domain.MediaFile(nil), e.Media.Files...)
	return cp
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Schedules       map[string]ProjectSchedule `json:"schedules"`
	Tasks           map[string]ScheduleTask    `json:"tasks"`
	Milestones      map[string]Milestone       `json:"milestones"`
	GalleryProjects map[string]GalleryProject  `json:"gallery_projects"`
	Evidence        map[string]Evidence        `json:"evidence"`
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Schedules:       make(map[string]ProjectSchedule, len(state.schedules)),
		Tasks:           make(map[string]ScheduleTask, len(state.tasks)),
		Milestones:      make(map[string]Milestone, len(state.milestones)),
		GalleryProjects: make(map[string]GalleryProject, len(state.gallery)),
		Evidence:        make(map[string]Evidence, len(state.evidence)),
	}
	for k, v := range state.schedules {
		s.Schedules[k] = cloneSchedule(v)
	}
	for k, v := range state.tasks {
		s.Tasks[k] = cloneTask(v)
	}
	for k, v := range state.milestones {
		s.Milestones[k] = cloneMilestone(v)
	}
	for k, v := range state.gallery {
		s.GalleryProjects[k] = cloneGalleryProject(v)
	}
	for k, v := range state.evidence {
		s.Evidence[k] = cloneEvidence(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Schedules {
		state.schedules[k] = cloneSchedule(v)
	}
	for k, v := range s.Tasks {
		state.tasks[k] = cloneTask(v)
	}
	for k, v := range s.Milestones {
		state.milestones[k] = cloneMilestone(v)
	}
	for k, v := range s.GalleryProjects {
		state.gallery[k] = cloneGalleryProject(v)
	}
	for k, v := range s.Evidence {
		state.evidence[k] = cloneEvidence(v)
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from mirrors: nil maps become
// empty, derived schedule fields are recomputed, and gallery back-reference
// lists are deduplicated and filtered to evidence that still exists.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Schedules == nil {
		snapshot.Schedules = map[string]ProjectSchedule{}
	}
	if snapshot.Tasks == nil {
		snapshot.Tasks = map[string]ScheduleTask{}
	}
	if snapshot.Milestones == nil {
		snapshot.Milestones = map[string]Milestone{}
	}
	if snapshot.GalleryProjects == nil {
		snapshot.GalleryProjects = map[string]GalleryProject{}
	}
	if snapshot.Evidence == nil {
		snapshot.Evidence = map[string]Evidence{}
	}

	for id, schedule := range snapshot.Schedules {
		schedule.RefreshDerived()
		snapshot.Schedules[id] = schedule
	}

	evidenceExists := func(id string) bool {
		_, ok := snapshot.Evidence[id]
		return ok
	}
	for id, project := range snapshot.GalleryProjects {
		seen := make(map[string]struct{}, len(project.EvidenceIDs))
		kept := project.EvidenceIDs[:0]
		for _, evidenceID := range project.EvidenceIDs {
			if _, dup := seen[evidenceID]; dup || !evidenceExists(evidenceID) {
				continue
			}
			seen[evidenceID] = struct{}{}
			kept = append(kept, evidenceID)
		}
		project.EvidenceIDs = kept
		snapshot.GalleryProjects[id] = project
	}
	return snapshot
}

// Store is the mutex-guarded in-memory transactional store.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	hub    watchHub
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState returns a deep snapshot of the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the committed state with the provided snapshot and
// broadcasts the new contents to all watchers.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
	s.hub.publishAll(s.state)
}

// RulesEngine exposes the engine evaluated at commit time.
func (s *Store) RulesEngine() *RulesEngine {
	return s.engine
}

// NowFunc exposes the store clock, overridable in tests via SetNowFunc.
func (s *Store) NowFunc() func() time.Time {
	return s.nowFn
}

// SetNowFunc overrides the store clock. Intended for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

// RunInTransaction executes fn within a transactional copy of the store state.
// On success the mutated copy is swapped in atomically and the touched
// collections are broadcast to watchers; on any error the committed state is
// left untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	s.hub.publishChanged(s.state, tx.changes)
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// Read helpers ---------------------------------------------------------------

// GetSchedule retrieves a schedule by id from committed state.
func (s *Store) GetSchedule(id string) (ProjectSchedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.state.schedules[id]
	if !ok {
		return ProjectSchedule{}, false
	}
	return cloneSchedule(schedule), true
}

// ListSchedules returns all schedules from committed state.
func (s *Store) ListSchedules() []ProjectSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProjectSchedule, 0, len(s.state.schedules))
	for _, schedule := range s.state.schedules {
		out = append(out, cloneSchedule(schedule))
	}
	return out
}

// GetTask retrieves a task by id from committed state.
func (s *Store) GetTask(id string) (ScheduleTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.state.tasks[id]
	if !ok {
		return ScheduleTask{}, false
	}
	return cloneTask(task), true
}

// ListTasks returns all tasks from committed state.
func (s *Store) ListTasks() []ScheduleTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ScheduleTask, 0, len(s.state.tasks))
	for _, task := range s.state.tasks {
		out = append(out, cloneTask(task))
	}
	return out
}

// GetMilestone retrieves a milestone by id from committed state.
func (s *Store) GetMilestone(id string) (Milestone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	milestone, ok := s.state.milestones[id]
	if !ok {
		return Milestone{}, false
	}
	return cloneMilestone(milestone), true
}

// ListMilestones returns all milestones from committed state.
func (s *Store) ListMilestones() []Milestone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Milestone, 0, len(s.state.milestones))
	for _, milestone := range s.state.milestones {
		out = append(out, cloneMilestone(milestone))
	}
	return out
}

// GetGalleryProject retrieves a gallery project by id from committed state.
func (s *Store) GetGalleryProject(id string) (GalleryProject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.state.gallery[id]
	if !ok {
		return GalleryProject{}, false
	}
	return cloneGalleryProject(project), true
}

// ListGalleryProjects returns all gallery projects from committed state.
func (s *Store) ListGalleryProjects() []GalleryProject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GalleryProject, 0, len(s.state.gallery))
	for _, project := range s.state.gallery {
		out = append(out, cloneGalleryProject(project))
	}
	return out
}

// GetEvidence retrieves an evidence record by id from committed state.
func (s *Store) GetEvidence(id string) (Evidence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evidence, ok := s.state.evidence[id]
	if !ok {
		return Evidence{}, false
	}
	return cloneEvidence(evidence), true
}

// ListEvidence returns all evidence records from committed state.
func (s *Store) ListEvidence() []Evidence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Evidence, 0, len(s.state.evidence))
	for _, evidence := range s.state.evidence {
		out = append(out, cloneEvidence(evidence))
	}
	return out
}
