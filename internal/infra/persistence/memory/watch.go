package memory

import (
	"sort"
	"sync"

	"obracore/pkg/domain"
)

// broadcaster fans full collection snapshots out to subscribers. Each
// subscriber owns a buffered channel of capacity one; a slow consumer never
// blocks a commit because the stale snapshot is dropped in favor of the newest
// one. New subscribers receive the current snapshot immediately.
type broadcaster[T any] struct {
	nextID int
	subs   map[int]chan []T
}

func (b *broadcaster[T]) subscribe(replay []T) (chan []T, int) {
	if b.subs == nil {
		b.subs = make(map[int]chan []T)
	}
	id := b.nextID
	b.nextID++
	ch := make(chan []T, 1)
	b.subs[id] = ch
	ch <- replay
	return ch, id
}

func (b *broadcaster[T]) unsubscribe(id int) {
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
}

func (b *broadcaster[T]) publish(snapshot []T) {
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

// watchHub groups one broadcaster per collection. The zero value is ready to
// use. Lock order is always store mutex first, hub mutex second.
type watchHub struct {
	mu         sync.Mutex
	schedules  broadcaster[ProjectSchedule]
	tasks      broadcaster[ScheduleTask]
	milestones broadcaster[Milestone]
	gallery    broadcaster[GalleryProject]
	evidence   broadcaster[Evidence]
}

// publishChanged broadcasts the post-commit snapshot of every collection the
// transaction touched. Untouched collections stay silent.
func (h *watchHub) publishChanged(state memoryState, changes []Change) {
	touched := map[domain.EntityType]bool{}
	for _, c := range changes {
		touched[c.Entity] = true
	}
	if len(touched) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if touched[domain.EntitySchedule] {
		h.schedules.publish(sortedSchedules(state))
	}
	if touched[domain.EntityTask] {
		h.tasks.publish(sortedTasks(state))
	}
	if touched[domain.EntityMilestone] {
		h.milestones.publish(sortedMilestones(state))
	}
	if touched[domain.EntityGalleryProject] {
		h.gallery.publish(sortedGalleryProjects(state))
	}
	if touched[domain.EntityEvidence] {
		h.evidence.publish(sortedEvidence(state))
	}
}

func (h *watchHub) publishAll(state memoryState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.schedules.publish(sortedSchedules(state))
	h.tasks.publish(sortedTasks(state))
	h.milestones.publish(sortedMilestones(state))
	h.gallery.publish(sortedGalleryProjects(state))
	h.evidence.publish(sortedEvidence(state))
}

func sortedSchedules(state memoryState) []ProjectSchedule {
	out := make([]ProjectSchedule, 0, len(state.schedules))
	for _, s := range state.schedules {
		out = append(out, cloneSchedule(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedTasks(state memoryState) []ScheduleTask {
	out := make([]ScheduleTask, 0, len(state.tasks))
	for _, t := range state.tasks {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedMilestones(state memoryState) []Milestone {
	out := make([]Milestone, 0, len(state.milestones))
	for _, m := range state.milestones {
		out = append(out, cloneMilestone(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedGalleryProjects(state memoryState) []GalleryProject {
	out := make([]GalleryProject, 0, len(state.gallery))
	for _, p := range state.gallery {
		out = append(out, cloneGalleryProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedEvidence(state memoryState) []Evidence {
	out := make([]Evidence, 0, len(state.evidence))
	for _, e := range state.evidence {
		out = append(out, cloneEvidence(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WatchSchedules subscribes to schedule collection snapshots. The current
// snapshot is delivered immediately; the returned cancel func closes the
// channel and releases the subscription.
func (s *Store) WatchSchedules() (<-chan []ProjectSchedule, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	ch, id := s.hub.schedules.subscribe(sortedSchedules(s.state))
	return ch, func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		s.hub.schedules.unsubscribe(id)
	}
}

// WatchTasks subscribes to task collection snapshots.
func (s *Store) WatchTasks() (<-chan []ScheduleTask, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	ch, id := s.hub.tasks.subscribe(sortedTasks(s.state))
	return ch, func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		s.hub.tasks.unsubscribe(id)
	}
}

// WatchMilestones subscribes to milestone collection snapshots.
func (s *Store) WatchMilestones() (<-chan []Milestone, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	ch, id := s.hub.milestones.subscribe(sortedMilestones(s.state))
	return ch, func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		s.hub.milestones.unsubscribe(id)
	}
}

// WatchGalleryProjects subscribes to gallery project collection snapshots.
func (s *Store) WatchGalleryProjects() (<-chan []GalleryProject, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	ch, id := s.hub.gallery.subscribe(sortedGalleryProjects(s.state))
	return ch, func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		s.hub.gallery.unsubscribe(id)
	}
}

// WatchEvidence subscribes to evidence collection snapshots.
func (s *Store) WatchEvidence() (<-chan []Evidence, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	ch, id := s.hub.evidence.subscribe(sortedEvidence(s.state))
	return ch, func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		s.hub.evidence.unsubscribe(id)
	}
}
