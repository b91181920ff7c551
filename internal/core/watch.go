package core

import (
	"errors"

	"obracore/pkg/domain"
)

// ErrWatchUnsupported is returned when the configured store cannot stream
// collection snapshots.
var ErrWatchUnsupported = errors.New("store does not support watch streams")

// watchableStore is satisfied by the in-memory store and the sql mirrors that
// wrap it.
type watchableStore interface {
	WatchSchedules() (<-chan []domain.ProjectSchedule, func())
	WatchTasks() (<-chan []domain.ScheduleTask, func())
	WatchMilestones() (<-chan []domain.Milestone, func())
	WatchGalleryProjects() (<-chan []domain.GalleryProject, func())
	WatchEvidence() (<-chan []domain.Evidence, func())
}

// WatchSchedules streams the full schedule collection: the current snapshot on
// subscribe, then the post-commit snapshot after every commit touching
// schedules. Rapid commits coalesce to the latest value.
func (s *Service) WatchSchedules() (<-chan []domain.ProjectSchedule, func(), error) {
	w, ok := s.store.(watchableStore)
	if !ok {
		return nil, nil, ErrWatchUnsupported
	}
	ch, cancel := w.WatchSchedules()
	return ch, cancel, nil
}

// WatchTasks streams the task collection.
func (s *Service) WatchTasks() (<-chan []domain.ScheduleTask, func(), error) {
	w, ok := s.store.(watchableStore)
	if !ok {
		return nil, nil, ErrWatchUnsupported
	}
	ch, cancel := w.WatchTasks()
	return ch, cancel, nil
}

// WatchMilestones streams the milestone collection.
func (s *Service) WatchMilestones() (<-chan []domain.Milestone, func(), error) {
	w, ok := s.store.(watchableStore)
	if !ok {
		return nil, nil, ErrWatchUnsupported
	}
	ch, cancel := w.WatchMilestones()
	return ch, cancel, nil
}

// WatchGalleryProjects streams the gallery project collection.
func (s *Service) WatchGalleryProjects() (<-chan []domain.GalleryProject, func(), error) {
	w, ok := s.store.(watchableStore)
	if !ok {
		return nil, nil, ErrWatchUnsupported
	}
	ch, cancel := w.WatchGalleryProjects()
	return ch, cancel, nil
}

// WatchEvidence streams the evidence collection.
func (s *Service) WatchEvidence() (<-chan []domain.Evidence, func(), error) {
	w, ok := s.store.(watchableStore)
	if !ok {
		return nil, nil, ErrWatchUnsupported
	}
	ch, cancel := w.WatchEvidence()
	return ch, cancel, nil
}
