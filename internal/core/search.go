package core

import (
	"strings"

	"obracore/pkg/domain"
)

// TaskFilter selects tasks at read time. Zero-valued fields match everything;
// results are unsorted.
type TaskFilter struct {
	Status       *domain.TaskStatus
	Category     *domain.TaskCategory
	Priority     *domain.TaskPriority
	AssignedTo   string
	NameContains string
	MinProgress  *float64
	MaxProgress  *float64
}

func (f TaskFilter) matches(task domain.ScheduleTask) bool {
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.Category != nil && task.Category != *f.Category {
		return false
	}
	if f.Priority != nil && task.Priority != *f.Priority {
		return false
	}
	if f.AssignedTo != "" {
		found := false
		for _, assignee := range task.AssignedTo {
			if assignee == f.AssignedTo {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(task.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.MinProgress != nil && task.Progress < *f.MinProgress {
		return false
	}
	if f.MaxProgress != nil && task.Progress > *f.MaxProgress {
		return false
	}
	return true
}

// SearchTasks filters the current task snapshot.
func (s *Service) SearchTasks(filter TaskFilter) []domain.ScheduleTask {
	var out []domain.ScheduleTask
	for _, task := range s.store.ListTasks() {
		if filter.matches(task) {
			out = append(out, task)
		}
	}
	return out
}

// GalleryProjectFilter selects gallery projects at read time.
type GalleryProjectFilter struct {
	Style         string
	Location      string
	NameContains  string
	FavoritesOnly bool
	MinRating     *float64
}

func (f GalleryProjectFilter) matches(project domain.GalleryProject) bool {
	if f.Style != "" && !strings.EqualFold(project.Style, f.Style) {
		return false
	}
	if f.Location != "" && !strings.EqualFold(project.Location, f.Location) {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(project.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.FavoritesOnly && !project.IsFavorite {
		return false
	}
	if f.MinRating != nil && project.Rating < *f.MinRating {
		return false
	}
	return true
}

// SearchGalleryProjects filters the current gallery project snapshot.
func (s *Service) SearchGalleryProjects(filter GalleryProjectFilter) []domain.GalleryProject {
	var out []domain.GalleryProject
	for _, project := range s.store.ListGalleryProjects() {
		if filter.matches(project) {
			out = append(out, project)
		}
	}
	return out
}

// EvidenceFilter selects evidence records at read time.
type EvidenceFilter struct {
	ProjectID     string
	Category      *domain.EvidenceCategory
	Tag           string
	TitleContains string
	CapturedBy    string
}

func (f EvidenceFilter) matches(evidence domain.Evidence) bool {
	if f.ProjectID != "" && evidence.ProjectID != f.ProjectID {
		return false
	}
	if f.Category != nil && evidence.Category != *f.Category {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, tag := range evidence.Tags {
			if tag == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.TitleContains != "" && !strings.Contains(strings.ToLower(evidence.Title), strings.ToLower(f.TitleContains)) {
		return false
	}
	if f.CapturedBy != "" && evidence.CapturedBy != f.CapturedBy {
		return false
	}
	return true
}

// SearchEvidence filters the current evidence snapshot.
func (s *Service) SearchEvidence(filter EvidenceFilter) []domain.Evidence {
	var out []domain.Evidence
	for _, evidence := range s.store.ListEvidence() {
		if filter.matches(evidence) {
			out = append(out, evidence)
		}
	}
	return out
}
