package core

import (
	"context"
	"testing"
	"time"

	"obracore/pkg/domain"
)

func receiveTasks(t *testing.T, ch <-chan []domain.ScheduleTask) []domain.ScheduleTask {
	t.Helper()
	select {
	case tasks := <-ch:
		return tasks
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for task snapshot")
		return nil
	}
}

func TestServiceWatchStreamsCommits(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	ch, cancel, err := svc.WatchTasks()
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()

	if got := receiveTasks(t, ch); len(got) != 0 {
		t.Fatalf("expected empty replay, got %d", len(got))
	}

	if _, _, err := svc.CreateTask(ctx, domain.ScheduleTask{Base: domain.Base{ID: "t1"}, Name: "Paint", Status: domain.TaskStatusNotStarted}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := receiveTasks(t, ch)
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestServiceWatchGalleryProjects(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())

	ch, cancel, err := svc.WatchGalleryProjects()
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()
	<-ch // replay

	if _, _, err := svc.CreateGalleryProject(context.Background(), domain.GalleryProject{Name: "Observada"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	select {
	case projects := <-ch:
		if len(projects) != 1 {
			t.Fatalf("expected one project, got %d", len(projects))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for project snapshot")
	}
}

type plainStore struct{ PersistentStore }

func TestWatchUnsupportedStore(t *testing.T) {
	svc := NewService(plainStore{NewInMemoryService(NewRulesEngine()).Store()})
	if _, _, err := svc.WatchSchedules(); err != ErrWatchUnsupported {
		t.Fatalf("expected ErrWatchUnsupported, got %v", err)
	}
}
