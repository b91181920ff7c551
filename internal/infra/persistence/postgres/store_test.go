package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"obracore/pkg/domain"
)

func TestNewStoreEnsuresStateTableAndLoadsSnapshot(t *testing.T) {
	db, conn := newStubDB()
	conn.buckets["tasks"] = []byte(`{"t1":{"id":"t1","name":"Excavation","status":"in_progress","progress":0.3}}`)

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := len(store.ListTasks()); got != 1 {
		t.Fatalf("expected 1 task hydrated from snapshot, got %d", got)
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS state") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.execs)
	}
}

func TestNewStoreOpenErrorPropagates(t *testing.T) {
	boom := errors.New("no socket")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, boom })
	defer restore()

	if _, err := NewStore("postgres://unreachable", domain.NewRulesEngine()); !errors.Is(err, boom) {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestRunInTransactionPersistsAllBuckets(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, txErr := tx.CreateEvidence(domain.Evidence{ProjectID: "p1", Title: "Slab poured"})
		return txErr
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	for _, bucket := range postgresBuckets {
		if _, ok := conn.buckets[bucket]; !ok {
			t.Fatalf("bucket %s not persisted", bucket)
		}
	}
	if !strings.Contains(string(conn.buckets["evidence"]), "Slab poured") {
		t.Fatalf("evidence payload missing record: %s", conn.buckets["evidence"])
	}
}

func TestSnapshotRoundTripThroughStubPostgres(t *testing.T) {
	db, _ := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, txErr := tx.CreateGalleryProject(domain.GalleryProject{Base: domain.Base{ID: "g1"}, Name: "Villa Sur"})
		return txErr
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// A second store over the same connection must hydrate the committed state.
	reloaded, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := reloaded.GetGalleryProject("g1"); !ok {
		t.Fatalf("gallery project lost across reload")
	}
}
