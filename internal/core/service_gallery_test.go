package core

import (
	"context"
	"strings"
	"testing"

	"obracore/internal/blob"
	"obracore/pkg/domain"
)

func TestCreateGalleryProjectDerivesSyntheticEvidence(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())

	project, _, err := svc.CreateGalleryProject(context.Background(), domain.GalleryProject{
		Name:        "Casa del Lago",
		Description: "Residencia frente al lago",
		Style:       "moderno",
		Location:    "Valdivia",
		ImageURL:    "https://cdn.example.com/lago.jpg",
	})
	if err != nil {
		t.Fatalf("create gallery project: %v", err)
	}

	evidenceID := domain.SyntheticEvidenceID(project.ID)
	if !project.HasEvidence(evidenceID) {
		t.Fatalf("back-reference missing: %+v", project.EvidenceIDs)
	}

	evidence, err := svc.GetEvidence(evidenceID)
	if err != nil {
		t.Fatalf("synthetic evidence missing: %v", err)
	}
	if evidence.Title != "Proyecto Completado: Casa del Lago" {
		t.Fatalf("unexpected title %q", evidence.Title)
	}
	if evidence.Category != domain.EvidenceCategoryCompleted {
		t.Fatalf("unexpected category %s", evidence.Category)
	}
	if evidence.ProjectID != project.ID {
		t.Fatalf("unexpected project reference %q", evidence.ProjectID)
	}
	if evidence.Version != 1 {
		t.Fatalf("expected version 1, got %d", evidence.Version)
	}
	if len(evidence.Media.Files) != 1 || evidence.Media.Files[0].URL != "https://cdn.example.com/lago.jpg" {
		t.Fatalf("image not carried over: %+v", evidence.Media.Files)
	}
	if len(evidence.Tags) != 2 || evidence.Tags[0] != "moderno" || evidence.Tags[1] != "Valdivia" {
		t.Fatalf("tags not derived from style/location: %+v", evidence.Tags)
	}
}

func TestSyntheticEvidenceIsIndependentCopy(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Torre Sur"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	evidenceID := domain.SyntheticEvidenceID(project.ID)

	// Mutating the evidence directly must not write back into the project name.
	if _, _, err := svc.UpdateEvidence(ctx, evidenceID, func(e *domain.Evidence) error {
		e.Title = "Renamed by inspector"
		return nil
	}); err != nil {
		t.Fatalf("update evidence: %v", err)
	}
	got, _ := svc.GetGalleryProject(project.ID)
	if got.Name != "Torre Sur" {
		t.Fatalf("project name mutated: %q", got.Name)
	}
}

func TestUpdateGalleryProjectPatchesSyntheticEvidence(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Torre Norte"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := svc.UpdateGalleryProject(ctx, project.ID, func(p *domain.GalleryProject) error {
		p.Name = "Torre Norte II"
		p.Description = "Segunda etapa"
		p.Style = "industrial"
		p.Location = "Antofagasta"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	evidence, err := svc.GetEvidence(domain.SyntheticEvidenceID(project.ID))
	if err != nil {
		t.Fatalf("get evidence: %v", err)
	}
	if evidence.Title != "Proyecto Completado: Torre Norte II" {
		t.Fatalf("title not patched: %q", evidence.Title)
	}
	if evidence.Description == nil || *evidence.Description != "Segunda etapa" {
		t.Fatalf("description not patched: %v", evidence.Description)
	}
	if len(evidence.Tags) != 2 || evidence.Tags[0] != "industrial" || evidence.Tags[1] != "Antofagasta" {
		t.Fatalf("tags not patched: %+v", evidence.Tags)
	}
	if evidence.Version != 2 {
		t.Fatalf("expected version bump to 2, got %d", evidence.Version)
	}
}

func TestUpdateGalleryProjectNeverRecreatesSyntheticEvidence(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Bodega"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	evidenceID := domain.SyntheticEvidenceID(project.ID)
	if _, err := svc.DeleteEvidence(ctx, evidenceID); err != nil {
		t.Fatalf("delete evidence: %v", err)
	}

	if _, _, err := svc.UpdateGalleryProject(ctx, project.ID, func(p *domain.GalleryProject) error {
		p.Name = "Bodega Central"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.GetEvidence(evidenceID); !domain.IsNotFound(err) {
		t.Fatalf("synthetic evidence must stay deleted, got %v", err)
	}
}

func TestDeleteGalleryProjectRemovesSyntheticEvidence(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Demolición", ImageURL: "x.jpg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.DeleteGalleryProject(ctx, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetGalleryProject(project.ID); !domain.IsNotFound(err) {
		t.Fatalf("project must be gone, got %v", err)
	}
	if _, err := svc.GetEvidence(domain.SyntheticEvidenceID(project.ID)); !domain.IsNotFound(err) {
		t.Fatalf("evidence must be gone, got %v", err)
	}
}

func TestEvidenceWritePatchesRelatedProject(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	linked := "obra-17"
	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Obra 17", ProjectID: &linked})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	desc := "Losa del tercer piso terminada"
	evidence, _, err := svc.CreateEvidence(ctx, domain.Evidence{
		ProjectID:   linked,
		Title:       "Avance de losa",
		Description: &desc,
		Category:    domain.EvidenceCategoryProgress,
	})
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}

	got, _ := svc.GetGalleryProject(project.ID)
	if got.Description != desc {
		t.Fatalf("description not patched: %q", got.Description)
	}
	if !got.HasEvidence(evidence.ID) {
		t.Fatalf("back-reference missing: %+v", got.EvidenceIDs)
	}

	// Re-running the write must not duplicate the back-reference.
	if _, _, err := svc.UpdateEvidence(ctx, evidence.ID, func(e *domain.Evidence) error {
		e.Tags = append(e.Tags, "losa")
		return nil
	}); err != nil {
		t.Fatalf("update evidence: %v", err)
	}
	got, _ = svc.GetGalleryProject(project.ID)
	count := 0
	for _, id := range got.EvidenceIDs {
		if id == evidence.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("back-reference duplicated: %+v", got.EvidenceIDs)
	}
}

func TestEvidenceWithoutRelatedProjectCommits(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())

	evidence, _, err := svc.CreateEvidence(context.Background(), domain.Evidence{
		ProjectID: "unlinked",
		Title:     "Inspección suelta",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GetEvidence(evidence.ID); err != nil {
		t.Fatalf("evidence must be stored: %v", err)
	}
}

func TestDeleteEvidenceFiltersBackReference(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Plaza"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	evidenceID := domain.SyntheticEvidenceID(project.ID)

	if _, err := svc.DeleteEvidence(ctx, evidenceID); err != nil {
		t.Fatalf("delete evidence: %v", err)
	}
	got, _ := svc.GetGalleryProject(project.ID)
	if got.HasEvidence(evidenceID) {
		t.Fatalf("back-reference survived delete: %+v", got.EvidenceIDs)
	}
}

func TestToggleFavorite(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Mirador"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	toggled, _, err := svc.ToggleFavorite(ctx, project.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsFavorite {
		t.Fatalf("expected favorite after first toggle")
	}
	toggled, _, err = svc.ToggleFavorite(ctx, project.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if toggled.IsFavorite {
		t.Fatalf("expected not favorite after second toggle")
	}

	if _, _, err := svc.ToggleFavorite(ctx, "ghost"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAttachEvidenceMedia(t *testing.T) {
	media := blob.NewMemory()
	svc := NewInMemoryService(NewRulesEngine(), WithMediaStore(media))
	ctx := context.Background()

	project, _, err := svc.CreateGalleryProject(ctx, domain.GalleryProject{Name: "Puente"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	evidenceID := domain.SyntheticEvidenceID(project.ID)

	evidence, _, err := svc.AttachEvidenceMedia(ctx, evidenceID, "losa.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	files := evidence.Media.Files
	if len(files) != 1 {
		t.Fatalf("expected one media file, got %+v", files)
	}
	file := files[0]
	if file.BlobKey != "evidence/"+evidenceID+"/losa.jpg" {
		t.Fatalf("unexpected blob key %q", file.BlobKey)
	}
	if file.SizeBytes != int64(len("jpeg-bytes")) {
		t.Fatalf("unexpected size %d", file.SizeBytes)
	}
	if file.URL == "" {
		t.Fatalf("media file must carry a URL")
	}
	if _, err := media.Head(ctx, file.BlobKey); err != nil {
		t.Fatalf("blob not stored: %v", err)
	}
}

func TestAttachEvidenceMediaRequiresStore(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	_, _, err := svc.AttachEvidenceMedia(context.Background(), "e1", "a.jpg", strings.NewReader("x"), "image/jpeg")
	if err == nil {
		t.Fatalf("expected error without a media store")
	}
}
