package core

import (
	"context"
	"fmt"
	"io"
	"path"

	"obracore/internal/blob"
	"obracore/pkg/domain"
)

// syntheticEvidenceTitle is the title format applied to evidence records
// derived from gallery projects. The product copy is Spanish.
func syntheticEvidenceTitle(projectName string) string {
	return "Proyecto Completado: " + projectName
}

// syntheticEvidenceTags derives the synthetic record's tag set from the
// project's style and location.
func syntheticEvidenceTags(project domain.GalleryProject) []string {
	var tags []string
	if project.Style != "" {
		tags = append(tags, project.Style)
	}
	if project.Location != "" {
		tags = append(tags, project.Location)
	}
	return tags
}

// relatedGalleryProject resolves the gallery project affected by an evidence
// write: first by matching project reference, then by back-reference.
func relatedGalleryProject(tx Transaction, evidence domain.Evidence) (domain.GalleryProject, bool) {
	projects := tx.Snapshot().ListGalleryProjects()
	for _, project := range projects {
		if project.ProjectID != nil && *project.ProjectID == evidence.ProjectID {
			return project, true
		}
	}
	for _, project := range projects {
		if project.HasEvidence(evidence.ID) {
			return project, true
		}
	}
	return domain.GalleryProject{}, false
}

// CreateGalleryProject stores the project and derives its synthetic evidence
// record (id "evidence_<projectID>"). The derivation is a copy: the evidence
// is independently mutable afterward.
func (s *Service) CreateGalleryProject(ctx context.Context, project domain.GalleryProject) (domain.GalleryProject, Result, error) {
	var created domain.GalleryProject
	res, err := s.run(ctx, "create_gallery_project", domain.EntityGalleryProject, domain.ActionCreate,
		func() string { return created.ID },
		func(tx Transaction) error {
			stored, err := tx.CreateGalleryProject(project)
			if err != nil {
				return err
			}
			evidence := domain.Evidence{
				Base:      domain.Base{ID: domain.SyntheticEvidenceID(stored.ID)},
				ProjectID: stored.ID,
				Title:     syntheticEvidenceTitle(stored.Name),
				Category:  domain.EvidenceCategoryCompleted,
				Tags:      syntheticEvidenceTags(stored),
			}
			if stored.Description != "" {
				desc := stored.Description
				evidence.Description = &desc
			}
			if stored.ImageURL != "" {
				evidence.Media.Files = []domain.MediaFile{{URL: stored.ImageURL}}
			}
			derived, err := tx.CreateEvidence(evidence)
			if err != nil {
				return err
			}
			created, err = tx.UpdateGalleryProject(stored.ID, func(p *domain.GalleryProject) error {
				if !p.HasEvidence(derived.ID) {
					p.EvidenceIDs = append(p.EvidenceIDs, derived.ID)
				}
				return nil
			})
			return err
		})
	return created, res, err
}

// UpdateGalleryProject applies the mutator to the stored project and, when the
// synthetic evidence record exists, patches its title, description, and tags
// and bumps its version. A missing synthetic record is never created here.
func (s *Service) UpdateGalleryProject(ctx context.Context, id string, mutator func(*domain.GalleryProject) error) (domain.GalleryProject, Result, error) {
	var updated domain.GalleryProject
	res, err := s.run(ctx, "update_gallery_project", domain.EntityGalleryProject, domain.ActionUpdate,
		func() string { return id },
		func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateGalleryProject(id, mutator)
			if err != nil {
				return err
			}
			syntheticID := domain.SyntheticEvidenceID(id)
			if _, ok := tx.FindEvidence(syntheticID); !ok {
				return nil
			}
			_, err = tx.UpdateEvidence(syntheticID, func(evidence *domain.Evidence) error {
				evidence.Title = syntheticEvidenceTitle(updated.Name)
				if updated.Description != "" {
					desc := updated.Description
					evidence.Description = &desc
				}
				evidence.Tags = syntheticEvidenceTags(updated)
				return nil
			})
			return err
		})
	return updated, res, err
}

// DeleteGalleryProject removes the project and its synthetic evidence record, if present.
func (s *Service) DeleteGalleryProject(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_gallery_project", domain.EntityGalleryProject, domain.ActionDelete,
		func() string { return id },
		func(tx Transaction) error {
			if err := tx.DeleteGalleryProject(id); err != nil {
				return err
			}
			syntheticID := domain.SyntheticEvidenceID(id)
			if _, ok := tx.FindEvidence(syntheticID); ok {
				return tx.DeleteEvidence(syntheticID)
			}
			return nil
		})
}

// ToggleFavorite flips the favorite flag on a gallery project.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (domain.GalleryProject, Result, error) {
	var updated domain.GalleryProject
	res, err := s.run(ctx, "toggle_favorite", domain.EntityGalleryProject, domain.ActionUpdate,
		func() string { return id },
		func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateGalleryProject(id, func(project *domain.GalleryProject) error {
				project.IsFavorite = !project.IsFavorite
				return nil
			})
			return err
		})
	return updated, res, err
}

// CreateEvidence upserts the evidence record (a second create with the same id
// replaces the value, keeping the back-reference append idempotent) and patches
// the related gallery project.
func (s *Service) CreateEvidence(ctx context.Context, evidence domain.Evidence) (domain.Evidence, Result, error) {
	var stored domain.Evidence
	res, err := s.run(ctx, "create_evidence", domain.EntityEvidence, domain.ActionCreate,
		func() string { return stored.ID },
		func(tx Transaction) error {
			var err error
			if evidence.ID != "" {
				if _, ok := tx.FindEvidence(evidence.ID); ok {
					stored, err = tx.UpdateEvidence(evidence.ID, func(cur *domain.Evidence) error {
						*cur = evidence
						return nil
					})
					if err != nil {
						return err
					}
					return s.fanOutEvidence(tx, stored)
				}
			}
			stored, err = tx.CreateEvidence(evidence)
			if err != nil {
				return err
			}
			return s.fanOutEvidence(tx, stored)
		})
	return stored, res, err
}

// UpdateEvidence applies the mutator to the stored evidence and patches the
// related gallery project.
func (s *Service) UpdateEvidence(ctx context.Context, id string, mutator func(*domain.Evidence) error) (domain.Evidence, Result, error) {
	var updated domain.Evidence
	res, err := s.run(ctx, "update_evidence", domain.EntityEvidence, domain.ActionUpdate,
		func() string { return id },
		func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateEvidence(id, mutator)
			if err != nil {
				return err
			}
			return s.fanOutEvidence(tx, updated)
		})
	return updated, res, err
}

// DeleteEvidence removes the evidence and filters its id out of the gallery
// project whose back-reference list contains it.
func (s *Service) DeleteEvidence(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_evidence", domain.EntityEvidence, domain.ActionDelete,
		func() string { return id },
		func(tx Transaction) error {
			if err := tx.DeleteEvidence(id); err != nil {
				return err
			}
			for _, project := range tx.Snapshot().ListGalleryProjects() {
				if !project.HasEvidence(id) {
					continue
				}
				_, err := tx.UpdateGalleryProject(project.ID, func(p *domain.GalleryProject) error {
					kept := p.EvidenceIDs[:0]
					for _, evidenceID := range p.EvidenceIDs {
						if evidenceID != id {
							kept = append(kept, evidenceID)
						}
					}
					p.EvidenceIDs = kept
					return nil
				})
				return err
			}
			return nil
		})
}

// AttachEvidenceMedia streams media bytes into the configured blob store under
// evidence/<id>/<filename> and appends the resulting file reference to the
// evidence record. Requires WithMediaStore.
func (s *Service) AttachEvidenceMedia(ctx context.Context, id, filename string, r io.Reader, contentType string) (domain.Evidence, Result, error) {
	if s.media == nil {
		return domain.Evidence{}, Result{}, fmt.Errorf("no media store configured")
	}
	if _, ok := s.store.GetEvidence(id); !ok {
		return domain.Evidence{}, Result{}, domain.NotFoundError{Entity: domain.EntityEvidence, ID: id}
	}
	key := path.Join("evidence", id, filename)
	info, err := s.media.Put(ctx, key, r, blob.PutOptions{ContentType: contentType})
	if err != nil {
		return domain.Evidence{}, Result{}, fmt.Errorf("store media: %w", err)
	}
	url := info.URL
	if presigned, perr := s.media.PresignURL(ctx, key, blob.SignedURLOptions{}); perr == nil {
		url = presigned
	}
	if url == "" {
		url = "blob://" + key
	}
	file := domain.MediaFile{URL: url, ContentType: contentType, SizeBytes: info.Size, BlobKey: key}
	return s.UpdateEvidence(ctx, id, func(evidence *domain.Evidence) error {
		evidence.Media.Files = append(evidence.Media.Files, file)
		return nil
	})
}

// fanOutEvidence patches the related gallery project after an evidence write:
// description wins when present, back-reference appended idempotently.
func (s *Service) fanOutEvidence(tx Transaction, evidence domain.Evidence) error {
	project, ok := relatedGalleryProject(tx, evidence)
	if !ok {
		return nil
	}
	_, err := tx.UpdateGalleryProject(project.ID, func(p *domain.GalleryProject) error {
		if evidence.Description != nil && *evidence.Description != "" {
			p.Description = *evidence.Description
		}
		if !p.HasEvidence(evidence.ID) {
			p.EvidenceIDs = append(p.EvidenceIDs, evidence.ID)
		}
		return nil
	})
	return err
}
