package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/visual"
)

type memoryRepo struct {
	mu       sync.Mutex
	concepts map[uuid.UUID]visual.Concept
	versions map[uuid.UUID]visual.Version
	slides   map[uuid.UUID]visual.Slide
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		concepts: make(map[uuid.UUID]visual.Concept),
		versions: make(map[uuid.UUID]visual.Version),
		slides:   make(map[uuid.UUID]visual.Slide),
	}
}

func (r *memoryRepo) CreateConcepts(_ context.Context, concepts []visual.Concept) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range concepts {
		if concepts[i].ID == uuid.Nil {
			concepts[i].ID = uuid.New()
		}
		concepts[i].CreatedAt = time.Now()
		r.concepts[concepts[i].ID] = concepts[i]
	}
	return nil
}

func (r *memoryRepo) GetConcept(_ context.Context, workspaceID, conceptID uuid.UUID) (*visual.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.concepts[conceptID]
	if !ok || c.WorkspaceID != workspaceID {
		return nil, visual.ErrConceptNotFound
	}
	return &c, nil
}

func (r *memoryRepo) ListConcepts(_ context.Context, workspaceID, postID uuid.UUID) ([]visual.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []visual.Concept
	for _, c := range r.concepts {
		if c.PostID == postID && c.WorkspaceID == workspaceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) SelectConcept(_ context.Context, postID, conceptID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.concepts[conceptID]
	if !ok {
		return visual.ErrConceptNotFound
	}
	if c.PostID != postID {
		return visual.ErrConceptMismatch
	}
	for id, c := range r.concepts {
		if c.PostID != postID {
			continue
		}
		c.IsSelected = id == conceptID
		r.concepts[id] = c
	}
	return nil
}

func (r *memoryRepo) CreateVersion(_ context.Context, version *visual.Version, slides []visual.Slide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	version.CreatedAt = time.Now()
	version.UpdatedAt = version.CreatedAt
	for i := range slides {
		if slides[i].ID == uuid.Nil {
			slides[i].ID = uuid.New()
		}
		slides[i].VisualVersionID = version.ID
		r.slides[slides[i].ID] = slides[i]
	}
	version.Slides = slides
	stored := *version
	stored.Slides = nil
	r.versions[version.ID] = stored
	return nil
}

func (r *memoryRepo) GetVersion(_ context.Context, workspaceID, versionID uuid.UUID) (*visual.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[versionID]
	if !ok || v.WorkspaceID != workspaceID {
		return nil, visual.ErrVersionNotFound
	}
	v.Slides = r.slidesOfLocked(versionID)
	return &v, nil
}

func (r *memoryRepo) ListVersionsByPost(_ context.Context, workspaceID, postID uuid.UUID) ([]visual.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []visual.Version
	for id, v := range r.versions {
		if v.PostID == postID && v.WorkspaceID == workspaceID {
			v.Slides = r.slidesOfLocked(id)
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memoryRepo) slidesOfLocked(versionID uuid.UUID) []visual.Slide {
	var out []visual.Slide
	for _, s := range r.slides {
		if s.VisualVersionID == versionID {
			out = append(out, s)
		}
	}
	return out
}

func (r *memoryRepo) UpdateStatus(_ context.Context, versionID uuid.UUID, expected, next visual.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[versionID]
	if !ok {
		return visual.ErrVersionNotFound
	}
	if v.Status != expected {
		return visual.ErrStaleStatus
	}
	v.Status = next
	v.UpdatedAt = time.Now()
	r.versions[versionID] = v
	return nil
}

func (r *memoryRepo) GetSlide(_ context.Context, slideID uuid.UUID) (*visual.Slide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slides[slideID]
	if !ok {
		return nil, visual.ErrSlideNotFound
	}
	return &s, nil
}

func (r *memoryRepo) SetSlideImage(_ context.Context, slideID uuid.UUID, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slides[slideID]
	if !ok {
		return visual.ErrSlideNotFound
	}
	now := time.Now()
	s.ImageURL = imageURL
	s.RenderedAt = &now
	r.slides[slideID] = s
	return nil
}

func (r *memoryRepo) PromoteIfComplete(_ context.Context, versionID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[versionID]
	if !ok {
		return false, visual.ErrVersionNotFound
	}
	if v.Status != visual.StatusGenerating {
		return false, nil
	}
	for _, s := range r.slides {
		if s.VisualVersionID == versionID && !s.Rendered() {
			return false, nil
		}
	}
	v.Status = visual.StatusPendingQA
	v.UpdatedAt = time.Now()
	r.versions[versionID] = v
	return true, nil
}

func (r *memoryRepo) ListStaleGenerating(_ context.Context, cutoff time.Time) ([]visual.StaleSlide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []visual.StaleSlide
	for id, v := range r.versions {
		if v.Status != visual.StatusGenerating || !v.UpdatedAt.Before(cutoff) {
			continue
		}
		for _, s := range r.slides {
			if s.VisualVersionID == id && !s.Rendered() {
				out = append(out, visual.StaleSlide{
					WorkspaceID:     v.WorkspaceID,
					VisualVersionID: id,
					SlideID:         s.ID,
				})
			}
		}
	}
	return out, nil
}
