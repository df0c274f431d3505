package visual

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes a single image from a carousel. Carousel slides are
// independent render units: each one fails and retries on its own.
type Kind string

const (
	KindSingle   Kind = "single"
	KindCarousel Kind = "carousel"
)

func (k Kind) Valid() bool {
	return k == KindSingle || k == KindCarousel
}

// Status is the visual version lifecycle. A version starts generating,
// moves to pending_qa when every slide has an image, and QA settles it as
// approved or needs_revision.
type Status string

const (
	StatusGenerating    Status = "generating"
	StatusPendingQA     Status = "pending_qa"
	StatusApproved      Status = "approved"
	StatusNeedsRevision Status = "needs_revision"
)

func (s Status) Valid() bool {
	switch s {
	case StatusGenerating, StatusPendingQA, StatusApproved, StatusNeedsRevision:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal move from s. QA verdicts
// only apply to versions that finished rendering.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusGenerating:
		return next == StatusPendingQA
	case StatusPendingQA:
		return next == StatusApproved || next == StatusNeedsRevision
	default:
		return false
	}
}

// Concept is one visual direction proposed for a post. At most one concept
// per post is selected; selecting another atomically deselects the rest.
type Concept struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Headline    string    `json:"headline"`
	Style       string    `json:"style"`
	Description string    `json:"description"`
	IsSelected  bool      `json:"is_selected"`
	CreatedAt   time.Time `json:"created_at"`
}

// Version is one rendering attempt of a concept.
type Version struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	ConceptID   uuid.UUID `json:"concept_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Kind        Kind      `json:"kind"`
	Status      Status    `json:"status"`
	Slides      []Slide   `json:"slides,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Slide is one render unit. Singles have exactly one slide at position 1.
type Slide struct {
	ID              uuid.UUID  `json:"id"`
	VisualVersionID uuid.UUID  `json:"visual_version_id"`
	Position        int        `json:"position"`
	Prompt          string     `json:"prompt"`
	ImageURL        string     `json:"image_url,omitempty"`
	RenderedAt      *time.Time `json:"rendered_at,omitempty"`
}

// Rendered reports whether the slide has its image.
func (s Slide) Rendered() bool { return s.ImageURL != "" }

// StaleSlide identifies a slide stuck without an image in a version still
// generating, for the sweep that re-enqueues lost render jobs.
type StaleSlide struct {
	WorkspaceID     uuid.UUID
	VisualVersionID uuid.UUID
	SlideID         uuid.UUID
}

var (
	ErrConceptNotFound  = errors.New("visual concept not found")
	ErrConceptMismatch  = errors.New("concept does not belong to post")
	ErrVersionNotFound  = errors.New("visual version not found")
	ErrSlideNotFound    = errors.New("slide not found")
	ErrStaleStatus      = errors.New("visual status changed concurrently")
	ErrNotReadyForQA    = errors.New("visual version is still generating")
	ErrAlreadyFinalized = errors.New("visual version already reviewed")
)
