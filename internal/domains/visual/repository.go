package visual

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateConcepts(ctx context.Context, concepts []Concept) error
	GetConcept(ctx context.Context, workspaceID, conceptID uuid.UUID) (*Concept, error)
	ListConcepts(ctx context.Context, workspaceID, postID uuid.UUID) ([]Concept, error)

	// SelectConcept makes conceptID the single selected concept of postID.
	// The flag flip across siblings is one atomic statement.
	SelectConcept(ctx context.Context, postID, conceptID uuid.UUID) error

	// CreateVersion inserts the version and its slides in one transaction.
	CreateVersion(ctx context.Context, version *Version, slides []Slide) error
	GetVersion(ctx context.Context, workspaceID, versionID uuid.UUID) (*Version, error)
	ListVersionsByPost(ctx context.Context, workspaceID, postID uuid.UUID) ([]Version, error)

	// UpdateStatus is a compare-and-swap on the version status.
	UpdateStatus(ctx context.Context, versionID uuid.UUID, expected, next Status) error

	GetSlide(ctx context.Context, slideID uuid.UUID) (*Slide, error)
	SetSlideImage(ctx context.Context, slideID uuid.UUID, imageURL string) error

	// PromoteIfComplete moves a generating version to pending_qa when every
	// slide is rendered. Returns whether the promotion happened; losing the
	// race to a sibling render job is not an error.
	PromoteIfComplete(ctx context.Context, versionID uuid.UUID) (bool, error)

	// ListStaleGenerating finds unrendered slides of versions stuck in
	// generating since before cutoff.
	ListStaleGenerating(ctx context.Context, cutoff time.Time) ([]StaleSlide, error)
}
