package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/ai"
	"contentpilot-backend/internal/domains/content"
	contentmodel "contentpilot-backend/internal/domains/content/model"
	"contentpilot-backend/internal/domains/visual"
	"contentpilot-backend/internal/infrastructure/queue"
	"contentpilot-backend/internal/shared/apperror"
)

type Generator interface {
	GenerateStructured(ctx context.Context, task ai.Task, out ai.Schema, systemPrompt, userPrompt string, workspaceID uuid.UUID) (*ai.Meta, error)
}

type UsageRecorder interface {
	Record(ctx context.Context, workspaceID uuid.UUID, task ai.Task, meta *ai.Meta)
}

// PostSource is the slice of the content store this service reads: post
// ownership and the copy the visuals accompany.
type PostSource interface {
	GetPost(ctx context.Context, workspaceID, postID uuid.UUID) (*contentmodel.Post, error)
	GetCurrentVersion(ctx context.Context, postID uuid.UUID) (*contentmodel.PostVersion, error)
}

// Enqueuer schedules slide render jobs.
type Enqueuer interface {
	EnqueueRenderSlide(p queue.RenderSlidePayload) error
}

// ExportInvalidator drops cached export bundles. Approving a visual
// changes what the campaign export projects.
type ExportInvalidator interface {
	InvalidateCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID)
}

type VisualService interface {
	SuggestConcepts(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Concept, error)
	ListConcepts(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Concept, error)
	SelectConcept(ctx context.Context, workspaceID, postID, conceptID uuid.UUID) error

	// CreateVersion starts rendering the selected concept: a generating
	// version with one slide (single) or slideCount slides (carousel), each
	// enqueued as its own render job.
	CreateVersion(ctx context.Context, workspaceID, postID uuid.UUID, kind visual.Kind, slideCount int) (*visual.Version, error)
	GetVersion(ctx context.Context, workspaceID, versionID uuid.UUID) (*visual.Version, error)
	ListVersions(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Version, error)

	// Review settles a pending_qa version as approved or needs_revision.
	Review(ctx context.Context, workspaceID, versionID uuid.UUID, approve bool) (*visual.Version, error)
}

type visualService struct {
	repo      visual.Repository
	posts     PostSource
	generator Generator
	usage     UsageRecorder
	jobs      Enqueuer
	exports   ExportInvalidator
}

func NewVisualService(repo visual.Repository, posts PostSource, generator Generator, usage UsageRecorder, jobs Enqueuer, exports ExportInvalidator) VisualService {
	return &visualService{
		repo:      repo,
		posts:     posts,
		generator: generator,
		usage:     usage,
		jobs:      jobs,
		exports:   exports,
	}
}

func (s *visualService) SuggestConcepts(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Concept, error) {
	post, err := s.posts.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, s.mapPostError(err)
	}

	// The current copy sharpens the prompt but is not required: visuals can
	// be explored before the first draft exists.
	current, err := s.posts.GetCurrentVersion(ctx, postID)
	if err != nil && !errors.Is(err, content.ErrNoCurrentVersion) {
		return nil, apperror.Storage(err)
	}

	var out conceptsOutput
	meta, err := s.generator.GenerateStructured(ctx, ai.TaskVisualConcepts, &out,
		conceptsSystemPrompt, conceptsUserPrompt(post, current), workspaceID)
	if err != nil {
		return nil, err
	}
	s.usage.Record(ctx, workspaceID, ai.TaskVisualConcepts, meta)

	concepts := make([]visual.Concept, 0, len(out.Concepts))
	for _, idea := range out.Concepts {
		concepts = append(concepts, visual.Concept{
			PostID:      postID,
			WorkspaceID: workspaceID,
			Headline:    idea.Headline,
			Style:       idea.Style,
			Description: idea.Description,
		})
	}

	if err := s.repo.CreateConcepts(ctx, concepts); err != nil {
		return nil, apperror.Storage(err)
	}
	return concepts, nil
}

func (s *visualService) ListConcepts(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Concept, error) {
	concepts, err := s.repo.ListConcepts(ctx, workspaceID, postID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return concepts, nil
}

func (s *visualService) SelectConcept(ctx context.Context, workspaceID, postID, conceptID uuid.UUID) error {
	if _, err := s.repo.GetConcept(ctx, workspaceID, conceptID); err != nil {
		return s.mapVisualError(err)
	}
	if err := s.repo.SelectConcept(ctx, postID, conceptID); err != nil {
		return s.mapVisualError(err)
	}
	return nil
}

func (s *visualService) CreateVersion(ctx context.Context, workspaceID, postID uuid.UUID, kind visual.Kind, slideCount int) (*visual.Version, error) {
	if !kind.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown visual kind %q", kind))
	}
	if kind == visual.KindCarousel && (slideCount < 2 || slideCount > maxSlides) {
		return nil, apperror.Validation(fmt.Sprintf("carousel needs 2 to %d slides", maxSlides))
	}

	if _, err := s.posts.GetPost(ctx, workspaceID, postID); err != nil {
		return nil, s.mapPostError(err)
	}

	concept, err := s.selectedConcept(ctx, workspaceID, postID)
	if err != nil {
		return nil, err
	}

	var prompts []string
	switch kind {
	case visual.KindSingle:
		prompts = []string{singleImagePrompt(concept)}
	case visual.KindCarousel:
		var out slidePromptsOutput
		meta, err := s.generator.GenerateStructured(ctx, ai.TaskSlidePrompts, &out,
			slidePromptsSystemPrompt, slidePromptsUserPrompt(concept, slideCount), workspaceID)
		if err != nil {
			return nil, err
		}
		s.usage.Record(ctx, workspaceID, ai.TaskSlidePrompts, meta)

		prompts = out.Prompts
		if len(prompts) > slideCount {
			prompts = prompts[:slideCount]
		}
	}

	version := &visual.Version{
		PostID:      postID,
		ConceptID:   concept.ID,
		WorkspaceID: workspaceID,
		Kind:        kind,
		Status:      visual.StatusGenerating,
	}
	slides := make([]visual.Slide, 0, len(prompts))
	for i, prompt := range prompts {
		slides = append(slides, visual.Slide{Position: i + 1, Prompt: prompt})
	}

	if err := s.repo.CreateVersion(ctx, version, slides); err != nil {
		return nil, apperror.Storage(err)
	}

	// Each slide renders independently. A failed enqueue is recoverable:
	// the stale-generating sweep re-enqueues slides left behind.
	for _, slide := range version.Slides {
		err := s.jobs.EnqueueRenderSlide(queue.RenderSlidePayload{
			WorkspaceID:     workspaceID,
			VisualVersionID: version.ID,
			SlideID:         slide.ID,
		})
		if err != nil {
			log.Error().Err(err).
				Str("slide_id", slide.ID.String()).
				Msg("failed to enqueue slide render")
		}
	}

	return version, nil
}

func (s *visualService) GetVersion(ctx context.Context, workspaceID, versionID uuid.UUID) (*visual.Version, error) {
	version, err := s.repo.GetVersion(ctx, workspaceID, versionID)
	if err != nil {
		return nil, s.mapVisualError(err)
	}
	return version, nil
}

func (s *visualService) ListVersions(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Version, error) {
	versions, err := s.repo.ListVersionsByPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return versions, nil
}

func (s *visualService) Review(ctx context.Context, workspaceID, versionID uuid.UUID, approve bool) (*visual.Version, error) {
	version, err := s.repo.GetVersion(ctx, workspaceID, versionID)
	if err != nil {
		return nil, s.mapVisualError(err)
	}

	next := visual.StatusNeedsRevision
	if approve {
		next = visual.StatusApproved
	}

	if !version.Status.CanTransitionTo(next) {
		if version.Status == visual.StatusGenerating {
			return nil, apperror.Conflict("visual is still generating")
		}
		return nil, apperror.Conflict(fmt.Sprintf("cannot move visual from %s to %s", version.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, versionID, version.Status, next); err != nil {
		return nil, s.mapVisualError(err)
	}
	version.Status = next

	// Only approved visuals feed the campaign export; a bundle cached
	// before the approval would miss these images.
	if next == visual.StatusApproved {
		if post, err := s.posts.GetPost(ctx, workspaceID, version.PostID); err != nil {
			log.Warn().Err(err).
				Str("post_id", version.PostID.String()).
				Msg("could not invalidate export after visual approval")
		} else {
			s.exports.InvalidateCampaign(ctx, workspaceID, post.CampaignID)
		}
	}

	return version, nil
}

func (s *visualService) selectedConcept(ctx context.Context, workspaceID, postID uuid.UUID) (*visual.Concept, error) {
	concepts, err := s.repo.ListConcepts(ctx, workspaceID, postID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	for i := range concepts {
		if concepts[i].IsSelected {
			return &concepts[i], nil
		}
	}
	return nil, apperror.Conflict("select a visual concept first")
}

func (s *visualService) mapPostError(err error) error {
	if errors.Is(err, content.ErrPostNotFound) {
		return apperror.NotFound("post not found")
	}
	return apperror.Storage(err)
}

func (s *visualService) mapVisualError(err error) error {
	switch {
	case errors.Is(err, visual.ErrConceptNotFound), errors.Is(err, visual.ErrConceptMismatch):
		return apperror.NotFound("visual concept not found")
	case errors.Is(err, visual.ErrVersionNotFound):
		return apperror.NotFound("visual version not found")
	case errors.Is(err, visual.ErrSlideNotFound):
		return apperror.NotFound("slide not found")
	case errors.Is(err, visual.ErrStaleStatus):
		return apperror.Conflict("visual status changed, reload and retry")
	default:
		return apperror.Storage(err)
	}
}
