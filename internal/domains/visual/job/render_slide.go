package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/ai"
	"contentpilot-backend/internal/domains/visual"
	"contentpilot-backend/internal/infrastructure/queue"
	"contentpilot-backend/internal/infrastructure/storage"
	"contentpilot-backend/internal/shared/apperror"
)

// ImageRenderer is the slice of the AI router the render job needs.
type ImageRenderer interface {
	GenerateImage(ctx context.Context, prompt string, workspaceID uuid.UUID) (*ai.Image, *ai.Meta, error)
}

type UsageRecorder interface {
	Record(ctx context.Context, workspaceID uuid.UUID, task ai.Task, meta *ai.Meta)
}

// RenderSlideHandler renders one slide: generate the image, upload it,
// stamp the slide and promote the version once the last slide lands.
//
// The handler is idempotent. Re-delivery of a rendered slide is a no-op,
// and re-rendering overwrites the same storage key.
type RenderSlideHandler struct {
	repo     visual.Repository
	renderer ImageRenderer
	uploader storage.Uploader
	usage    UsageRecorder
}

func NewRenderSlideHandler(repo visual.Repository, renderer ImageRenderer, uploader storage.Uploader, usage UsageRecorder) *RenderSlideHandler {
	return &RenderSlideHandler{
		repo:     repo,
		renderer: renderer,
		uploader: uploader,
		usage:    usage,
	}
}

func (h *RenderSlideHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p queue.RenderSlidePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal render slide payload: %v: %w", err, asynq.SkipRetry)
	}

	slide, err := h.repo.GetSlide(ctx, p.SlideID)
	if err != nil {
		return fmt.Errorf("load slide %s: %w", p.SlideID, err)
	}
	if slide.Rendered() {
		return nil
	}

	img, meta, err := h.renderer.GenerateImage(ctx, slide.Prompt, p.WorkspaceID)
	if err != nil {
		// A missing key will not appear by retrying; park the job.
		if apperror.KindOf(err) == apperror.KindMissingCredential {
			return fmt.Errorf("render slide %s: %v: %w", p.SlideID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("render slide %s: %w", p.SlideID, err)
	}
	h.usage.Record(ctx, p.WorkspaceID, ai.TaskImageRender, meta)

	key := fmt.Sprintf("visuals/%s/slide-%d.png", p.VisualVersionID, slide.Position)
	url, err := h.uploader.Upload(ctx, key, img.Bytes, img.ContentType)
	if err != nil {
		// Storage failure: the slide stays unrendered and the version stays
		// generating; asynq retries the whole unit.
		return fmt.Errorf("upload slide %s: %w", p.SlideID, err)
	}

	if err := h.repo.SetSlideImage(ctx, p.SlideID, url); err != nil {
		return fmt.Errorf("stamp slide %s: %w", p.SlideID, err)
	}

	promoted, err := h.repo.PromoteIfComplete(ctx, p.VisualVersionID)
	if err != nil {
		return fmt.Errorf("promote visual %s: %w", p.VisualVersionID, err)
	}
	if promoted {
		log.Info().
			Str("visual_version_id", p.VisualVersionID.String()).
			Msg("visual version fully rendered, pending QA")
	}
	return nil
}
