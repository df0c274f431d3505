package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/domains/visual"
	"contentpilot-backend/internal/infrastructure/queue"
)

// A version counts as stuck when it has sat in generating this long.
const staleAfter = 10 * time.Minute

type Enqueuer interface {
	EnqueueRenderSlide(p queue.RenderSlidePayload) error
}

// SweepStaleHandler re-enqueues unrendered slides of versions stuck in
// generating. Versions go stale when an enqueue was lost or a render task
// exhausted its retries. Re-enqueueing is safe: the render handler skips
// slides that already carry an image.
type SweepStaleHandler struct {
	repo     visual.Repository
	enqueuer Enqueuer
}

func NewSweepStaleHandler(repo visual.Repository, enqueuer Enqueuer) *SweepStaleHandler {
	return &SweepStaleHandler{repo: repo, enqueuer: enqueuer}
}

func (h *SweepStaleHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().Add(-staleAfter)

	stale, err := h.repo.ListStaleGenerating(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale slides: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	requeued := 0
	for _, s := range stale {
		err := h.enqueuer.EnqueueRenderSlide(queue.RenderSlidePayload{
			WorkspaceID:     s.WorkspaceID,
			VisualVersionID: s.VisualVersionID,
			SlideID:         s.SlideID,
		})
		if err != nil {
			log.Error().Err(err).
				Str("slide_id", s.SlideID.String()).
				Msg("failed to re-enqueue stale slide")
			continue
		}
		requeued++
	}

	log.Info().
		Int("stale", len(stale)).
		Int("requeued", requeued).
		Msg("stale visual sweep complete")

	return nil
}
