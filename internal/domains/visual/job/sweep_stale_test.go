package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot-backend/internal/domains/visual"
	"contentpilot-backend/internal/infrastructure/queue"
)

type staleRepo struct {
	visual.Repository

	stale []visual.StaleSlide
	err   error
}

func (r *staleRepo) ListStaleGenerating(context.Context, time.Time) ([]visual.StaleSlide, error) {
	return r.stale, r.err
}

type fakeEnqueuer struct {
	payloads []queue.RenderSlidePayload
	failOn   uuid.UUID
}

func (f *fakeEnqueuer) EnqueueRenderSlide(p queue.RenderSlidePayload) error {
	if p.SlideID == f.failOn {
		return errors.New("redis down")
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func sweepTask() *asynq.Task {
	return asynq.NewTask(queue.TypeSweepStaleVisual, nil)
}

func TestSweepRequeuesStaleSlides(t *testing.T) {
	versionID := uuid.New()
	workspaceID := uuid.New()
	stale := []visual.StaleSlide{
		{WorkspaceID: workspaceID, VisualVersionID: versionID, SlideID: uuid.New()},
		{WorkspaceID: workspaceID, VisualVersionID: versionID, SlideID: uuid.New()},
	}

	enq := &fakeEnqueuer{}
	h := NewSweepStaleHandler(&staleRepo{stale: stale}, enq)

	require.NoError(t, h.ProcessTask(context.Background(), sweepTask()))

	require.Len(t, enq.payloads, 2)
	assert.Equal(t, stale[0].SlideID, enq.payloads[0].SlideID)
	assert.Equal(t, workspaceID, enq.payloads[0].WorkspaceID)
}

func TestSweepNothingStaleIsNoOp(t *testing.T) {
	enq := &fakeEnqueuer{}
	h := NewSweepStaleHandler(&staleRepo{}, enq)

	require.NoError(t, h.ProcessTask(context.Background(), sweepTask()))
	assert.Empty(t, enq.payloads)
}

func TestSweepQueryFailureIsRetryable(t *testing.T) {
	h := NewSweepStaleHandler(&staleRepo{err: errors.New("pg down")}, &fakeEnqueuer{})

	err := h.ProcessTask(context.Background(), sweepTask())
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestSweepContinuesPastEnqueueFailure(t *testing.T) {
	versionID := uuid.New()
	bad := uuid.New()
	stale := []visual.StaleSlide{
		{WorkspaceID: uuid.New(), VisualVersionID: versionID, SlideID: bad},
		{WorkspaceID: uuid.New(), VisualVersionID: versionID, SlideID: uuid.New()},
	}

	enq := &fakeEnqueuer{failOn: bad}
	h := NewSweepStaleHandler(&staleRepo{stale: stale}, enq)

	// A failed enqueue is logged and skipped; the sweep still covers the rest.
	require.NoError(t, h.ProcessTask(context.Background(), sweepTask()))
	require.Len(t, enq.payloads, 1)
	assert.NotEqual(t, bad, enq.payloads[0].SlideID)
}
