package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types handled by cmd/worker.
const (
	TypeRenderSlide      = "visual:render_slide"
	TypeSweepStaleVisual = "visual:sweep_stale"
)

// Queue names by priority.
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// RenderSlidePayload is one independent unit of work: a single slide of a
// visual. Partial completion across a carousel is a valid observable state.
type RenderSlidePayload struct {
	WorkspaceID     uuid.UUID `json:"workspace_id"`
	VisualVersionID uuid.UUID `json:"visual_version_id"`
	SlideID         uuid.UUID `json:"slide_id"`
}

// Client enqueues background tasks.
type Client struct {
	asynq *asynq.Client
}

func NewClient(redisAddr string) *Client {
	return &Client{
		asynq: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
	}
}

// EnqueueRenderSlide schedules one slide render. Retried by asynq on
// failure; the render handler is idempotent (re-rendering overwrites the
// same storage key and re-stamps the slide).
func (c *Client) EnqueueRenderSlide(p RenderSlidePayload) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal render slide payload: %w", err)
	}

	task := asynq.NewTask(TypeRenderSlide, payload)
	if _, err := c.asynq.Enqueue(task, asynq.Queue(QueueDefault), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("enqueue render slide: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.asynq.Close()
}
