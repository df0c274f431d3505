package export

import (
	"time"

	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/content/model"
)

// Bundle is a read-only projection of a campaign: every post's current
// version plus its approved visuals. It is never persisted; it is computed
// on demand and cached briefly.
type Bundle struct {
	CampaignID  uuid.UUID `json:"campaign_id"`
	WeekStart   time.Time `json:"week_start"`
	GeneratedAt time.Time `json:"generated_at"`
	Items       []Item    `json:"items"`
}

// Item is one post in the bundle. Posts without a current version appear
// with empty copy so the projection always covers the whole campaign.
type Item struct {
	PostID       uuid.UUID         `json:"post_id"`
	ScheduledDay int               `json:"scheduled_day"`
	Stage        model.FunnelStage `json:"stage"`
	Objective    string            `json:"objective"`
	Status       model.PostStatus  `json:"status"`
	HasCopy      bool              `json:"has_copy"`
	Hook         string            `json:"hook,omitempty"`
	Body         string            `json:"body,omitempty"`
	CTA          string            `json:"cta,omitempty"`
	ImageURLs    []string          `json:"image_urls,omitempty"`
}
