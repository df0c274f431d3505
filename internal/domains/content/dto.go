package content

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/content/model"
)

type CreateTopicRequest struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

func (r CreateTopicRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Summary, validation.Length(0, 2000)),
		validation.Field(&r.Keywords, validation.Length(0, 20)),
	)
}

type ResearchTopicsRequest struct {
	Niche    string `json:"niche"`
	Audience string `json:"audience"`
}

func (r ResearchTopicsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Niche, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Audience, validation.Length(0, 500)),
	)
}

type PlanSlotRequest struct {
	Weekday   int    `json:"weekday"`
	Stage     string `json:"stage"`
	Objective string `json:"objective"`
}

func (r PlanSlotRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Weekday, validation.Min(0), validation.Max(6)),
		validation.Field(&r.Stage, validation.Required, validation.By(validStage)),
		validation.Field(&r.Objective, validation.Required, validation.Length(3, 500)),
	)
}

type CreateCampaignRequest struct {
	TopicID   uuid.UUID         `json:"topic_id"`
	WeekStart time.Time         `json:"week_start"`
	Plan      []PlanSlotRequest `json:"plan"`
}

func (r CreateCampaignRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TopicID, validation.Required, validation.By(validUUID)),
		validation.Field(&r.WeekStart, validation.Required),
		validation.Field(&r.Plan, validation.Required, validation.Length(1, 14)),
	)
}

type UpdatePostBriefRequest struct {
	Stage     string `json:"stage"`
	Objective string `json:"objective"`
}

func (r UpdatePostBriefRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Stage, validation.Required, validation.By(validStage)),
		validation.Field(&r.Objective, validation.Required, validation.Length(3, 500)),
	)
}

type UpdatePostStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdatePostStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.By(func(v interface{}) error {
			if !model.PostStatus(v.(string)).Valid() {
				return validation.NewError("validation_status", "must be a valid post status")
			}
			return nil
		})),
	)
}

type RewriteVersionRequest struct {
	Instruction string `json:"instruction"`
}

func (r RewriteVersionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Instruction, validation.Required, validation.Length(3, 2000)),
	)
}

type EditVersionRequest struct {
	Hook string `json:"hook"`
	Body string `json:"body"`
	CTA  string `json:"cta"`
}

func (r EditVersionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Hook, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Body, validation.Required, validation.Length(1, 10000)),
		validation.Field(&r.CTA, validation.Length(0, 500)),
	)
}

func validStage(v interface{}) error {
	if !model.FunnelStage(v.(string)).Valid() {
		return validation.NewError("validation_stage", "must be one of top, middle, bottom")
	}
	return nil
}

func validUUID(v interface{}) error {
	if v.(uuid.UUID) == uuid.Nil {
		return validation.NewError("validation_uuid", "must be a valid id")
	}
	return nil
}
