package model

import (
	"time"

	"github.com/google/uuid"
)

// FunnelStage is the marketing-pipeline position assigned to a post.
type FunnelStage string

const (
	StageTop    FunnelStage = "top"
	StageMiddle FunnelStage = "middle"
	StageBottom FunnelStage = "bottom"
)

func (s FunnelStage) Valid() bool {
	switch s {
	case StageTop, StageMiddle, StageBottom:
		return true
	}
	return false
}

// PostStatus is the post lifecycle. Forward movement is strictly linear,
// no skipping; moving backward is allowed only to draft or in_review as an
// explicit correction.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusInReview  PostStatus = "in_review"
	StatusApproved  PostStatus = "approved"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
)

var statusOrder = map[PostStatus]int{
	StatusDraft:     0,
	StatusInReview:  1,
	StatusApproved:  2,
	StatusScheduled: 3,
	StatusPublished: 4,
}

func (s PostStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether next is a legal move from s.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	cur, ok := statusOrder[s]
	if !ok {
		return false
	}
	nxt, ok := statusOrder[next]
	if !ok {
		return false
	}

	if nxt == cur+1 {
		return true
	}
	// Corrections: back to draft or in_review only.
	if nxt < cur && (next == StatusDraft || next == StatusInReview) {
		return true
	}
	return false
}

// Topic is a content idea owned by a workspace.
type Topic struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Keywords    []string  `json:"keywords"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlanSlot schedules one post: a weekday plus its funnel stage and
// objective. A campaign's plan is an ordered list of these.
type PlanSlot struct {
	Weekday   int         `json:"weekday"` // 0 = Monday
	Stage     FunnelStage `json:"stage"`
	Objective string      `json:"objective"`
}

// Campaign binds a topic to a week and a publishing plan. Posts are
// created with the campaign, one per slot, and the set is fixed.
type Campaign struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	TopicID     uuid.UUID  `json:"topic_id"`
	WeekStart   time.Time  `json:"week_start"`
	Plan        []PlanSlot `json:"plan"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Post is one scheduled piece of content. Stage and objective are mutable
// independent of version history.
type Post struct {
	ID           uuid.UUID   `json:"id"`
	CampaignID   uuid.UUID   `json:"campaign_id"`
	WorkspaceID  uuid.UUID   `json:"workspace_id"`
	ScheduledDay int         `json:"scheduled_day"` // weekday within the campaign week
	Stage        FunnelStage `json:"stage"`
	Objective    string      `json:"objective"`
	Status       PostStatus  `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// VersionSource distinguishes generated variants from manual edits.
type VersionSource string

const (
	SourceGenerated VersionSource = "generated"
	SourceEdited    VersionSource = "edited"
)

// PostVersion is one variant of a post's copy. Versions have no status of
// their own, only the current flag: exactly zero or one version per post
// carries it, and setting a new current atomically clears the previous.
type PostVersion struct {
	ID        uuid.UUID     `json:"id"`
	PostID    uuid.UUID     `json:"post_id"`
	Position  int           `json:"position"`
	Hook      string        `json:"hook"`
	Body      string        `json:"body"`
	CTA       string        `json:"cta"`
	Source    VersionSource `json:"source"`
	IsCurrent bool          `json:"is_current"`
	CreatedAt time.Time     `json:"created_at"`
}

// ReviewTarget identifies what a critic review evaluates.
type ReviewTarget string

const (
	TargetPostVersion   ReviewTarget = "post_version"
	TargetVisualVersion ReviewTarget = "visual_version"
)

// Finding is one category-level issue raised by the critic.
type Finding struct {
	Category string `json:"category"`
	Severity string `json:"severity"` // low | medium | high
	Note     string `json:"note"`
}

// CriticReview is an AI evaluation of a version. Append-only: never
// mutated, only superseded by a newer review.
type CriticReview struct {
	ID         uuid.UUID    `json:"id"`
	TargetKind ReviewTarget `json:"target_kind"`
	TargetID   uuid.UUID    `json:"target_id"`
	Verdict    string       `json:"verdict"` // pass | revise | reject
	Findings   []Finding    `json:"findings"`
	CreatedAt  time.Time    `json:"created_at"`
}
