package content

import (
	"context"

	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/content/model"
)

// Repository persists the topic -> campaign -> post -> version chain.
type Repository interface {
	CreateTopic(ctx context.Context, topic *model.Topic) error
	GetTopic(ctx context.Context, workspaceID, topicID uuid.UUID) (*model.Topic, error)
	ListTopics(ctx context.Context, workspaceID uuid.UUID) ([]model.Topic, error)

	// CreateCampaign inserts the campaign and its posts in one transaction:
	// a campaign never exists without its slot posts.
	CreateCampaign(ctx context.Context, campaign *model.Campaign, posts []model.Post) error
	GetCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, workspaceID uuid.UUID) ([]model.Campaign, error)

	GetPost(ctx context.Context, workspaceID, postID uuid.UUID) (*model.Post, error)
	ListPostsByCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) ([]model.Post, error)
	UpdatePostBrief(ctx context.Context, postID uuid.UUID, stage model.FunnelStage, objective string) error

	// UpdatePostStatus moves the post from expected to next, failing with
	// ErrStaleStatus when the stored status is no longer expected.
	UpdatePostStatus(ctx context.Context, postID uuid.UUID, expected, next model.PostStatus) error

	// CreateVersion appends a version at the next position. When
	// makeCurrent is set the new version becomes current and all siblings
	// lose the flag in the same transaction.
	CreateVersion(ctx context.Context, version *model.PostVersion, makeCurrent bool) error
	GetVersion(ctx context.Context, versionID uuid.UUID) (*model.PostVersion, error)
	ListVersions(ctx context.Context, postID uuid.UUID) ([]model.PostVersion, error)
	GetCurrentVersion(ctx context.Context, postID uuid.UUID) (*model.PostVersion, error)

	// SetCurrentVersion makes versionID the single current version of
	// postID. Clearing the previous flag and setting the new one is one
	// atomic statement; readers never observe zero or two current versions
	// mid-flight.
	SetCurrentVersion(ctx context.Context, postID, versionID uuid.UUID) error

	CreateReview(ctx context.Context, review *model.CriticReview) error
	ListReviews(ctx context.Context, target model.ReviewTarget, targetID uuid.UUID) ([]model.CriticReview, error)
}
