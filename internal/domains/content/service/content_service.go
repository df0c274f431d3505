package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/ai"
	"contentpilot-backend/internal/domains/content"
	"contentpilot-backend/internal/domains/content/model"
	"contentpilot-backend/internal/shared/apperror"
)

// Generator is the slice of the AI router this service needs.
type Generator interface {
	GenerateStructured(ctx context.Context, task ai.Task, out ai.Schema, systemPrompt, userPrompt string, workspaceID uuid.UUID) (*ai.Meta, error)
}

// UsageRecorder books token spend per workspace. Recording is best effort;
// implementations must not fail the calling operation.
type UsageRecorder interface {
	Record(ctx context.Context, workspaceID uuid.UUID, task ai.Task, meta *ai.Meta)
}

// ExportInvalidator drops cached export bundles when content under a
// campaign changes.
type ExportInvalidator interface {
	InvalidateCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID)
}

type ContentService interface {
	CreateTopic(ctx context.Context, workspaceID uuid.UUID, req content.CreateTopicRequest) (*model.Topic, error)
	ResearchTopics(ctx context.Context, workspaceID uuid.UUID, req content.ResearchTopicsRequest) ([]model.Topic, error)
	ListTopics(ctx context.Context, workspaceID uuid.UUID) ([]model.Topic, error)

	CreateCampaign(ctx context.Context, workspaceID uuid.UUID, req content.CreateCampaignRequest) (*model.Campaign, []model.Post, error)
	GetCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) (*model.Campaign, []model.Post, error)
	ListCampaigns(ctx context.Context, workspaceID uuid.UUID) ([]model.Campaign, error)

	GetPost(ctx context.Context, workspaceID, postID uuid.UUID) (*model.Post, error)
	UpdatePostBrief(ctx context.Context, workspaceID, postID uuid.UUID, req content.UpdatePostBriefRequest) error
	UpdatePostStatus(ctx context.Context, workspaceID, postID uuid.UUID, next model.PostStatus) error

	GenerateDraft(ctx context.Context, workspaceID, postID uuid.UUID) (*model.PostVersion, error)
	RewriteVersion(ctx context.Context, workspaceID, postID, versionID uuid.UUID, instruction string) (*model.PostVersion, error)
	EditVersion(ctx context.Context, workspaceID, postID uuid.UUID, req content.EditVersionRequest) (*model.PostVersion, error)
	ListVersions(ctx context.Context, workspaceID, postID uuid.UUID) ([]model.PostVersion, error)
	SetCurrentVersion(ctx context.Context, workspaceID, postID, versionID uuid.UUID) error

	RunCritic(ctx context.Context, workspaceID, postID, versionID uuid.UUID) (*model.CriticReview, error)
	ListReviews(ctx context.Context, target model.ReviewTarget, targetID uuid.UUID) ([]model.CriticReview, error)
}

type contentService struct {
	repo      content.Repository
	generator Generator
	usage     UsageRecorder
	exports   ExportInvalidator
}

func NewContentService(repo content.Repository, generator Generator, usage UsageRecorder, exports ExportInvalidator) ContentService {
	return &contentService{
		repo:      repo,
		generator: generator,
		usage:     usage,
		exports:   exports,
	}
}

func (s *contentService) CreateTopic(ctx context.Context, workspaceID uuid.UUID, req content.CreateTopicRequest) (*model.Topic, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	topic := &model.Topic{
		WorkspaceID: workspaceID,
		Title:       req.Title,
		Summary:     req.Summary,
		Keywords:    req.Keywords,
	}
	if err := s.repo.CreateTopic(ctx, topic); err != nil {
		return nil, apperror.Storage(err)
	}
	return topic, nil
}

// ResearchTopics asks the AI for topic ideas and persists every one that
// comes back. The workspace reviews and prunes afterwards.
func (s *contentService) ResearchTopics(ctx context.Context, workspaceID uuid.UUID, req content.ResearchTopicsRequest) ([]model.Topic, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	var out topicIdeasOutput
	meta, err := s.generator.GenerateStructured(ctx, ai.TaskTopicResearch, &out,
		researchSystemPrompt, researchUserPrompt(req.Niche, req.Audience), workspaceID)
	if err != nil {
		return nil, err
	}
	s.usage.Record(ctx, workspaceID, ai.TaskTopicResearch, meta)

	topics := make([]model.Topic, 0, len(out.Topics))
	for _, idea := range out.Topics {
		topic := model.Topic{
			WorkspaceID: workspaceID,
			Title:       idea.Title,
			Summary:     idea.Summary,
			Keywords:    idea.Keywords,
		}
		if err := s.repo.CreateTopic(ctx, &topic); err != nil {
			return nil, apperror.Storage(err)
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

func (s *contentService) ListTopics(ctx context.Context, workspaceID uuid.UUID) ([]model.Topic, error) {
	topics, err := s.repo.ListTopics(ctx, workspaceID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return topics, nil
}

// CreateCampaign materializes the plan: one draft post per slot, created
// atomically with the campaign.
func (s *contentService) CreateCampaign(ctx context.Context, workspaceID uuid.UUID, req content.CreateCampaignRequest) (*model.Campaign, []model.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, apperror.Validation(err.Error())
	}
	for _, slot := range req.Plan {
		if err := slot.Validate(); err != nil {
			return nil, nil, apperror.Validation(err.Error())
		}
	}

	if _, err := s.repo.GetTopic(ctx, workspaceID, req.TopicID); err != nil {
		return nil, nil, s.mapRepoError(err)
	}

	campaign := &model.Campaign{
		WorkspaceID: workspaceID,
		TopicID:     req.TopicID,
		WeekStart:   req.WeekStart,
	}
	posts := make([]model.Post, 0, len(req.Plan))
	for _, slot := range req.Plan {
		campaign.Plan = append(campaign.Plan, model.PlanSlot{
			Weekday:   slot.Weekday,
			Stage:     model.FunnelStage(slot.Stage),
			Objective: slot.Objective,
		})
		posts = append(posts, model.Post{
			WorkspaceID:  workspaceID,
			ScheduledDay: slot.Weekday,
			Stage:        model.FunnelStage(slot.Stage),
			Objective:    slot.Objective,
			Status:       model.StatusDraft,
		})
	}

	if err := s.repo.CreateCampaign(ctx, campaign, posts); err != nil {
		return nil, nil, apperror.Storage(err)
	}
	return campaign, posts, nil
}

func (s *contentService) GetCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) (*model.Campaign, []model.Post, error) {
	campaign, err := s.repo.GetCampaign(ctx, workspaceID, campaignID)
	if err != nil {
		return nil, nil, s.mapRepoError(err)
	}
	posts, err := s.repo.ListPostsByCampaign(ctx, workspaceID, campaignID)
	if err != nil {
		return nil, nil, apperror.Storage(err)
	}
	return campaign, posts, nil
}

func (s *contentService) ListCampaigns(ctx context.Context, workspaceID uuid.UUID) ([]model.Campaign, error) {
	campaigns, err := s.repo.ListCampaigns(ctx, workspaceID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return campaigns, nil
}

func (s *contentService) GetPost(ctx context.Context, workspaceID, postID uuid.UUID) (*model.Post, error) {
	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return post, nil
}

func (s *contentService) UpdatePostBrief(ctx context.Context, workspaceID, postID uuid.UUID, req content.UpdatePostBriefRequest) error {
	if err := req.Validate(); err != nil {
		return apperror.Validation(err.Error())
	}

	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return s.mapRepoError(err)
	}
	if err := s.repo.UpdatePostBrief(ctx, postID, model.FunnelStage(req.Stage), req.Objective); err != nil {
		return s.mapRepoError(err)
	}
	s.exports.InvalidateCampaign(ctx, post.WorkspaceID, post.CampaignID)
	return nil
}

// UpdatePostStatus validates the transition against the lifecycle rules,
// then applies it as a compare-and-swap so a concurrent transition cannot
// slip a step through.
func (s *contentService) UpdatePostStatus(ctx context.Context, workspaceID, postID uuid.UUID, next model.PostStatus) error {
	if !next.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown status %q", next))
	}

	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return s.mapRepoError(err)
	}

	if !post.Status.CanTransitionTo(next) {
		return apperror.Conflict(fmt.Sprintf("cannot move post from %s to %s", post.Status, next))
	}

	if err := s.repo.UpdatePostStatus(ctx, postID, post.Status, next); err != nil {
		return s.mapRepoError(err)
	}
	s.exports.InvalidateCampaign(ctx, post.WorkspaceID, post.CampaignID)
	return nil
}

// GenerateDraft produces a fresh AI version for the post and makes it
// current.
func (s *contentService) GenerateDraft(ctx context.Context, workspaceID, postID uuid.UUID) (*model.PostVersion, error) {
	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	campaign, err := s.repo.GetCampaign(ctx, workspaceID, post.CampaignID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	topic, err := s.repo.GetTopic(ctx, workspaceID, campaign.TopicID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	var out postDraftOutput
	meta, err := s.generator.GenerateStructured(ctx, ai.TaskPostGeneration, &out,
		draftSystemPrompt, draftUserPrompt(topic, post), workspaceID)
	if err != nil {
		return nil, err
	}
	s.usage.Record(ctx, workspaceID, ai.TaskPostGeneration, meta)

	return s.appendVersion(ctx, post, &model.PostVersion{
		PostID: postID,
		Hook:   out.Hook,
		Body:   out.Body,
		CTA:    out.CTA,
		Source: model.SourceGenerated,
	})
}

// RewriteVersion generates a new variant from an existing one plus an
// instruction. The base version is untouched; history only grows.
func (s *contentService) RewriteVersion(ctx context.Context, workspaceID, postID, versionID uuid.UUID, instruction string) (*model.PostVersion, error) {
	req := content.RewriteVersionRequest{Instruction: instruction}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	base, err := s.versionOfPost(ctx, postID, versionID)
	if err != nil {
		return nil, err
	}

	var out postDraftOutput
	meta, err := s.generator.GenerateStructured(ctx, ai.TaskPostRewrite, &out,
		draftSystemPrompt, rewriteUserPrompt(base, instruction), workspaceID)
	if err != nil {
		return nil, err
	}
	s.usage.Record(ctx, workspaceID, ai.TaskPostRewrite, meta)

	return s.appendVersion(ctx, post, &model.PostVersion{
		PostID: postID,
		Hook:   out.Hook,
		Body:   out.Body,
		CTA:    out.CTA,
		Source: model.SourceGenerated,
	})
}

func (s *contentService) EditVersion(ctx context.Context, workspaceID, postID uuid.UUID, req content.EditVersionRequest) (*model.PostVersion, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	return s.appendVersion(ctx, post, &model.PostVersion{
		PostID: postID,
		Hook:   req.Hook,
		Body:   req.Body,
		CTA:    req.CTA,
		Source: model.SourceEdited,
	})
}

func (s *contentService) ListVersions(ctx context.Context, workspaceID, postID uuid.UUID) ([]model.PostVersion, error) {
	if _, err := s.repo.GetPost(ctx, workspaceID, postID); err != nil {
		return nil, s.mapRepoError(err)
	}
	versions, err := s.repo.ListVersions(ctx, postID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return versions, nil
}

func (s *contentService) SetCurrentVersion(ctx context.Context, workspaceID, postID, versionID uuid.UUID) error {
	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return s.mapRepoError(err)
	}
	if err := s.repo.SetCurrentVersion(ctx, postID, versionID); err != nil {
		return s.mapRepoError(err)
	}
	s.exports.InvalidateCampaign(ctx, post.WorkspaceID, post.CampaignID)
	return nil
}

func (s *contentService) RunCritic(ctx context.Context, workspaceID, postID, versionID uuid.UUID) (*model.CriticReview, error) {
	post, err := s.repo.GetPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	version, err := s.versionOfPost(ctx, postID, versionID)
	if err != nil {
		return nil, err
	}

	var out criticOutput
	meta, err := s.generator.GenerateStructured(ctx, ai.TaskCriticReview, &out,
		criticSystemPrompt, criticUserPrompt(post, version), workspaceID)
	if err != nil {
		return nil, err
	}
	s.usage.Record(ctx, workspaceID, ai.TaskCriticReview, meta)

	review := &model.CriticReview{
		TargetKind: model.TargetPostVersion,
		TargetID:   versionID,
		Verdict:    out.Verdict,
	}
	for _, f := range out.Findings {
		review.Findings = append(review.Findings, model.Finding{
			Category: f.Category,
			Severity: f.Severity,
			Note:     f.Note,
		})
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, apperror.Storage(err)
	}
	return review, nil
}

func (s *contentService) ListReviews(ctx context.Context, target model.ReviewTarget, targetID uuid.UUID) ([]model.CriticReview, error) {
	reviews, err := s.repo.ListReviews(ctx, target, targetID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return reviews, nil
}

// appendVersion persists a new version as current and invalidates the
// campaign's cached export.
func (s *contentService) appendVersion(ctx context.Context, post *model.Post, version *model.PostVersion) (*model.PostVersion, error) {
	if err := s.repo.CreateVersion(ctx, version, true); err != nil {
		return nil, apperror.Storage(err)
	}
	s.exports.InvalidateCampaign(ctx, post.WorkspaceID, post.CampaignID)

	log.Debug().
		Str("post_id", post.ID.String()).
		Str("version_id", version.ID.String()).
		Str("source", string(version.Source)).
		Msg("post version created")
	return version, nil
}

func (s *contentService) versionOfPost(ctx context.Context, postID, versionID uuid.UUID) (*model.PostVersion, error) {
	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if version.PostID != postID {
		return nil, apperror.NotFound("post version not found")
	}
	return version, nil
}

func (s *contentService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, content.ErrTopicNotFound):
		return apperror.NotFound("topic not found")
	case errors.Is(err, content.ErrCampaignNotFound):
		return apperror.NotFound("campaign not found")
	case errors.Is(err, content.ErrPostNotFound):
		return apperror.NotFound("post not found")
	case errors.Is(err, content.ErrVersionNotFound), errors.Is(err, content.ErrVersionMismatch):
		return apperror.NotFound("post version not found")
	case errors.Is(err, content.ErrNoCurrentVersion):
		return apperror.NotFound("post has no current version")
	case errors.Is(err, content.ErrStaleStatus):
		return apperror.Conflict("post status changed, reload and retry")
	default:
		return apperror.Storage(err)
	}
}
