package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/domains/content"
	contentmodel "contentpilot-backend/internal/domains/content/model"
	"contentpilot-backend/internal/domains/export"
	"contentpilot-backend/internal/domains/visual"
	"contentpilot-backend/internal/infrastructure/storage"
	"contentpilot-backend/internal/shared/apperror"
)

// ContentSource is the slice of the content store the projection reads.
type ContentSource interface {
	GetCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) (*contentmodel.Campaign, error)
	ListPostsByCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) ([]contentmodel.Post, error)
	GetCurrentVersion(ctx context.Context, postID uuid.UUID) (*contentmodel.PostVersion, error)
}

// VisualSource supplies approved visuals per post.
type VisualSource interface {
	ListVersionsByPost(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Version, error)
}

type ExportService interface {
	// BuildBundle computes (or serves from cache) the campaign projection.
	BuildBundle(ctx context.Context, workspaceID, campaignID uuid.UUID) (*export.Bundle, error)

	// Publish renders the bundle as markdown and uploads it, returning the
	// public URL.
	Publish(ctx context.Context, workspaceID, campaignID uuid.UUID) (string, error)

	// InvalidateCampaign drops the cached bundle. Called by the content
	// and visual sides whenever anything under the campaign changes.
	InvalidateCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID)
}

type exportService struct {
	contents ContentSource
	visuals  VisualSource
	cache    *redis.Client
	uploader storage.Uploader
	ttl      time.Duration
	now      func() time.Time
}

func NewExportService(contents ContentSource, visuals VisualSource, cache *redis.Client, uploader storage.Uploader, ttl time.Duration) ExportService {
	return &exportService{
		contents: contents,
		visuals:  visuals,
		cache:    cache,
		uploader: uploader,
		ttl:      ttl,
		now:      time.Now,
	}
}

// The key is workspace-scoped: ownership is only checked on compute, so a
// cached bundle must never be reachable under another workspace's reads.
func cacheKey(workspaceID, campaignID uuid.UUID) string {
	return "export:workspace:" + workspaceID.String() + ":campaign:" + campaignID.String()
}

func (s *exportService) BuildBundle(ctx context.Context, workspaceID, campaignID uuid.UUID) (*export.Bundle, error) {
	// Cache failures degrade to a recompute, never to an error.
	if raw, err := s.cache.Get(ctx, cacheKey(workspaceID, campaignID)).Bytes(); err == nil {
		var bundle export.Bundle
		if err := json.Unmarshal(raw, &bundle); err == nil {
			return &bundle, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("export cache read failed")
	}

	bundle, err := s.compute(ctx, workspaceID, campaignID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(bundle); err == nil {
		if err := s.cache.Set(ctx, cacheKey(workspaceID, campaignID), raw, s.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("export cache write failed")
		}
	}
	return bundle, nil
}

func (s *exportService) compute(ctx context.Context, workspaceID, campaignID uuid.UUID) (*export.Bundle, error) {
	campaign, err := s.contents.GetCampaign(ctx, workspaceID, campaignID)
	if err != nil {
		if errors.Is(err, content.ErrCampaignNotFound) {
			return nil, apperror.NotFound("campaign not found")
		}
		return nil, apperror.Storage(err)
	}

	posts, err := s.contents.ListPostsByCampaign(ctx, workspaceID, campaignID)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	bundle := &export.Bundle{
		CampaignID:  campaignID,
		WeekStart:   campaign.WeekStart,
		GeneratedAt: s.now(),
	}

	for _, post := range posts {
		item := export.Item{
			PostID:       post.ID,
			ScheduledDay: post.ScheduledDay,
			Stage:        post.Stage,
			Objective:    post.Objective,
			Status:       post.Status,
		}

		current, err := s.contents.GetCurrentVersion(ctx, post.ID)
		switch {
		case err == nil:
			item.HasCopy = true
			item.Hook = current.Hook
			item.Body = current.Body
			item.CTA = current.CTA
		case errors.Is(err, content.ErrNoCurrentVersion):
			// The post appears with empty copy.
		default:
			return nil, apperror.Storage(err)
		}

		urls, err := s.approvedImageURLs(ctx, workspaceID, post.ID)
		if err != nil {
			return nil, err
		}
		item.ImageURLs = urls

		bundle.Items = append(bundle.Items, item)
	}

	return bundle, nil
}

// approvedImageURLs returns slide URLs of the newest approved visual, in
// slide order. Unapproved visuals never leave the workspace via export.
func (s *exportService) approvedImageURLs(ctx context.Context, workspaceID, postID uuid.UUID) ([]string, error) {
	versions, err := s.visuals.ListVersionsByPost(ctx, workspaceID, postID)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	var newest *visual.Version
	for i := range versions {
		if versions[i].Status != visual.StatusApproved {
			continue
		}
		if newest == nil || versions[i].CreatedAt.After(newest.CreatedAt) {
			newest = &versions[i]
		}
	}
	if newest == nil {
		return nil, nil
	}

	urls := make([]string, 0, len(newest.Slides))
	for _, slide := range newest.Slides {
		if slide.Rendered() {
			urls = append(urls, slide.ImageURL)
		}
	}
	return urls, nil
}

func (s *exportService) Publish(ctx context.Context, workspaceID, campaignID uuid.UUID) (string, error) {
	bundle, err := s.BuildBundle(ctx, workspaceID, campaignID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/%s/bundle.md", campaignID)
	url, err := s.uploader.Upload(ctx, key, []byte(renderMarkdown(bundle)), "text/markdown")
	if err != nil {
		return "", apperror.Storage(err)
	}

	log.Info().
		Str("campaign_id", campaignID.String()).
		Str("url", url).
		Msg("campaign bundle published")
	return url, nil
}

func (s *exportService) InvalidateCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) {
	if err := s.cache.Del(ctx, cacheKey(workspaceID, campaignID)).Err(); err != nil {
		log.Warn().Err(err).
			Str("campaign_id", campaignID.String()).
			Msg("export cache invalidation failed")
	}
}
