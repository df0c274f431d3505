package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/content"
	"contentpilot-backend/internal/domains/content/model"
)

// memoryRepo is an in-memory content.Repository. All multi-row operations
// hold the same mutex the real store handles with transactions, so the
// invariants under test are the repository contract, not locking luck.
type memoryRepo struct {
	mu        sync.Mutex
	topics    map[uuid.UUID]model.Topic
	campaigns map[uuid.UUID]model.Campaign
	posts     map[uuid.UUID]model.Post
	versions  map[uuid.UUID]model.PostVersion
	reviews   []model.CriticReview
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		topics:    make(map[uuid.UUID]model.Topic),
		campaigns: make(map[uuid.UUID]model.Campaign),
		posts:     make(map[uuid.UUID]model.Post),
		versions:  make(map[uuid.UUID]model.PostVersion),
	}
}

func (r *memoryRepo) CreateTopic(_ context.Context, topic *model.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if topic.ID == uuid.Nil {
		topic.ID = uuid.New()
	}
	topic.CreatedAt = time.Now()
	r.topics[topic.ID] = *topic
	return nil
}

func (r *memoryRepo) GetTopic(_ context.Context, workspaceID, topicID uuid.UUID) (*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[topicID]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, content.ErrTopicNotFound
	}
	return &t, nil
}

func (r *memoryRepo) ListTopics(_ context.Context, workspaceID uuid.UUID) ([]model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Topic
	for _, t := range r.topics {
		if t.WorkspaceID == workspaceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryRepo) CreateCampaign(_ context.Context, campaign *model.Campaign, posts []model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	campaign.CreatedAt = time.Now()
	r.campaigns[campaign.ID] = *campaign
	for i := range posts {
		if posts[i].ID == uuid.Nil {
			posts[i].ID = uuid.New()
		}
		posts[i].CampaignID = campaign.ID
		r.posts[posts[i].ID] = posts[i]
	}
	return nil
}

func (r *memoryRepo) GetCampaign(_ context.Context, workspaceID, campaignID uuid.UUID) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok || c.WorkspaceID != workspaceID {
		return nil, content.ErrCampaignNotFound
	}
	return &c, nil
}

func (r *memoryRepo) ListCampaigns(_ context.Context, workspaceID uuid.UUID) ([]model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Campaign
	for _, c := range r.campaigns {
		if c.WorkspaceID == workspaceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetPost(_ context.Context, workspaceID, postID uuid.UUID) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok || p.WorkspaceID != workspaceID {
		return nil, content.ErrPostNotFound
	}
	return &p, nil
}

func (r *memoryRepo) ListPostsByCampaign(_ context.Context, workspaceID, campaignID uuid.UUID) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Post
	for _, p := range r.posts {
		if p.CampaignID == campaignID && p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdatePostBrief(_ context.Context, postID uuid.UUID, stage model.FunnelStage, objective string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return content.ErrPostNotFound
	}
	p.Stage = stage
	p.Objective = objective
	r.posts[postID] = p
	return nil
}

func (r *memoryRepo) UpdatePostStatus(_ context.Context, postID uuid.UUID, expected, next model.PostStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return content.ErrPostNotFound
	}
	if p.Status != expected {
		return content.ErrStaleStatus
	}
	p.Status = next
	r.posts[postID] = p
	return nil
}

func (r *memoryRepo) CreateVersion(_ context.Context, version *model.PostVersion, makeCurrent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[version.PostID]; !ok {
		return content.ErrPostNotFound
	}
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	maxPos := 0
	for _, v := range r.versions {
		if v.PostID == version.PostID && v.Position > maxPos {
			maxPos = v.Position
		}
	}
	version.Position = maxPos + 1
	version.CreatedAt = time.Now()
	r.versions[version.ID] = *version
	if makeCurrent {
		r.setCurrentLocked(version.PostID, version.ID)
		version.IsCurrent = true
	}
	return nil
}

func (r *memoryRepo) GetVersion(_ context.Context, versionID uuid.UUID) (*model.PostVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[versionID]
	if !ok {
		return nil, content.ErrVersionNotFound
	}
	return &v, nil
}

func (r *memoryRepo) ListVersions(_ context.Context, postID uuid.UUID) ([]model.PostVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PostVersion
	for _, v := range r.versions {
		if v.PostID == postID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetCurrentVersion(_ context.Context, postID uuid.UUID) (*model.PostVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.PostID == postID && v.IsCurrent {
			return &v, nil
		}
	}
	return nil, content.ErrNoCurrentVersion
}

func (r *memoryRepo) SetCurrentVersion(_ context.Context, postID, versionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[versionID]
	if !ok {
		return content.ErrVersionNotFound
	}
	if v.PostID != postID {
		return content.ErrVersionMismatch
	}
	r.setCurrentLocked(postID, versionID)
	return nil
}

// setCurrentLocked mirrors the single-statement flag flip of the real
// store: every sibling gets is_current = (id == versionID).
func (r *memoryRepo) setCurrentLocked(postID, versionID uuid.UUID) {
	for id, v := range r.versions {
		if v.PostID != postID {
			continue
		}
		v.IsCurrent = id == versionID
		r.versions[id] = v
	}
}

func (r *memoryRepo) CreateReview(_ context.Context, review *model.CriticReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *memoryRepo) ListReviews(_ context.Context, target model.ReviewTarget, targetID uuid.UUID) ([]model.CriticReview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CriticReview
	for _, rev := range r.reviews {
		if rev.TargetKind == target && rev.TargetID == targetID {
			out = append(out, rev)
		}
	}
	return out, nil
}
