package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot-backend/internal/ai"
	"contentpilot-backend/internal/domains/content"
	"contentpilot-backend/internal/domains/content/model"
	"contentpilot-backend/internal/shared/apperror"
)

// fakeGenerator unmarshals a canned JSON payload into the task schema,
// bypassing the provider layer entirely.
type fakeGenerator struct {
	payload string
	err     error
	calls   int
}

func (g *fakeGenerator) GenerateStructured(_ context.Context, _ ai.Task, out ai.Schema, _, _ string, _ uuid.UUID) (*ai.Meta, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if err := json.Unmarshal([]byte(g.payload), out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, apperror.MalformedOutput(err)
	}
	out.Trim()
	return &ai.Meta{Provider: "openai", Model: "gpt-4o", TokensIn: 100, TokensOut: 50}, nil
}

type nopUsage struct{}

func (nopUsage) Record(context.Context, uuid.UUID, ai.Task, *ai.Meta) {}

type recordingInvalidator struct {
	mu        sync.Mutex
	campaigns []uuid.UUID
}

func (r *recordingInvalidator) InvalidateCampaign(_ context.Context, _ uuid.UUID, campaignID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns = append(r.campaigns, campaignID)
}

type fixture struct {
	repo        *memoryRepo
	generator   *fakeGenerator
	invalidator *recordingInvalidator
	svc         ContentService

	workspaceID uuid.UUID
	topic       *model.Topic
	campaign    *model.Campaign
	post        *model.Post
}

func newFixture(t *testing.T, payload string) *fixture {
	t.Helper()

	f := &fixture{
		repo:        newMemoryRepo(),
		generator:   &fakeGenerator{payload: payload},
		invalidator: &recordingInvalidator{},
		workspaceID: uuid.New(),
	}
	f.svc = NewContentService(f.repo, f.generator, nopUsage{}, f.invalidator)

	f.topic = &model.Topic{WorkspaceID: f.workspaceID, Title: "Morning routines"}
	require.NoError(t, f.repo.CreateTopic(context.Background(), f.topic))

	f.campaign = &model.Campaign{
		WorkspaceID: f.workspaceID,
		TopicID:     f.topic.ID,
		WeekStart:   time.Now(),
		Plan:        []model.PlanSlot{{Weekday: 0, Stage: model.StageTop, Objective: "reach"}},
	}
	posts := []model.Post{{
		WorkspaceID: f.workspaceID,
		Stage:       model.StageTop,
		Objective:   "reach",
		Status:      model.StatusDraft,
	}}
	require.NoError(t, f.repo.CreateCampaign(context.Background(), f.campaign, posts))

	stored, err := f.repo.ListPostsByCampaign(context.Background(), f.workspaceID, f.campaign.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	f.post = &stored[0]
	return f
}

func TestResearchTopicsPersistsIdeas(t *testing.T) {
	f := newFixture(t, `{"topics": [
		{"title": "Cold showers", "summary": "Why they work", "keywords": ["health"]},
		{"title": "Deep work", "summary": "Focus blocks for creators", "keywords": []}
	]}`)

	topics, err := f.svc.ResearchTopics(context.Background(), f.workspaceID, content.ResearchTopicsRequest{Niche: "productivity"})
	require.NoError(t, err)
	require.Len(t, topics, 2)

	stored, err := f.svc.ListTopics(context.Background(), f.workspaceID)
	require.NoError(t, err)
	// The seed topic plus two researched ones.
	assert.Len(t, stored, 3)
}

func TestCreateCampaignMaterializesPlan(t *testing.T) {
	f := newFixture(t, "")

	campaign, posts, err := f.svc.CreateCampaign(context.Background(), f.workspaceID, content.CreateCampaignRequest{
		TopicID:   f.topic.ID,
		WeekStart: time.Now(),
		Plan: []content.PlanSlotRequest{
			{Weekday: 0, Stage: "top", Objective: "grow reach"},
			{Weekday: 2, Stage: "middle", Objective: "build trust"},
			{Weekday: 4, Stage: "bottom", Objective: "sell course"},
		},
	})
	require.NoError(t, err)
	require.Len(t, posts, 3)

	for i, p := range posts {
		assert.Equal(t, campaign.ID, p.CampaignID)
		assert.Equal(t, model.StatusDraft, p.Status, "post %d starts as draft", i)
	}
	assert.Equal(t, model.StageBottom, posts[2].Stage)
}

func TestCreateCampaignRejectsBadPlan(t *testing.T) {
	f := newFixture(t, "")

	_, _, err := f.svc.CreateCampaign(context.Background(), f.workspaceID, content.CreateCampaignRequest{
		TopicID:   f.topic.ID,
		WeekStart: time.Now(),
		Plan:      []content.PlanSlotRequest{{Weekday: 9, Stage: "sideways", Objective: "x"}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestGenerateDraftCreatesCurrentVersion(t *testing.T) {
	f := newFixture(t, `{"hook": "Stop scrolling.", "body": "Here is the thing.", "cta": "Follow for more."}`)

	version, err := f.svc.GenerateDraft(context.Background(), f.workspaceID, f.post.ID)
	require.NoError(t, err)

	assert.True(t, version.IsCurrent)
	assert.Equal(t, model.SourceGenerated, version.Source)
	assert.Equal(t, 1, version.Position)

	current, err := f.repo.GetCurrentVersion(context.Background(), f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, version.ID, current.ID)

	// A cached export of the campaign is now stale.
	assert.Contains(t, f.invalidator.campaigns, f.campaign.ID)
}

func TestGenerateDraftKeepsHistory(t *testing.T) {
	f := newFixture(t, `{"hook": "h", "body": "b", "cta": "c"}`)

	v1, err := f.svc.GenerateDraft(context.Background(), f.workspaceID, f.post.ID)
	require.NoError(t, err)
	v2, err := f.svc.GenerateDraft(context.Background(), f.workspaceID, f.post.ID)
	require.NoError(t, err)

	versions, err := f.svc.ListVersions(context.Background(), f.workspaceID, f.post.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	current, err := f.repo.GetCurrentVersion(context.Background(), f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)
	assert.NotEqual(t, v1.ID, current.ID)
}

func TestGeneratorFailurePropagatesWithoutVersion(t *testing.T) {
	f := newFixture(t, "")
	f.generator.err = apperror.Provider(assert.AnError)

	_, err := f.svc.GenerateDraft(context.Background(), f.workspaceID, f.post.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindProvider, apperror.KindOf(err))

	versions, listErr := f.svc.ListVersions(context.Background(), f.workspaceID, f.post.ID)
	require.NoError(t, listErr)
	assert.Empty(t, versions)
}

func TestUpdatePostStatusWalksLifecycle(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	for _, next := range []model.PostStatus{
		model.StatusInReview, model.StatusApproved, model.StatusScheduled, model.StatusPublished,
	} {
		require.NoError(t, f.svc.UpdatePostStatus(ctx, f.workspaceID, f.post.ID, next))
	}

	post, err := f.svc.GetPost(ctx, f.workspaceID, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, post.Status)
}

func TestUpdatePostStatusRejectsSkips(t *testing.T) {
	f := newFixture(t, "")

	err := f.svc.UpdatePostStatus(context.Background(), f.workspaceID, f.post.ID, model.StatusPublished)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	post, getErr := f.svc.GetPost(context.Background(), f.workspaceID, f.post.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.StatusDraft, post.Status)
}

func TestSetCurrentVersionRejectsForeignVersion(t *testing.T) {
	f := newFixture(t, `{"hook": "h", "body": "b", "cta": "c"}`)

	// A version on a different post of the same workspace.
	otherPosts := []model.Post{{WorkspaceID: f.workspaceID, Stage: model.StageTop, Objective: "o", Status: model.StatusDraft}}
	otherCampaign := &model.Campaign{WorkspaceID: f.workspaceID, TopicID: f.topic.ID, WeekStart: time.Now()}
	require.NoError(t, f.repo.CreateCampaign(context.Background(), otherCampaign, otherPosts))
	stored, err := f.repo.ListPostsByCampaign(context.Background(), f.workspaceID, otherCampaign.ID)
	require.NoError(t, err)
	foreign := &model.PostVersion{PostID: stored[0].ID, Hook: "x", Body: "y", Source: model.SourceEdited}
	require.NoError(t, f.repo.CreateVersion(context.Background(), foreign, false))

	err = f.svc.SetCurrentVersion(context.Background(), f.workspaceID, f.post.ID, foreign.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

// Concurrent current-version flips must leave exactly one version current,
// regardless of interleaving.
func TestSetCurrentVersionConcurrent(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	const n = 100
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		v := &model.PostVersion{PostID: f.post.ID, Hook: "h", Body: "b", Source: model.SourceEdited}
		require.NoError(t, f.repo.CreateVersion(ctx, v, false))
		ids = append(ids, v.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(versionID uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, f.svc.SetCurrentVersion(ctx, f.workspaceID, f.post.ID, versionID))
		}(id)
	}
	wg.Wait()

	versions, err := f.svc.ListVersions(ctx, f.workspaceID, f.post.ID)
	require.NoError(t, err)
	require.Len(t, versions, n)

	currents := 0
	for _, v := range versions {
		if v.IsCurrent {
			currents++
		}
	}
	assert.Equal(t, 1, currents)
}

func TestRunCriticAppendsReview(t *testing.T) {
	f := newFixture(t, `{"hook": "h", "body": "b", "cta": "c"}`)
	ctx := context.Background()

	version, err := f.svc.GenerateDraft(ctx, f.workspaceID, f.post.ID)
	require.NoError(t, err)

	f.generator.payload = `{"verdict": "revise", "findings": [
		{"category": "hook", "severity": "high", "note": "opens flat"}
	]}`

	review, err := f.svc.RunCritic(ctx, f.workspaceID, f.post.ID, version.ID)
	require.NoError(t, err)
	assert.Equal(t, "revise", review.Verdict)
	require.Len(t, review.Findings, 1)
	assert.Equal(t, "high", review.Findings[0].Severity)

	// A second run appends; the first verdict is untouched.
	f.generator.payload = `{"verdict": "pass", "findings": []}`
	_, err = f.svc.RunCritic(ctx, f.workspaceID, f.post.ID, version.ID)
	require.NoError(t, err)

	reviews, err := f.svc.ListReviews(ctx, model.TargetPostVersion, version.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestWorkspaceIsolation(t *testing.T) {
	f := newFixture(t, "")
	stranger := uuid.New()

	_, err := f.svc.GetPost(context.Background(), stranger, f.post.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	err = f.svc.UpdatePostStatus(context.Background(), stranger, f.post.ID, model.StatusInReview)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
