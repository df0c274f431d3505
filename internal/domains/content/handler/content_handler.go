package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/content"
	"contentpilot-backend/internal/domains/content/model"
	"contentpilot-backend/internal/domains/content/service"
	"contentpilot-backend/internal/shared/response"
)

type Handler struct {
	content service.ContentService
}

func NewHandler(contentService service.ContentService) *Handler {
	return &Handler{content: contentService}
}

// CreateTopic stores a manually entered topic.
// POST /topics
func (h *Handler) CreateTopic(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	var req content.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	topic, err := h.content.CreateTopic(c.Request.Context(), workspaceID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, topic)
}

// ResearchTopics generates topic ideas via AI and persists them.
// POST /topics/research
func (h *Handler) ResearchTopics(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	var req content.ResearchTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	topics, err := h.content.ResearchTopics(c.Request.Context(), workspaceID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, topics)
}

// ListTopics returns all topics of the workspace.
// GET /topics
func (h *Handler) ListTopics(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	topics, err := h.content.ListTopics(c.Request.Context(), workspaceID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, topics)
}

type campaignPayload struct {
	Campaign *model.Campaign `json:"campaign"`
	Posts    []model.Post    `json:"posts"`
}

// CreateCampaign creates a campaign plus one draft post per plan slot.
// POST /campaigns
func (h *Handler) CreateCampaign(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	var req content.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	campaign, posts, err := h.content.CreateCampaign(c.Request.Context(), workspaceID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, campaignPayload{Campaign: campaign, Posts: posts})
}

// GetCampaign returns a campaign with its posts.
// GET /campaigns/:id
func (h *Handler) GetCampaign(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	campaignID, ok := parseID(c, "id")
	if !ok {
		return
	}

	campaign, posts, err := h.content.GetCampaign(c.Request.Context(), workspaceID, campaignID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, campaignPayload{Campaign: campaign, Posts: posts})
}

// ListCampaigns returns all campaigns of the workspace.
// GET /campaigns
func (h *Handler) ListCampaigns(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	campaigns, err := h.content.ListCampaigns(c.Request.Context(), workspaceID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, campaigns)
}

// GetPost returns one post.
// GET /posts/:id
func (h *Handler) GetPost(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	post, err := h.content.GetPost(c.Request.Context(), workspaceID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, post)
}

// UpdatePostBrief changes a post's stage and objective.
// PUT /posts/:id/brief
func (h *Handler) UpdatePostBrief(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req content.UpdatePostBriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.content.UpdatePostBrief(c.Request.Context(), workspaceID, postID, req); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// UpdatePostStatus moves a post through its lifecycle.
// PUT /posts/:id/status
func (h *Handler) UpdatePostStatus(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req content.UpdatePostStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.content.UpdatePostStatus(c.Request.Context(), workspaceID, postID, model.PostStatus(req.Status)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// GenerateDraft creates a fresh AI version and makes it current.
// POST /posts/:id/generate
func (h *Handler) GenerateDraft(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	version, err := h.content.GenerateDraft(c.Request.Context(), workspaceID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, version)
}

// RewriteVersion creates a new AI variant from an existing version.
// POST /posts/:id/versions/:versionId/rewrite
func (h *Handler) RewriteVersion(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	versionID, ok := parseID(c, "versionId")
	if !ok {
		return
	}

	var req content.RewriteVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	version, err := h.content.RewriteVersion(c.Request.Context(), workspaceID, postID, versionID, req.Instruction)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, version)
}

// EditVersion stores a manual edit as a new version.
// POST /posts/:id/versions
func (h *Handler) EditVersion(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req content.EditVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	version, err := h.content.EditVersion(c.Request.Context(), workspaceID, postID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, version)
}

// ListVersions returns a post's full version history.
// GET /posts/:id/versions
func (h *Handler) ListVersions(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	versions, err := h.content.ListVersions(c.Request.Context(), workspaceID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, versions)
}

// SetCurrentVersion picks which version represents the post.
// PUT /posts/:id/versions/:versionId/current
func (h *Handler) SetCurrentVersion(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	versionID, ok := parseID(c, "versionId")
	if !ok {
		return
	}

	if err := h.content.SetCurrentVersion(c.Request.Context(), workspaceID, postID, versionID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// RunCritic reviews a version with AI and appends the verdict.
// POST /posts/:id/versions/:versionId/critic
func (h *Handler) RunCritic(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	versionID, ok := parseID(c, "versionId")
	if !ok {
		return
	}

	review, err := h.content.RunCritic(c.Request.Context(), workspaceID, postID, versionID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, review)
}

// ListReviews returns the review history for a post version.
// GET /posts/:id/versions/:versionId/reviews
func (h *Handler) ListReviews(c *gin.Context) {
	versionID, ok := parseID(c, "versionId")
	if !ok {
		return
	}

	reviews, err := h.content.ListReviews(c.Request.Context(), model.TargetPostVersion, versionID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reviews)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
