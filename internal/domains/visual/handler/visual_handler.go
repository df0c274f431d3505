package handler

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/visual"
	"contentpilot-backend/internal/domains/visual/service"
	"contentpilot-backend/internal/shared/response"
)

type Handler struct {
	visuals service.VisualService
}

func NewHandler(visuals service.VisualService) *Handler {
	return &Handler{visuals: visuals}
}

// SuggestConcepts generates visual directions for a post.
// POST /posts/:id/concepts/suggest
func (h *Handler) SuggestConcepts(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	concepts, err := h.visuals.SuggestConcepts(c.Request.Context(), workspaceID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, concepts)
}

// ListConcepts returns all proposed concepts for a post.
// GET /posts/:id/concepts
func (h *Handler) ListConcepts(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	concepts, err := h.visuals.ListConcepts(c.Request.Context(), workspaceID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, concepts)
}

// SelectConcept marks one concept as the direction to render.
// PUT /posts/:id/concepts/:conceptId/select
func (h *Handler) SelectConcept(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	conceptID, ok := parseID(c, "conceptId")
	if !ok {
		return
	}

	if err := h.visuals.SelectConcept(c.Request.Context(), workspaceID, postID, conceptID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

type createVersionRequest struct {
	Kind       string `json:"kind"`
	SlideCount int    `json:"slide_count"`
}

func (r createVersionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In("single", "carousel")),
	)
}

// CreateVersion starts rendering the selected concept.
// POST /posts/:id/visuals
func (h *Handler) CreateVersion(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	version, err := h.visuals.CreateVersion(c.Request.Context(), workspaceID, postID, visual.Kind(req.Kind), req.SlideCount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, version)
}

// ListVersions returns a post's visual versions with their slides.
// GET /posts/:id/visuals
func (h *Handler) ListVersions(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	versions, err := h.visuals.ListVersions(c.Request.Context(), workspaceID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, versions)
}

// GetVersion returns one visual version, slides included. Partially
// rendered carousels are a normal sight here.
// GET /visuals/:id
func (h *Handler) GetVersion(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	versionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	version, err := h.visuals.GetVersion(c.Request.Context(), workspaceID, versionID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, version)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// Review settles QA on a fully rendered version.
// PUT /visuals/:id/review
func (h *Handler) Review(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	versionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	version, err := h.visuals.Review(c.Request.Context(), workspaceID, versionID, req.Approve)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, version)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
