package handler

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/workspace"
	"contentpilot-backend/internal/domains/workspace/service"
	"contentpilot-backend/internal/shared/response"
)

type Handler struct {
	workspaces service.WorkspaceService
}

func NewHandler(workspaces service.WorkspaceService) *Handler {
	return &Handler{workspaces: workspaces}
}

// Get returns the caller's workspace.
// GET /workspace
func (h *Handler) Get(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	ws, err := h.workspaces.Get(c.Request.Context(), workspaceID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ws)
}

type addMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

func (r addMemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In("admin", "editor")),
	)
}

// AddMember grants a user access to the workspace.
// POST /workspace/members
func (h *Handler) AddMember(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.UserID == uuid.Nil {
		response.BadRequest(c, "user_id is required")
		return
	}

	if err := h.workspaces.AddMember(c.Request.Context(), workspaceID, req.UserID, workspace.Role(req.Role)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, nil)
}

// RemoveMember revokes a user's access. The owner cannot be removed.
// DELETE /workspace/members/:userId
func (h *Handler) RemoveMember(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid userId")
		return
	}

	if err := h.workspaces.RemoveMember(c.Request.Context(), workspaceID, userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// ListMembers returns every membership of the workspace.
// GET /workspace/members
func (h *Handler) ListMembers(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	members, err := h.workspaces.ListMembers(c.Request.Context(), workspaceID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}
