package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/usage/service"
	"contentpilot-backend/internal/shared/response"
)

type Handler struct {
	usage service.UsageService
}

func NewHandler(usageService service.UsageService) *Handler {
	return &Handler{usage: usageService}
}

// Summary returns aggregate spend for the workspace.
// GET /usage/summary?days=30
func (h *Handler) Summary(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	summary, err := h.usage.Summary(c.Request.Context(), workspaceID, sinceParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// List returns recent usage records.
// GET /usage?days=30&limit=50
func (h *Handler) List(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.usage.List(c.Request.Context(), workspaceID, sinceParam(c), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

func sinceParam(c *gin.Context) time.Time {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 || days > 365 {
		days = 30
	}
	return time.Now().AddDate(0, 0, -days)
}
