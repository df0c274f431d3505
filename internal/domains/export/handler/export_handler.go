package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/export/service"
	"contentpilot-backend/internal/shared/response"
)

type Handler struct {
	exports service.ExportService
}

func NewHandler(exports service.ExportService) *Handler {
	return &Handler{exports: exports}
}

// GetBundle returns the campaign projection.
// GET /campaigns/:id/export
func (h *Handler) GetBundle(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}

	bundle, err := h.exports.BuildBundle(c.Request.Context(), workspaceID, campaignID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bundle)
}

// Publish uploads the bundle as markdown and returns its URL.
// POST /campaigns/:id/export/publish
func (h *Handler) Publish(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}

	url, err := h.exports.Publish(c.Request.Context(), workspaceID, campaignID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url})
}
