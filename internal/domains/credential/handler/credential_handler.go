package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/credential"
	"contentpilot-backend/internal/domains/credential/service"
	"contentpilot-backend/internal/shared/response"
)

// Handler exposes admin-only credential management. Routes are mounted
// behind auth + workspace + admin middleware.
type Handler struct {
	vault service.Vault
}

func NewHandler(vault service.Vault) *Handler {
	return &Handler{vault: vault}
}

// List returns hint-level info for every supported provider.
// GET /workspace/credentials
func (h *Handler) List(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)

	infos, err := h.vault.List(c.Request.Context(), workspaceID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, infos)
}

// Set stores or replaces one provider key.
// PUT /workspace/credentials/:provider
func (h *Handler) Set(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	provider := credential.Provider(c.Param("provider"))

	var req credential.SetKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		// First human-readable issue, not the whole error tree.
		response.BadRequest(c, err.Error())
		return
	}

	cred, err := h.vault.Set(c.Request.Context(), workspaceID, provider, req.APIKey)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, credential.KeyInfo{
		Provider:   cred.Provider,
		KeyHint:    cred.KeyHint,
		IsValid:    cred.IsValid,
		Configured: true,
	})
}

// Delete removes one provider key.
// DELETE /workspace/credentials/:provider
func (h *Handler) Delete(c *gin.Context) {
	workspaceID := c.MustGet("workspaceID").(uuid.UUID)
	provider := credential.Provider(c.Param("provider"))

	if err := h.vault.Delete(c.Request.Context(), workspaceID, provider); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil)
}
