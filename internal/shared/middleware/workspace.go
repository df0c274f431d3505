package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/workspace"
	workspacesvc "contentpilot-backend/internal/domains/workspace/service"
	"contentpilot-backend/internal/shared/response"
)

// Workspace resolves the caller's workspace, creating one on first
// contact, and stores the id and role for downstream handlers. Must run
// after Auth.
func Workspace(workspaces workspacesvc.WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)

		ws, role, err := workspaces.EnsureForUser(c.Request.Context(), userID)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		c.Set("workspaceID", ws.ID)
		c.Set("workspaceRole", role)
		c.Next()
	}
}

// RequireManager gates admin surfaces (credentials, members) to owners
// and admins.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.MustGet("workspaceRole").(workspace.Role)
		if !role.CanManage() {
			response.Forbidden(c, "workspace admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
