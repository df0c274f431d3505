package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	contenthandler "contentpilot-backend/internal/domains/content/handler"
	credentialhandler "contentpilot-backend/internal/domains/credential/handler"
	exporthandler "contentpilot-backend/internal/domains/export/handler"
	usagehandler "contentpilot-backend/internal/domains/usage/handler"
	visualhandler "contentpilot-backend/internal/domains/visual/handler"
	workspacehandler "contentpilot-backend/internal/domains/workspace/handler"
	"contentpilot-backend/internal/shared/middleware"
	"contentpilot-backend/internal/shared/ratelimit"
	"contentpilot-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		authed := v1.Group("")
		authed.Use(
			middleware.Auth(c.JWT),
			middleware.Workspace(c.Workspaces),
		)
		{
			setupWorkspaceRoutes(authed, c)
			setupContentRoutes(authed, c)
			setupVisualRoutes(authed, c)
			setupExportRoutes(authed, c)
			setupUsageRoutes(authed, c)
		}
	}

	return router
}

// Workspace administration: profile, members and provider credentials.
// Mutating member and credential routes are owner/admin only.
func setupWorkspaceRoutes(g *gin.RouterGroup, c *container.Container) {
	wsHandler := workspacehandler.NewHandler(c.Workspaces)
	credHandler := credentialhandler.NewHandler(c.Vault)

	ws := g.Group("/workspace")
	{
		ws.GET("", wsHandler.Get)
		ws.GET("/members", wsHandler.ListMembers)

		manage := ws.Group("")
		manage.Use(middleware.RequireManager())
		{
			manage.POST("/members", wsHandler.AddMember)
			manage.DELETE("/members/:userId", wsHandler.RemoveMember)

			manage.GET("/credentials", credHandler.List)
			manage.PUT("/credentials/:provider", credHandler.Set)
			manage.DELETE("/credentials/:provider", credHandler.Delete)
		}
	}
}

// Topics, campaigns, posts and copy versions.
func setupContentRoutes(g *gin.RouterGroup, c *container.Container) {
	h := contenthandler.NewHandler(c.Contents)

	topics := g.Group("/topics")
	{
		topics.POST("", h.CreateTopic)
		topics.GET("", h.ListTopics)
		topics.POST("/research",
			middleware.RateLimit(c.Limiter, ratelimit.BucketResearch),
			h.ResearchTopics)
	}

	campaigns := g.Group("/campaigns")
	{
		campaigns.POST("", h.CreateCampaign)
		campaigns.GET("", h.ListCampaigns)
		campaigns.GET("/:id", h.GetCampaign)
	}

	generate := middleware.RateLimit(c.Limiter, ratelimit.BucketGeneration)

	posts := g.Group("/posts")
	{
		posts.GET("/:id", h.GetPost)
		posts.PUT("/:id/brief", h.UpdatePostBrief)
		posts.PUT("/:id/status", h.UpdatePostStatus)

		posts.POST("/:id/generate", generate, h.GenerateDraft)
		posts.POST("/:id/versions", h.EditVersion)
		posts.GET("/:id/versions", h.ListVersions)
		posts.POST("/:id/versions/:versionId/rewrite", generate, h.RewriteVersion)
		posts.PUT("/:id/versions/:versionId/current", h.SetCurrentVersion)
		posts.POST("/:id/versions/:versionId/critic", generate, h.RunCritic)
		posts.GET("/:id/versions/:versionId/reviews", h.ListReviews)
	}
}

// Visual concepts, versions and QA.
func setupVisualRoutes(g *gin.RouterGroup, c *container.Container) {
	h := visualhandler.NewHandler(c.Visuals)

	generate := middleware.RateLimit(c.Limiter, ratelimit.BucketGeneration)

	posts := g.Group("/posts")
	{
		posts.POST("/:id/concepts/suggest", generate, h.SuggestConcepts)
		posts.GET("/:id/concepts", h.ListConcepts)
		posts.PUT("/:id/concepts/:conceptId/select", h.SelectConcept)

		posts.POST("/:id/visuals",
			middleware.RateLimit(c.Limiter, ratelimit.BucketImage),
			h.CreateVersion)
		posts.GET("/:id/visuals", h.ListVersions)
	}

	visuals := g.Group("/visuals")
	{
		visuals.GET("/:id", h.GetVersion)
		visuals.PUT("/:id/review", h.Review)
	}
}

// Campaign bundle projection.
func setupExportRoutes(g *gin.RouterGroup, c *container.Container) {
	h := exporthandler.NewHandler(c.Exports)

	export := middleware.RateLimit(c.Limiter, ratelimit.BucketExport)

	campaigns := g.Group("/campaigns")
	{
		campaigns.GET("/:id/export", export, h.GetBundle)
		campaigns.POST("/:id/export/publish", export, h.Publish)
	}
}

// AI usage accounting.
func setupUsageRoutes(g *gin.RouterGroup, c *container.Container) {
	h := usagehandler.NewHandler(c.Usage)

	usage := g.Group("/usage")
	{
		usage.GET("", h.List)
		usage.GET("/summary", h.Summary)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   c.Config.App.Version,
		}

		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			dbStatus = "error"
			health["status"] = "degraded"
		}

		redisStatus := "ok"
		if err := c.Redis.HealthCheck(checkCtx); err != nil {
			redisStatus = "error"
			health["status"] = "degraded"
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		ctx.JSON(statusCode, health)
	}
}
