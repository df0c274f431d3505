// Package container wires configuration, infrastructure and domain
// services into one dependency graph shared by cmd/api and cmd/worker.
package container

import (
	"context"
	"fmt"

	"contentpilot-backend/internal/ai"
	"contentpilot-backend/internal/config"
	"contentpilot-backend/internal/domains/content"
	contentrepo "contentpilot-backend/internal/domains/content/repository"
	contentsvc "contentpilot-backend/internal/domains/content/service"
	"contentpilot-backend/internal/domains/credential"
	credentialrepo "contentpilot-backend/internal/domains/credential/repository"
	credentialsvc "contentpilot-backend/internal/domains/credential/service"
	exportsvc "contentpilot-backend/internal/domains/export/service"
	usagerepo "contentpilot-backend/internal/domains/usage/repository"
	usagesvc "contentpilot-backend/internal/domains/usage/service"
	"contentpilot-backend/internal/domains/visual"
	visualrepo "contentpilot-backend/internal/domains/visual/repository"
	visualsvc "contentpilot-backend/internal/domains/visual/service"
	workspacerepo "contentpilot-backend/internal/domains/workspace/repository"
	workspacesvc "contentpilot-backend/internal/domains/workspace/service"
	"contentpilot-backend/internal/infrastructure/cache"
	"contentpilot-backend/internal/infrastructure/database"
	"contentpilot-backend/internal/infrastructure/queue"
	"contentpilot-backend/internal/infrastructure/storage"
	"contentpilot-backend/internal/shared/ratelimit"
	"contentpilot-backend/pkg/jwt"
)

type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *database.PostgresDB
	Redis   *cache.RedisClient
	Storage *storage.MinIOStorage
	Queue   *queue.Client
	Limiter *ratelimit.Limiter
	JWT     *jwt.Manager

	// Domain services
	Vault      credentialsvc.Vault
	Router     *ai.Router
	Workspaces workspacesvc.WorkspaceService
	Contents   contentsvc.ContentService
	Visuals    visualsvc.VisualService
	Exports    exportsvc.ExportService
	Usage      usagesvc.UsageService

	// Repositories the worker wires into its job handlers
	ContentRepo content.Repository
	VisualRepo  visual.Repository
}

// New connects infrastructure and builds every service. Callers own the
// returned container's lifecycle via Close.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	c.DB = database.NewPostgresDB(&cfg.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := c.DB.RunMigrations(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	c.Redis = cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	c.Storage = minioStorage

	c.Queue = queue.NewClient(cfg.Redis.Host)
	c.JWT = jwt.NewManager(cfg.JWT.Secret)

	c.Limiter = ratelimit.New(map[ratelimit.Bucket]ratelimit.Limit{
		ratelimit.BucketGeneration: {MaxRequests: cfg.RateLimit.GenerationMax, Window: cfg.RateLimit.GenerationWindow},
		ratelimit.BucketImage:      {MaxRequests: cfg.RateLimit.ImageMax, Window: cfg.RateLimit.ImageWindow},
		ratelimit.BucketResearch:   {MaxRequests: cfg.RateLimit.ResearchMax, Window: cfg.RateLimit.ResearchWindow},
		ratelimit.BucketExport:     {MaxRequests: cfg.RateLimit.ExportMax, Window: cfg.RateLimit.ExportWindow},
	})

	// Credential vault
	cipher, err := credential.NewCipher(cfg.Vault.MasterSecret)
	if err != nil {
		return nil, fmt.Errorf("init vault cipher: %w", err)
	}
	credCache := credential.NewCache(cfg.Vault.CacheTTL)
	credRepo := credentialrepo.NewPostgresRepository(c.DB.Pool)
	c.Vault = credentialsvc.NewVaultService(credRepo, cipher, credCache)

	// AI router
	c.Router = ai.NewRouter(c.Vault, ai.Defaults{
		OpenAIKey:    cfg.AI.OpenAIKey,
		AnthropicKey: cfg.AI.AnthropicKey,
		GeminiKey:    cfg.AI.GeminiKey,
	}, cfg.AI.CallTimeout)

	// Repositories
	wsRepo := workspacerepo.NewPostgresRepository(c.DB.Pool)
	contentRepo := contentrepo.NewPostgresRepository(c.DB.Pool)
	visualRepo := visualrepo.NewPostgresRepository(c.DB.Pool)
	usageRepo := usagerepo.NewPostgresRepository(c.DB.Pool)
	c.ContentRepo = contentRepo
	c.VisualRepo = visualRepo

	// Services
	c.Workspaces = workspacesvc.NewWorkspaceService(wsRepo)
	c.Usage = usagesvc.NewUsageService(usageRepo)
	c.Exports = exportsvc.NewExportService(contentRepo, visualRepo, c.Redis.Client, c.Storage, cfg.Export.CacheTTL)
	c.Contents = contentsvc.NewContentService(contentRepo, c.Router, c.Usage, c.Exports)
	c.Visuals = visualsvc.NewVisualService(visualRepo, contentRepo, c.Router, c.Usage, c.Queue, c.Exports)

	return c, nil
}

func (c *Container) Close() {
	if c.Queue != nil {
		c.Queue.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
