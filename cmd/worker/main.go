package main

import (
	"context"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/config"
	visualjob "contentpilot-backend/internal/domains/visual/job"
	"contentpilot-backend/internal/infrastructure/queue"
	"contentpilot-backend/pkg/container"
	"contentpilot-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.New(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}
	defer c.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues: map[string]int{
			queue.QueueHigh:    6,
			queue.QueueDefault: 3,
			queue.QueueLow:     1,
		},
		Logger: asynqLogger{},
	})

	renderHandler := visualjob.NewRenderSlideHandler(c.VisualRepo, c.Router, c.Storage, c.Usage)
	sweepHandler := visualjob.NewSweepStaleHandler(c.VisualRepo, c.Queue)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeRenderSlide, renderHandler.ProcessTask)
	mux.HandleFunc(queue.TypeSweepStaleVisual, sweepHandler.ProcessTask)

	scheduler := setupScheduler(redisOpt)

	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("worker starting")

	// Run blocks until SIGINT/SIGTERM and drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}

	scheduler.Shutdown()
	log.Info().Msg("worker exited")
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { log.Debug().Msgf("%v", args) }
func (asynqLogger) Info(args ...interface{})  { log.Info().Msgf("%v", args) }
func (asynqLogger) Warn(args ...interface{})  { log.Warn().Msgf("%v", args) }
func (asynqLogger) Error(args ...interface{}) { log.Error().Msgf("%v", args) }
func (asynqLogger) Fatal(args ...interface{}) { log.Fatal().Msgf("%v", args) }
