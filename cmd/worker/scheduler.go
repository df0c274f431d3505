package main

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/infrastructure/queue"
)

// setupScheduler registers the periodic jobs and starts the scheduler in
// the background. Currently one job: the stale-generating visual sweep.
func setupScheduler(redisOpt asynq.RedisClientOpt) *asynq.Scheduler {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: asynqLogger{},
	})

	_, err := scheduler.Register(
		"@every 5m",
		asynq.NewTask(queue.TypeSweepStaleVisual, nil),
		asynq.Queue(queue.QueueLow),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register stale visual sweep")
	}

	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	return scheduler
}
