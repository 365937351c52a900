package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/jefersonOS/barber-pro/internal/config"
	"github.com/jefersonOS/barber-pro/internal/repository/postgres"
	lifecycleService "github.com/jefersonOS/barber-pro/internal/service/lifecycle"
	"github.com/jefersonOS/barber-pro/pkg/logger"
	"github.com/jefersonOS/barber-pro/pkg/messaging/redis"
	"github.com/jefersonOS/barber-pro/pkg/metrics"
	"github.com/jefersonOS/barber-pro/pkg/worker"
)

// The worker owns the background half of the booking pipeline: the
// hold-expiry sweep, outbox delivery to the redis event bus, and
// retention cleanup of delivered events.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &l.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	m := metrics.NewMetrics("barberpro", "worker")
	lifecycle := lifecycleService.NewService(appointmentRepo, outboxRepo, l, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	if _, err := c.AddFunc("@every 1m", func() {
		count, err := lifecycle.ExpireStaleHolds(ctx)
		if err != nil {
			l.Error(err, "hold expiry sweep failed")
			return
		}
		if count > 0 {
			l.Info("expired stale holds", "count", count)
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule expiry sweep")
	}
	c.Start()

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, l, m)
	go processor.Start(ctx)

	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.RetentionDays, time.Hour, l)
	go cleanup.Start(ctx)

	l.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down worker")
	cancel()
	cronCtx := c.Stop()
	<-cronCtx.Done()
}
