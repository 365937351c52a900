package worker

import (
	"context"
	"time"

	"github.com/jefersonOS/barber-pro/internal/repository"
	"github.com/jefersonOS/barber-pro/pkg/logger"
)

// OutboxCleanupWorker trims processed outbox rows past the retention
// window so the table stays small enough for the locked batch scan.
type OutboxCleanupWorker struct {
	repo          repository.OutboxRepository
	retentionDays int
	interval      time.Duration
	logger        *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retentionDays int, interval time.Duration, l *logger.Logger) *OutboxCleanupWorker {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &OutboxCleanupWorker{
		repo:          repo,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        l,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -w.retentionDays)
			deleted, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
			if err != nil {
				w.logger.Error(err, "outbox cleanup failed")
				continue
			}
			if deleted > 0 {
				w.logger.Info("outbox cleanup", "deleted", deleted)
			}
		}
	}
}
