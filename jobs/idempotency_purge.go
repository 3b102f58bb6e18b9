package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/techshop/storefront/internal/jobs"
)

// KeyPurger deletes idempotency keys older than a retention window.
type KeyPurger interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyPurgeJob handles TaskIdempotencyPurge tasks.
type IdempotencyPurgeJob struct {
	Purger  KeyPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIdempotencyPurgeJob wires dependencies for the purge handler.
func NewIdempotencyPurgeJob(purger KeyPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdempotencyPurgeJob{Purger: purger, Logger: logger, Metrics: metrics}
}

// Handle processes a purge task.
func (j *IdempotencyPurgeJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Purger == nil {
		return errors.New("idempotency purge: handler not configured")
	}
	var payload IdempotencyPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.RetentionSeconds <= 0 {
		return fmt.Errorf("idempotency purge: bad payload: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskIdempotencyPurge)
	defer func() {
		err = tracker.End(err)
	}()

	retention := time.Duration(payload.RetentionSeconds) * time.Second
	removed, err := j.Purger.Cleanup(ctx, retention)
	if err != nil {
		j.Logger.Error("purge idempotency keys", slog.Any("error", err))
		return err
	}
	j.Logger.Info("idempotency keys purged", slog.Int64("removed", removed), slog.Duration("retention", retention))
	return nil
}

// TaskHandler registers the job on a worker.
func (j *IdempotencyPurgeJob) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskIdempotencyPurge, Handler: j.Handle}
}
