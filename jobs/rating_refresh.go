package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/techshop/storefront/internal/jobs"
	"github.com/techshop/storefront/internal/reviews"
)

// RatingRefresher recomputes and caches a product rating.
type RatingRefresher interface {
	RefreshRating(ctx context.Context, productID int64) (reviews.Rating, error)
}

// RatingRefreshJob handles TaskRatingRefresh tasks.
type RatingRefreshJob struct {
	Refresher RatingRefresher
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewRatingRefreshJob wires dependencies for the refresh handler.
func NewRatingRefreshJob(refresher RatingRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *RatingRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingRefreshJob{Refresher: refresher, Logger: logger, Metrics: metrics}
}

// Handle processes a rating refresh task.
func (j *RatingRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Refresher == nil {
		return errors.New("rating refresh: handler not configured")
	}
	var payload RatingRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.ProductID <= 0 {
		j.Logger.Warn("drop rating refresh task", slog.String("payload", string(t.Payload())))
		return fmt.Errorf("rating refresh: bad payload: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskRatingRefresh)
	defer func() {
		err = tracker.End(err)
	}()

	rating, err := j.Refresher.RefreshRating(ctx, payload.ProductID)
	if err != nil {
		j.Logger.Error("refresh rating", slog.Int64("product_id", payload.ProductID), slog.Any("error", err))
		return err
	}
	j.Logger.Info("rating refreshed",
		slog.Int64("product_id", payload.ProductID),
		slog.Float64("average", rating.Average),
		slog.Int("count", rating.Count))
	return nil
}

// TaskHandler registers the job on a worker.
func (j *RatingRefreshJob) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskRatingRefresh, Handler: j.Handle}
}
