package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRatingRefresh recomputes the cached average rating of a product.
	TaskRatingRefresh = "reviews:rating_refresh"
	// TaskIdempotencyPurge removes expired idempotency keys.
	TaskIdempotencyPurge = "maintenance:idempotency_purge"
)

// RatingRefreshPayload identifies the product whose rating is recomputed.
type RatingRefreshPayload struct {
	ProductID int64 `json:"product_id"`
}

// NewRatingRefreshTask constructs an Asynq task.
func NewRatingRefreshTask(productID int64) (*asynq.Task, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("jobs: invalid product id %d", productID)
	}
	data, err := json.Marshal(RatingRefreshPayload{ProductID: productID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRatingRefresh, data), nil
}

// IdempotencyPurgePayload sets how long processed keys are retained.
type IdempotencyPurgePayload struct {
	RetentionSeconds int64 `json:"retention_seconds"`
}

// NewIdempotencyPurgeTask constructs an Asynq task.
func NewIdempotencyPurgeTask(retention time.Duration) (*asynq.Task, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("jobs: invalid retention %s", retention)
	}
	data, err := json.Marshal(IdempotencyPurgePayload{RetentionSeconds: int64(retention / time.Second)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyPurge, data), nil
}
