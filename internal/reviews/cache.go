package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const ratingKeyPrefix = "reviews:rating:"

// RatingCache stores per-product average ratings in Redis. A nil cache or a
// nil client disables caching.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache instantiates the cache helper.
func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	return &RatingCache{client: client, ttl: ttl}
}

type cachedRating struct {
	Average float64   `json:"average"`
	Count   int       `json:"count"`
	At      time.Time `json:"at"`
}

func ratingKey(productID int64) string {
	return ratingKeyPrefix + strconv.FormatInt(productID, 10)
}

func (c *RatingCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached rating and whether it was present.
func (c *RatingCache) Get(ctx context.Context, productID int64) (Rating, bool, error) {
	if !c.enabled() {
		return Rating{}, false, nil
	}
	payload, err := c.client.Get(ctx, ratingKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Rating{}, false, nil
	}
	if err != nil {
		return Rating{}, false, err
	}
	var cached cachedRating
	if err := json.Unmarshal(payload, &cached); err != nil {
		// corrupt entries are treated as a miss
		return Rating{}, false, nil
	}
	return Rating{Average: cached.Average, Count: cached.Count}, true, nil
}

// Set stores rating for the configured ttl.
func (c *RatingCache) Set(ctx context.Context, productID int64, rating Rating) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(cachedRating{Average: rating.Average, Count: rating.Count, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ratingKey(productID), raw, c.ttl).Err()
}

// Invalidate drops the cached rating of productID.
func (c *RatingCache) Invalidate(ctx context.Context, productID int64) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, ratingKey(productID)).Err()
}
