package redis

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

const predictionKeyPrefix = "sentiment:predict:"

// PredictionCache stores analyzer results keyed by model id and the md5 of
// the input text
type PredictionCache struct {
	client  *redis.Client
	ttl     time.Duration
	modelID string
}

// NewPredictionCache creates a cache over an existing Redis client
func NewPredictionCache(client *redis.Client, ttl time.Duration, modelID string) *PredictionCache {
	return &PredictionCache{client: client, ttl: ttl, modelID: modelID}
}

// Key returns the cache key for text
func (c *PredictionCache) Key(text string) string {
	sum := md5.Sum([]byte(text))
	return predictionKeyPrefix + c.modelID + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached prediction. ok is false on a miss.
func (c *PredictionCache) Get(ctx context.Context, text string) (models.Prediction, bool, error) {
	var p models.Prediction

	raw, err := c.client.Get(ctx, c.Key(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return p, false, nil
	}
	if err != nil {
		return p, false, fmt.Errorf("failed to read prediction cache: %w", err)
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return p, false, fmt.Errorf("failed to decode cached prediction: %w", err)
	}
	return p, true, nil
}

// Set stores a prediction for text
func (c *PredictionCache) Set(ctx context.Context, text string, p models.Prediction) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode prediction: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(text), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write prediction cache: %w", err)
	}
	return nil
}
