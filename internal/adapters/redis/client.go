package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/adapters/config"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
)

// Client wraps RedLock manager for the ingestion lock + standard Redis for caching
type Client struct {
	lockManager *redlock.RedLock
	cache       *redis.Client
	redisAddrs  []string
}

// New creates new Redis client with RedLock support + caching
func New(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	return connect(ctx, cfg.Addr(), cfg.Password, cfg.DB)
}

func connect(ctx context.Context, addr, password string, db int) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// single instance; pass more addresses for a real quorum
	redisAddrs := []string{"tcp://" + addr}

	lockManager, err := redlock.NewRedLock(ctx, redisAddrs)
	if err != nil {
		return nil, fmt.Errorf("failed to create redlock manager: %w", err)
	}

	cacheClient := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := cacheClient.Ping(ctx).Err(); err != nil {
		_ = cacheClient.Close()
		return nil, fmt.Errorf("failed to connect to redis cache: %w", err)
	}

	logger.Info("redis client initialized",
		zap.String("address", addr),
		zap.Int("db", db),
	)

	return &Client{
		lockManager: lockManager,
		redisAddrs:  redisAddrs,
		cache:       cacheClient,
	}, nil
}

// IngestionLock returns the lock that serializes ingestion runs across replicas
func (c *Client) IngestionLock(ttl time.Duration) *DistributedLock {
	return NewDistributedLock(c.lockManager, IngestionLockName, ttl)
}

// PredictionCache returns the cache for results of the model identified by modelID
func (c *Client) PredictionCache(ttl time.Duration, modelID string) *PredictionCache {
	return NewPredictionCache(c.cache, ttl, modelID)
}

// Close closes redis connections
func (c *Client) Close() error {
	if c.cache != nil {
		logger.Info("closing redis cache client")
		if err := c.cache.Close(); err != nil {
			return fmt.Errorf("failed to close redis cache: %w", err)
		}
	}
	return nil
}

// Health checks redis health
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.cache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
