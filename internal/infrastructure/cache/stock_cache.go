package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appinventory "github.com/stocklane/backend/internal/application/inventory"
	appposting "github.com/stocklane/backend/internal/application/posting"
	"github.com/stocklane/backend/internal/infrastructure/config"
)

// RedisStockCache caches projected stock quantities in Redis. It is a
// derived projection only: a miss or error always sends the reader back to
// the ledger fold, and writers invalidate rather than update.
type RedisStockCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStockCache creates a new Redis-backed stock cache
func NewRedisStockCache(cfg config.RedisConfig) (*RedisStockCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStockCache{
		client:    client,
		keyPrefix: "stock:projection:",
		ttl:       cfg.CacheTTL,
	}, nil
}

// NewRedisStockCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisStockCacheWithClient(client *redis.Client, ttl time.Duration) *RedisStockCache {
	return &RedisStockCache{
		client:    client,
		keyPrefix: "stock:projection:",
		ttl:       ttl,
	}
}

// Get returns the cached projection for (tenant, item), if present
func (c *RedisStockCache) Get(ctx context.Context, tenantID, itemID uuid.UUID) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.key(tenantID, itemID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	qty, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// A corrupt value is treated as a miss and dropped
		_ = c.client.Del(ctx, c.key(tenantID, itemID)).Err()
		return 0, false, nil
	}
	return qty, true, nil
}

// Set stores the projection for (tenant, item) with the configured TTL
func (c *RedisStockCache) Set(ctx context.Context, tenantID, itemID uuid.UUID, quantity int64) error {
	return c.client.Set(ctx, c.key(tenantID, itemID), strconv.FormatInt(quantity, 10), c.ttl).Err()
}

// Invalidate removes the projection for (tenant, item)
func (c *RedisStockCache) Invalidate(ctx context.Context, tenantID, itemID uuid.UUID) error {
	return c.client.Del(ctx, c.key(tenantID, itemID)).Err()
}

// Close closes the underlying Redis client
func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

func (c *RedisStockCache) key(tenantID, itemID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + itemID.String()
}

// Ensure RedisStockCache implements both cache contracts
var _ appinventory.ProjectionCache = (*RedisStockCache)(nil)
var _ appposting.StockCache = (*RedisStockCache)(nil)
