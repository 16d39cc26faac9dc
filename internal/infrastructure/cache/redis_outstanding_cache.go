package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appbilling "github.com/farmbook/backend/internal/application/billing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const outstandingKeyPrefix = "farmbook:outstanding:"

// RedisOutstandingCache implements OutstandingCache using Redis. Suitable for
// distributed deployments where multiple instances serve the same account.
type RedisOutstandingCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisOutstandingCache creates a Redis-backed outstanding summary cache
func NewRedisOutstandingCache(addr, password string, db int, ttl time.Duration) (*RedisOutstandingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisOutstandingCacheWithClient(client, ttl), nil
}

// NewRedisOutstandingCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisOutstandingCacheWithClient(client *redis.Client, ttl time.Duration) *RedisOutstandingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisOutstandingCache{
		client:    client,
		keyPrefix: outstandingKeyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisOutstandingCache) key(accountID uuid.UUID, customerName string) string {
	return c.keyPrefix + accountID.String() + ":" + customerName
}

// Get returns the cached summary, or nil on a miss
func (c *RedisOutstandingCache) Get(ctx context.Context, accountID uuid.UUID, customerName string) (*appbilling.OutstandingSummary, error) {
	data, err := c.client.Get(ctx, c.key(accountID, customerName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read outstanding cache: %w", err)
	}

	var summary appbilling.OutstandingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// Drop the corrupt entry and treat it as a miss
		_ = c.client.Del(ctx, c.key(accountID, customerName)).Err()
		return nil, nil
	}
	return &summary, nil
}

// Set stores the summary for the customer with the configured TTL
func (c *RedisOutstandingCache) Set(ctx context.Context, accountID uuid.UUID, customerName string, summary *appbilling.OutstandingSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal outstanding summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(accountID, customerName), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write outstanding cache: %w", err)
	}
	return nil
}

// Invalidate drops the customer's entry
func (c *RedisOutstandingCache) Invalidate(ctx context.Context, accountID uuid.UUID, customerName string) error {
	if err := c.client.Del(ctx, c.key(accountID, customerName)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate outstanding cache: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisOutstandingCache) Close() error {
	return c.client.Close()
}

// Ensure RedisOutstandingCache implements OutstandingCache
var _ appbilling.OutstandingCache = (*RedisOutstandingCache)(nil)
