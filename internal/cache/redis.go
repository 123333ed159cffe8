package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avdeev-m/ticketline/config"
	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	eventsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, eventsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		eventsTTL: eventsTTL,
	}
}

// NewRedisCacheWithClient is used by tests to inject a mock client.
func NewRedisCacheWithClient(client *redis.Client, eventsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, eventsTTL: eventsTTL}
}

func (c *RedisCache) GetEvents(ctx context.Context) ([]domain.Event, error) {
	data, err := c.client.Get(ctx, eventsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *RedisCache) SetEvents(ctx context.Context, events []domain.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventsKey(), payload, c.eventsTTL).Err()
}

// AcquireVerifyLock bounds duplicate in-flight oracle calls for one
// reference. Correctness does not depend on it; the ticket_number
// unique key does the real work.
func (c *RedisCache) AcquireVerifyLock(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, verifyLockKey(reference), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseVerifyLock(ctx context.Context, reference string) error {
	return c.client.Del(ctx, verifyLockKey(reference)).Err()
}

func eventsKey() string {
	return "cache:events"
}

func verifyLockKey(reference string) string {
	return fmt.Sprintf("lock:verify:%s", reference)
}
