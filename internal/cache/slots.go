package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SlotCache stores computed availability per provider, day and duration.
// Entries are tagged with the day's generation: a writer reads Generation
// before loading the ledger and passes it to Set, so a list computed before
// an InvalidateDay is never served afterwards.
type SlotCache interface {
	Generation(ctx context.Context, providerID uint, date string) (int64, error)
	Get(ctx context.Context, providerID uint, date string, generation int64, durationMinutes int) ([]string, bool, error)
	Set(ctx context.Context, providerID uint, date string, generation int64, durationMinutes int, slots []string) error
	// InvalidateDay bumps the generation and drops every duration cached for the provider on date.
	InvalidateDay(ctx context.Context, providerID uint, date string) error
}

// RedisSlotCache keeps one hash per provider/day, one field per
// generation and duration, next to a counter holding the generation.
// The counter's TTL is refreshed with the hash's, so it never expires first.
type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{client: client, ttl: ttl}
}

func dayKey(providerID uint, date string) string {
	return fmt.Sprintf("slots:%d:%s", providerID, date)
}

func generationKey(providerID uint, date string) string {
	return fmt.Sprintf("slots:%d:%s:gen", providerID, date)
}

func field(generation int64, durationMinutes int) string {
	return fmt.Sprintf("%d:%d", generation, durationMinutes)
}

func (c *RedisSlotCache) Generation(ctx context.Context, providerID uint, date string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(providerID, date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisSlotCache) Get(ctx context.Context, providerID uint, date string, generation int64, durationMinutes int) ([]string, bool, error) {
	raw, err := c.client.HGet(ctx, dayKey(providerID, date), field(generation, durationMinutes)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, err
	}
	return slots, true, nil
}

func (c *RedisSlotCache) Set(ctx context.Context, providerID uint, date string, generation int64, durationMinutes int, slots []string) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}

	key := dayKey(providerID, date)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field(generation, durationMinutes), raw)
	pipe.Expire(ctx, key, c.ttl)
	pipe.Expire(ctx, generationKey(providerID, date), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisSlotCache) InvalidateDay(ctx context.Context, providerID uint, date string) error {
	genKey := generationKey(providerID, date)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, c.ttl)
	pipe.Del(ctx, dayKey(providerID, date))
	_, err := pipe.Exec(ctx)
	return err
}

// Noop never caches.
type Noop struct{}

func (Noop) Generation(context.Context, uint, string) (int64, error) { return 0, nil }
func (Noop) Get(context.Context, uint, string, int64, int) ([]string, bool, error) {
	return nil, false, nil
}
func (Noop) Set(context.Context, uint, string, int64, int, []string) error { return nil }
func (Noop) InvalidateDay(context.Context, uint, string) error             { return nil }

var (
	_ SlotCache = (*RedisSlotCache)(nil)
	_ SlotCache = Noop{}
)
