package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
)

// Record is what a key resolves to. Done=false means the first request is still running.
type Record struct {
	Fingerprint string          `json:"fingerprint"`
	Done        bool            `json:"done"`
	Status      int             `json:"status,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

type Store interface {
	// Reserve claims key. When the key exists the stored record is returned and reserved is false.
	Reserve(ctx context.Context, key, fingerprint string) (existing *Record, reserved bool, err error)
	Complete(ctx context.Context, key string, rec Record) error
	// Release forgets key so the client may retry.
	Release(ctx context.Context, key string) error
}

// --------------------------------------------------
// Redis
// --------------------------------------------------

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(key string) string { return "idem:" + key }

func (s *RedisStore) Reserve(ctx context.Context, key, fingerprint string) (*Record, bool, error) {
	pending, err := json.Marshal(Record{Fingerprint: fingerprint})
	if err != nil {
		return nil, false, err
	}

	ok, err := s.client.SetNX(ctx, redisKey(key), pending, s.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; let the caller retry
		return &Record{Fingerprint: fingerprint}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, err
	}
	return &rec, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, rec Record) error {
	rec.Done = true
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(key), raw, s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKey(key)).Err()
}

// --------------------------------------------------
// In-process
// --------------------------------------------------

// MemoryStore is used when no Redis is configured. go-cache's Add is atomic.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(ttl, 2*ttl)}
}

func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string) (*Record, bool, error) {
	if err := s.cache.Add(key, Record{Fingerprint: fingerprint}, gocache.DefaultExpiration); err == nil {
		return nil, true, nil
	}

	v, found := s.cache.Get(key)
	if !found {
		return &Record{Fingerprint: fingerprint}, false, nil
	}
	rec := v.(Record)
	return &rec, false, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, rec Record) error {
	rec.Done = true
	s.cache.SetDefault(key, rec)
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
