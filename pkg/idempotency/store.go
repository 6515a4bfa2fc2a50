// Package idempotency makes state-changing HTTP requests safe to retry: a
// request carrying an Idempotency-Key is executed once and its response is
// replayed for every repeat.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type Store interface {
	// Reserve claims key. It returns false when the key is already held
	// by a running or completed request.
	Reserve(ctx context.Context, key string) (bool, error)
	// Lookup returns the stored response, or nil while the first request
	// is still running.
	Lookup(ctx context.Context, key string) (*Response, error)
	Complete(ctx context.Context, key string, resp Response) error
	Release(ctx context.Context, key string) error
}

const inProgress = "PROCESSING"

type RedisStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
	ttl     time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, lockTTL: 30 * time.Second, ttl: ttl}
}

func (s *RedisStore) key(k string) string {
	return fmt.Sprintf("idem:%s", k)
}

func (s *RedisStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, s.key(key), inProgress, s.lockTTL).Result()
}

func (s *RedisStore) Lookup(ctx context.Context, key string) (*Response, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) || val == inProgress {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, resp Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(key), b, s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}
