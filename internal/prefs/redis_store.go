// Package prefs keeps per-owner preferences in Redis.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soaringjerry/PainMap/internal/services"
)

const keyPrefix = "painmap:prefs:"

type Options struct {
	Addr     string
	Password string
	DB       int
	// TTL refreshes on every write; zero keeps preferences forever.
	TTL time.Duration
}

// RedisStore stores one hash per owner.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Open connects and pings so a bad address fails at startup.
func Open(ctx context.Context, opts Options) (*RedisStore, error) {
	client := NewRedisClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewRedisStore(client, opts.TTL), nil
}

func ownerKey(owner string) string { return keyPrefix + owner }

func (s *RedisStore) GetPreference(ctx context.Context, owner, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, ownerKey(owner), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) SetPreference(ctx context.Context, owner, key, value string) error {
	k := ownerKey(owner)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.client.Close() }

var _ services.PreferenceStore = (*RedisStore)(nil)
