// Package idempotency хранит отметки об уже обработанных webhook-событиях.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"contentgen_backend/internal/logger"

	"github.com/go-redis/redis/v8"
)

// Store помечает событие как взятое в обработку.
// Claim возвращает false, если событие уже было обработано.
type Store interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
	Close() error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore подключается по redis:// URL и проверяет соединение
func NewRedisStore(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStoreWithClient(client, prefix, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(eventID string) string {
	return s.prefix + ":webhook:" + eventID
}

func (s *RedisStore) Claim(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return true, nil
	}
	ok, err := s.client.SetNX(ctx, s.key(eventID), time.Now().Unix(), s.ttl).Result()
	if err != nil {
		// Redis недоступен: обрабатываем событие, повтор безопасен за счет версий
		logger.CtxWarn(ctx, "Idempotency store unavailable, processing event anyway",
			"event_id", eventID, "error", err)
		return true, err
	}
	return ok, nil
}

// Release снимает отметку, чтобы Stripe мог повторить доставку после ошибки
func (s *RedisStore) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(eventID)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NoopStore используется без Redis: каждое событие обрабатывается
type NoopStore struct{}

func (NoopStore) Claim(context.Context, string) (bool, error) { return true, nil }
func (NoopStore) Release(context.Context, string) error       { return nil }
func (NoopStore) Close() error                                { return nil }
