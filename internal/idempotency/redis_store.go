package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Store remembers keys for a limited time.
type Store interface {
	// Claim records key and reports whether it was absent before.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// SetNXer is the subset of the Redis client used by RedisStore.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

type RedisStore struct {
	client SetNXer
	log    *slog.Logger
}

func NewRedisStore(client SetNXer, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	claimed, err := s.client.SetNX(ctx, recordKey(key), time.Now().Unix(), ttl)
	if err != nil {
		s.log.Error("failed to claim idempotency key", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return claimed, nil
}

func recordKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
