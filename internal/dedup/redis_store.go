package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "tcxc:sent"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps one key per sent notification. Keys never expire.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

func NewRedisStore(client *goredis.Client, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Seen(ctx context.Context, key domain.NotificationKey) (bool, error) {
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Record(ctx context.Context, key domain.NotificationKey) error {
	if _, err := s.Claim(ctx, key); err != nil {
		return err
	}
	return nil
}

// Claim atomically records key and reports whether this caller was first.
func (s *RedisStore) Claim(ctx context.Context, key domain.NotificationKey) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.redisKey(key), 1, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record dedup key: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) redisKey(key domain.NotificationKey) string {
	return s.prefix + ":" + key.String()
}
