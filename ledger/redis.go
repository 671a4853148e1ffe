package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "banned_token"

// RedisLedger stores one key per revoked token with a native TTL.
type RedisLedger struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisLedger(redisClient redis.UniversalClient, prefix string) *RedisLedger {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisLedger{redis: redisClient, prefix: prefix}
}

func (l *RedisLedger) key(token string) string {
	return l.prefix + ":" + digest(token)
}

func (l *RedisLedger) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.redis.Set(ctx, l.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

func (l *RedisLedger) Contains(ctx context.Context, token string) (bool, error) {
	n, err := l.redis.Exists(ctx, l.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return n > 0, nil
}
