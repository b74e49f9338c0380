package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	bookingserrors "tablebook/internal/bookings/errors"
)

const redisLockPrefix = "tablebook:table-lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisTableLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTableLocker(client *redis.Client, ttl time.Duration) TableLocker {
	return &redisTableLocker{client: client, ttl: ttl}
}

func (l *redisTableLocker) Acquire(ctx context.Context, tableID string) (ReleaseFunc, error) {
	key := redisLockPrefix + tableID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire table lock: %w", err)
	}
	if !ok {
		return nil, bookingserrors.ErrLockHeld
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}
