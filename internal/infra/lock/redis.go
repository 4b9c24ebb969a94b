package lock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix     = "barber-lock"
	DefaultTTL           = 10 * time.Second
	DefaultRetryInterval = 25 * time.Millisecond

	releaseTimeout = 2 * time.Second
)

// Удаляем ключ, только если он всё ещё принадлежит нам
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker блокировка мастеров, общая для нескольких экземпляров сервиса
// Ключ ставится через SET NX PX с уникальным токеном; TTL страхует от падения держателя.
type RedisLocker struct {
	rdb           *redis.Client
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	logger        Logger
}

// NewRedisLocker создает блокировку поверх Redis
func NewRedisLocker(rdb *redis.Client, prefix string, ttl, retryInterval time.Duration, logger Logger) *RedisLocker {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	return &RedisLocker{
		rdb:           rdb,
		prefix:        prefix,
		ttl:           ttl,
		retryInterval: retryInterval,
		logger:        logger,
	}
}

// Acquire захватывает блокировку мастера barberID, повторяя попытки до истечения ctx
func (l *RedisLocker) Acquire(ctx context.Context, barberID int64) (func(), error) {
	key := l.key(barberID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: barber=%d: %v", ErrLockTimeout, barberID, ctx.Err())
			}
			return nil, fmt.Errorf("%w: Acquire - barber=%d: %v", ErrLockBackend, barberID, err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: barber=%d: %v", ErrLockTimeout, barberID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(key, token string) func() {
	return func() {
		// Контекст запроса может быть уже отменён, освобождаем независимо от него
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) && l.logger != nil {
			l.logger.Warn("RedisLocker: failed to release %s: %v", key, err)
		}
	}
}

func (l *RedisLocker) key(barberID int64) string {
	return l.prefix + ":" + strconv.FormatInt(barberID, 10)
}
