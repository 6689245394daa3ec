package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker hands out a cluster-wide run lock per job name. ok is false when
// another instance holds it.
type Locker interface {
	Acquire(ctx context.Context, name string) (release func(), ok bool, err error)
}

// releaseLock deletes the key only if it still holds our token, so a run
// that outlived its TTL never frees a lock someone else took since.
var releaseLock = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX lock with a TTL.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLocker{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (l *RedisLocker) key(name string) string { return l.prefix + ":" + name }

func (l *RedisLocker) Acquire(ctx context.Context, name string) (func(), bool, error) {
	key, token := l.key(name), uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseLock.Run(ctx, l.rdb, []string{key}, token).Err()
	}
	return release, true, nil
}

// localLocker is used without Redis; cron's SkipIfStillRunning already
// keeps a job single-flight inside one process.
type localLocker struct{}

func (localLocker) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, true, nil
}
