package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/agenthands/flowalign/internal/logger"
)

const (
	redisKeyPrefix     = "flowalign:lock:"
	redisRetryInterval = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the lease only while the key still holds our token.
var refreshScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a lease lock shared by every process pointed at the same server.
// The lease expires after ttl so a crashed holder cannot block forever; a live
// holder refreshes it every ttl/3 until release.
type Redis struct {
	rdb  goredis.UniversalClient
	ttl  time.Duration
	wait time.Duration
	log  *logger.Logger
}

func NewRedis(rdb goredis.UniversalClient, ttl, wait time.Duration, log *logger.Logger) *Redis {
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{rdb: rdb, ttl: ttl, wait: wait, log: log.With("component", "RedisLock")}
}

// DialRedis connects to addr and pings it.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	if r.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}

	redisKey := redisKeyPrefix + key
	token := uuid.NewString()
	ticker := time.NewTicker(redisRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.rdb.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			stop := make(chan struct{})
			if r.ttl > 0 {
				go r.keepAlive(redisKey, token, stop)
			}
			return r.releaser(redisKey, token, stop), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func refreshInterval(ttl time.Duration) time.Duration {
	if d := ttl / 3; d > 10*time.Millisecond {
		return d
	}
	return 10 * time.Millisecond
}

func (r *Redis) keepAlive(redisKey, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(refreshInterval(r.ttl))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		n, err := refreshScript.Run(ctx, r.rdb, []string{redisKey}, token, r.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			r.log.Warn("failed to refresh lock lease", "key", redisKey, "error", err)
			continue
		}
		if n == 0 {
			r.log.Warn("lock lease lost", "key", redisKey)
			return
		}
	}
}

func (r *Redis) releaser(redisKey, token string, stop chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, r.rdb, []string{redisKey}, token).Err(); err != nil {
				r.log.Warn("failed to release lock", "key", redisKey, "error", err)
			}
		})
	}
}
