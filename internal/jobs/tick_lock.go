package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tickLockKey = "scheduler:tick:lock"

var errLeaseLost = errors.New("tick lock no longer held")

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var extendScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// TickLock lets only one replica run a given tick.
type TickLock interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

type redisTickLock struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisTickLock returns a lease that is renewed every ttl/3 while the
// holder runs, so a slow tick keeps it.
func NewRedisTickLock(rdb redis.UniversalClient, ttl time.Duration) TickLock {
	return &redisTickLock{rdb: rdb, ttl: ttl}
}

func (l *redisTickLock) Acquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, tickLockKey, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	stop := func() {}
	if l.ttl > 0 {
		stop = keepAlive(l.ttl/3, func(ctx context.Context) error {
			n, err := extendScript.Run(ctx, l.rdb, []string{tickLockKey}, token, l.ttl.Milliseconds()).Int()
			if err != nil {
				return err
			}
			if n == 0 {
				return errLeaseLost
			}
			return nil
		})
	}

	release := func() {
		stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{tickLockKey}, token).Err()
	}
	return release, true, nil
}

// keepAlive calls extend every interval until stop is called. stop waits for
// an in-flight extend and is safe to call more than once.
func keepAlive(every time.Duration, extend func(ctx context.Context) error) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := extend(ctx); err != nil && ctx.Err() == nil {
					slog.Warn("extending tick lock", "err", err)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
