package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLocked means another save for the same key is still in flight.
var ErrLocked = errors.New("save already in progress")

// SaveGuard serialises saves per editing session across instances.
type SaveGuard struct {
	locker *redislock.Client
	ttl    time.Duration
}

func NewSaveGuard(client *redis.Client, ttl time.Duration) *SaveGuard {
	return &SaveGuard{locker: redislock.New(client), ttl: ttl}
}

// Acquire takes the lock for key without waiting. The returned func releases
// it and is safe to call once the lock has already expired.
func (g *SaveGuard) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := g.locker.Obtain(ctx, "lock:"+key, g.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, err
	}

	return func() {
		// detached so a cancelled request still frees the lock
		_ = lock.Release(context.Background())
	}, nil
}
