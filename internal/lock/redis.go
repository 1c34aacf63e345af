package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// RedisClient is the subset of the go-redis client the lease uses.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Redis is a Locker backed by a Redis lease with a time to live. A holder
// that crashes releases the lock when the lease expires.
type Redis struct {
	client   RedisClient
	key      string
	ttl      time.Duration
	newToken func() string
}

// NewRedis returns a lease on key that expires after ttl.
func NewRedis(client RedisClient, key string, ttl time.Duration) *Redis {
	return &Redis{client: client, key: key, ttl: ttl, newToken: uuid.NewString}
}

// TryLock sets the lease key if it is absent or returns ErrHeld.
func (r *Redis) TryLock(ctx context.Context) (UnlockFunc, error) {
	token := r.newToken()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lease %s: %w", r.key, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return func(ctx context.Context) error {
		n, err := r.client.Eval(ctx, releaseScript, []string{r.key}, token).Int64()
		if err != nil {
			return fmt.Errorf("releasing lease %s: %w", r.key, err)
		}
		if n == 0 {
			return ErrLost
		}
		return nil
	}, nil
}
