package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	lockTTL       = 10 * time.Second
	lockRetryStep = 50 * time.Millisecond
)

// releaseScript deletes the key only when it still holds our token, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes bookings per staff member across API instances
// using SET NX with a token value and a TTL backstop.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func lockKey(staffID uint) string {
	return fmt.Sprintf("booking:lock:staff:%d", staffID)
}

func (l *RedisLocker) Acquire(
	ctx context.Context,
	staffID uint,
	wait time.Duration,
) (Releaser, error) {

	key := lockKey(staffID)
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				if _, err := releaseScript.Run(
					context.Background(), l.client, []string{key}, token,
				).Result(); err != nil {
					log.Warn().Err(err).Uint("staff_id", staffID).
						Msg("failed to release booking lock, ttl will expire it")
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, errLockTimeout()
		}

		select {
		case <-time.After(lockRetryStep):
		case <-ctx.Done():
			return nil, errLockTimeout()
		}
	}
}
