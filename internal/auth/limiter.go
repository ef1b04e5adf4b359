package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginKeyPrefix = "login:fail:"

// failScript increments the counter and sets the expiry in one step, so a
// counter never exists without a TTL.
var failScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// AttemptLimiter counts failed logins per key in Redis and refuses further
// attempts once max failures happened inside the window.
// A nil *AttemptLimiter allows everything.
type AttemptLimiter struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
}

// NewAttemptLimiter returns a limiter allowing max failures per window.
func NewAttemptLimiter(rdb redis.Cmdable, max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{rdb: rdb, max: max, window: window}
}

// Allowed reports whether another attempt for key may proceed. When it may
// not, the remaining lockout is returned.
func (l *AttemptLimiter) Allowed(ctx context.Context, key string) (bool, time.Duration, error) {
	if l == nil {
		return true, 0, nil
	}
	k := loginKeyPrefix + normalizeKey(key)
	n, err := l.rdb.Get(ctx, k).Int()
	if err == redis.Nil {
		return true, 0, nil
	}
	if err != nil {
		return true, 0, fmt.Errorf("limiter get: %w", err)
	}
	if n < l.max {
		return true, 0, nil
	}
	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return true, 0, fmt.Errorf("limiter ttl: %w", err)
	}
	switch {
	case ttl == -2:
		// Expired between GET and TTL.
		return true, 0, nil
	case ttl < 0:
		// A counter without expiry would never unlock. Start the window now.
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return true, 0, fmt.Errorf("limiter expire: %w", err)
		}
		ttl = l.window
	}
	return false, ttl, nil
}

// Fail records a failed attempt. The window starts at the first failure.
func (l *AttemptLimiter) Fail(ctx context.Context, key string) error {
	if l == nil {
		return nil
	}
	k := loginKeyPrefix + normalizeKey(key)
	if err := failScript.Run(ctx, l.rdb, []string{k}, l.window.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("limiter fail: %w", err)
	}
	return nil
}

// Reset clears the failure counter for key.
func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	if l == nil {
		return nil
	}
	return l.rdb.Del(ctx, loginKeyPrefix+normalizeKey(key)).Err()
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
