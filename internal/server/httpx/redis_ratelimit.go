package httpx

import (
	"context"
	"time"

	"github.com/dmitrijs2005/emphub/internal/logging"
	redis "github.com/redis/go-redis/v9"
)

// redisCounter is the part of the Redis client the limiter uses.
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

type redisRateLimiter struct {
	client  redisCounter
	closer  func() error
	logger  logging.Logger
	prefix  string
	timeout time.Duration
}

// NewRedisRateLimiter shares counters between replicas through Redis. Redis
// errors fail open: the request is allowed and the error is logged.
func NewRedisRateLimiter(ctx context.Context, addr, password string, db int, logger logging.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return newRedisRateLimiter(client, client.Close, logger), nil
}

func newRedisRateLimiter(client redisCounter, closer func() error, logger logging.Logger) *redisRateLimiter {
	return &redisRateLimiter{
		client:  client,
		closer:  closer,
		logger:  logger,
		prefix:  "emphub:ratelimit:",
		timeout: 250 * time.Millisecond,
	}
}

func (rl *redisRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logRedisError(ctx, "incr", err)
		return rateDecision{allowed: true}
	}
	// NX keeps an existing TTL; a key left without one gets it on the next
	// request. Requires Redis 7.
	if err := rl.client.ExpireNX(ctx, redisKey, window).Err(); err != nil {
		rl.logRedisError(ctx, "expire", err)
	}
	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return rateDecision{
		allowed:   int(counter) <= limit,
		count:     int(counter),
		windowEnd: time.Now().Add(ttl),
	}
}

func (rl *redisRateLimiter) Close() {
	if rl.closer != nil {
		_ = rl.closer()
	}
}

func (rl *redisRateLimiter) logRedisError(ctx context.Context, op string, err error) {
	if rl.logger == nil {
		return
	}
	rl.logger.Error(ctx, "redis rate limiter error", "op", op, "error", err)
}
