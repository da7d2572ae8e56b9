package security

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client

	// MaxPerMinute bounds mint requests per client per minute.
	MaxPerMinute int64
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		redis:        redisClient,
		MaxPerMinute: 30,
	}
}

// MintRateLimit throttles mint requests per client IP using a one-minute
// Redis counter window. When Redis is unreachable the request passes; the
// limiter must not take minting down with it.
func (r *RateLimiter) MintRateLimit(e *core.RequestEvent) error {
	ctx := e.Request.Context()
	key := fmt.Sprintf("ratelimit:mint:%s", e.RealIP())

	count, err := r.redis.Incr(ctx, key).Result()
	if err == nil {
		if count == 1 {
			r.redis.Expire(ctx, key, time.Minute)
		}
		if count > r.MaxPerMinute {
			return apis.NewTooManyRequestsError("Rate limit exceeded. Please try again later.", nil)
		}
	}

	return e.Next()
}
