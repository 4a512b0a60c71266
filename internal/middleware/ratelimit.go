package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitPrefix = "registry:rl:"

// RateLimit caps requests per client IP to perMin within a one minute window.
// With a Redis client the window is shared across instances; without one, or
// when Redis fails, a per-process token bucket applies.
func RateLimit(name string, cache *redis.Client, perMin int, logger *slog.Logger) fiber.Handler {
	if perMin <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	local := newLocalLimiter(perMin)

	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if cache != nil {
			allowed, err := allowRedis(c.UserContext(), cache, rateLimitPrefix+name+":"+ip, perMin)
			if err == nil {
				if !allowed {
					return tooMany(c)
				}
				return c.Next()
			}
			logger.Warn("rate limit store failed, using local limiter", slog.String("limiter", name), slog.Any("error", err))
		}
		if !local.allow(ip) {
			return tooMany(c)
		}
		return c.Next()
	}
}

func tooMany(c *fiber.Ctx) error {
	c.Set(fiber.HeaderRetryAfter, "60")
	return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
}

func allowRedis(ctx context.Context, cache *redis.Client, key string, perMin int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	cnt, err := cache.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	if cnt == 1 {
		if err := cache.Expire(ctx, key, time.Minute).Err(); err != nil {
			return false, fmt.Errorf("rate limit window: %w", err)
		}
	}
	return cnt <= int64(perMin), nil
}

type localLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newLocalLimiter(perMin int) *localLimiter {
	return &localLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMin)),
		burst:    perMin,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
