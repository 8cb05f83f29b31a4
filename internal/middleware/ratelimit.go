// Package middleware provides authentication, logging, and rate limiting middleware.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the limiter's Redis
// backend cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through. The default for most routes.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503. For abuse-sensitive routes.
	FailClosed
)

var errNoLimiterStore = errors.New("rate limiter has no redis client")

// rateLimitingEnabled gates the limiter on APP_ENV: local and test runs are
// never throttled.
func rateLimitingEnabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return false
	}
	return true
}

// CheckRateLimit applies a fixed-window counter to one caller of one
// resource. It reports whether the request is allowed; the error is non-nil
// only when the store could not be consulted.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if !rateLimitingEnabled() {
		return true, nil
	}
	if rdb == nil {
		return false, errNoLimiterStore
	}

	key := "rl:" + resource + ":" + id
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	// First hit in a window starts its expiry clock.
	if count == 1 {
		rdb.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// RateLimit enforces `limit` requests per `window`, keyed by the
// authenticated user when present and by remote IP otherwise. The optional
// name labels the window; unnamed routes share a window per path. Fails open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(context.Background(), rdb, resource, id, limit, window)
		switch {
		case err != nil && policy == FailClosed:
			Logger.Warn("rate limit store unavailable, failing closed",
				slog.String("path", c.Path()),
				slog.String("resource", resource),
				slog.String("error", err.Error()))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "rate limit unavailable",
			})
		case err != nil:
			return c.Next()
		case !allowed:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
