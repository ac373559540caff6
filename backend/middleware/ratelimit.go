package middleware

import (
	"fmt"
	"log"
	"math"
	"strconv"

	"coursehub/backend/ratelimit"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RateLimit throttles requests per user, or per IP for anonymous callers.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := scope + ":ip:" + c.IP()
		if user, ok := CurrentUser(c); ok {
			key = fmt.Sprintf("%s:user:%d", scope, user.ID)
		}

		d, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			logger.Printf("rate limit %s: %v", key, err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return utils.Error(c, fiber.StatusTooManyRequests, fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, slow down"))
		}
		return c.Next()
	}
}
