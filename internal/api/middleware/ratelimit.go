package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/shopchat/shopchat-backend/internal/models"
)

// HTTPRateLimit is the coarse edge throttle in front of every route. The
// per-identifier fixed-window limiter inside the chat handler is the real
// budget; this one only sheds abusive floods before they reach it.
func HTTPRateLimit() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if rc, ok := c.Locals(contextKey).(models.RequestContext); ok {
				return rc.Identifier()
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}
