package middlewares

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"

	"portalku_backend/internals/helpers/metrics"
	"portalku_backend/internals/middlewares/logger"
)

// RequestContext memberi X-Request-ID dan batas waktu pada user context.
// Request SSE tidak diberi timeout.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)

		if timeout > 0 && c.Get(fiber.HeaderAccept) != "text/event-stream" {
			ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
			defer cancel()
			c.SetUserContext(ctx)
		}
		return c.Next()
	}
}

// SetupMiddlewares memasang middleware global dengan urutan tetap:
// recover paling luar, lalu request id, log, metrics, cors dan limiter.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(15 * time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(metrics.Middleware())
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
