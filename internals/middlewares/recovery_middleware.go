package middlewares

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"portalku_backend/internals/helpers/reporting"
)

// RecoveryMiddleware menangkap panic, mencatat stack trace dan melapor ke Rollbar.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Printf("[PANIC] %s %s: %v", c.Method(), c.OriginalURL(), e)
			reporting.Critical(e, map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"reqid":  fmt.Sprint(c.Locals("reqid")),
			})
		},
	})
}
