package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/configs"
)

// Pinger dipenuhi oleh *sql.DB.
type Pinger interface {
	Ping() error
}

func BaseRoutes(app *fiber.App, db Pinger) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(configs.String("APP_NAME") + " backend is running 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if db == nil || db.Ping() != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().UTC().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    configs.GetEnv("APP_ENV", configs.GetEnv("RAILWAY_ENVIRONMENT")),
		})
	})
}
