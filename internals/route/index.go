package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/helpers/metrics"
	authMiddleware "portalku_backend/internals/middlewares/auth"
	routeDetails "portalku_backend/internals/route/details"
)

var startTime = time.Now()

func SetupRoutes(app *fiber.App, d *Deps, db Pinger) {
	startTime = time.Now()

	BaseRoutes(app, db)
	app.Get("/metrics", metrics.Handler())

	authMw := authMiddleware.AuthMiddleware(d.Auth)
	api := app.Group("/api")

	// ===================== AUTH (publik) =====================
	// harus terdaftar sebelum private group: middleware group /api berlaku untuk route sesudahnya
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(api, d.Auth, authMw)

	// ===================== PRIVATE =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := api.Group("", authMw)
	routeDetails.UserRoutes(private, d.Profiles)
	routeDetails.AcademicRoutes(private, routeDetails.AcademicServices{
		Modules: d.Modules,
		Work:    d.Work,
		Notes:   d.Notes,
		Videos:  d.Videos,
	})

	log.Println("[INFO] Routes ready")
}
