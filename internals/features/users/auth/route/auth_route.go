package route

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/users/auth/controller"
	"portalku_backend/internals/features/users/auth/service"
	rateLimiter "portalku_backend/internals/middlewares"
)

// AuthRoutes: base /api/auth. authMw melindungi endpoint yang butuh token.
func AuthRoutes(r fiber.Router, svc *service.Service, authMw fiber.Handler) {
	ctrl := controller.NewAuthController(svc)

	baseAuth := r.Group("/auth")

	// 🔓 Public
	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), ctrl.Register)
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	baseAuth.Post("/login-google", rateLimiter.LoginRateLimiter(), ctrl.LoginGoogle)

	// 🔐 Protected
	baseAuth.Post("/logout", authMw, ctrl.Logout)
	baseAuth.Get("/me", authMw, ctrl.Me)
	baseAuth.Get("/session/events", authMw, ctrl.SessionEvents)
}
