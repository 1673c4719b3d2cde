package details

import (
	"github.com/gofiber/fiber/v2"

	authRoute "portalku_backend/internals/features/users/auth/route"
	authService "portalku_backend/internals/features/users/auth/service"
	profileRoute "portalku_backend/internals/features/users/profiles/route"
	profileService "portalku_backend/internals/features/users/profiles/service"
)

// AuthRoutes: /api/auth (publik + sebagian protected via authMw)
func AuthRoutes(api fiber.Router, svc *authService.Service, authMw fiber.Handler) {
	authRoute.AuthRoutes(api, svc, authMw)
}

// UserRoutes: butuh private group (sudah lewat AuthMiddleware)
func UserRoutes(private fiber.Router, resolver *profileService.Resolver) {
	profileRoute.ProfileRoutes(private, resolver)
}
