package route

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/users/profiles/controller"
	"portalku_backend/internals/features/users/profiles/service"
)

// ProfileRoutes expects r to be behind the auth middleware.
func ProfileRoutes(r fiber.Router, resolver *service.Resolver) {
	ctrl := controller.NewProfileController(resolver)

	profiles := r.Group("/profiles")
	profiles.Get("/me", ctrl.GetMine)
}
