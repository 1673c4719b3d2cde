package route

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/videos/controller"
	"portalku_backend/internals/features/academics/videos/service"
	authMiddleware "portalku_backend/internals/middlewares/auth"
)

func VideoRoutes(r fiber.Router, svc *service.Service) {
	ctrl := controller.NewVideoController(svc)

	videos := r.Group("/videos")
	videos.Get("/", ctrl.List)
	videos.Post("/", ctrl.Add)
	videos.Delete("/:id", authMiddleware.OnlyRoles(constants.RoleErrorTeacher("video"), constants.RoleTeacher), ctrl.Delete)
}
