package route

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/modules/controller"
	"portalku_backend/internals/features/academics/modules/service"
	authMiddleware "portalku_backend/internals/middlewares/auth"
)

// ModuleRoutes: base /api/modules (r sudah di belakang AuthMiddleware)
func ModuleRoutes(r fiber.Router, svc *service.Service) {
	ctrl := controller.NewModuleController(svc)
	onlyTeacher := authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher("modul"), constants.TeacherOnly)

	modules := r.Group("/modules")
	modules.Get("/", ctrl.List)
	modules.Get("/:id", ctrl.GetByID)
	modules.Post("/", onlyTeacher, ctrl.Create)
	modules.Delete("/:id", onlyTeacher, ctrl.Delete)
}
