package route

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/notes/controller"
	"portalku_backend/internals/features/academics/notes/service"
	authMiddleware "portalku_backend/internals/middlewares/auth"
)

func NoteRoutes(r fiber.Router, svc *service.Service) {
	ctrl := controller.NewNoteController(svc)

	notes := r.Group("/notes")
	notes.Get("/", ctrl.List)
	notes.Post("/", ctrl.Upload)
	notes.Get("/:id/download", ctrl.Download)
	notes.Delete("/:id",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher("catatan"), constants.TeacherOnly),
		ctrl.Delete,
	)
}
