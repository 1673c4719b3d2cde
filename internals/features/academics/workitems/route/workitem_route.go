package route

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/workitems/controller"
	"portalku_backend/internals/features/academics/workitems/service"
	authMiddleware "portalku_backend/internals/middlewares/auth"
)

// WorkItemRoutes mounts one kind under /<route prefix> (r sudah di belakang AuthMiddleware).
func WorkItemRoutes(r fiber.Router, svc *service.Service) {
	ctrl := controller.NewWorkItemController(svc)
	label := string(svc.Spec.Kind)
	onlyTeacher := authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher(label), constants.TeacherOnly)
	onlyStudent := authMiddleware.OnlyRolesSlice(constants.RoleErrorStudent("submission"), constants.StudentOnly)

	g := r.Group("/" + svc.Spec.RoutePrefix)
	g.Get("/", ctrl.List)
	g.Post("/", onlyTeacher, ctrl.Create)

	g.Patch("/submissions/:submissionId/grade", onlyTeacher, ctrl.Grade)
	g.Get("/submissions/:submissionId/download", ctrl.Download)

	g.Get("/:id", ctrl.GetByID)
	g.Delete("/:id", onlyTeacher, ctrl.Delete)
	g.Post("/:id/submissions", onlyStudent, ctrl.Submit)
	g.Get("/:id/submissions", ctrl.ListSubmissions)
}

// AllWorkItemRoutes mounts homework, assignments and projects.
func AllWorkItemRoutes(r fiber.Router, svcs ...*service.Service) {
	for _, s := range svcs {
		WorkItemRoutes(r, s)
	}
}
