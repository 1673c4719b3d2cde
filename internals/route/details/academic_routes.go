package details

import (
	"github.com/gofiber/fiber/v2"

	moduleRoute "portalku_backend/internals/features/academics/modules/route"
	moduleService "portalku_backend/internals/features/academics/modules/service"
	noteRoute "portalku_backend/internals/features/academics/notes/route"
	noteService "portalku_backend/internals/features/academics/notes/service"
	videoRoute "portalku_backend/internals/features/academics/videos/route"
	videoService "portalku_backend/internals/features/academics/videos/service"
	workRoute "portalku_backend/internals/features/academics/workitems/route"
	workService "portalku_backend/internals/features/academics/workitems/service"
)

type AcademicServices struct {
	Modules *moduleService.Service
	Work    []*workService.Service
	Notes   *noteService.Service
	Videos  *videoService.Service
}

// AcademicRoutes: modules, homeworks, assignments, projects, notes, videos
func AcademicRoutes(private fiber.Router, s AcademicServices) {
	moduleRoute.ModuleRoutes(private, s.Modules)
	workRoute.AllWorkItemRoutes(private, s.Work...)
	noteRoute.NoteRoutes(private, s.Notes)
	videoRoute.VideoRoutes(private, s.Videos)
}
