package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/academics/workitems/dto"
	"portalku_backend/internals/features/academics/workitems/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
	"portalku_backend/internals/helpers/storage"
)

type WorkItemController struct {
	Svc *service.Service
}

func NewWorkItemController(svc *service.Service) *WorkItemController {
	return &WorkItemController{Svc: svc}
}

func caller(c *fiber.Ctx) (session.Principal, error) {
	p, ok := session.FromCtx(c)
	if !ok {
		return session.Principal{}, apperr.Unauthorized("")
	}
	return p, nil
}

// GET /api/{kind}?module_id=&page=&per_page=
func (wc *WorkItemController) List(c *fiber.Ctx) error {
	moduleID, err := helper.ParseUUIDQuery(c, "module_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := wc.Svc.List(c.UserContext(), moduleID, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	now := wc.Svc.Now()
	return helper.JsonList(c, "ok", dto.FromItems(wc.Svc.Spec, rows, now), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/{kind}/:id
func (wc *WorkItemController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	it, err := wc.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromItem(wc.Svc.Spec, *it, wc.Svc.Now()))
}

// POST /api/{kind} (guru), JSON atau form
func (wc *WorkItemController) Create(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.CreateWorkItemRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	it, err := wc.Svc.Create(c.UserContext(), who, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Berhasil dibuat", dto.FromItem(wc.Svc.Spec, *it, wc.Svc.Now()))
}

// DELETE /api/{kind}/:id (guru)
func (wc *WorkItemController) Delete(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := wc.Svc.Delete(c.UserContext(), who, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Berhasil dihapus", fiber.Map{"id": id})
}

// POST /api/{kind}/:id/submissions (siswa, multipart: file + field project)
func (wc *WorkItemController) Submit(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	in := service.SubmitInput{}
	if fh, ferr := c.FormFile("file"); ferr == nil && fh != nil {
		file, closer, err := storage.FileFromHeader(fh)
		if err != nil {
			log.Printf("[SUBMIT] open multipart file gagal: %v", err)
			return helper.JsonError(c, fiber.StatusBadRequest, "Gagal membaca file")
		}
		defer closer.Close()
		in.File = file
	}
	if wc.Svc.Spec.ProjectFields {
		if err := c.BodyParser(&in.Project); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid form body")
		}
	}

	sub, err := wc.Svc.Submit(c.UserContext(), who, id, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Submission berhasil dikirim", dto.FromSubmission(*sub))
}

// GET /api/{kind}/:id/submissions
func (wc *WorkItemController) ListSubmissions(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := wc.Svc.ListFor(c.UserContext(), who, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromSubmissions(rows), nil)
}

// PATCH /api/{kind}/submissions/:submissionId/grade (guru)
func (wc *WorkItemController) Grade(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "submissionId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.GradeRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	sub, err := wc.Svc.Grade(c.UserContext(), who, id, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Penilaian disimpan", dto.FromSubmission(*sub))
}

// GET /api/{kind}/submissions/:submissionId/download
func (wc *WorkItemController) Download(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "submissionId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	link, err := wc.Svc.ResolveDownloadURL(c.UserContext(), who, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{"url": link.URL, "expires_at": link.ExpiresAt})
}
