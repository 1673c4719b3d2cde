package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/academics/notes/dto"
	"portalku_backend/internals/features/academics/notes/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
	"portalku_backend/internals/helpers/storage"
)

type NoteController struct {
	Svc *service.Service
}

func NewNoteController(svc *service.Service) *NoteController {
	return &NoteController{Svc: svc}
}

// GET /api/notes?module_id=
func (nc *NoteController) List(c *fiber.Ctx) error {
	moduleID, err := helper.ParseUUIDQuery(c, "module_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := nc.Svc.List(c.UserContext(), moduleID, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

// POST /api/notes (multipart: title, module_id?, file)
func (nc *NoteController) Upload(c *fiber.Ctx) error {
	who, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	var in dto.CreateNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid form body")
	}

	var file *storage.File
	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		f, closer, oerr := storage.FileFromHeader(fh)
		if oerr != nil {
			log.Printf("[NOTES] open multipart file gagal: %v", oerr)
			return helper.JsonError(c, fiber.StatusBadRequest, "Gagal membaca file")
		}
		defer closer.Close()
		file = f
	}

	n, err := nc.Svc.Upload(c.UserContext(), who, in, file)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Catatan berhasil diunggah", dto.FromModel(*n))
}

// GET /api/notes/:id/download
func (nc *NoteController) Download(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	link, err := nc.Svc.DownloadURL(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{"url": link.URL, "expires_at": link.ExpiresAt})
}

// DELETE /api/notes/:id (guru)
func (nc *NoteController) Delete(c *fiber.Ctx) error {
	who, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := nc.Svc.Delete(c.UserContext(), who, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Catatan berhasil dihapus", fiber.Map{"id": id})
}
