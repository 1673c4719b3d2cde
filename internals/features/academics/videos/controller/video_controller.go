package controller

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/academics/videos/dto"
	"portalku_backend/internals/features/academics/videos/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

type VideoController struct {
	Svc *service.Service
}

func NewVideoController(svc *service.Service) *VideoController {
	return &VideoController{Svc: svc}
}

func (vc *VideoController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := vc.Svc.List(c.UserContext(), p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

func (vc *VideoController) Add(c *fiber.Ctx) error {
	who, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	var in dto.CreateVideoRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v, err := vc.Svc.Add(c.UserContext(), who, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Video berhasil ditambahkan", dto.FromModel(*v))
}

func (vc *VideoController) Delete(c *fiber.Ctx) error {
	who, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := vc.Svc.Delete(c.UserContext(), who, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Video berhasil dihapus", fiber.Map{"id": id})
}
