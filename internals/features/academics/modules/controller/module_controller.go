package controller

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/academics/modules/dto"
	"portalku_backend/internals/features/academics/modules/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

type ModuleController struct {
	Svc *service.Service
}

func NewModuleController(svc *service.Service) *ModuleController {
	return &ModuleController{Svc: svc}
}

// GET /api/modules
func (mc *ModuleController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := mc.Svc.List(c.UserContext(), p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/modules/:id
func (mc *ModuleController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := mc.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(*m))
}

// POST /api/modules (teacher)
func (mc *ModuleController) Create(c *fiber.Ctx) error {
	caller, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	var in dto.CreateModuleRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	m, err := mc.Svc.Create(c.UserContext(), caller, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Modul berhasil dibuat", dto.FromModel(*m))
}

// DELETE /api/modules/:id (teacher)
func (mc *ModuleController) Delete(c *fiber.Ctx) error {
	caller, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := mc.Svc.Delete(c.UserContext(), caller, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Modul berhasil dihapus", fiber.Map{"id": id})
}
