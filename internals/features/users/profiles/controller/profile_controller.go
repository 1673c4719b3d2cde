package controller

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/users/profiles/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

type ProfileController struct {
	Resolver *service.Resolver
}

func NewProfileController(r *service.Resolver) *ProfileController {
	return &ProfileController{Resolver: r}
}

// GET /api/profiles/me
func (pc *ProfileController) GetMine(c *fiber.Ctx) error {
	p, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	prof, err := pc.Resolver.Resolve(c.UserContext(), service.Identity{UserID: p.UserID, Email: p.Email})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Profil ditemukan", prof)
}
