package auth

import (
	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

// OnlyRolesSlice hanya meloloskan principal dengan salah satu role yang diizinkan.
// Harus dipasang setelah AuthMiddleware.
func OnlyRolesSlice(message string, allowedRoles []string) fiber.Handler {
	if message == "" {
		message = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		p, ok := session.FromCtx(c)
		if !ok {
			return helper.JsonAppError(c, apperr.Unauthorized("missing role information"))
		}
		for _, allowed := range allowedRoles {
			if p.Role == allowed {
				return c.Next()
			}
		}
		return helper.JsonAppError(c, apperr.PermissionDenied(message))
	}
}

// Shortcut biar lebih clean pemakaian
func OnlyRoles(message string, roles ...string) fiber.Handler {
	return OnlyRolesSlice(message, roles)
}
