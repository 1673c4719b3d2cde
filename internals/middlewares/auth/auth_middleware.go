// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

// Authenticator mengubah token mentah menjadi principal (blacklist, signature, exp, profil).
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (session.Principal, error)
}

// Public path yang di-skip auth
var skipPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := skipPaths[c.Path()]; ok {
			return c.Next()
		}
		// Sudah di-resolve oleh middleware sebelumnya
		if _, ok := session.FromCtx(c); ok {
			return c.Next()
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonAppError(c, apperr.Unauthorized(err.Error()))
		}

		p, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			if !apperr.Is(err, apperr.KindUnauthorized) {
				log.Printf("[AUTH] %s %s: %v", c.Method(), c.OriginalURL(), err)
			}
			return helper.JsonAppError(c, err)
		}

		session.WithPrincipal(c, p)
		session.SetToken(c, tokenString)
		return c.Next()
	}
}
