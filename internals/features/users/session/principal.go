// Package session holds the authenticated principal of a request and the
// publish/subscribe hub that announces sign-in and sign-out.
package session

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portalku_backend/internals/constants"
)

// Principal is the caller as seen by services. Role always comes from the profile row.
type Principal struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
}

func (p Principal) IsTeacher() bool { return p.Role == constants.RoleTeacher }
func (p Principal) IsStudent() bool { return p.Role == constants.RoleStudent }

const (
	localsPrincipal = "principal"
	localsUserID    = "user_id"
	localsRole      = "userRole"
	localsToken     = "access_token"
)

// WithPrincipal stores p in request locals, plus the flat user_id / userRole keys.
func WithPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(localsPrincipal, p)
	c.Locals(localsUserID, p.UserID.String())
	c.Locals(localsRole, p.Role)
}

func FromCtx(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(localsPrincipal).(Principal)
	return p, ok
}

func SetToken(c *fiber.Ctx, tok string) { c.Locals(localsToken, tok) }

func TokenFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(localsToken).(string)
	return s
}
