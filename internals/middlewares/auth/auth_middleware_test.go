package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/users/session"
	"portalku_backend/internals/helpers/apperr"
)

type fakeAuth map[string]session.Principal

func (f fakeAuth) Authenticate(ctx context.Context, raw string) (session.Principal, error) {
	p, ok := f[raw]
	if !ok {
		return session.Principal{}, apperr.Unauthorized("invalid or expired token")
	}
	return p, nil
}

func newApp(auth Authenticator) *fiber.App {
	app := fiber.New()
	api := app.Group("/api", AuthMiddleware(auth))
	api.Get("/me", func(c *fiber.Ctx) error {
		p, _ := session.FromCtx(c)
		return c.SendString(p.Role + ":" + session.TokenFromCtx(c))
	})
	api.Delete("/thing", OnlyRoles(constants.RoleErrorTeacher("hapus"), constants.RoleTeacher), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	auth := fakeAuth{
		"tok-teacher": {UserID: uuid.New(), Role: constants.RoleTeacher},
		"tok-student": {UserID: uuid.New(), Role: constants.RoleStudent},
	}
	app := newApp(auth)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		cookie string
		status int
		body   string
	}{
		{name: "no token", method: "GET", path: "/api/me", status: 401},
		{name: "bad format", method: "GET", path: "/api/me", header: "Token abc", status: 401},
		{name: "unknown token", method: "GET", path: "/api/me", header: "Bearer nope", status: 401},
		{name: "bearer", method: "GET", path: "/api/me", header: "bearer  tok-student", status: 200, body: "student:tok-student"},
		{name: "cookie", method: "GET", path: "/api/me", cookie: "tok-teacher", status: 200, body: "teacher:tok-teacher"},
		{name: "student blocked by role gate", method: "DELETE", path: "/api/thing", header: "Bearer tok-student", status: 403},
		{name: "teacher passes role gate", method: "DELETE", path: "/api/thing", header: "Bearer tok-teacher", status: 204},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", "access_token="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(b))
			}
		})
	}
}
