package middlewares

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext(t *testing.T) {
	app := fiber.New()
	app.Use(RequestContext(time.Second))
	app.Get("/x", func(c *fiber.Ctx) error {
		_, hasDeadline := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"reqid": c.Locals("reqid"), "deadline": hasDeadline})
	})

	req := httptest.NewRequest("GET", "/x", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	id := resp.Header.Get("X-Request-ID")
	assert.NotEmpty(t, id)

	var body struct {
		ReqID    string `json:"reqid"`
		Deadline bool   `json:"deadline"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, id, body.ReqID)
	assert.True(t, body.Deadline)

	// id dari client dipakai ulang, SSE tanpa timeout
	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	req.Header.Set("Accept", "text/event-stream")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Deadline)
}

func TestLoginRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "TOO_MANY_REQUESTS", body["error_code"])
}

func TestRecoveryMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
