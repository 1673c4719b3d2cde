package controller

import (
	"bufio"
	"fmt"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"portalku_backend/internals/features/users/auth/dto"
	"portalku_backend/internals/features/users/auth/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

type AuthController struct {
	Svc *service.Service

	// Heartbeat interval untuk stream /session/events
	Heartbeat time.Duration
}

func NewAuthController(svc *service.Service) *AuthController {
	return &AuthController{Svc: svc, Heartbeat: 25 * time.Second}
}

func setAuthCookie(c *fiber.Ctx, res *dto.AuthResponse) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    res.AccessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  res.ExpiresAt,
	})
}

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	res, err := ac.Svc.SignUp(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	setAuthCookie(c, res)
	return helper.JsonCreated(c, "Registrasi berhasil", res)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	res, err := ac.Svc.SignIn(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	setAuthCookie(c, res)
	return helper.JsonOK(c, "Login berhasil", res)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var in dto.GoogleLoginRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	res, err := ac.Svc.SignInGoogle(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	setAuthCookie(c, res)
	return helper.JsonOK(c, "Login Google berhasil", res)
}

// POST /api/auth/logout (protected)
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	p, _ := session.FromCtx(c)
	if err := ac.Svc.SignOut(c.UserContext(), session.TokenFromCtx(c), p); err != nil {
		return helper.JsonAppError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
	})
	return helper.JsonOK(c, "Logout successful", nil)
}

// GET /api/auth/me (protected)
func (ac *AuthController) Me(c *fiber.Ctx) error {
	p, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	return helper.JsonOK(c, "ok", p)
}

// GET /api/auth/session/events (protected, Server-Sent Events)
// Stream berakhir saat user logout.
func (ac *AuthController) SessionEvents(c *fiber.Ctx) error {
	p, ok := session.FromCtx(c)
	if !ok {
		return helper.JsonAppError(c, apperr.Unauthorized(""))
	}
	hub := ac.Svc.Hub
	if hub == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "session events disabled")
	}
	heartbeat := ac.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := hub.Watch(p.UserID, 8)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ready, _ := sonic.Marshal(p)
		if writeEvent(w, "ready", ready) != nil {
			return
		}
		tick := time.NewTicker(heartbeat)
		defer tick.Stop()
		for {
			select {
			case e, open := <-events:
				if !open {
					return
				}
				data, err := sonic.Marshal(e)
				if err != nil {
					log.Printf("[SSE] marshal event gagal: %v", err)
					continue
				}
				if writeEvent(w, string(e.Kind), data) != nil {
					return
				}
				if e.Kind == session.SignedOut {
					return
				}
			case <-tick.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, name string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}
