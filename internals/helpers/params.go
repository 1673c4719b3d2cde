package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portalku_backend/internals/helpers/apperr"
)

// ParseUUIDParam membaca :name sebagai UUID; format salah → ValidationError.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, apperr.ValidationFields(map[string][]string{name: {"must be a valid UUID"}})
	}
	return id, nil
}

// ParseUUIDQuery membaca ?name= opsional. Kosong → nil.
func ParseUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.ValidationFields(map[string][]string{name: {"must be a valid UUID"}})
	}
	return &id, nil
}
