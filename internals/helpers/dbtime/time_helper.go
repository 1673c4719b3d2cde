// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Nama locals untuk zona waktu aplikasi
const LocAppLoc = "app_loc"

// GetLocation mengambil *time.Location dari locals, fallback ke def lalu UTC.
func GetLocation(c *fiber.Ctx, def *time.Location) *time.Location {
	if c != nil {
		if loc, ok := c.Locals(LocAppLoc).(*time.Location); ok && loc != nil {
			return loc
		}
	}
	if def != nil {
		return def
	}
	return time.UTC
}

// LocationMiddleware menyimpan zona waktu aplikasi di locals.
func LocationMiddleware(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocAppLoc, loc)
		return c.Next()
	}
}

// ToLocalPtr mengonversi waktu (biasanya dari DB = UTC) ke zona lokal; nil tetap nil.
func ToLocalPtr(loc *time.Location, t *time.Time) *time.Time {
	if t == nil || loc == nil {
		return t
	}
	v := t.In(loc)
	return &v
}
