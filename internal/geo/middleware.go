package geo

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// BoundaryCheck is a best-effort guard on report submission: when latitude and
// longitude parse as numbers and fall outside the boundary the request is
// rejected; absent or malformed coordinates pass through, leaving the
// mandatory-field validation to the create handler.
func BoundaryCheck(v *Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		latStr := c.FormValue("latitude")
		lngStr := c.FormValue("longitude")
		if latStr == "" || lngStr == "" {
			return c.Next()
		}
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			return c.Next()
		}
		if !v.Contains(lat, lng) {
			return apperrors.NewUnprocessable("coordinates outside municipality boundaries")
		}
		return c.Next()
	}
}
