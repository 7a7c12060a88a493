package safety

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/recommendations", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var lat, lng *float64
		if raw := c.Query("latitude"); raw != "" {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid latitude")
			}
			lat = &value
		}
		if raw := c.Query("longitude"); raw != "" {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid longitude")
			}
			lng = &value
		}

		recommendations, err := svc.Recommendations(c.Context(), userID, lat, lng, time.Now().UTC())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"recommendations": recommendations})
	})
}
