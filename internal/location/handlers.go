package location

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Sample
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		req.UserID, _ = c.Locals("user_id").(string)
		req.IPAddress = c.IP()
		req.DeviceInfo = c.Get("User-Agent")

		sample, err := svc.Record(c.Context(), req)
		if err != nil {
			if errors.Is(err, ErrInvalidCoordinates) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(sample)
	})

	r.Get("/history", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		limit := c.QueryInt("limit", 10)
		offset := c.QueryInt("offset", 0)

		samples, err := svc.History(c.Context(), userID, limit, offset)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if samples == nil {
			samples = []Sample{}
		}
		return c.JSON(fiber.Map{"locations": samples})
	})

	r.Get("/latest", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		sample, err := svc.Latest(c.Context(), userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fiber.NewError(fiber.StatusNotFound, "no location recorded")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sample)
	})
}
