package storage

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/audio", authMiddleware, func(c *fiber.Ctx) error {
		header, err := c.FormFile("audio")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "audio file is required")
		}

		file, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable audio file")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable audio file")
		}

		userID, _ := c.Locals("user_id").(string)
		clip, err := svc.SaveAudioClip(c.Context(), userID, data, header.Header.Get("Content-Type"))
		if err != nil {
			if errors.Is(err, ErrEmptyClip) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(clip)
	})
}
