package sharing

import (
	"errors"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func RegisterRoutes(r fiber.Router, store *Store, q db.Querier, collector *metrics.Collector, authMiddleware fiber.Handler) {
	r.Post("/share", authMiddleware, func(c *fiber.Ctx) error {
		var req ShareRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.DurationHours == 0 {
			req.DurationHours = 1
		}

		ownerID, _ := c.Locals("user_id").(string)
		session, err := store.Create(ownerID, req.DurationHours)
		if err != nil {
			return statusFromError(err)
		}
		collector.RecordSessionCreated()

		return c.Status(fiber.StatusCreated).JSON(ShareResponse{
			Token:       session.Token,
			TrackingURL: c.BaseURL() + "/sharing/track/" + session.Token,
			ExpiresAt:   session.ExpiresAt,
		})
	})

	r.Get("/track/:token/status", func(c *fiber.Ctx) error {
		session, err := store.Get(c.Params("token"))
		if err != nil {
			return statusFromError(err)
		}

		resp := StatusResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
		}

		var firstName, lastName string
		row := q.QueryRow(c.Context(), `
			SELECT first_name, last_name FROM users WHERE id=$1
		`, session.OwnerID)
		if err := row.Scan(&firstName, &lastName); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		resp.OwnerName = firstName + " " + lastName

		var latest LatestSample
		row = q.QueryRow(c.Context(), `
			SELECT latitude, longitude, recorded_at
			FROM location_history WHERE user_id=$1
			ORDER BY recorded_at DESC
			LIMIT 1
		`, session.OwnerID)
		switch err := row.Scan(&latest.Latitude, &latest.Longitude, &latest.Recorded); {
		case err == nil:
			resp.LatestLocation = &latest
		case errors.Is(err, pgx.ErrNoRows):
		default:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(resp)
	})

	r.Post("/:token/stop", authMiddleware, func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		if err := store.Stop(c.Params("token"), callerID); err != nil {
			return statusFromError(err)
		}
		return c.JSON(fiber.Map{"message": "location sharing stopped"})
	})

	r.Get("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		ownerID, _ := c.Locals("user_id").(string)
		sessions := store.ListActive(ownerID)
		if sessions == nil {
			sessions = []Session{}
		}
		return c.JSON(fiber.Map{"active_sessions": sessions})
	})
}

func statusFromError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrInvalidDuration):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrSessionExpired):
		return fiber.NewError(fiber.StatusGone, err.Error())
	case errors.Is(err, ErrNotOwner):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
