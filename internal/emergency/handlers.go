package emergency

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/sos", authMiddleware, func(c *fiber.Ctx) error {
		var req SOSRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
			}
		}

		userID, _ := c.Locals("user_id").(string)
		alert, notified, err := svc.TriggerSOS(c.Context(), userID, req)
		if err != nil {
			return statusFromError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(SOSResponse{
			Alert:            alert,
			ContactsNotified: notified,
		})
	})

	r.Post("/report", authMiddleware, func(c *fiber.Ctx) error {
		var req ReportRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		userID, _ := c.Locals("user_id").(string)
		alert, err := svc.Report(c.Context(), userID, req)
		if err != nil {
			return statusFromError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"alert": alert})
	})

	r.Get("/alerts", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		limit := c.QueryInt("limit", 10)
		offset := c.QueryInt("offset", 0)
		includeResolved := c.QueryBool("include_resolved", false)

		alerts, err := svc.Alerts(c.Context(), userID, limit, offset, includeResolved)
		if err != nil {
			return statusFromError(err)
		}
		if alerts == nil {
			alerts = []Alert{}
		}
		return c.JSON(fiber.Map{"alerts": alerts})
	})

	r.Post("/alerts/:id/resolve", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Resolve(c.Context(), c.Params("id"), userID); err != nil {
			return statusFromError(err)
		}
		return c.JSON(fiber.Map{"message": "alert resolved"})
	})

	r.Get("/contacts", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		contacts, err := svc.Contacts(c.Context(), userID)
		if err != nil {
			return statusFromError(err)
		}
		if contacts == nil {
			contacts = []Contact{}
		}
		return c.JSON(fiber.Map{"contacts": contacts})
	})

	r.Post("/contacts", authMiddleware, func(c *fiber.Ctx) error {
		var req ContactRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		userID, _ := c.Locals("user_id").(string)
		contact, err := svc.AddContact(c.Context(), userID, req)
		if err != nil {
			return statusFromError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(contact)
	})

	r.Get("/contacts/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		contact, err := svc.Contact(c.Context(), userID, c.Params("id"))
		if err != nil {
			return statusFromError(err)
		}
		return c.JSON(contact)
	})

	r.Put("/contacts/:id", authMiddleware, func(c *fiber.Ctx) error {
		var upd ContactUpdate
		if err := c.BodyParser(&upd); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		userID, _ := c.Locals("user_id").(string)
		contact, err := svc.UpdateContact(c.Context(), userID, c.Params("id"), upd)
		if err != nil {
			return statusFromError(err)
		}
		return c.JSON(contact)
	})

	r.Delete("/contacts/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.DeleteContact(c.Context(), userID, c.Params("id")); err != nil {
			return statusFromError(err)
		}
		return c.JSON(fiber.Map{"message": "contact deleted"})
	})

	r.Get("/numbers", func(c *fiber.Ctx) error {
		return c.JSON(EmergencyNumbers(c.Query("country", "US")))
	})

	r.Get("/helplines", func(c *fiber.Ctx) error {
		return c.JSON(WomenHelplines(c.Query("country", "US")))
	})
}

func statusFromError(err error) error {
	switch {
	case errors.Is(err, ErrAlertNotFound), errors.Is(err, ErrContactNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrContactInvalid), errors.Is(err, ErrTooManyContacts),
		errors.Is(err, ErrMessageRequired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
