package view

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Viewport ViewportClass `json:"viewport"`
		}
		_ = c.BodyParser(&body)
		upd := svc.Create(body.Viewport)
		return c.Status(fiber.StatusCreated).JSON(upd)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		upd, err := svc.Get(c.Params("id"))
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Post("/:id/city", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			City string `json:"city"`
		}
		if err := c.BodyParser(&body); err != nil || body.City == "" {
			return fiber.NewError(fiber.StatusBadRequest, "city required")
		}
		upd, err := svc.SelectCity(c.Params("id"), body.City)
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Delete("/:id/city", authMiddleware, func(c *fiber.Ctx) error {
		upd, err := svc.ClearCity(c.Params("id"))
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Post("/:id/day", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			DayID string `json:"day_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.DayID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "day_id required")
		}
		upd, err := svc.OpenDay(c.Params("id"), body.DayID)
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Delete("/:id/day", authMiddleware, func(c *fiber.Ctx) error {
		upd, err := svc.CloseDay(c.Params("id"))
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Post("/:id/toggle", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Category string `json:"category"`
		}
		if err := c.BodyParser(&body); err != nil || body.Category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category required")
		}
		category, ok := trip.ParseCategory(body.Category)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "unknown category")
		}
		upd, err := svc.ToggleCategory(c.Params("id"), category)
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Post("/:id/layout", authMiddleware, func(c *fiber.Ctx) error {
		var body LayoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		upd, err := svc.SetLayout(c.Params("id"), body)
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Post("/:id/popup", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			PlaceID string `json:"place_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.PlaceID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "place_id required")
		}
		upd, err := svc.OpenPopup(c.Params("id"), body.PlaceID)
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Delete("/:id/popup/:placeID", authMiddleware, func(c *fiber.Ctx) error {
		upd, err := svc.ClosePopup(c.Params("id"), c.Params("placeID"))
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Post("/:id/locate", authMiddleware, func(c *fiber.Ctx) error {
		upd, err := svc.StartLocate(c.Params("id"))
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Delete("/:id/locate", authMiddleware, func(c *fiber.Ctx) error {
		upd, err := svc.StopLocate(c.Params("id"))
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})

	r.Post("/:id/map/event", authMiddleware, func(c *fiber.Ctx) error {
		var ev MapEvent
		if err := c.BodyParser(&ev); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		upd, err := svc.HandleMapEvent(c.Params("id"), ev)
		if err != nil {
			return statusFor(err)
		}
		return c.JSON(upd)
	})
}

func statusFor(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotToggleable):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
