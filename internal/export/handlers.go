package export

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

func RegisterRoutes(r fiber.Router, store *trip.Store, authMiddleware fiber.Handler) {
	r.Get("/export.csv", authMiddleware, func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := WriteItineraryCSV(&buf, store.Snapshot()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="itinerary.csv"`)
		return c.Send(buf.Bytes())
	})
}
