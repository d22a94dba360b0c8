package trip

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// ReloadFunc re-runs ingestion and replaces the store's snapshot.
type ReloadFunc func(ctx context.Context) error

func RegisterRoutes(r fiber.Router, store *Store, reload ReloadFunc, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		snap := store.Snapshot()
		return c.JSON(fiber.Map{
			"start_date": snap.StartDate,
			"end_date":   snap.EndDate,
			"cities":     snap.Cities(),
			"theme":      snap.Theme,
			"tips":       snap.Tips,
			"loading":    store.Loading(),
			"error":      store.Err(),
		})
	})

	r.Get("/places", authMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(store.Snapshot().OrderedPlaces())
	})

	r.Get("/itinerary", authMiddleware, func(c *fiber.Ctx) error {
		snap := store.Snapshot()
		days := make([]ResolvedDay, 0, len(snap.Itinerary))
		for _, d := range snap.Itinerary {
			days = append(days, snap.ResolveDay(d))
		}
		return c.JSON(days)
	})

	r.Post("/reload", authMiddleware, func(c *fiber.Ctx) error {
		if reload == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "reload unavailable")
		}
		if err := reload(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{"reloaded": true})
	})
}
