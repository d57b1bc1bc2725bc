package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civicguard/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Geocode *handlers.GeocodeHandler
	// MediaDir, when non-empty, is served under /media (local storage mode).
	MediaDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/upload", cfg.Tickets.Upload)
	app.Get("/test-geocode", cfg.Geocode.TestGeocode)

	api := app.Group("/api")
	api.Post("/intake", cfg.Tickets.Intake)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Get("/stats", cfg.Tickets.Stats)

	if cfg.MediaDir != "" {
		app.Static("/media", cfg.MediaDir)
	}
}
