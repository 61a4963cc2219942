package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Directory  *handlers.DirectoryHandler
	Tickets    *handlers.TicketsHandler
	Statistics *handlers.StatisticsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/clients", cfg.Directory.AddClient)
	app.Get("/clients/:id", cfg.Directory.GetClient)
	app.Post("/technicians", cfg.Directory.AddTechnician)
	app.Get("/technicians", cfg.Directory.ListTechnicians)
	app.Get("/technicians/:id", cfg.Directory.GetTechnician)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/pending", cfg.Tickets.ListPending)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.GetHistory)
	tickets.Patch("/:id/state", cfg.Tickets.UpdateState)
	tickets.Post("/:id/assign", cfg.Tickets.AssignTicket)

	app.Post("/assignments/next", cfg.Tickets.AssignNext)

	app.Get("/statistics", cfg.Statistics.Statistics)
	app.Get("/statistics/events", cfg.Statistics.EventCounts)
	app.Get("/metrics", cfg.Statistics.Metrics)
}
