package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/observer"
	"github.com/spec-kit/helpdesk/internal/service"
)

// StatisticsHandler exposes system and event counters.
type StatisticsHandler struct {
	system  *service.TicketSystem
	counter *observer.StatsCounter
	metrics *observability.Metrics
}

// NewStatisticsHandler constructs handler.
func NewStatisticsHandler(system *service.TicketSystem, counter *observer.StatsCounter, metrics *observability.Metrics) *StatisticsHandler {
	return &StatisticsHandler{system: system, counter: counter, metrics: metrics}
}

// Statistics GET /statistics.
func (h *StatisticsHandler) Statistics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.StatisticsResponse(h.system.Statistics())})
}

// EventCounts GET /statistics/events.
func (h *StatisticsHandler) EventCounts(c *fiber.Ctx) error {
	if h.counter == nil {
		return c.JSON(fiber.Map{"data": observer.StatsSnapshot{}})
	}
	return c.JSON(fiber.Map{"data": h.counter.Snapshot()})
}

// Metrics GET /metrics.
func (h *StatisticsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
