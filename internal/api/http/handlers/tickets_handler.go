package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/assignment"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observer"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	system     *service.TicketSystem
	strategies *assignment.Registry
	now        func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(system *service.TicketSystem, strategies *assignment.Registry) *TicketsHandler {
	return &TicketsHandler{system: system, strategies: strategies, now: time.Now}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Description == "" || req.Category == "" {
		return apperrors.NewValidationError("description, category required", nil)
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"category": req.Category})
	}

	id, err := h.system.CreateTicket(req.Description, category, req.ClientID)
	if err != nil {
		return err
	}
	ticket, _ := h.system.Ticket(id)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.ticketResponse(ticket)})
}

// ListTickets GET /tickets?state=&category=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var tickets []domain.Ticket
	if raw := c.Query("state"); raw != "" {
		state, err := domain.ParseState(raw)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"state": raw})
		}
		tickets = h.system.TicketsByState(state)
	} else {
		tickets = h.system.AllTickets()
	}

	if raw := c.Query("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"category": raw})
		}
		filtered := tickets[:0]
		for _, ticket := range tickets {
			if ticket.Category == category {
				filtered = append(filtered, ticket)
			}
		}
		tickets = filtered
	}
	return c.JSON(fiber.Map{"data": h.ticketResponses(tickets)})
}

// ListPending GET /tickets/pending.
func (h *TicketsHandler) ListPending(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.ticketResponses(h.system.PendingTickets())})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, ok := h.system.Ticket(id)
	if !ok {
		return apperrors.NewTicketNotFound(id)
	}
	return c.JSON(fiber.Map{"data": h.ticketResponse(ticket)})
}

// GetHistory GET /tickets/:id/history.
func (h *TicketsHandler) GetHistory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.system.History(id)
	if err != nil {
		return err
	}
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			From:         entry.From,
			To:           entry.To,
			TechnicianID: entry.TechnicianID,
			At:           entry.At,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateState PATCH /tickets/:id/state.
func (h *TicketsHandler) UpdateState(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketStateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	state, err := domain.ParseState(req.State)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"state": req.State})
	}
	if err := h.system.UpdateTicketState(id, state); err != nil {
		return err
	}
	ticket, _ := h.system.Ticket(id)
	return c.JSON(fiber.Map{"data": h.ticketResponse(ticket)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.system.AssignTicket(id, req.TechnicianID); err != nil {
		return err
	}
	name, _ := h.system.TechnicianName(req.TechnicianID)
	return c.JSON(fiber.Map{"data": dto.AssignmentResponse{
		TicketID:       id,
		TechnicianID:   req.TechnicianID,
		TechnicianName: name,
	}})
}

// AssignNext POST /assignments/next?strategy=.
func (h *TicketsHandler) AssignNext(c *fiber.Ctx) error {
	strategy, err := h.strategies.Get(c.Query("strategy"))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"strategy": c.Query("strategy")})
	}
	ticketID, ok := h.system.AssignNextTicket(strategy)
	if !ok {
		return c.SendStatus(http.StatusNoContent)
	}
	ticket, _ := h.system.Ticket(ticketID)
	resp := dto.AssignmentResponse{TicketID: ticketID, Strategy: strategy.Name()}
	if ticket.TechnicianID != nil {
		resp.TechnicianID = *ticket.TechnicianID
		resp.TechnicianName, _ = h.system.TechnicianName(resp.TechnicianID)
	}
	return c.JSON(fiber.Map{"data": resp})
}

func (h *TicketsHandler) ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		items = append(items, h.ticketResponse(ticket))
	}
	return items
}

func (h *TicketsHandler) ticketResponse(ticket domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		Description:    ticket.Description,
		Category:       ticket.Category,
		State:          ticket.State,
		ClientID:       ticket.ClientID,
		TechnicianID:   ticket.TechnicianID,
		CreatedAt:      ticket.CreatedAt,
		ResolvedAt:     ticket.ResolvedAt,
		ElapsedMinutes: observer.ElapsedMinutes(ticket, h.now()),
	}
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	raw := c.Params(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{param: raw})
	}
	return id, nil
}
