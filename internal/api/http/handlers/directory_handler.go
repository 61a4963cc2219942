package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// DirectoryHandler registers clients and technicians.
type DirectoryHandler struct {
	system *service.TicketSystem
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(system *service.TicketSystem) *DirectoryHandler {
	return &DirectoryHandler{system: system}
}

// AddClient POST /clients.
func (h *DirectoryHandler) AddClient(c *fiber.Ctx) error {
	var req dto.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID <= 0 || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("id, name, email required", nil)
	}
	client := domain.Client{
		ID:      req.ID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Company: req.Company,
		Phone:   req.Phone,
	}
	h.system.AddClient(client)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ClientResponse(client)})
}

// GetClient GET /clients/:id.
func (h *DirectoryHandler) GetClient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	client, ok := h.system.Client(id)
	if !ok {
		return apperrors.NewClientNotFound(id)
	}
	return c.JSON(fiber.Map{"data": dto.ClientResponse(client)})
}

// AddTechnician POST /technicians.
func (h *DirectoryHandler) AddTechnician(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID <= 0 || strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("id, name required", nil)
	}
	specialty, err := domain.ParseCategory(req.Specialty)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"specialty": req.Specialty})
	}
	h.system.AddTechnician(domain.NewTechnician(req.ID, strings.TrimSpace(req.Name), specialty))
	tech, _ := h.system.Technician(req.ID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": technicianResponse(tech)})
}

// ListTechnicians GET /technicians.
func (h *DirectoryHandler) ListTechnicians(c *fiber.Ctx) error {
	techs := h.system.Technicians()
	items := make([]dto.TechnicianResponse, 0, len(techs))
	for _, tech := range techs {
		items = append(items, technicianResponse(tech))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTechnician GET /technicians/:id.
func (h *DirectoryHandler) GetTechnician(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tech, ok := h.system.Technician(id)
	if !ok {
		return apperrors.NewTechnicianNotFound(id)
	}
	return c.JSON(fiber.Map{"data": technicianResponse(tech)})
}

func technicianResponse(tech domain.Technician) dto.TechnicianResponse {
	return dto.TechnicianResponse{
		ID:               tech.ID,
		Name:             tech.Name,
		Specialty:        tech.Specialty,
		AssignedTicketID: tech.AssignedTicketID,
		Available:        tech.Available,
	}
}
