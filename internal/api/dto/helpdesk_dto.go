package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateClientRequest payload.
type CreateClientRequest struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
}

// ClientResponse response.
type ClientResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// CreateTechnicianRequest payload.
type CreateTechnicianRequest struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// TechnicianResponse response.
type TechnicianResponse struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Specialty        domain.Category `json:"specialty"`
	AssignedTicketID *int64          `json:"assigned_ticket_id"`
	Available        bool            `json:"available"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	ClientID    int64  `json:"client_id"`
}

// UpdateTicketStateRequest payload.
type UpdateTicketStateRequest struct {
	State string `json:"state"`
}

// AssignTicketRequest payload for manual assignment.
type AssignTicketRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// TicketResponse response.
type TicketResponse struct {
	ID             int64              `json:"id"`
	Description    string             `json:"description"`
	Category       domain.Category    `json:"category"`
	State          domain.TicketState `json:"state"`
	ClientID       int64              `json:"client_id"`
	TechnicianID   *int64             `json:"technician_id"`
	CreatedAt      time.Time          `json:"created_at"`
	ResolvedAt     *time.Time         `json:"resolved_at"`
	ElapsedMinutes int64              `json:"elapsed_minutes"`
}

// TicketHistoryResponse describes one state change.
type TicketHistoryResponse struct {
	From         domain.TicketState `json:"from"`
	To           domain.TicketState `json:"to"`
	TechnicianID *int64             `json:"technician_id,omitempty"`
	At           time.Time          `json:"at"`
}

// AssignmentResponse describes the outcome of an assignment.
type AssignmentResponse struct {
	TicketID       int64  `json:"ticket_id"`
	TechnicianID   int64  `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
	Strategy       string `json:"strategy,omitempty"`
}

// StatisticsResponse response.
type StatisticsResponse struct {
	TotalTickets         int `json:"total_tickets"`
	PendingTickets       int `json:"pending_tickets"`
	InProgressTickets    int `json:"in_progress_tickets"`
	ResolvedTickets      int `json:"resolved_tickets"`
	ClosedTickets        int `json:"closed_tickets"`
	AvailableTechnicians int `json:"available_technicians"`
	BusyTechnicians      int `json:"busy_technicians"`
}
