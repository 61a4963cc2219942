package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketResolved EventType = "ticket_resolved"
)

// Event represents a lifecycle event emitted by the ticket system.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ClientID    int64           `json:"client_id"`
	Category    domain.Category `json:"category"`
	Description string          `json:"description"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TechnicianID   *int64 `json:"technician_id,omitempty"`
	TechnicianName string `json:"technician_name"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	TechnicianID   *int64    `json:"technician_id,omitempty"`
	ResolvedAt     time.Time `json:"resolved_at"`
	ElapsedMinutes int64     `json:"elapsed_minutes"`
}
