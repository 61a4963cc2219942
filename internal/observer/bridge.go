package observer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
)

const defaultPublishTimeout = 2 * time.Second

// EventBridge republishes lifecycle notifications on an events.Dispatcher.
type EventBridge struct {
	dispatcher events.Dispatcher
	timeout    time.Duration
	now        func() time.Time
}

// NewEventBridge creates the bridge. A non-positive timeout uses the default.
func NewEventBridge(dispatcher events.Dispatcher, timeout time.Duration) *EventBridge {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &EventBridge{dispatcher: dispatcher, timeout: timeout, now: time.Now}
}

func (b *EventBridge) OnCreated(ticket domain.Ticket) error {
	return b.publish(events.EventTicketCreated, ticket, events.TicketCreatedPayload{
		ClientID:    ticket.ClientID,
		Category:    ticket.Category,
		Description: ticket.Description,
	})
}

func (b *EventBridge) OnAssigned(ticket domain.Ticket, technicianName string) error {
	return b.publish(events.EventTicketAssigned, ticket, events.TicketAssignedPayload{
		TechnicianID:   ticket.TechnicianID,
		TechnicianName: technicianName,
	})
}

func (b *EventBridge) OnResolved(ticket domain.Ticket) error {
	payload := events.TicketResolvedPayload{
		TechnicianID:   ticket.TechnicianID,
		ElapsedMinutes: ElapsedMinutes(ticket, b.now()),
	}
	if ticket.ResolvedAt != nil {
		payload.ResolvedAt = *ticket.ResolvedAt
	}
	return b.publish(events.EventTicketResolved, ticket, payload)
}

func (b *EventBridge) publish(eventType events.EventType, ticket domain.Ticket, payload interface{}) error {
	if b.dispatcher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	return b.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		Timestamp: b.now(),
		Payload:   payload,
	})
}
