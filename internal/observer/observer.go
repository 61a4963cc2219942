// Package observer contains the listeners notified on ticket lifecycle events.
package observer

import "github.com/spec-kit/helpdesk/internal/domain"

// Observer receives lifecycle notifications. Tickets are copies; returned
// errors are logged by the ticket system and never abort the operation.
type Observer interface {
	OnCreated(ticket domain.Ticket) error
	OnAssigned(ticket domain.Ticket, technicianName string) error
	OnResolved(ticket domain.Ticket) error
}
