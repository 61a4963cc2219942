package domain

import "time"

// TicketHistory is an immutable audit trail entry for one state change.
type TicketHistory struct {
	TicketID     int64
	From         TicketState
	To           TicketState
	TechnicianID *int64
	At           time.Time
}
