package domain

import "time"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           int64
	Description  string
	Category     Category
	State        TicketState
	ClientID     int64
	TechnicianID *int64
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

// NewTicket builds a ticket in state NEW.
func NewTicket(id int64, description string, category Category, clientID int64, createdAt time.Time) Ticket {
	return Ticket{
		ID:          id,
		Description: description,
		Category:    category,
		State:       StateNew,
		ClientID:    clientID,
		CreatedAt:   createdAt,
	}
}

// Elapsed returns the time from creation to resolution, or to now while the
// ticket is still open.
func (t Ticket) Elapsed(now time.Time) time.Duration {
	end := now
	if t.ResolvedAt != nil {
		end = *t.ResolvedAt
	}
	d := end.Sub(t.CreatedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Clone returns a copy that shares no pointers with t.
func (t Ticket) Clone() Ticket {
	t.TechnicianID = cloneID(t.TechnicianID)
	if t.ResolvedAt != nil {
		at := *t.ResolvedAt
		t.ResolvedAt = &at
	}
	return t
}
