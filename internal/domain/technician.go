package domain

// Technician models a support agent that works one ticket at a time.
// AssignedTicketID is a back-reference by id; the ticket itself lives in the
// ticket system's storage.
type Technician struct {
	ID               int64
	Name             string
	Specialty        Category
	AssignedTicketID *int64
	Available        bool
}

// NewTechnician returns an available technician with no assignment.
func NewTechnician(id int64, name string, specialty Category) Technician {
	return Technician{ID: id, Name: name, Specialty: specialty, Available: true}
}

// CanAcceptTicket reports whether the technician is eligible for a new ticket.
func (t Technician) CanAcceptTicket() bool {
	return t.Available && t.AssignedTicketID == nil
}

// Clone returns a copy that shares no pointers with t.
func (t Technician) Clone() Technician {
	t.AssignedTicketID = cloneID(t.AssignedTicketID)
	return t
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
