package domain

// Statistics is a point-in-time summary of the ticket system.
type Statistics struct {
	TotalTickets         int
	PendingTickets       int
	InProgressTickets    int
	ResolvedTickets      int
	ClosedTickets        int
	AvailableTechnicians int
	BusyTechnicians      int
}
