package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/assignment"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observer"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketSystem owns clients, technicians, tickets and the pending queue, and
// enforces the ticket state machine. A single mutex guards all storage since
// technician availability and ticket assignment must change together.
// Observers run while the lock is held and must not call back into the system.
type TicketSystem struct {
	mu          sync.Mutex
	tickets     map[int64]*domain.Ticket
	technicians map[int64]*domain.Technician
	clients     map[int64]domain.Client
	history     map[int64][]domain.TicketHistory
	pending     []int64
	nextID      int64
	observers   []observer.Observer
	logger      *zap.Logger
	clock       func() time.Time
}

// TicketSystemDependencies bundles optional collaborators.
type TicketSystemDependencies struct {
	Logger *zap.Logger
	Clock  func() time.Time
}

// NewTicketSystem constructs an empty system. Ticket ids start at 1.
func NewTicketSystem(deps TicketSystemDependencies) *TicketSystem {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketSystem{
		tickets:     make(map[int64]*domain.Ticket),
		technicians: make(map[int64]*domain.Technician),
		clients:     make(map[int64]domain.Client),
		history:     make(map[int64][]domain.TicketHistory),
		nextID:      1,
		logger:      logger,
		clock:       clock,
	}
}

// AddTechnician registers tech, replacing any technician with the same id.
// Availability is derived from the assignment so the pair stays consistent.
func (s *TicketSystem) AddTechnician(tech domain.Technician) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := tech.Clone()
	stored.Available = stored.AssignedTicketID == nil
	s.technicians[stored.ID] = &stored
}

// AddClient registers client, replacing any client with the same id.
func (s *TicketSystem) AddClient(client domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID] = client
}

// AddObserver appends o to the notification list.
func (s *TicketSystem) AddObserver(o observer.Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// CreateTicket files a new ticket for clientID and appends it to the pending
// queue.
func (s *TicketSystem) CreateTicket(description string, category domain.Category, clientID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[clientID]; !ok {
		return 0, apperrors.NewClientNotFound(clientID)
	}
	if !category.Valid() {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid category %q", category),
			map[string]any{"category": string(category)})
	}

	id := s.nextID
	s.nextID++
	ticket := domain.NewTicket(id, description, category, clientID, s.clock())

	s.notify("created", ticket, func(o observer.Observer, t domain.Ticket) error {
		return o.OnCreated(t)
	})

	s.tickets[id] = &ticket
	s.pending = append(s.pending, id)
	s.logger.Debug("ticket created", zap.Int64("ticket_id", id), zap.Int64("client_id", clientID))
	return id, nil
}

// AssignNextTicket offers the head of the pending queue to strategy. The
// ticket stays queued when the strategy declines. At most one ticket is
// assigned per call.
func (s *TicketSystem) AssignNextTicket(strategy assignment.Strategy) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 || strategy == nil {
		return 0, false
	}
	ticketID := s.pending[0]
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return 0, false
	}

	techID, ok := strategy.Select(ticket.Clone(), s.sortedTechnicians())
	if !ok {
		return 0, false
	}
	tech, ok := s.technicians[techID]
	if !ok || !tech.CanAcceptTicket() {
		s.logger.Warn("strategy selected ineligible technician",
			zap.String("strategy", strategy.Name()),
			zap.Int64("ticket_id", ticketID),
			zap.Int64("technician_id", techID))
		return 0, false
	}

	s.pending = s.pending[1:]
	s.link(ticket, tech)
	return ticketID, true
}

// AssignTicket assigns a specific NEW ticket to a specific technician,
// removing it from the pending queue wherever it sits.
func (s *TicketSystem) AssignTicket(ticketID, technicianID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return apperrors.NewTicketNotFound(ticketID)
	}
	if ticket.State != domain.StateNew {
		return apperrors.NewInvalidTransition(ticketID, string(ticket.State), string(domain.StateAssigned))
	}
	tech, ok := s.technicians[technicianID]
	if !ok {
		return apperrors.NewTechnicianNotFound(technicianID)
	}
	if !tech.CanAcceptTicket() {
		return apperrors.NewTechnicianUnavailable(technicianID)
	}

	s.removePending(ticketID)
	s.link(ticket, tech)
	return nil
}

var allowedTransitions = map[domain.TicketState][]domain.TicketState{
	domain.StateNew:        {},
	domain.StateAssigned:   {domain.StateInProgress},
	domain.StateInProgress: {domain.StateResolved},
	domain.StateResolved:   {domain.StateClosed},
	domain.StateClosed:     {},
}

// isValidTransition covers explicit state updates only; NEW -> ASSIGNED
// happens through assignment.
func isValidTransition(current, next domain.TicketState) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// UpdateTicketState moves a ticket along its lifecycle. Resolving frees the
// linked technician and notifies observers.
func (s *TicketSystem) UpdateTicketState(ticketID int64, newState domain.TicketState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return apperrors.NewTicketNotFound(ticketID)
	}
	if !isValidTransition(ticket.State, newState) {
		return apperrors.NewInvalidTransition(ticketID, string(ticket.State), string(newState))
	}

	oldState := ticket.State
	ticket.State = newState
	if newState == domain.StateResolved {
		now := s.clock()
		ticket.ResolvedAt = &now
		if ticket.TechnicianID != nil {
			// A re-registered technician may already hold a newer ticket.
			tech, ok := s.technicians[*ticket.TechnicianID]
			if ok && tech.AssignedTicketID != nil && *tech.AssignedTicketID == ticket.ID {
				tech.AssignedTicketID = nil
				tech.Available = true
			}
		}
	}
	s.recordTransition(ticket, oldState)

	if newState == domain.StateResolved {
		s.notify("resolved", *ticket, func(o observer.Observer, t domain.Ticket) error {
			return o.OnResolved(t)
		})
	}
	return nil
}

// Statistics computes a summary of the current storage.
func (s *TicketSystem) Statistics() domain.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.Statistics{
		TotalTickets:   len(s.tickets),
		PendingTickets: len(s.pending),
	}
	for _, ticket := range s.tickets {
		switch ticket.State {
		case domain.StateInProgress:
			stats.InProgressTickets++
		case domain.StateResolved:
			stats.ResolvedTickets++
		case domain.StateClosed:
			stats.ClosedTickets++
		}
	}
	for _, tech := range s.technicians {
		if tech.Available {
			stats.AvailableTechnicians++
		} else {
			stats.BusyTechnicians++
		}
	}
	return stats
}

// TechnicianName looks up a technician's display name.
func (s *TicketSystem) TechnicianName(id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tech, ok := s.technicians[id]
	if !ok {
		return "", false
	}
	return tech.Name, true
}

// Ticket returns a copy of the ticket with id.
func (s *TicketSystem) Ticket(id int64) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return domain.Ticket{}, false
	}
	return ticket.Clone(), true
}

// Technician returns a copy of the technician with id.
func (s *TicketSystem) Technician(id int64) (domain.Technician, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tech, ok := s.technicians[id]
	if !ok {
		return domain.Technician{}, false
	}
	return tech.Clone(), true
}

// Client returns the client with id.
func (s *TicketSystem) Client(id int64) (domain.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[id]
	return client, ok
}

// Technicians lists technicians in id order.
func (s *TicketSystem) Technicians() []domain.Technician {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTechnicians()
}

// TicketsByState lists tickets in state, in id order.
func (s *TicketSystem) TicketsByState(state domain.TicketState) []domain.Ticket {
	return s.filterTickets(func(t *domain.Ticket) bool { return t.State == state })
}

// TicketsByCategory lists tickets in category, in id order.
func (s *TicketSystem) TicketsByCategory(category domain.Category) []domain.Ticket {
	return s.filterTickets(func(t *domain.Ticket) bool { return t.Category == category })
}

// AllTickets lists every ticket in id order.
func (s *TicketSystem) AllTickets() []domain.Ticket {
	return s.filterTickets(func(*domain.Ticket) bool { return true })
}

// PendingTickets lists queued tickets, head first.
func (s *TicketSystem) PendingTickets() []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.Ticket, 0, len(s.pending))
	for _, id := range s.pending {
		if ticket, ok := s.tickets[id]; ok {
			result = append(result, ticket.Clone())
		}
	}
	return result
}

// History returns the recorded state changes of a ticket, oldest first.
func (s *TicketSystem) History(ticketID int64) ([]domain.TicketHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[ticketID]; !ok {
		return nil, apperrors.NewTicketNotFound(ticketID)
	}
	entries := s.history[ticketID]
	result := make([]domain.TicketHistory, len(entries))
	copy(result, entries)
	return result, nil
}

func (s *TicketSystem) link(ticket *domain.Ticket, tech *domain.Technician) {
	techID := tech.ID
	ticketID := ticket.ID
	oldState := ticket.State

	ticket.TechnicianID = &techID
	ticket.State = domain.StateAssigned
	tech.AssignedTicketID = &ticketID
	tech.Available = false
	s.recordTransition(ticket, oldState)

	name := tech.Name
	s.notify("assigned", *ticket, func(o observer.Observer, t domain.Ticket) error {
		return o.OnAssigned(t, name)
	})
}

func (s *TicketSystem) recordTransition(ticket *domain.Ticket, from domain.TicketState) {
	entry := domain.TicketHistory{
		TicketID: ticket.ID,
		From:     from,
		To:       ticket.State,
		At:       s.clock(),
	}
	if ticket.TechnicianID != nil {
		id := *ticket.TechnicianID
		entry.TechnicianID = &id
	}
	s.history[ticket.ID] = append(s.history[ticket.ID], entry)
}

func (s *TicketSystem) removePending(ticketID int64) {
	for i, id := range s.pending {
		if id == ticketID {
			s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
			return
		}
	}
}

func (s *TicketSystem) sortedTechnicians() []domain.Technician {
	result := make([]domain.Technician, 0, len(s.technicians))
	for _, tech := range s.technicians {
		result = append(result, tech.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *TicketSystem) filterTickets(keep func(*domain.Ticket) bool) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []domain.Ticket{}
	for _, ticket := range s.tickets {
		if keep(ticket) {
			result = append(result, ticket.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// notify calls every observer in registration order. Each observer gets its own
// copy of the ticket; errors and panics are logged and the loop continues.
func (s *TicketSystem) notify(event string, ticket domain.Ticket, call func(observer.Observer, domain.Ticket) error) {
	for _, o := range s.observers {
		s.invokeObserver(event, o, ticket.Clone(), call)
	}
}

func (s *TicketSystem) invokeObserver(event string, o observer.Observer, ticket domain.Ticket, call func(observer.Observer, domain.Ticket) error) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("observer", fmt.Sprintf("%T", o)),
		zap.Int64("ticket_id", ticket.ID),
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("observer panicked", append(fields, zap.Any("panic", r))...)
		}
	}()
	if err := call(o, ticket); err != nil {
		s.logger.Warn("observer failed", append(fields, zap.Error(err))...)
	}
}
