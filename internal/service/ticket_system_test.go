package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk/internal/assignment"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type recordingObserver struct {
	name   string
	events *[]string
	err    error
	panics bool
}

func (r *recordingObserver) record(event string) error {
	*r.events = append(*r.events, r.name+":"+event)
	if r.panics {
		panic("observer exploded")
	}
	return r.err
}

func (r *recordingObserver) OnCreated(domain.Ticket) error { return r.record("created") }

func (r *recordingObserver) OnAssigned(_ domain.Ticket, name string) error {
	return r.record("assigned:" + name)
}

func (r *recordingObserver) OnResolved(domain.Ticket) error { return r.record("resolved") }

// tamperingObserver tries to change the ticket it is handed.
type tamperingObserver struct{}

func (tamperingObserver) OnCreated(t domain.Ticket) error {
	t.State = domain.StateClosed
	return nil
}

func (tamperingObserver) OnAssigned(t domain.Ticket, _ string) error {
	*t.TechnicianID = 999
	return nil
}

func (tamperingObserver) OnResolved(t domain.Ticket) error {
	*t.ResolvedAt = time.Time{}
	return nil
}

// fixedStrategy always returns the same technician id.
type fixedStrategy struct{ id int64 }

func (f fixedStrategy) Name() string { return "fixed" }

func (f fixedStrategy) Select(domain.Ticket, []domain.Technician) (int64, bool) { return f.id, true }

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newSystem(t *testing.T) (*TicketSystem, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	s := NewTicketSystem(TicketSystemDependencies{Clock: c.Now})
	s.AddClient(domain.Client{ID: 100, Name: "Juan Perez", Email: "juan@test.com"})
	s.AddTechnician(domain.NewTechnician(10, "Maria", domain.CategoryNetwork))
	s.AddTechnician(domain.NewTechnician(11, "Pedro", domain.CategoryNetwork))
	s.AddTechnician(domain.NewTechnician(12, "Luis", domain.CategoryApplication))
	return s, c
}

func assertInvariants(t *testing.T, s *TicketSystem) {
	t.Helper()
	for _, tech := range s.Technicians() {
		assert.Equal(t, tech.AssignedTicketID == nil, tech.Available, "technician %d", tech.ID)
	}
	for _, ticket := range s.AllTickets() {
		assert.Equal(t, ticket.State.HasResolution(), ticket.ResolvedAt != nil, "ticket %d", ticket.ID)
	}
}

func TestCreateTicketUnknownClient(t *testing.T) {
	s, _ := newSystem(t)

	_, err := s.CreateTicket("vpn down", domain.CategoryNetwork, 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrClientNotFound)

	_, err = s.CreateTicket("vpn down", domain.Category("PLUMBING"), 999)
	assert.ErrorIs(t, err, apperrors.ErrClientNotFound)

	id, err := s.CreateTicket("vpn down", domain.CategoryNetwork, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, 1, s.Statistics().TotalTickets)
}

func TestCreateTicketInvalidCategory(t *testing.T) {
	s, _ := newSystem(t)

	_, err := s.CreateTicket("leaking pipe", domain.Category("PLUMBING"), 100)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	id, err := s.CreateTicket("vpn", domain.CategoryNetwork, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestCreateTicketQueuesFIFOAndNotifies(t *testing.T) {
	s, c := newSystem(t)
	var events []string
	s.AddObserver(&recordingObserver{name: "a", events: &events})
	s.AddObserver(&recordingObserver{name: "b", events: &events})

	first, err := s.CreateTicket("first", domain.CategoryNetwork, 100)
	require.NoError(t, err)
	second, err := s.CreateTicket("second", domain.CategoryHardware, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, []string{"a:created", "b:created", "a:created", "b:created"}, events)

	pending := s.PendingTickets()
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, second, pending[1].ID)

	ticket, ok := s.Ticket(first)
	require.True(t, ok)
	assert.Equal(t, domain.StateNew, ticket.State)
	assert.Equal(t, c.Now(), ticket.CreatedAt)
	assert.Nil(t, ticket.TechnicianID)
	assert.Nil(t, ticket.ResolvedAt)
}

func TestAssignNextTicketEmptyQueue(t *testing.T) {
	s, _ := newSystem(t)
	_, ok := s.AssignNextTicket(assignment.NewRoundRobin())
	assert.False(t, ok)
}

func TestAssignNextTicketDeclineKeepsHead(t *testing.T) {
	s, _ := newSystem(t)
	var events []string
	s.AddObserver(&recordingObserver{name: "a", events: &events})

	first, _ := s.CreateTicket("badge reader", domain.CategorySecurity, 100)
	_, _ = s.CreateTicket("vpn", domain.CategoryNetwork, 100)

	_, ok := s.AssignNextTicket(assignment.NewBySpecialty())
	assert.False(t, ok)

	pending := s.PendingTickets()
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, domain.StateNew, pending[0].State)
	assert.Equal(t, []string{"a:created", "a:created"}, events)

	id, ok := s.AssignNextTicket(assignment.NewRoundRobin())
	require.True(t, ok)
	assert.Equal(t, first, id)
	assertInvariants(t, s)
}

func TestAssignNextTicketLinksBothSides(t *testing.T) {
	s, _ := newSystem(t)
	var events []string
	s.AddObserver(&recordingObserver{name: "a", events: &events})

	ticketID, _ := s.CreateTicket("app crash", domain.CategoryApplication, 100)
	id, ok := s.AssignNextTicket(assignment.NewBySpecialty())
	require.True(t, ok)
	assert.Equal(t, ticketID, id)

	ticket, _ := s.Ticket(ticketID)
	assert.Equal(t, domain.StateAssigned, ticket.State)
	require.NotNil(t, ticket.TechnicianID)
	assert.Equal(t, int64(12), *ticket.TechnicianID)

	tech, _ := s.Technician(12)
	assert.False(t, tech.Available)
	require.NotNil(t, tech.AssignedTicketID)
	assert.Equal(t, ticketID, *tech.AssignedTicketID)

	assert.Empty(t, s.PendingTickets())
	assert.Equal(t, []string{"a:created", "a:assigned:Luis"}, events)
	assertInvariants(t, s)
}

func TestAssignNextTicketRejectsIneligibleSelection(t *testing.T) {
	s, _ := newSystem(t)
	_, _ = s.CreateTicket("one", domain.CategoryNetwork, 100)
	_, _ = s.CreateTicket("two", domain.CategoryNetwork, 100)

	_, ok := s.AssignNextTicket(fixedStrategy{id: 10})
	require.True(t, ok)

	_, ok = s.AssignNextTicket(fixedStrategy{id: 10})
	assert.False(t, ok)
	_, ok = s.AssignNextTicket(fixedStrategy{id: 404})
	assert.False(t, ok)
	assert.Len(t, s.PendingTickets(), 1)
	assertInvariants(t, s)
}

func TestUpdateTicketStateUnknownTicket(t *testing.T) {
	s, _ := newSystem(t)
	err := s.UpdateTicketState(42, domain.StateInProgress)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestUpdateTicketStateRejectsIllegalPairs(t *testing.T) {
	legal := map[[2]domain.TicketState]bool{
		{domain.StateAssigned, domain.StateInProgress}: true,
		{domain.StateInProgress, domain.StateResolved}: true,
		{domain.StateResolved, domain.StateClosed}:     true,
	}
	states := []domain.TicketState{domain.StateNew, domain.StateAssigned, domain.StateInProgress, domain.StateResolved, domain.StateClosed}

	for _, from := range states {
		for _, to := range states {
			if legal[[2]domain.TicketState{from, to}] {
				continue
			}
			s, _ := newSystem(t)
			id := ticketInState(t, s, from)
			before, _ := s.Ticket(id)

			err := s.UpdateTicketState(id, to)
			assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, "%s -> %s", from, to)

			after, _ := s.Ticket(id)
			assert.Equal(t, before, after, "%s -> %s", from, to)
			assertInvariants(t, s)
		}
	}
}

// ticketInState creates a ticket and drives it to state through legal steps.
func ticketInState(t *testing.T, s *TicketSystem, state domain.TicketState) int64 {
	t.Helper()
	id, err := s.CreateTicket("vpn", domain.CategoryNetwork, 100)
	require.NoError(t, err)
	path := []domain.TicketState{domain.StateAssigned, domain.StateInProgress, domain.StateResolved, domain.StateClosed}
	for _, next := range path {
		ticket, _ := s.Ticket(id)
		if ticket.State == state {
			break
		}
		if next == domain.StateAssigned {
			_, ok := s.AssignNextTicket(assignment.NewRoundRobin())
			require.True(t, ok)
			continue
		}
		require.NoError(t, s.UpdateTicketState(id, next))
	}
	ticket, _ := s.Ticket(id)
	require.Equal(t, state, ticket.State)
	return id
}

func TestResolveFreesTechnicianAndStampsTime(t *testing.T) {
	s, c := newSystem(t)
	var events []string
	s.AddObserver(&recordingObserver{name: "a", events: &events})

	id := ticketInState(t, s, domain.StateInProgress)
	c.Advance(7 * time.Minute)
	require.NoError(t, s.UpdateTicketState(id, domain.StateResolved))

	ticket, _ := s.Ticket(id)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, c.Now(), *ticket.ResolvedAt)

	tech, _ := s.Technician(*ticket.TechnicianID)
	assert.True(t, tech.Available)
	assert.Nil(t, tech.AssignedTicketID)
	assert.Equal(t, "a:resolved", events[len(events)-1])

	require.NoError(t, s.UpdateTicketState(id, domain.StateClosed))
	ticket, _ = s.Ticket(id)
	assert.Equal(t, domain.StateClosed, ticket.State)
	assert.Equal(t, c.Now(), *ticket.ResolvedAt)
	assertInvariants(t, s)
}

func TestFailingObserversDoNotAbortOrSkip(t *testing.T) {
	core, logs := zapobserver.New(zapcore.WarnLevel)
	s := NewTicketSystem(TicketSystemDependencies{Logger: zap.New(core)})
	s.AddClient(domain.Client{ID: 1, Name: "c"})
	s.AddTechnician(domain.NewTechnician(10, "Maria", domain.CategoryNetwork))

	var events []string
	s.AddObserver(&recordingObserver{name: "err", events: &events, err: errors.New("sink down")})
	s.AddObserver(&recordingObserver{name: "panic", events: &events, panics: true})
	s.AddObserver(&recordingObserver{name: "ok", events: &events})

	id, err := s.CreateTicket("vpn", domain.CategoryNetwork, 1)
	require.NoError(t, err)
	_, ok := s.AssignNextTicket(assignment.NewBySpecialty())
	require.True(t, ok)
	require.NoError(t, s.UpdateTicketState(id, domain.StateInProgress))
	require.NoError(t, s.UpdateTicketState(id, domain.StateResolved))

	assert.Equal(t, []string{
		"err:created", "panic:created", "ok:created",
		"err:assigned:Maria", "panic:assigned:Maria", "ok:assigned:Maria",
		"err:resolved", "panic:resolved", "ok:resolved",
	}, events)
	assert.Equal(t, 3, logs.FilterMessage("observer failed").Len())
	assert.Equal(t, 3, logs.FilterMessage("observer panicked").Len())
	assertInvariants(t, s)
}

func TestObserversCannotMutateStorage(t *testing.T) {
	s, _ := newSystem(t)
	s.AddObserver(tamperingObserver{})

	id := ticketInState(t, s, domain.StateResolved)
	ticket, _ := s.Ticket(id)
	assert.Equal(t, domain.StateResolved, ticket.State)
	assert.Equal(t, int64(10), *ticket.TechnicianID)
	assert.False(t, ticket.ResolvedAt.IsZero())
}

func TestRoundRobinEndToEnd(t *testing.T) {
	s, _ := newSystem(t)
	strategy := assignment.NewRoundRobin()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := s.CreateTicket("network outage", domain.CategoryNetwork, 100)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	wantTech := []int64{10, 11, 12}
	for i, want := range wantTech {
		id, ok := s.AssignNextTicket(strategy)
		require.True(t, ok)
		assert.Equal(t, ids[i], id)
		ticket, _ := s.Ticket(id)
		assert.Equal(t, want, *ticket.TechnicianID)
	}
	assertInvariants(t, s)

	for _, id := range ids {
		require.NoError(t, s.UpdateTicketState(id, domain.StateInProgress))
		require.NoError(t, s.UpdateTicketState(id, domain.StateResolved))
	}

	stats := s.Statistics()
	assert.Equal(t, domain.Statistics{
		TotalTickets:         3,
		PendingTickets:       0,
		InProgressTickets:    0,
		ResolvedTickets:      3,
		AvailableTechnicians: 3,
	}, stats)
	assert.Equal(t, stats, s.Statistics())
	assertInvariants(t, s)
}

func TestRoundRobinWrapsWhenLastTechnicianBusy(t *testing.T) {
	s, _ := newSystem(t)
	strategy := assignment.NewRoundRobin()
	for i := 0; i < 4; i++ {
		_, _ = s.CreateTicket("network outage", domain.CategoryNetwork, 100)
	}
	for i := 0; i < 3; i++ {
		_, ok := s.AssignNextTicket(strategy)
		require.True(t, ok)
	}
	// everyone is busy now
	_, ok := s.AssignNextTicket(strategy)
	assert.False(t, ok)

	require.NoError(t, s.UpdateTicketState(1, domain.StateInProgress))
	require.NoError(t, s.UpdateTicketState(1, domain.StateResolved))

	id, ok := s.AssignNextTicket(strategy)
	require.True(t, ok)
	assert.Equal(t, int64(4), id)
	ticket, _ := s.Ticket(id)
	assert.Equal(t, int64(10), *ticket.TechnicianID)
}

func TestAssignTicketManually(t *testing.T) {
	s, _ := newSystem(t)
	var events []string
	s.AddObserver(&recordingObserver{name: "a", events: &events})
	first, _ := s.CreateTicket("one", domain.CategoryNetwork, 100)
	second, _ := s.CreateTicket("two", domain.CategoryHardware, 100)

	require.NoError(t, s.AssignTicket(second, 12))

	pending := s.PendingTickets()
	require.Len(t, pending, 1)
	assert.Equal(t, first, pending[0].ID)
	ticket, _ := s.Ticket(second)
	assert.Equal(t, domain.StateAssigned, ticket.State)
	assert.Equal(t, "a:assigned:Luis", events[len(events)-1])

	assert.ErrorIs(t, s.AssignTicket(first, 12), apperrors.ErrTechnicianUnavailable)
	assert.ErrorIs(t, s.AssignTicket(first, 77), apperrors.ErrTechnicianNotFound)
	assert.ErrorIs(t, s.AssignTicket(77, 10), apperrors.ErrTicketNotFound)
	assert.ErrorIs(t, s.AssignTicket(second, 10), apperrors.ErrInvalidTransition)
	assert.Len(t, s.PendingTickets(), 1)
	assertInvariants(t, s)
}

func TestHistoryRecordsTransitions(t *testing.T) {
	s, _ := newSystem(t)
	id := ticketInState(t, s, domain.StateClosed)

	history, err := s.History(id)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.StateNew, history[0].From)
	assert.Equal(t, domain.StateAssigned, history[0].To)
	assert.Equal(t, domain.StateClosed, history[3].To)
	require.NotNil(t, history[0].TechnicianID)
	assert.Equal(t, int64(10), *history[0].TechnicianID)

	_, err = s.History(404)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestQueriesByStateAndCategory(t *testing.T) {
	s, _ := newSystem(t)
	_, _ = s.CreateTicket("vpn", domain.CategoryNetwork, 100)
	_, _ = s.CreateTicket("crash", domain.CategoryApplication, 100)
	_, _ = s.CreateTicket("wifi", domain.CategoryNetwork, 100)
	_, _ = s.AssignNextTicket(assignment.NewBySpecialty())

	network := s.TicketsByCategory(domain.CategoryNetwork)
	require.Len(t, network, 2)
	assert.Equal(t, int64(1), network[0].ID)
	assert.Equal(t, int64(3), network[1].ID)

	assert.Len(t, s.TicketsByState(domain.StateNew), 2)
	assigned := s.TicketsByState(domain.StateAssigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, int64(1), assigned[0].ID)
	assert.Empty(t, s.TicketsByState(domain.StateClosed))
}

func TestRegistrationOverwrites(t *testing.T) {
	s, _ := newSystem(t)
	s.AddTechnician(domain.NewTechnician(10, "Maria Renamed", domain.CategorySecurity))
	s.AddClient(domain.Client{ID: 100, Name: "Other"})

	name, ok := s.TechnicianName(10)
	require.True(t, ok)
	assert.Equal(t, "Maria Renamed", name)
	client, _ := s.Client(100)
	assert.Equal(t, "Other", client.Name)
	assert.Len(t, s.Technicians(), 3)

	_, ok = s.TechnicianName(404)
	assert.False(t, ok)
}

func TestAddTechnicianNormalizesAvailability(t *testing.T) {
	s, _ := newSystem(t)
	s.AddTechnician(domain.Technician{ID: 20, Name: "Ana", Specialty: domain.CategoryHardware})

	tech, ok := s.Technician(20)
	require.True(t, ok)
	assert.True(t, tech.Available)
	assertInvariants(t, s)
}

func TestResolveKeepsTechnicianOnNewerTicketAfterReregistration(t *testing.T) {
	s := NewTicketSystem(TicketSystemDependencies{})
	s.AddClient(domain.Client{ID: 100, Name: "Juan Perez", Email: "juan@test.com"})
	s.AddTechnician(domain.NewTechnician(10, "Maria", domain.CategoryNetwork))

	for i := 0; i < 3; i++ {
		_, err := s.CreateTicket("router down", domain.CategoryNetwork, 100)
		require.NoError(t, err)
	}
	require.NoError(t, s.AssignTicket(1, 10))
	require.NoError(t, s.UpdateTicketState(1, domain.StateInProgress))

	s.AddTechnician(domain.NewTechnician(10, "Maria", domain.CategoryNetwork))
	require.NoError(t, s.AssignTicket(2, 10))
	require.NoError(t, s.UpdateTicketState(1, domain.StateResolved))

	tech, ok := s.Technician(10)
	require.True(t, ok)
	assert.False(t, tech.Available)
	require.NotNil(t, tech.AssignedTicketID)
	assert.Equal(t, int64(2), *tech.AssignedTicketID)

	_, assigned := s.AssignNextTicket(assignment.NewRoundRobin())
	assert.False(t, assigned)
	ticket, _ := s.Ticket(3)
	assert.Equal(t, domain.StateNew, ticket.State)
	assertInvariants(t, s)
}
