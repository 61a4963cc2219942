package observer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// StatsSnapshot holds the counters at one point in time.
type StatsSnapshot struct {
	Created  int64 `json:"created"`
	Assigned int64 `json:"assigned"`
	Resolved int64 `json:"resolved"`
}

// StatsCounter counts lifecycle events.
type StatsCounter struct {
	mu       sync.Mutex
	created  int64
	assigned int64
	resolved int64
}

// NewStatsCounter initializes counters at zero.
func NewStatsCounter() *StatsCounter {
	return &StatsCounter{}
}

func (s *StatsCounter) OnCreated(domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	return nil
}

func (s *StatsCounter) OnAssigned(domain.Ticket, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigned++
	return nil
}

func (s *StatsCounter) OnResolved(domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved++
	return nil
}

// Snapshot returns the current counters.
func (s *StatsCounter) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{Created: s.created, Assigned: s.assigned, Resolved: s.resolved}
}

// Display renders the counters as text.
func (s *StatsCounter) Display() string {
	snap := s.Snapshot()
	var b strings.Builder
	b.WriteString("=== observer statistics ===\n")
	fmt.Fprintf(&b, "  tickets created:  %d\n", snap.Created)
	fmt.Fprintf(&b, "  tickets assigned: %d\n", snap.Assigned)
	fmt.Fprintf(&b, "  tickets resolved: %d\n", snap.Resolved)
	return b.String()
}
