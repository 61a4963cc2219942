// Package assignment holds the policies that pick a technician for a ticket.
package assignment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Strategy selects an eligible technician for a ticket. Implementations
// receive copies and must not rely on mutating them; linking the ticket and
// technician is the caller's job. ok is false when no technician fits.
type Strategy interface {
	Name() string
	Select(ticket domain.Ticket, technicians []domain.Technician) (technicianID int64, ok bool)
}

const (
	NameBySpecialty = "by_specialty"
	NameRoundRobin  = "round_robin"
)

// BySpecialty picks the first eligible technician whose specialty matches the
// ticket category, in the order the pool is given.
type BySpecialty struct{}

// NewBySpecialty returns the specialty strategy.
func NewBySpecialty() *BySpecialty {
	return &BySpecialty{}
}

func (s *BySpecialty) Name() string { return NameBySpecialty }

func (s *BySpecialty) Select(ticket domain.Ticket, technicians []domain.Technician) (int64, bool) {
	for _, tech := range technicians {
		if tech.Specialty == ticket.Category && tech.CanAcceptTicket() {
			return tech.ID, true
		}
	}
	return 0, false
}

// RoundRobin cycles through technicians in id order regardless of category.
// The cursor is the id of the last technician it returned.
type RoundRobin struct {
	lastID int64
}

// NewRoundRobin returns a strategy with its cursor at 0.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

func (s *RoundRobin) Name() string { return NameRoundRobin }

// Cursor returns the id of the last technician selected.
func (s *RoundRobin) Cursor() int64 {
	return s.lastID
}

func (s *RoundRobin) Select(_ domain.Ticket, technicians []domain.Technician) (int64, bool) {
	if len(technicians) == 0 {
		return 0, false
	}
	sorted := make([]domain.Technician, len(technicians))
	copy(sorted, technicians)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	next, found := firstEligible(sorted, func(t domain.Technician) bool { return t.ID > s.lastID })
	if !found {
		next, found = firstEligible(sorted, func(domain.Technician) bool { return true })
	}
	if !found {
		return 0, false
	}
	s.lastID = next.ID
	return next.ID, true
}

func firstEligible(sorted []domain.Technician, accept func(domain.Technician) bool) (domain.Technician, bool) {
	for _, tech := range sorted {
		if accept(tech) && tech.CanAcceptTicket() {
			return tech, true
		}
	}
	return domain.Technician{}, false
}

// New builds a strategy by name.
func New(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameBySpecialty:
		return NewBySpecialty(), nil
	case NameRoundRobin:
		return NewRoundRobin(), nil
	default:
		return nil, fmt.Errorf("unknown assignment strategy %q", name)
	}
}

// Registry holds one long-lived instance per strategy so stateful strategies
// keep their position across requests.
type Registry struct {
	strategies  map[string]Strategy
	defaultName string
}

// NewRegistry builds every known strategy. defaultName is used when a caller
// does not name one.
func NewRegistry(defaultName string) (*Registry, error) {
	r := &Registry{
		strategies: map[string]Strategy{
			NameBySpecialty: NewBySpecialty(),
			NameRoundRobin:  NewRoundRobin(),
		},
		defaultName: strings.ToLower(strings.TrimSpace(defaultName)),
	}
	if _, ok := r.strategies[r.defaultName]; !ok {
		return nil, fmt.Errorf("unknown assignment strategy %q", defaultName)
	}
	return r, nil
}

// Get returns the strategy registered under name, or the default for "".
func (r *Registry) Get(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = r.defaultName
	}
	s, ok := r.strategies[key]
	if !ok {
		return nil, fmt.Errorf("unknown assignment strategy %q", name)
	}
	return s, nil
}
