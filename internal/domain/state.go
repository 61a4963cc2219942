package domain

import (
	"fmt"
	"strings"
)

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	StateNew        TicketState = "NEW"
	StateAssigned   TicketState = "ASSIGNED"
	StateInProgress TicketState = "IN_PROGRESS"
	StateResolved   TicketState = "RESOLVED"
	StateClosed     TicketState = "CLOSED"
)

// Valid reports whether s is one of the known states.
func (s TicketState) Valid() bool {
	switch s {
	case StateNew, StateAssigned, StateInProgress, StateResolved, StateClosed:
		return true
	}
	return false
}

// HasResolution reports whether a ticket in s carries a resolution timestamp.
func (s TicketState) HasResolution() bool {
	return s == StateResolved || s == StateClosed
}

// ParseState parses a state name case-insensitively. Spaces and dashes are
// accepted in place of underscores.
func ParseState(raw string) (TicketState, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	s := TicketState(normalized)
	if !s.Valid() {
		return "", fmt.Errorf("unknown state %q", raw)
	}
	return s, nil
}
