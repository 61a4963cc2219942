package observer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Logger emits one log line per lifecycle event.
type Logger struct {
	name   string
	logger *zap.Logger
	now    func() time.Time
}

// NewLogger builds a Logger observer tagged with name.
func NewLogger(name string, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{name: name, logger: logger, now: time.Now}
}

func (l *Logger) OnCreated(ticket domain.Ticket) error {
	l.emit("created", FormatCreated(l.name, ticket), ticket)
	return nil
}

func (l *Logger) OnAssigned(ticket domain.Ticket, technicianName string) error {
	l.emit("assigned", FormatAssigned(l.name, ticket, technicianName), ticket, zap.String("technician", technicianName))
	return nil
}

func (l *Logger) OnResolved(ticket domain.Ticket) error {
	minutes := ElapsedMinutes(ticket, l.now())
	l.emit("resolved", FormatResolved(l.name, ticket, minutes), ticket, zap.Int64("elapsed_minutes", minutes))
	return nil
}

func (l *Logger) emit(event, line string, ticket domain.Ticket, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("observer", l.name),
		zap.String("event", event),
		zap.Int64("ticket_id", ticket.ID),
	}, fields...)
	l.logger.Info(line, fields...)
}

// FormatCreated renders the creation line.
func FormatCreated(name string, ticket domain.Ticket) string {
	return fmt.Sprintf("[%s] ticket #%d created: %s", name, ticket.ID, ticket.Description)
}

// FormatAssigned renders the assignment line.
func FormatAssigned(name string, ticket domain.Ticket, technicianName string) string {
	return fmt.Sprintf("[%s] ticket #%d assigned to: %s", name, ticket.ID, technicianName)
}

// FormatResolved renders the resolution line.
func FormatResolved(name string, ticket domain.Ticket, minutes int64) string {
	return fmt.Sprintf("[%s] ticket #%d resolved in %d minutes", name, ticket.ID, minutes)
}

// ElapsedMinutes returns whole minutes between creation and resolution.
// Partial minutes are dropped.
func ElapsedMinutes(ticket domain.Ticket, now time.Time) int64 {
	return int64(ticket.Elapsed(now) / time.Minute)
}
