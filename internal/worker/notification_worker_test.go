package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk/internal/events"
)

type memorySink struct {
	mu     sync.Mutex
	got    []string
	failOn string
}

func (m *memorySink) Deliver(_ context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, event.ID)
	if event.ID == m.failOn {
		return errors.New("sink rejected")
	}
	return nil
}

func TestWorkerDeliversInOrder(t *testing.T) {
	sink := &memorySink{failOn: "b"}
	core, logs := zapobserver.New(zapcore.WarnLevel)
	w := NewNotificationWorker(sink, zap.New(core), 8, 0)
	w.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, w.Enqueue(events.Event{ID: id, Type: events.EventTicketCreated}))
	}
	w.Stop()

	assert.Equal(t, []string{"a", "b", "c"}, sink.got)
	assert.Equal(t, 1, logs.FilterMessage("event delivery failed").Len())
}

func TestWorkerDropsWhenFull(t *testing.T) {
	sink := &memorySink{}
	w := NewNotificationWorker(sink, nil, 1, 0)

	assert.True(t, w.Enqueue(events.Event{ID: "a"}))
	assert.False(t, w.Enqueue(events.Event{ID: "b"}))

	w.Start(context.Background())
	w.Stop()
	w.Stop()
	assert.Equal(t, []string{"a"}, sink.got)
}
