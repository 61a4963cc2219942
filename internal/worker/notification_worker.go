package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
)

// EventSink receives events drained from the worker queue.
type EventSink interface {
	Deliver(ctx context.Context, event events.Event) error
}

// NotificationWorker delivers lifecycle events to a sink off the caller's
// goroutine.
type NotificationWorker struct {
	sink    EventSink
	logger  *zap.Logger
	queue   chan events.Event
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

// NewNotificationWorker creates a worker with a queue of size bufferSize.
func NewNotificationWorker(sink EventSink, logger *zap.Logger, bufferSize int, timeout time.Duration) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &NotificationWorker{
		sink:    sink,
		logger:  logger,
		queue:   make(chan events.Event, bufferSize),
		timeout: timeout,
	}
}

// Start launches the delivery loop. It runs until Stop is called.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			w.deliver(ctx, event)
		}
	}()
}

// Enqueue queues event without blocking. It reports false when the queue is
// full and the event was dropped.
func (w *NotificationWorker) Enqueue(event events.Event) bool {
	select {
	case w.queue <- event:
		return true
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return false
	}
}

// Stop closes the queue and waits for queued events to be delivered.
// Enqueue must not be called after Stop.
func (w *NotificationWorker) Stop() {
	w.once.Do(func() {
		close(w.queue)
	})
	w.wg.Wait()
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if w.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.sink.Deliver(ctx, event); err != nil {
		w.logger.Warn("event delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
