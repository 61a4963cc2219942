package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
)

func sampleEvent() events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketCreated,
		TicketID:  1,
		Timestamp: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		Payload: events.TicketCreatedPayload{
			ClientID:    100,
			Category:    domain.CategoryNetwork,
			Description: "vpn down",
		},
	}
}

func TestRedisPublisherDeliver(t *testing.T) {
	db, mock := redismock.NewClientMock()
	publisher := NewRedisPublisher(db, "helpdesk.events")
	event := sampleEvent()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish("helpdesk.events", string(body)).SetVal(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, publisher.Deliver(ctx, event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisherDeliverError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	publisher := NewRedisPublisher(db, "helpdesk.events")
	event := sampleEvent()
	body, _ := json.Marshal(event)

	mock.ExpectPublish("helpdesk.events", string(body)).SetErr(errors.New("connection refused"))

	err := publisher.Deliver(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evt-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPingWithoutClient(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))
	r.Close()
}
