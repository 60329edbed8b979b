package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribedType(t *testing.T) {
	bus := NewBus()

	var ready, failed []Event
	bus.Subscribe(JobReady, func(_ context.Context, ev Event) error {
		ready = append(ready, ev)
		return nil
	})
	bus.Subscribe(JobFailed, func(_ context.Context, ev Event) error {
		failed = append(failed, ev)
		return nil
	})

	bus.Publish(context.Background(), Event{
		Type:    JobReady,
		Payload: JobEvent{JobID: "j1", SessionID: "s1"},
	})

	require.Len(t, ready, 1)
	assert.Empty(t, failed)
	assert.False(t, ready[0].Timestamp.IsZero())

	payload, ok := ready[0].Payload.(JobEvent)
	require.True(t, ok)
	assert.Equal(t, "j1", payload.JobID)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	first, second := 0, 0
	stop := bus.Subscribe(JobCreated, func(_ context.Context, _ Event) error {
		first++
		return nil
	})
	bus.Subscribe(JobCreated, func(_ context.Context, _ Event) error {
		second++
		return nil
	})

	bus.Publish(context.Background(), Event{Type: JobCreated})
	stop()
	bus.Publish(context.Background(), Event{Type: JobCreated})

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}
