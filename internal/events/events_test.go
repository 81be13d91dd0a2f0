package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribersOfType(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(TypeBookingSubmitted, func(e Event) error {
		got = append(got, e)
		return nil
	})
	otherFired := false
	bus.Subscribe(TypeBookingConflict, func(Event) error {
		otherFired = true
		return nil
	})

	bus.Publish(Event{Type: TypeBookingSubmitted, Payload: []byte(`{"appointment_id":"appt-1"}`)})

	require.Len(t, got, 1)
	assert.Equal(t, TypeBookingSubmitted, got[0].Type)
	assert.False(t, got[0].CreatedAt.IsZero(), "timestamp is stamped on publish")
	assert.False(t, otherFired)
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := NewBus()
	bus.Publish(Event{Type: TypeAppointmentCancelled})
}

func TestMultipleHandlersRunInOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe(TypeBookingConflict, func(Event) error {
			order = append(order, i)
			return nil
		})
	}

	bus.Publish(Event{Type: TypeBookingConflict})
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestPublishJSON(t *testing.T) {
	bus := NewBus()

	var payload map[string]string
	bus.Subscribe(TypeAppointmentCancelled, func(e Event) error {
		return json.Unmarshal(e.Payload, &payload)
	})

	err := bus.PublishJSON(TypeAppointmentCancelled, map[string]string{"appointment_id": "appt-9"})
	require.NoError(t, err)
	assert.Equal(t, "appt-9", payload["appointment_id"])

	err = bus.PublishJSON(TypeAppointmentCancelled, make(chan int))
	assert.Error(t, err, "unmarshalable payload surfaces instead of publishing")
}

func TestExplicitCreatedAtIsKept(t *testing.T) {
	bus := NewBus()

	at := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	var got Event
	bus.Subscribe(TypeBookingSubmitted, func(e Event) error {
		got = e
		return nil
	})

	bus.Publish(Event{Type: TypeBookingSubmitted, CreatedAt: at})
	assert.True(t, got.CreatedAt.Equal(at))
}
