package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medibook/internal/events"
	"medibook/internal/models"
)

var testLogger = zerolog.Nop()

type mockClient struct {
	mock.Mock
}

func (m *mockClient) ListAppointments(ctx context.Context, patientID string) ([]models.Appointment, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *mockClient) CancelBooking(ctx context.Context, appointmentID, reason string) error {
	args := m.Called(ctx, appointmentID, reason)
	return args.Error(0)
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func appt(id string, startsAt time.Time, status string) models.Appointment {
	return models.Appointment{
		ID:         id,
		DoctorID:   "doc-1",
		DoctorName: "Dr. Weber",
		StartsAt:   startsAt,
		EndsAt:     startsAt.Add(30 * time.Minute),
		Status:     status,
	}
}

func TestUpcomingPastSplit(t *testing.T) {
	now := fixedNow()
	all := []models.Appointment{
		appt("late", now.Add(72*time.Hour), models.StatusConfirmed),
		appt("old", now.Add(-48*time.Hour), models.StatusCompleted),
		appt("soon", now.Add(2*time.Hour), models.StatusConfirmed),
		appt("dropped", now.Add(24*time.Hour), models.StatusCancelled),
		appt("older", now.Add(-96*time.Hour), models.StatusCompleted),
		appt("boundary", now, models.StatusConfirmed),
	}

	client := new(mockClient)
	client.On("ListAppointments", mock.Anything, "pat-1").Return(all, nil)

	svc := NewService(client, nil, &testLogger)
	svc.now = fixedNow

	upcoming, err := svc.Upcoming(context.Background(), "pat-1")
	require.NoError(t, err)
	ids := make([]string, 0, len(upcoming))
	for _, a := range upcoming {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"boundary", "soon", "late"}, ids,
		"soonest first, cancelled excluded, starts-at-now counts as upcoming")

	past, err := svc.Past(context.Background(), "pat-1")
	require.NoError(t, err)
	ids = ids[:0]
	for _, a := range past {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"old", "older"}, ids, "most recent first")
}

func TestUpcomingPropagatesError(t *testing.T) {
	client := new(mockClient)
	client.On("ListAppointments", mock.Anything, "pat-1").Return(nil, errors.New("backend down"))

	svc := NewService(client, nil, &testLogger)
	_, err := svc.Upcoming(context.Background(), "pat-1")
	assert.Error(t, err)
}

func TestCancelPublishesEvent(t *testing.T) {
	client := new(mockClient)
	client.On("CancelBooking", mock.Anything, "appt-7", "feeling better").Return(nil)

	bus := events.NewBus()
	var published []events.Event
	bus.Subscribe(events.TypeAppointmentCancelled, func(e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := NewService(client, bus, &testLogger)
	require.NoError(t, svc.Cancel(context.Background(), "appt-7", "feeling better"))

	require.Len(t, published, 1)
	assert.Contains(t, string(published[0].Payload), "appt-7")
	client.AssertExpectations(t)
}

func TestCancelFailureSkipsEvent(t *testing.T) {
	client := new(mockClient)
	client.On("CancelBooking", mock.Anything, "appt-7", "").Return(errors.New("cancellation window passed"))

	bus := events.NewBus()
	fired := false
	bus.Subscribe(events.TypeAppointmentCancelled, func(events.Event) error {
		fired = true
		return nil
	})

	svc := NewService(client, bus, &testLogger)
	err := svc.Cancel(context.Background(), "appt-7", "")
	assert.EqualError(t, err, "cancellation window passed", "backend message propagates verbatim")
	assert.False(t, fired)
}

func TestPaginate(t *testing.T) {
	items := make([]models.Appointment, 10)
	for i := range items {
		items[i].ID = string(rune('a' + i))
	}

	p := Paginate(items, 0, 4)
	assert.Len(t, p.Items, 4)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 10, p.Total)

	p = Paginate(items, 2, 4)
	assert.Len(t, p.Items, 2, "last page holds the remainder")
	assert.Equal(t, "i", p.Items[0].ID)

	p = Paginate(items, 5, 4)
	assert.Empty(t, p.Items, "page beyond the end is empty, not an error")

	p = Paginate(items, -1, 4)
	assert.Equal(t, 0, p.Page, "negative page clamps to the first")

	p = Paginate(nil, 0, 4)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)
}
