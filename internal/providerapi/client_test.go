package providerapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook/internal/models"
)

func jsonHandler(t *testing.T, status int, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchAvailability(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"days":[
			{"date":"2026-02-16","is_working_day":true,"slots":[
				{"start_time":"09:00","end_time":"09:30","is_available":true,"consultation_type":"both"}
			]},
			{"date":"2026-02-17","is_blocked":true,"block_reason":"conference"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", time.Second)
	start := models.Date{Year: 2026, Month: time.February, Day: 16}
	days, err := c.FetchAvailability(context.Background(), "doc-1", start, start.AddDays(13))
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/doctors/doc-1/availability", gotPath)
	assert.Equal(t, "secret", gotKey)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-02-16", days[0].Date)
	require.Len(t, days[0].Slots, 1)
	assert.Equal(t, models.TimeOfDay{Hour: 9}, days[0].Slots[0].Start)
	assert.True(t, days[1].IsBlocked)
	assert.Equal(t, "conference", days[1].BlockReason)
}

func TestFetchAvailability_RangeChecks(t *testing.T) {
	c := New("http://unused", "", time.Second)
	start := models.Date{Year: 2026, Month: time.February, Day: 16}

	_, err := c.FetchAvailability(context.Background(), "doc-1", start, start.AddDays(-1))
	assert.Error(t, err, "end before start")

	_, err = c.FetchAvailability(context.Background(), "doc-1", start, start.AddDays(MaxAvailabilityDaysRange+1))
	assert.Error(t, err, "range over the cap")
}

func TestSubmitBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "doc-1", req.DoctorID)
		assert.Equal(t, models.PaymentCash, req.PaymentMethod)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"appointment_id":"appt-7","confirmation_code":"X7K2"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	conf, err := c.SubmitBooking(context.Background(), models.BookingRequest{
		DoctorID:         "doc-1",
		ConsultationType: models.ConsultationOnline,
		StartsAt:         time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
		PaymentMethod:    models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "appt-7", conf.AppointmentID)
	assert.Equal(t, "X7K2", conf.ConfirmationCode)
}

func TestSubmitBooking_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"conflict", http.StatusConflict, `{"error":"slot already booked"}`, ErrSlotTaken, ""},
		{"validation", http.StatusUnprocessableEntity, `{"error":"doctor does not accept online bookings"}`,
			ErrValidationRejected, "doctor does not accept online bookings"},
		{"validation without message", http.StatusUnprocessableEntity, `{}`, ErrValidationRejected, ""},
		{"server error", http.StatusInternalServerError, ``, ErrFetchFailed, ""},
		{"bad gateway", http.StatusBadGateway, ``, ErrFetchFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(t, tt.status, tt.body))
			defer srv.Close()

			c := New(srv.URL, "", time.Second)
			_, err := c.SubmitBooking(context.Background(), models.BookingRequest{})
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg, "backend message passed through verbatim")
			}
		})
	}
}

func TestFetchFailed_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, "", 200*time.Millisecond)
	_, err := c.FetchDoctor(context.Background(), "doc-1")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"days":[{"date":"2026-02-16","is_working_day":true}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	c.UseRedisCache(rdb, time.Minute)

	ctx := context.Background()
	start := models.Date{Year: 2026, Month: time.February, Day: 16}
	end := start.AddDays(6)

	days, err := c.FetchAvailability(ctx, "doc-1", start, end)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, int32(1), hits.Load())

	// Second fetch for the same window is served from Redis.
	days, err = c.FetchAvailability(ctx, "doc-1", start, end)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, int32(1), hits.Load())

	// Invalidation forces the next fetch back to the backend.
	c.InvalidateAvailability(ctx, "doc-1")
	_, err = c.FetchAvailability(ctx, "doc-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSearchDoctors(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"doctors":[
			{"id":"doc-1","name":"Dr. Weber","specialty":"cardiology","consultation_types":["both"]}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	doctors, err := c.SearchDoctors(context.Background(), SearchParams{
		Specialty:        "cardiology",
		ConsultationType: models.ConsultationOnline,
		Page:             2,
	})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Weber", doctors[0].Name)
	assert.True(t, doctors[0].Offers(models.ConsultationOnline))

	assert.Contains(t, gotQuery, "specialty=cardiology")
	assert.Contains(t, gotQuery, "consultation_type=online")
	assert.Contains(t, gotQuery, "page=2")
}

func TestCancelBooking(t *testing.T) {
	var gotMethod, gotPath, gotReason string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotReason = r.URL.Query().Get("reason")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	require.NoError(t, c.CancelBooking(context.Background(), "appt-7", "feeling better"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/appointments/appt-7", gotPath)
	assert.Equal(t, "feeling better", gotReason)
}

func TestListAppointments(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, `{"appointments":[
		{"id":"appt-1","doctor_id":"doc-1","doctor_name":"Dr. Weber","consultation_type":"in_person",
		 "starts_at":"2026-03-01T10:00:00Z","ends_at":"2026-03-01T10:30:00Z","status":"confirmed"}
	]}`))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	appts, err := c.ListAppointments(context.Background(), "pat-1")
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "appt-1", appts[0].ID)
	assert.Equal(t, models.StatusConfirmed, appts[0].Status)
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	assert.NoError(t, c.HealthCheck(context.Background()))

	bad := New(srv.URL+"/missing", "", time.Second)
	assert.ErrorIs(t, bad.HealthCheck(context.Background()), ErrFetchFailed)
}
