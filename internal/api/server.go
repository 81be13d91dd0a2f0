// Package api is the HTTP gateway the mobile UI talks to.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"medibook/internal/appointments"
	"medibook/internal/availability"
	"medibook/internal/datasource"
	"medibook/internal/events"
	"medibook/internal/providerapi"
	"medibook/internal/wizard"
)

// HTTPServer exposes the booking core over HTTP.
type HTTPServer struct {
	provider *providerapi.Client
	wizards  *wizard.Store
	appts    *appointments.Service
	bus      *events.Bus
	rdb      *redis.Client
	logger   *zerolog.Logger

	loc            *time.Location
	horizonMonths  int
	maxMonthsAhead int

	mu      sync.Mutex
	sources map[string]*datasource.AvailabilitySource
}

// Options configures the HTTP server.
type Options struct {
	Provider       *providerapi.Client
	Wizards        *wizard.Store
	Appointments   *appointments.Service
	Bus            *events.Bus
	Redis          *redis.Client
	Logger         *zerolog.Logger
	Location       *time.Location
	HorizonMonths  int
	MaxMonthsAhead int
}

// NewHTTPServer constructs the gateway.
func NewHTTPServer(opts Options) *HTTPServer {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	horizon := opts.HorizonMonths
	if horizon <= 0 {
		horizon = 6
	}
	maxAhead := opts.MaxMonthsAhead
	if maxAhead <= 0 {
		maxAhead = horizon
	}
	return &HTTPServer{
		provider:       opts.Provider,
		wizards:        opts.Wizards,
		appts:          opts.Appointments,
		bus:            opts.Bus,
		rdb:            opts.Redis,
		logger:         opts.Logger,
		loc:            loc,
		horizonMonths:  horizon,
		maxMonthsAhead: maxAhead,
		sources:        make(map[string]*datasource.AvailabilitySource),
	}
}

// Handler returns the routed HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/doctors", s.handleSearchDoctors)
	mux.HandleFunc("GET /api/v1/doctors/{id}", s.handleDoctor)
	mux.HandleFunc("GET /api/v1/doctors/{id}/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/v1/doctors/{id}/slots", s.handleSlots)

	mux.HandleFunc("POST /api/v1/wizard", s.handleWizardCreate)
	mux.HandleFunc("GET /api/v1/wizard/{sid}", s.handleWizardGet)
	mux.HandleFunc("POST /api/v1/wizard/{sid}/type", s.handleWizardType)
	mux.HandleFunc("POST /api/v1/wizard/{sid}/date", s.handleWizardDate)
	mux.HandleFunc("POST /api/v1/wizard/{sid}/time", s.handleWizardTime)
	mux.HandleFunc("POST /api/v1/wizard/{sid}/notes", s.handleWizardNotes)
	mux.HandleFunc("POST /api/v1/wizard/{sid}/next", s.handleWizardNext)
	mux.HandleFunc("POST /api/v1/wizard/{sid}/back", s.handleWizardBack)
	mux.HandleFunc("POST /api/v1/wizard/{sid}/submit", s.handleWizardSubmit)

	mux.HandleFunc("GET /api/v1/appointments", s.handleAppointments)
	mux.HandleFunc("GET /api/v1/appointments/export", s.handleAppointmentsExport)
	mux.HandleFunc("DELETE /api/v1/appointments/{id}", s.handleAppointmentCancel)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return mux
}

// sourceFor returns the availability source for a doctor, creating it on
// first use.
func (s *HTTPServer) sourceFor(doctorID string) *datasource.AvailabilitySource {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[doctorID]
	if !ok {
		src = datasource.NewAvailabilitySource(s.provider, doctorID, s.horizonMonths, s.loc, s.logger)
		s.sources[doctorID] = src
	}
	return src
}

// loadedIndex returns a loaded snapshot for the doctor, refreshing when
// nothing has been fetched yet or when force is set.
func (s *HTTPServer) loadedIndex(ctx context.Context, doctorID string, force bool) (*availability.Index, error) {
	src := s.sourceFor(doctorID)
	if ix, ok := src.Snapshot(); ok && !force {
		return ix, nil
	}
	if err := src.Refresh(ctx); err != nil {
		return nil, err
	}
	ix, _ := src.Snapshot()
	return ix, nil
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	if s.rdb != nil {
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis not ready", http.StatusServiceUnavailable)
			return
		}
	}
	if err := s.provider.HealthCheck(ctx); err != nil {
		http.Error(w, "provider api not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError translates boundary failures into user-displayable JSON.
// Nothing here is fatal; the worst case for the client is a retry affordance.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, providerapi.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     "the chosen slot was just booked, please pick another time",
			Kind:      "slot_no_longer_available",
			Retryable: true,
		})
	case errors.Is(err, providerapi.ErrValidationRejected):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Kind:  "validation_rejected",
		})
	case errors.Is(err, wizard.ErrIncompleteDraft):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "booking draft is incomplete",
			Kind:  "incomplete_draft",
		})
	case errors.Is(err, wizard.ErrSlotNotSelectable):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  "slot_not_selectable",
		})
	case errors.Is(err, wizard.ErrInvalidConsultationType):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  "invalid_consultation_type",
		})
	case errors.Is(err, providerapi.ErrFetchFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:     "could not reach the booking service, please retry",
			Kind:      "fetch_failed",
			Retryable: true,
		})
	default:
		if s.logger != nil {
			s.logger.Error().Err(err).Msg("unhandled gateway error")
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}
