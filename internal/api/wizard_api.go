package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"medibook/internal/events"
	"medibook/internal/metrics"
	"medibook/internal/models"
	"medibook/internal/providerapi"
	"medibook/internal/wizard"
)

// WizardResponse is the wizard session view returned by every command.
type WizardResponse struct {
	ID    string      `json:"id"`
	Step  wizard.Step `json:"step"`
	Draft DraftView   `json:"draft"`
	// Exited is set when GoBack left the first step; the client should leave
	// the wizard.
	Exited bool `json:"exited,omitempty"`
}

// DraftView is the JSON shape of the accumulated draft.
type DraftView struct {
	ConsultationType models.ConsultationType `json:"consultation_type,omitempty"`
	SelectedDate     models.Date             `json:"selected_date,omitzero"`
	SelectedTime     *models.TimeOfDay       `json:"selected_time,omitempty"`
	PaymentMethod    models.PaymentMethod    `json:"payment_method"`
	Notes            string                  `json:"notes,omitempty"`
}

func wizardView(session *wizard.Session, exited bool) WizardResponse {
	draft := session.Draft()
	return WizardResponse{
		ID:   session.ID,
		Step: session.Step(),
		Draft: DraftView{
			ConsultationType: draft.ConsultationType,
			SelectedDate:     draft.SelectedDate,
			SelectedTime:     draft.SelectedTime,
			PaymentMethod:    draft.PaymentMethod,
			Notes:            draft.Notes,
		},
		Exited: exited,
	}
}

// handleWizardCreate starts a wizard session.
// POST /api/v1/wizard {"doctor_id": "...", "patient_id": "..."}
func (s *HTTPServer) handleWizardCreate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_create")

	var req struct {
		DoctorID  string `json:"doctor_id"`
		PatientID string `json:"patient_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DoctorID == "" {
		writeError(w, http.StatusBadRequest, "doctor_id is required")
		return
	}

	session := s.wizards.Create(req.DoctorID, req.PatientID)
	metrics.IncWizardSession("created")

	// Warm the availability snapshot in the background so the date step has
	// data by the time the user reaches it. The request context ends with
	// this handler, so the warm-up gets its own deadline.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		src := s.sourceFor(req.DoctorID)
		if _, loaded := src.Snapshot(); !loaded {
			_ = src.Refresh(ctx)
		}
	}()

	writeJSON(w, http.StatusCreated, wizardView(session, false))
}

func (s *HTTPServer) wizardSession(w http.ResponseWriter, r *http.Request) *wizard.Session {
	session := s.wizards.Get(r.PathValue("sid"))
	if session == nil {
		writeError(w, http.StatusNotFound, "wizard session not found or expired")
		return nil
	}
	return session
}

// handleWizardGet returns the current session state.
// GET /api/v1/wizard/{sid}
func (s *HTTPServer) handleWizardGet(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_get")
	if session := s.wizardSession(w, r); session != nil {
		writeJSON(w, http.StatusOK, wizardView(session, false))
	}
}

// handleWizardType records the consultation type.
// POST /api/v1/wizard/{sid}/type {"consultation_type": "online"}
func (s *HTTPServer) handleWizardType(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_type")
	session := s.wizardSession(w, r)
	if session == nil {
		return
	}

	var req struct {
		ConsultationType models.ConsultationType `json:"consultation_type"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := session.SelectType(req.ConsultationType); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardView(session, false))
}

// handleWizardDate records the chosen date, clearing any chosen time.
// POST /api/v1/wizard/{sid}/date {"date": "2026-03-01"}
func (s *HTTPServer) handleWizardDate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_date")
	session := s.wizardSession(w, r)
	if session == nil {
		return
	}

	var req struct {
		Date models.Date `json:"date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session.SelectDate(req.Date)
	writeJSON(w, http.StatusOK, wizardView(session, false))
}

// handleWizardTime records the chosen time; it must match a currently
// selectable slot for the session's date and type.
// POST /api/v1/wizard/{sid}/time {"time": "10:00"}
func (s *HTTPServer) handleWizardTime(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_time")
	session := s.wizardSession(w, r)
	if session == nil {
		return
	}

	var req struct {
		Time models.TimeOfDay `json:"time"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ix, err := s.loadedIndex(r.Context(), session.DoctorID, false)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := session.SelectTime(req.Time, ix); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardView(session, false))
}

// handleWizardNotes stores free-text notes.
// POST /api/v1/wizard/{sid}/notes {"notes": "..."}
func (s *HTTPServer) handleWizardNotes(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_notes")
	session := s.wizardSession(w, r)
	if session == nil {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session.SetNotes(req.Notes)
	writeJSON(w, http.StatusOK, wizardView(session, false))
}

// handleWizardNext advances the wizard when the step guard passes; otherwise
// the step stays put and the response carries advanced=false.
// POST /api/v1/wizard/{sid}/next
func (s *HTTPServer) handleWizardNext(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_next")
	session := s.wizardSession(w, r)
	if session == nil {
		return
	}

	advanced := session.GoNext()
	resp := struct {
		WizardResponse
		Advanced bool `json:"advanced"`
	}{wizardView(session, false), advanced}
	writeJSON(w, http.StatusOK, resp)
}

// handleWizardBack moves one step back, never clearing entered data.
// POST /api/v1/wizard/{sid}/back
func (s *HTTPServer) handleWizardBack(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_back")
	session := s.wizardSession(w, r)
	if session == nil {
		return
	}

	exited := session.GoBack()
	if exited {
		s.wizards.Delete(session.ID)
		metrics.IncWizardSession("exited")
	}
	writeJSON(w, http.StatusOK, wizardView(session, exited))
}

// handleWizardSubmit builds and submits the booking. On failure the session
// and its draft stay untouched so the user can retry without re-entering
// anything; a slot conflict additionally refetches availability.
// POST /api/v1/wizard/{sid}/submit
func (s *HTTPServer) handleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_submit")
	session := s.wizardSession(w, r)
	if session == nil {
		return
	}

	req, err := session.BuildRequest(s.loc)
	if err != nil {
		metrics.IncBookingSubmitted("incomplete")
		s.writeDomainError(w, err)
		return
	}

	confirmation, err := s.provider.SubmitBooking(r.Context(), req)
	if err != nil {
		s.submitFailed(r, session, err)
		s.writeDomainError(w, err)
		return
	}

	s.wizards.Delete(session.ID)
	metrics.IncBookingSubmitted("ok")
	if s.bus != nil {
		_ = s.bus.PublishJSON(events.TypeBookingSubmitted, confirmation)
	}
	if s.logger != nil {
		s.logger.Info().
			Str("doctor_id", session.DoctorID).
			Str("confirmation_code", confirmation.ConfirmationCode).
			Msg("booking submitted")
	}
	writeJSON(w, http.StatusCreated, confirmation)
}

// submitFailed keeps the draft intact and, on a slot conflict, drops the
// cached availability and refetches so the retry sees fresh slots.
func (s *HTTPServer) submitFailed(r *http.Request, session *wizard.Session, err error) {
	if !errors.Is(err, providerapi.ErrSlotTaken) {
		metrics.IncBookingSubmitted("error")
		return
	}

	metrics.IncBookingSubmitted("conflict")
	if s.bus != nil {
		_ = s.bus.PublishJSON(events.TypeBookingConflict, map[string]string{
			"doctor_id": session.DoctorID,
			"error":     err.Error(),
		})
	}
	s.provider.InvalidateAvailability(r.Context(), session.DoctorID)
	if refreshErr := s.sourceFor(session.DoctorID).Refresh(r.Context()); refreshErr != nil && s.logger != nil {
		s.logger.Warn().Err(refreshErr).Msg("availability refetch after slot conflict failed")
	}
}
