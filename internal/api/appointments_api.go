package api

import (
	"bytes"
	"net/http"
	"strconv"

	"medibook/internal/appointments"
	"medibook/internal/metrics"
	"medibook/internal/models"
)

// handleAppointments lists a patient's appointments.
// GET /api/v1/appointments?patient_id=&scope=upcoming|past&page=&page_size=
func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments")

	q := r.URL.Query()
	patientID := q.Get("patient_id")
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	items, err := s.fetchScoped(r, patientID, q.Get("scope"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	page := 0
	if v := q.Get("page"); v != "" {
		parsed, perr := strconv.Atoi(v)
		if perr != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = parsed
	}
	perPage := 0
	if v := q.Get("page_size"); v != "" {
		parsed, perr := strconv.Atoi(v)
		if perr != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		perPage = parsed
	}

	if items == nil {
		items = []models.Appointment{}
	}
	writeJSON(w, http.StatusOK, appointments.Paginate(items, page, perPage))
}

func (s *HTTPServer) fetchScoped(r *http.Request, patientID, scope string) ([]models.Appointment, error) {
	switch scope {
	case "past":
		return s.appts.Past(r.Context(), patientID)
	default:
		return s.appts.Upcoming(r.Context(), patientID)
	}
}

// handleAppointmentCancel cancels an appointment. Backend constraint
// violations (e.g. cancellation window) come back as 422 with the backend's
// message verbatim.
// DELETE /api/v1/appointments/{id}?reason=
func (s *HTTPServer) handleAppointmentCancel(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointment_cancel")

	id := r.PathValue("id")
	if err := s.appts.Cancel(r.Context(), id, r.URL.Query().Get("reason")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAppointmentsExport streams the appointment list as an Excel file.
// GET /api/v1/appointments/export?patient_id=&scope=
func (s *HTTPServer) handleAppointmentsExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments_export")

	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	items, err := s.fetchScoped(r, patientID, r.URL.Query().Get("scope"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := appointments.ExportExcel(&buf, items); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}
