package api

import (
	"net/http"
	"strconv"
	"time"

	"medibook/internal/availability"
	"medibook/internal/calendar"
	"medibook/internal/metrics"
	"medibook/internal/models"
	"medibook/internal/providerapi"
)

// CalendarCell is one grid cell with its derived display status.
type CalendarCell struct {
	Date       models.Date         `json:"date,omitzero"`
	Blank      bool                `json:"blank,omitempty"`
	Status     availability.Status `json:"status,omitempty"`
	Selectable bool                `json:"selectable"`
}

// CalendarResponse is the month view for the booking calendar.
type CalendarResponse struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	HasPrev bool           `json:"has_prev"`
	HasNext bool           `json:"has_next"`
	Cells   []CalendarCell `json:"cells"`
}

// handleCalendar renders a month grid with per-date status.
// GET /api/v1/doctors/{id}/calendar?year=2026&month=3
func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar")
	doctorID := r.PathValue("id")

	today := models.Today(s.loc)
	year, month, err := s.monthParams(r, today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ix, err := s.loadedIndex(r.Context(), doctorID, r.URL.Query().Get("refresh") == "true")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Out-of-range months settle on the nearest bound instead of failing.
	nav := calendar.NewNavigator(today, today, s.maxMonthsAhead)
	nav.Goto(year, time.Month(month))
	year, m := nav.Current()
	month = int(m)

	cells := make([]CalendarCell, 0, 37)
	for _, cell := range nav.Grid() {
		if cell.Blank {
			cells = append(cells, CalendarCell{Blank: true})
			continue
		}
		status := availability.Classify(cell.Date, ix, today)
		cells = append(cells, CalendarCell{
			Date:       cell.Date,
			Status:     status,
			Selectable: status.SelectableInCalendar(),
		})
	}

	writeJSON(w, http.StatusOK, CalendarResponse{
		Year:    year,
		Month:   month,
		HasPrev: nav.CanPrev(),
		HasNext: nav.CanNext(),
		Cells:   cells,
	})
}

func (s *HTTPServer) monthParams(r *http.Request, today models.Date) (int, int, error) {
	year := today.Year
	month := int(today.Month)

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, errInvalidParam("year")
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, errInvalidParam("month")
		}
		month = parsed
	}
	return year, month, nil
}

// SlotsResponse is the grouped time picker payload. Groups omit empty
// day-parts entirely; an empty Slots list is the explicit "no slots" state.
type SlotsResponse struct {
	Date   models.Date              `json:"date"`
	Groups []availability.SlotGroup `json:"groups"`
	Total  int                      `json:"total"`
}

// handleSlots returns the selectable slots for a date, grouped for display.
// GET /api/v1/doctors/{id}/slots?date=2026-02-16&type=online
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	doctorID := r.PathValue("id")

	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}
	requested := models.ConsultationType(r.URL.Query().Get("type"))
	if !requested.Valid() {
		writeError(w, http.StatusBadRequest, "invalid consultation type")
		return
	}

	ix, err := s.loadedIndex(r.Context(), doctorID, false)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	slots := availability.SelectableSlots(ix, date, requested)
	groups := availability.GroupSlots(slots)
	if groups == nil {
		groups = []availability.SlotGroup{}
	}

	writeJSON(w, http.StatusOK, SlotsResponse{
		Date:   date,
		Groups: groups,
		Total:  len(slots),
	})
}

// handleDoctor returns a doctor profile.
// GET /api/v1/doctors/{id}
func (s *HTTPServer) handleDoctor(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("doctor")

	profile, err := s.provider.FetchDoctor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleSearchDoctors runs a filtered doctor search.
// GET /api/v1/doctors?q=&specialty=&city=&type=&max_fee=&page=&page_size=
func (s *HTTPServer) handleSearchDoctors(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("doctors_search")

	q := r.URL.Query()
	params := providerapi.SearchParams{
		Query:     q.Get("q"),
		Specialty: q.Get("specialty"),
		City:      q.Get("city"),
	}
	if v := q.Get("type"); v != "" {
		ct := models.ConsultationType(v)
		if !ct.Valid() {
			writeError(w, http.StatusBadRequest, "invalid consultation type")
			return
		}
		params.ConsultationType = ct
	}
	if v := q.Get("max_fee"); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fee < 0 {
			writeError(w, http.StatusBadRequest, "invalid max_fee")
			return
		}
		params.MaxFee = fee
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		params.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		params.PageSize = size
	}

	doctors, err := s.provider.SearchDoctors(r.Context(), params)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if doctors == nil {
		doctors = []models.DoctorProfile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": doctors})
}

type paramError string

func (e paramError) Error() string { return "invalid " + string(e) }

func errInvalidParam(name string) error { return paramError(name) }
