package availability

import "medibook/internal/models"

// Status classifies a calendar date for the booking calendar.
type Status string

const (
	StatusPast        Status = "past"
	StatusBlocked     Status = "blocked"
	StatusFull        Status = "full"
	StatusUnavailable Status = "unavailable"
	StatusAvailable   Status = "available"
	StatusUnknown     Status = "unknown"
)

// Classify maps a date to exactly one status. Precedence, first match wins:
// past, unknown (index not loaded), unavailable (no entry), blocked, full,
// available. Pure function of its inputs; recompute whenever the index or
// today changes instead of caching.
func Classify(date models.Date, ix *Index, today models.Date) Status {
	if date.Before(today) {
		return StatusPast
	}
	if ix == nil {
		return StatusUnknown
	}
	day, ok := ix.Lookup(date)
	if !ok {
		return StatusUnavailable
	}
	if day.Blocked {
		return StatusBlocked
	}
	if !day.HasOpenSlot() {
		return StatusFull
	}
	return StatusAvailable
}

// SelectableInCalendar reports whether the calendar lets the user tap the
// date. Unknown and unavailable stay selectable on purpose: the real
// rejection is deferred to slot-selection time once the fetch has resolved.
func (s Status) SelectableInCalendar() bool {
	switch s {
	case StatusPast, StatusBlocked, StatusFull:
		return false
	}
	return true
}
