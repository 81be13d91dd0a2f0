package models

// ConsultationType describes how an appointment is held.
type ConsultationType string

const (
	ConsultationInPerson ConsultationType = "in_person"
	ConsultationOnline   ConsultationType = "online"
	ConsultationBoth     ConsultationType = "both"
)

// Valid reports whether the value is one of the known consultation types.
func (c ConsultationType) Valid() bool {
	switch c {
	case ConsultationInPerson, ConsultationOnline, ConsultationBoth:
		return true
	}
	return false
}

// Matches reports whether a slot with type c can serve a booking of requested type.
// "both" matches either side.
func (c ConsultationType) Matches(requested ConsultationType) bool {
	return c == requested || c == ConsultationBoth || requested == ConsultationBoth
}

// TimeSlot is one bookable or booked interval within a day.
type TimeSlot struct {
	Start         TimeOfDay        `json:"start_time"`
	End           TimeOfDay        `json:"end_time"`
	Available     bool             `json:"is_available"`
	Booked        bool             `json:"is_booked"`
	Type          ConsultationType `json:"consultation_type"`
	AppointmentID string           `json:"appointment_id,omitempty"` // set iff Booked
}

// Selectable reports whether the slot is eligible for a new booking of the
// requested consultation type. A booked slot is never selectable, regardless
// of its availability flag.
func (s TimeSlot) Selectable(requested ConsultationType) bool {
	return s.Available && !s.Booked && s.Type.Matches(requested)
}

// AvailabilityDay is one calendar date's full bookability record.
type AvailabilityDay struct {
	Date        Date       `json:"date"`
	WorkingDay  bool       `json:"is_working_day"`
	Blocked     bool       `json:"is_blocked"`
	BlockReason string     `json:"block_reason,omitempty"` // set only when Blocked
	Slots       []TimeSlot `json:"slots"`                  // ordered by start time ascending
}

// HasOpenSlot reports whether any slot is open for booking irrespective of
// consultation type.
func (d AvailabilityDay) HasOpenSlot() bool {
	for _, s := range d.Slots {
		if s.Available && !s.Booked {
			return true
		}
	}
	return false
}
