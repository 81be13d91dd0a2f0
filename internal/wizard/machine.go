// Package wizard implements the five-step booking dialog state machine.
package wizard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"medibook/internal/availability"
	"medibook/internal/models"
)

// Step represents the current step of the booking wizard.
type Step string

const (
	StepType    Step = "type"
	StepDate    Step = "date"
	StepTime    Step = "time"
	StepPayment Step = "payment"
	StepConfirm Step = "confirm"
)

// stepOrder is the linear progression of the wizard. No branching, no skipping.
var stepOrder = []Step{StepType, StepDate, StepTime, StepPayment, StepConfirm}

var (
	// ErrIncompleteDraft is returned when a booking request is built without
	// all required selections. Reaching confirm through the guarded machine
	// should make this unreachable; the builder still revalidates.
	ErrIncompleteDraft = errors.New("booking draft is incomplete")

	// ErrSlotNotSelectable is returned when the chosen time does not match a
	// currently selectable slot for the chosen date.
	ErrSlotNotSelectable = errors.New("slot is not selectable")

	// ErrInvalidConsultationType is returned for an unknown consultation type
	// or one the patient cannot request directly.
	ErrInvalidConsultationType = errors.New("invalid consultation type")
)

// Draft accumulates the user's selections over one wizard session.
type Draft struct {
	ConsultationType models.ConsultationType // empty until chosen
	SelectedDate     models.Date             // zero until chosen
	SelectedTime     *models.TimeOfDay       // nil until chosen
	PaymentMethod    models.PaymentMethod
	Notes            string
}

// Session is one in-progress wizard dialog. It is owned by a single UI tree
// and mutated only through the command methods below.
type Session struct {
	ID        string
	DoctorID  string
	PatientID string

	step  Step
	draft Draft

	StartedAt time.Time
	updatedAt time.Time
	mu        sync.Mutex
}

// NewSession starts a wizard at the type step with an empty draft. The
// payment method is pre-defaulted; the payment step is a pass-through until
// the backend supports more than one method.
func NewSession(id, doctorID, patientID string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		DoctorID:  doctorID,
		PatientID: patientID,
		step:      StepType,
		draft:     Draft{PaymentMethod: models.PaymentCash},
		StartedAt: now,
		updatedAt: now,
	}
}

// Step returns the current wizard step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Draft returns a copy of the accumulated selections.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.updatedAt) > timeout
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

// SelectType records the requested consultation type. Patients request
// in_person or online; "both" is a slot property, not a request.
func (s *Session) SelectType(ct models.ConsultationType) error {
	if ct != models.ConsultationInPerson && ct != models.ConsultationOnline {
		return fmt.Errorf("%w: %q", ErrInvalidConsultationType, ct)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.ConsultationType = ct
	s.touch()
	return nil
}

// SelectDate records the chosen date and unconditionally clears the chosen
// time, even when the date is unchanged. A time picked under one date is
// never valid under another.
func (s *Session) SelectDate(date models.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SelectedDate = date
	s.draft.SelectedTime = nil
	s.touch()
}

// SelectTime records the chosen time. The time must be the start of a slot
// that is currently selectable for the chosen date and consultation type.
func (s *Session) SelectTime(t models.TimeOfDay, ix *availability.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.SelectedDate.IsZero() {
		return fmt.Errorf("%w: no date selected", ErrSlotNotSelectable)
	}
	for _, slot := range availability.SelectableSlots(ix, s.draft.SelectedDate, s.draft.ConsultationType) {
		if slot.Start == t {
			chosen := t
			s.draft.SelectedTime = &chosen
			s.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s on %s", ErrSlotNotSelectable, t, s.draft.SelectedDate)
}

// SetNotes stores optional free-text notes for the confirm step.
func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Notes = notes
	s.touch()
}

// CanAdvance reports whether the current step's completeness guard passes.
func (s *Session) CanAdvance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return canAdvance(s.step, s.draft)
}

func canAdvance(step Step, draft Draft) bool {
	switch step {
	case StepType:
		return draft.ConsultationType != ""
	case StepDate:
		return !draft.SelectedDate.IsZero()
	case StepTime:
		return draft.SelectedTime != nil
	case StepPayment, StepConfirm:
		return true
	}
	return false
}

// GoNext advances one step when the guard passes. When it does not, the step
// is left unchanged and false is returned; no transition occurs.
func (s *Session) GoNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !canAdvance(s.step, s.draft) {
		return false
	}
	for i, step := range stepOrder {
		if step == s.step && i+1 < len(stepOrder) {
			s.step = stepOrder[i+1]
			s.touch()
			return true
		}
	}
	return false
}

// GoBack moves one step back without clearing entered data. From the first
// step it returns true to signal that the wizard should be exited; where the
// user lands then is a navigation concern outside this package.
func (s *Session) GoBack() (exited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepType {
		return true
	}
	for i, step := range stepOrder {
		if step == s.step {
			s.step = stepOrder[i-1]
			s.touch()
			return false
		}
	}
	return false
}

// BuildRequest validates the draft and produces the booking payload. The
// chosen date and time combine into a timestamp in the provider's location
// with no timezone shift applied.
func (s *Session) BuildRequest(loc *time.Location) (models.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draft
	if d.ConsultationType == "" || d.SelectedDate.IsZero() || d.SelectedTime == nil {
		return models.BookingRequest{}, ErrIncompleteDraft
	}

	return models.BookingRequest{
		DoctorID:         s.DoctorID,
		ConsultationType: d.ConsultationType,
		StartsAt:         d.SelectedDate.At(*d.SelectedTime, loc),
		PaymentMethod:    d.PaymentMethod,
		Notes:            d.Notes,
	}, nil
}
