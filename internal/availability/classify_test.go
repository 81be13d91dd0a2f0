package availability

import (
	"testing"
	"time"

	"medibook/internal/models"
)

var today = models.Date{Year: 2026, Month: time.February, Day: 10}

func day(dateStr string, blocked bool, slots ...models.TimeSlot) RawDay {
	return RawDay{Date: dateStr, IsWorkingDay: true, IsBlocked: blocked, Slots: slots}
}

func openSlot(hour int) models.TimeSlot {
	return models.TimeSlot{
		Start:     models.TimeOfDay{Hour: hour},
		End:       models.TimeOfDay{Hour: hour, Minute: 30},
		Available: true,
		Type:      models.ConsultationBoth,
	}
}

func bookedSlot(hour int) models.TimeSlot {
	s := openSlot(hour)
	s.Booked = true
	s.AppointmentID = "appt-1"
	return s
}

func TestClassifyPrecedence(t *testing.T) {
	ix := BuildIndex([]RawDay{
		day("2026-02-16", false, openSlot(9)),
		day("2026-02-17", true, openSlot(9)), // blocked wins over open slots
		day("2026-02-18", false, bookedSlot(9)),
		day("2026-02-05", true), // past and blocked; past wins
	}, &testLogger)

	tests := []struct {
		name string
		date models.Date
		ix   *Index
		want Status
	}{
		{"available", models.Date{Year: 2026, Month: time.February, Day: 16}, ix, StatusAvailable},
		{"blocked wins over available", models.Date{Year: 2026, Month: time.February, Day: 17}, ix, StatusBlocked},
		{"full when everything booked", models.Date{Year: 2026, Month: time.February, Day: 18}, ix, StatusFull},
		{"past wins over blocked", models.Date{Year: 2026, Month: time.February, Day: 5}, ix, StatusPast},
		{"unavailable outside horizon", models.Date{Year: 2026, Month: time.September, Day: 1}, ix, StatusUnavailable},
		{"unknown while index not loaded", models.Date{Year: 2026, Month: time.February, Day: 16}, nil, StatusUnknown},
		{"past wins even without index", models.Date{Year: 2026, Month: time.January, Day: 1}, nil, StatusPast},
		{"today is not past", today, nil, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.date, tt.ix, today); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestClassify_EmptySlotListIsFull(t *testing.T) {
	ix := BuildIndex([]RawDay{{Date: "2026-02-20", IsWorkingDay: false}}, &testLogger)
	if got := Classify(models.Date{Year: 2026, Month: time.February, Day: 20}, ix, today); got != StatusFull {
		t.Errorf("a present day with no open slots classifies full, got %s", got)
	}
}

func TestStatusSelectableInCalendar(t *testing.T) {
	disabled := []Status{StatusPast, StatusBlocked, StatusFull}
	for _, s := range disabled {
		if s.SelectableInCalendar() {
			t.Errorf("%s must disable calendar selection", s)
		}
	}

	// Unknown and unavailable stay selectable; rejection is deferred to the
	// slot picker.
	selectable := []Status{StatusAvailable, StatusUnknown, StatusUnavailable}
	for _, s := range selectable {
		if !s.SelectableInCalendar() {
			t.Errorf("%s must keep calendar selection enabled", s)
		}
	}
}
