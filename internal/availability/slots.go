package availability

import "medibook/internal/models"

// SelectableSlots returns the ordered sublist of slots on date that can take
// a new booking of the requested consultation type. The result is empty, not
// an error, when the date has no entry or no index has loaded yet.
func SelectableSlots(ix *Index, date models.Date, requested models.ConsultationType) []models.TimeSlot {
	day, ok := ix.Lookup(date)
	if !ok {
		return nil
	}

	selectable := make([]models.TimeSlot, 0, len(day.Slots))
	for _, s := range day.Slots {
		if s.Selectable(requested) {
			selectable = append(selectable, s)
		}
	}
	return selectable
}

// Day-part boundaries (hour of day).
const (
	afternoonStartHour = 12
	eveningStartHour   = 17
)

// Day-part labels used for display grouping.
const (
	GroupMorning   = "morning"
	GroupAfternoon = "afternoon"
	GroupEvening   = "evening"
)

// SlotGroup is one day-part bucket of slots, in ascending time order.
type SlotGroup struct {
	Label string            `json:"label"`
	Slots []models.TimeSlot `json:"slots"`
}

// GroupSlots partitions slots into morning/afternoon/evening buckets by start
// hour, preserving order within each bucket. Empty buckets are omitted.
func GroupSlots(slots []models.TimeSlot) []SlotGroup {
	var morning, afternoon, evening []models.TimeSlot
	for _, s := range slots {
		switch {
		case s.Start.Hour < afternoonStartHour:
			morning = append(morning, s)
		case s.Start.Hour < eveningStartHour:
			afternoon = append(afternoon, s)
		default:
			evening = append(evening, s)
		}
	}

	groups := make([]SlotGroup, 0, 3)
	if len(morning) > 0 {
		groups = append(groups, SlotGroup{Label: GroupMorning, Slots: morning})
	}
	if len(afternoon) > 0 {
		groups = append(groups, SlotGroup{Label: GroupAfternoon, Slots: afternoon})
	}
	if len(evening) > 0 {
		groups = append(groups, SlotGroup{Label: GroupEvening, Slots: evening})
	}
	return groups
}
