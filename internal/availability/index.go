// Package availability holds the read-side booking core: the per-fetch
// availability index, the calendar date classifier and slot filtering.
package availability

import (
	"github.com/rs/zerolog"

	"medibook/internal/models"
)

// RawDay is one day entry exactly as fetched from the provider API. The date
// stays a string until indexing so a single malformed entry cannot fail the
// whole payload.
type RawDay struct {
	Date         string            `json:"date"`
	IsWorkingDay bool              `json:"is_working_day"`
	IsBlocked    bool              `json:"is_blocked"`
	BlockReason  string            `json:"block_reason,omitempty"`
	Slots        []models.TimeSlot `json:"slots"`
}

// Index is an immutable date -> day lookup over one fetched snapshot.
// It is built once per fetch window and replaced wholesale on refetch.
type Index struct {
	days map[models.Date]models.AvailabilityDay
}

// BuildIndex constructs the index from a fetched payload. Entries without a
// parseable date are skipped and logged; the index still builds. When the
// payload carries duplicate dates the last entry wins.
func BuildIndex(days []RawDay, logger *zerolog.Logger) *Index {
	ix := &Index{days: make(map[models.Date]models.AvailabilityDay, len(days))}

	for _, raw := range days {
		date, err := models.ParseDate(raw.Date)
		if err != nil {
			if logger != nil {
				logger.Warn().Str("date", raw.Date).Err(err).Msg("skipping availability entry with bad date")
			}
			continue
		}
		ix.days[date] = models.AvailabilityDay{
			Date:        date,
			WorkingDay:  raw.IsWorkingDay,
			Blocked:     raw.IsBlocked,
			BlockReason: raw.BlockReason,
			Slots:       raw.Slots,
		}
	}
	return ix
}

// Lookup returns the day record for a date. The second return value is false
// for any date outside the fetched range or without an entry; callers must
// treat "absent" distinctly from "present but not working".
func (ix *Index) Lookup(date models.Date) (models.AvailabilityDay, bool) {
	if ix == nil {
		return models.AvailabilityDay{}, false
	}
	day, ok := ix.days[date]
	return day, ok
}

// Len returns the number of indexed days.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.days)
}
