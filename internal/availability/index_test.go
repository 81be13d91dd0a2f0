package availability

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"medibook/internal/models"
)

var testLogger = zerolog.Nop()

func TestBuildIndex(t *testing.T) {
	days := []RawDay{
		{Date: "2026-02-16", IsWorkingDay: true, Slots: []models.TimeSlot{
			{Start: models.TimeOfDay{Hour: 9}, End: models.TimeOfDay{Hour: 9, Minute: 30}, Available: true, Type: models.ConsultationBoth},
		}},
		{Date: "2026-02-17", IsBlocked: true, BlockReason: "vacation"},
	}

	ix := BuildIndex(days, &testLogger)
	if ix.Len() != 2 {
		t.Fatalf("expected 2 indexed days, got %d", ix.Len())
	}

	day, ok := ix.Lookup(models.Date{Year: 2026, Month: time.February, Day: 16})
	if !ok {
		t.Fatal("expected entry for 2026-02-16")
	}
	if !day.WorkingDay || len(day.Slots) != 1 {
		t.Errorf("unexpected day record: %+v", day)
	}

	blocked, ok := ix.Lookup(models.Date{Year: 2026, Month: time.February, Day: 17})
	if !ok || !blocked.Blocked || blocked.BlockReason != "vacation" {
		t.Errorf("unexpected blocked day: %+v ok=%v", blocked, ok)
	}
}

func TestBuildIndex_SkipsMalformedDates(t *testing.T) {
	days := []RawDay{
		{Date: "not-a-date"},
		{Date: "2026-02-16", IsWorkingDay: true},
		{Date: ""},
	}

	ix := BuildIndex(days, &testLogger)
	if ix.Len() != 1 {
		t.Fatalf("malformed entries must be skipped, not fail the build; got %d entries", ix.Len())
	}
	if _, ok := ix.Lookup(models.Date{Year: 2026, Month: time.February, Day: 16}); !ok {
		t.Error("the well-formed entry must survive")
	}
}

func TestBuildIndex_DuplicateDatesLastWins(t *testing.T) {
	days := []RawDay{
		{Date: "2026-02-16", IsWorkingDay: true},
		{Date: "2026-02-16", IsBlocked: true, BlockReason: "override"},
	}

	ix := BuildIndex(days, &testLogger)
	day, ok := ix.Lookup(models.Date{Year: 2026, Month: time.February, Day: 16})
	if !ok {
		t.Fatal("expected entry")
	}
	if !day.Blocked || day.BlockReason != "override" {
		t.Errorf("expected last entry to win, got %+v", day)
	}
}

func TestIndexLookupAbsent(t *testing.T) {
	ix := BuildIndex(nil, &testLogger)
	if _, ok := ix.Lookup(models.Date{Year: 2026, Month: time.February, Day: 16}); ok {
		t.Error("lookup outside the fetched range must report absent")
	}

	var nilIndex *Index
	if _, ok := nilIndex.Lookup(models.Date{Year: 2026, Month: time.February, Day: 16}); ok {
		t.Error("nil index must report absent")
	}
	if nilIndex.Len() != 0 {
		t.Error("nil index has zero length")
	}
}
