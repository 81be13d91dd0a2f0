// Package datasource owns the lifecycle of fetched availability snapshots.
package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medibook/internal/availability"
	"medibook/internal/metrics"
	"medibook/internal/models"
)

// AvailabilityFetcher fetches per-day availability for a date range.
type AvailabilityFetcher interface {
	FetchAvailability(ctx context.Context, doctorID string, start, end models.Date) ([]availability.RawDay, error)
}

// AvailabilitySource holds the current availability snapshot for one doctor.
// Refresh replaces the snapshot wholesale; stale data is never merged. A
// refresh that resolves after being superseded or cancelled is discarded
// rather than applied.
type AvailabilitySource struct {
	fetcher       AvailabilityFetcher
	doctorID      string
	horizonMonths int
	loc           *time.Location
	logger        *zerolog.Logger

	mu         sync.Mutex
	index      *availability.Index
	generation uint64
}

// NewAvailabilitySource creates a source with nothing loaded yet. A nil
// snapshot drives the calendar's "unknown" status until the first refresh.
func NewAvailabilitySource(fetcher AvailabilityFetcher, doctorID string, horizonMonths int, loc *time.Location, logger *zerolog.Logger) *AvailabilitySource {
	if horizonMonths <= 0 {
		horizonMonths = 6
	}
	if loc == nil {
		loc = time.Local
	}
	return &AvailabilitySource{
		fetcher:       fetcher,
		doctorID:      doctorID,
		horizonMonths: horizonMonths,
		loc:           loc,
		logger:        logger,
	}
}

// DoctorID returns the doctor this source tracks.
func (s *AvailabilitySource) DoctorID() string {
	return s.doctorID
}

// Snapshot returns the current index and whether a fetch has completed. The
// index is nil until then; loaded-but-empty is a distinct state.
func (s *AvailabilitySource) Snapshot() (*availability.Index, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, s.index != nil
}

// Refresh fetches [today, today+horizon] and replaces the snapshot. When a
// newer refresh started in the meantime, or the context was cancelled while
// waiting, the result is dropped without touching the snapshot.
func (s *AvailabilitySource) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	today := models.Today(s.loc)
	end := today.AddMonths(s.horizonMonths)

	days, err := s.fetcher.FetchAvailability(ctx, s.doctorID, today, end)
	if err != nil {
		metrics.IncAvailabilityRefresh("error")
		return fmt.Errorf("refresh availability: %w", err)
	}
	if ctx.Err() != nil {
		metrics.IncAvailabilityRefresh("cancelled")
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		metrics.IncAvailabilityRefresh("superseded")
		if s.logger != nil {
			s.logger.Debug().Str("doctor_id", s.doctorID).Msg("dropping superseded availability refresh")
		}
		return nil
	}

	s.index = availability.BuildIndex(days, s.logger)
	metrics.IncAvailabilityRefresh("ok")
	if s.logger != nil {
		s.logger.Info().Str("doctor_id", s.doctorID).Int("days", s.index.Len()).Msg("availability snapshot replaced")
	}
	return nil
}
