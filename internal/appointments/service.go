// Package appointments serves the patient's appointment list.
package appointments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"medibook/internal/events"
	"medibook/internal/models"
)

// Client is the slice of the provider API this service needs.
type Client interface {
	ListAppointments(ctx context.Context, patientID string) ([]models.Appointment, error)
	CancelBooking(ctx context.Context, appointmentID, reason string) error
}

// Service fetches, splits and cancels a patient's appointments.
type Service struct {
	client Client
	bus    *events.Bus
	logger *zerolog.Logger
	now    func() time.Time
}

// NewService creates the appointments service.
func NewService(client Client, bus *events.Bus, logger *zerolog.Logger) *Service {
	return &Service{
		client: client,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// Upcoming returns appointments starting at or after now, soonest first.
func (s *Service) Upcoming(ctx context.Context, patientID string) ([]models.Appointment, error) {
	all, err := s.client.ListAppointments(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	now := s.now()
	var upcoming []models.Appointment
	for _, a := range all {
		if !a.StartsAt.Before(now) && a.Status != models.StatusCancelled {
			upcoming = append(upcoming, a)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})
	return upcoming, nil
}

// Past returns appointments that already started, most recent first.
func (s *Service) Past(ctx context.Context, patientID string) ([]models.Appointment, error) {
	all, err := s.client.ListAppointments(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	now := s.now()
	var past []models.Appointment
	for _, a := range all {
		if a.StartsAt.Before(now) {
			past = append(past, a)
		}
	}
	sort.Slice(past, func(i, j int) bool {
		return past[j].StartsAt.Before(past[i].StartsAt)
	})
	return past, nil
}

// Cancel cancels an appointment. Backend validation failures, such as a
// cancellation-window violation, propagate verbatim for display.
func (s *Service) Cancel(ctx context.Context, appointmentID, reason string) error {
	if err := s.client.CancelBooking(ctx, appointmentID, reason); err != nil {
		return err
	}

	if s.bus != nil {
		_ = s.bus.PublishJSON(events.TypeAppointmentCancelled, map[string]string{
			"appointment_id": appointmentID,
			"reason":         reason,
		})
	}
	if s.logger != nil {
		s.logger.Info().Str("appointment_id", appointmentID).Msg("appointment cancelled")
	}
	return nil
}

// Page is one page of appointments.
type Page struct {
	Items      []models.Appointment `json:"items"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Total      int                  `json:"total"`
}

// Paginate slices items into the requested zero-based page.
func Paginate(items []models.Appointment, page, perPage int) Page {
	if perPage <= 0 {
		perPage = 8
	}
	totalPages := (len(items) + perPage - 1) / perPage
	if page < 0 {
		page = 0
	}

	startIdx := page * perPage
	endIdx := startIdx + perPage
	if startIdx > len(items) {
		startIdx = len(items)
	}
	if endIdx > len(items) {
		endIdx = len(items)
	}

	return Page{
		Items:      items[startIdx:endIdx],
		Page:       page,
		TotalPages: totalPages,
		Total:      len(items),
	}
}
