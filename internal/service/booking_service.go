package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"drivedesk/internal/domain"
	"drivedesk/internal/events"
	"drivedesk/internal/metrics"
	"drivedesk/internal/models"

	"github.com/rs/zerolog"
)

var ErrUnknownStatus = errors.New("unknown booking status")

type BookingService struct {
	store    domain.BookingStore
	eventBus domain.EventPublisher
	mail     domain.MailQueue
	logger   *zerolog.Logger
}

func NewBookingService(store domain.BookingStore, eventBus domain.EventPublisher, mail domain.MailQueue, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		mail:     mail,
		logger:   logger,
	}
}

// CreateBooking stores the request and schedules the confirmation email.
// Email delivery is fire-and-forget: its failure never fails the booking.
func (s *BookingService) CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	booking, err := s.store.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCreated(booking.Branch)
	s.publishBookingEvent(events.EventBookingCreated, booking)

	if s.mail != nil {
		if err := s.mail.EnqueueConfirmation(ctx, booking); err != nil {
			s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("enqueue confirmation failed")
		}
	}

	return booking, nil
}

// ListBookings returns all bookings, or the branch subset when branch is
// non-empty. Ordering is newest-first either way.
func (s *BookingService) ListBookings(ctx context.Context, branch string) ([]models.Booking, error) {
	if branch == "" {
		return s.store.List(ctx)
	}
	return s.store.ListByBranch(ctx, branch)
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.Get(ctx, id)
}

// UpdateStatus moves a booking to a new status. A missing id stays a silent
// no-op at the store level; no event is published for it.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) error {
	if !models.IsValidStatus(status) {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, status)
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	booking, err := s.store.Get(ctx, id)
	if err == nil && booking != nil {
		metrics.IncStatusUpdate(status)
		s.publishBookingEvent(events.EventBookingStatusChanged, booking)
	}

	return nil
}

// ModelPopularity aggregates bookings per model for one branch: count and
// integer percentage, most requested model first.
func (s *BookingService) ModelPopularity(ctx context.Context, branch string) ([]models.ModelPopularity, error) {
	bookings, err := s.ListBookings(ctx, branch)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.Model]++
	}

	total := len(bookings)
	popularity := make([]models.ModelPopularity, 0, len(counts))
	for model, count := range counts {
		percentage := 0
		if total > 0 {
			percentage = int(float64(count)/float64(total)*100 + 0.5)
		}
		popularity = append(popularity, models.ModelPopularity{
			Model:      model,
			Count:      count,
			Percentage: percentage,
		})
	}

	sort.Slice(popularity, func(i, j int) bool {
		if popularity[i].Count == popularity[j].Count {
			return popularity[i].Model < popularity[j].Model
		}
		return popularity[i].Count > popularity[j].Count
	})

	return popularity, nil
}

func (s *BookingService) publishBookingEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		Customer:   booking.Customer,
		Model:      booking.Model,
		Dealership: booking.Dealership,
		Branch:     booking.Branch,
		Date:       booking.Date,
		Time:       booking.Time,
		Status:     booking.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish event failed")
	}
}
