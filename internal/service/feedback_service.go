package service

import (
	"context"
	"errors"
	"fmt"

	"drivedesk/internal/domain"
	"drivedesk/internal/events"
	"drivedesk/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidRatings  = errors.New("invalid ratings")
)

type FeedbackService struct {
	feedback domain.FeedbackStore
	bookings domain.BookingStore
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewFeedbackService(feedback domain.FeedbackStore, bookings domain.BookingStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		feedback: feedback,
		bookings: bookings,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Record validates the rating sheet, snapshots customer name and branch from
// the booking, and stores the feedback. The booking id is the join key.
func (s *FeedbackService) Record(ctx context.Context, bookingID string, ratings []int, comments string) (*models.Feedback, error) {
	if len(ratings) != models.FeedbackQuestionCount {
		return nil, fmt.Errorf("%w: expected %d ratings, got %d", ErrInvalidRatings, models.FeedbackQuestionCount, len(ratings))
	}
	for _, r := range ratings {
		if r < models.RatingMin || r > models.RatingMax {
			return nil, fmt.Errorf("%w: rating %d out of range", ErrInvalidRatings, r)
		}
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
	}

	recorded, err := s.feedback.Record(ctx, models.Feedback{
		BookingID:    booking.ID,
		CustomerName: booking.Customer,
		Ratings:      ratings,
		Comments:     comments,
		Branch:       booking.Branch,
	})
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.FeedbackEventPayload{
			BookingID:     recorded.BookingID,
			Branch:        recorded.Branch,
			AverageRating: recorded.AverageRating,
		}
		if err := s.eventBus.PublishJSON(events.EventFeedbackRecorded, payload); err != nil {
			s.logger.Warn().Err(err).Msg("publish event failed")
		}
	}

	return recorded, nil
}

func (s *FeedbackService) ListByBranch(ctx context.Context, branch string) ([]models.Feedback, error) {
	return s.feedback.ListByBranch(ctx, branch)
}

// ForBooking returns the recorded feedback for a booking, or nil.
func (s *FeedbackService) ForBooking(ctx context.Context, bookingID string) (*models.Feedback, error) {
	return s.feedback.ByBooking(ctx, bookingID)
}
