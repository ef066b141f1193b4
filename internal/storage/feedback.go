package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"drivedesk/internal/domain"
	"drivedesk/internal/models"
)

var ErrFeedbackExists = errors.New("feedback already recorded for this booking")

// FeedbackStore keeps post-drive ratings keyed by booking id, appended in
// submission order.
type FeedbackStore struct {
	kv  domain.KV
	key string
}

func NewFeedbackStore(kv domain.KV, keys Keys) *FeedbackStore {
	return &FeedbackStore{kv: kv, key: keys.withDefaults().Feedback}
}

func (s *FeedbackStore) List(ctx context.Context) ([]models.Feedback, error) {
	if s.kv == nil {
		return nil, nil
	}
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil || !ok {
		return nil, err
	}
	var feedback []models.Feedback
	if err := json.Unmarshal([]byte(raw), &feedback); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return feedback, nil
}

func (s *FeedbackStore) ListByBranch(ctx context.Context, branch string) ([]models.Feedback, error) {
	feedback, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Feedback, 0, len(feedback))
	for _, fb := range feedback {
		if fb.Branch == branch {
			filtered = append(filtered, fb)
		}
	}
	return filtered, nil
}

// ByBooking returns the feedback for a booking id, or nil if none exists.
func (s *FeedbackStore) ByBooking(ctx context.Context, bookingID string) (*models.Feedback, error) {
	feedback, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range feedback {
		if feedback[i].BookingID == bookingID {
			return &feedback[i], nil
		}
	}
	return nil, nil
}

// Record appends the feedback, computing the rounded average rating. At most
// one feedback per booking is kept.
func (s *FeedbackStore) Record(ctx context.Context, fb models.Feedback) (*models.Feedback, error) {
	if s.kv == nil {
		return nil, ErrStorageUnavailable
	}

	feedback, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, existing := range feedback {
		if existing.BookingID == fb.BookingID {
			return nil, ErrFeedbackExists
		}
	}

	fb.AverageRating = models.AverageOf(fb.Ratings)
	fb.CreatedAt = time.Now().UTC()

	feedback = append(feedback, fb)
	data, err := json.Marshal(feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feedback: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return nil, fmt.Errorf("failed to persist feedback: %w", err)
	}

	return &fb, nil
}
