package service

import (
	"context"
	"encoding/json"
	"testing"

	"drivedesk/internal/events"
	"drivedesk/internal/models"
	"drivedesk/internal/repository"
	"drivedesk/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedbackFixture(t *testing.T) (*FeedbackService, *BookingService, *events.EventBus) {
	t.Helper()
	logger := zerolog.Nop()
	bus := events.NewEventBus()
	kv := repository.NewMemoryKV()
	bookings := storage.NewBookingStore(kv, storage.DefaultKeys())
	feedback := storage.NewFeedbackStore(kv, storage.DefaultKeys())
	return NewFeedbackService(feedback, bookings, bus, &logger),
		NewBookingService(bookings, bus, nil, &logger),
		bus
}

func TestFeedbackServiceRecord(t *testing.T) {
	ctx := context.Background()
	svc, bookingSvc, bus := newFeedbackFixture(t)

	var recorded []events.FeedbackEventPayload
	bus.Subscribe(events.EventFeedbackRecorded, func(event *events.Event) error {
		var payload events.FeedbackEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		recorded = append(recorded, payload)
		return nil
	})

	booking, err := bookingSvc.CreateBooking(ctx, models.BookingInput{
		Customer:   "Rahul Sharma",
		Model:      "Honda City",
		Dealership: "Honda Showroom - Gurgaon",
	})
	require.NoError(t, err)

	t.Run("WrongRatingCount", func(t *testing.T) {
		_, err := svc.Record(ctx, booking.ID, []int{5, 5, 5}, "")
		assert.ErrorIs(t, err, ErrInvalidRatings)
	})

	t.Run("RatingOutOfRange", func(t *testing.T) {
		_, err := svc.Record(ctx, booking.ID, []int{5, 5, 5, 5, 5, 5, 6}, "")
		assert.ErrorIs(t, err, ErrInvalidRatings)

		_, err = svc.Record(ctx, booking.ID, []int{0, 5, 5, 5, 5, 5, 5}, "")
		assert.ErrorIs(t, err, ErrInvalidRatings)
	})

	t.Run("UnknownBooking", func(t *testing.T) {
		_, err := svc.Record(ctx, "no-such-id", []int{5, 5, 5, 5, 5, 5, 5}, "")
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		fb, err := svc.Record(ctx, booking.ID, []int{5, 4, 5, 4, 5, 4, 5}, "Great experience")
		require.NoError(t, err)
		assert.Equal(t, "Rahul Sharma", fb.CustomerName, "name snapshotted from booking")
		assert.Equal(t, models.BranchGurgaon, fb.Branch, "branch snapshotted from booking")
		assert.InDelta(t, 4.6, fb.AverageRating, 0.001)

		require.Len(t, recorded, 1)
		assert.Equal(t, booking.ID, recorded[0].BookingID)
		assert.InDelta(t, 4.6, recorded[0].AverageRating, 0.001)
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := svc.Record(ctx, booking.ID, []int{3, 3, 3, 3, 3, 3, 3}, "")
		assert.ErrorIs(t, err, storage.ErrFeedbackExists)
		assert.Len(t, recorded, 1)
	})

	t.Run("ForBooking", func(t *testing.T) {
		fb, err := svc.ForBooking(ctx, booking.ID)
		require.NoError(t, err)
		require.NotNil(t, fb)
		assert.Equal(t, "Great experience", fb.Comments)
	})

	t.Run("ListByBranch", func(t *testing.T) {
		list, err := svc.ListByBranch(ctx, models.BranchGurgaon)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = svc.ListByBranch(ctx, models.BranchNoida)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
