package storage

import (
	"context"
	"testing"

	"drivedesk/internal/models"
	"drivedesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput(dealership string) models.BookingInput {
	return models.BookingInput{
		Customer:   "Rahul Sharma",
		Email:      "rahul@example.com",
		Phone:      "+91 98100 12345",
		Model:      "Honda City",
		Dealership: dealership,
		Date:       "2026-09-15",
		Time:       "11:00",
	}
}

func TestDeriveBranch(t *testing.T) {
	tests := []struct {
		dealership string
		want       string
	}{
		{"Honda Showroom - Noida", models.BranchNoida},
		{"Honda Showroom - Gurgaon", models.BranchGurgaon},
		{"Honda Showroom - Central Delhi", models.BranchCentralDelhi},
		{"Noida Motors", models.BranchNoida},
		{"Somewhere Else", models.BranchCentralDelhi},
		{"", models.BranchCentralDelhi},
	}

	for _, tt := range tests {
		t.Run(tt.dealership, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveBranch(tt.dealership))
		})
	}
}

func TestBookingStore(t *testing.T) {
	ctx := context.Background()
	store := NewBookingStore(repository.NewMemoryKV(), DefaultKeys())

	t.Run("ListEmpty", func(t *testing.T) {
		bookings, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, bookings)
	})

	t.Run("CreatePrepends", func(t *testing.T) {
		first, err := store.Create(ctx, testInput("Honda Showroom - Noida"))
		require.NoError(t, err)
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, models.StatusPending, first.Status)
		assert.Equal(t, models.BranchNoida, first.Branch)
		assert.False(t, first.CreatedAt.IsZero())

		second, err := store.Create(ctx, testInput("Honda Showroom - Gurgaon"))
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		bookings, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, second.ID, bookings[0].ID, "newest booking comes first")
		assert.Equal(t, first.ID, bookings[1].ID)
	})

	t.Run("ListByBranch", func(t *testing.T) {
		noida, err := store.ListByBranch(ctx, models.BranchNoida)
		require.NoError(t, err)
		require.Len(t, noida, 1)
		assert.Equal(t, models.BranchNoida, noida[0].Branch)

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Greater(t, len(all), len(noida))

		empty, err := store.ListByBranch(ctx, models.BranchCentralDelhi)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		bookings, err := store.List(ctx)
		require.NoError(t, err)
		target := bookings[1]

		require.NoError(t, store.UpdateStatus(ctx, target.ID, models.StatusConfirmed))

		after, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, after, len(bookings))
		for _, b := range after {
			if b.ID == target.ID {
				assert.Equal(t, models.StatusConfirmed, b.Status)
				assert.Equal(t, target.Customer, b.Customer)
				assert.Equal(t, target.CreatedAt, b.CreatedAt)
			} else {
				assert.Equal(t, models.StatusPending, b.Status, "other records untouched")
			}
		}
	})

	t.Run("UpdateStatusUnknownIDIsNoOp", func(t *testing.T) {
		before, err := store.List(ctx)
		require.NoError(t, err)

		require.NoError(t, store.UpdateStatus(ctx, "no-such-id", models.StatusCancelled))

		after, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Get", func(t *testing.T) {
		bookings, err := store.List(ctx)
		require.NoError(t, err)

		got, err := store.Get(ctx, bookings[0].ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, bookings[0].ID, got.ID)

		missing, err := store.Get(ctx, "no-such-id")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestBookingStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := NewBookingStore(nil, DefaultKeys())

	bookings, err := store.List(ctx)
	require.NoError(t, err, "missing storage reads as empty, never an error")
	assert.Empty(t, bookings)

	_, err = store.Create(ctx, testInput("Honda Showroom - Noida"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestBookingStoreCorruptData(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, models.DefaultBookingsKey, "{not json"))

	store := NewBookingStore(kv, DefaultKeys())
	_, err := store.List(ctx)
	assert.Error(t, err)
}

func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewBookingStore(repository.NewMemoryKV(), DefaultKeys())

	booking, err := store.Create(ctx, testInput("Honda Showroom - Gurgaon"))
	require.NoError(t, err)
	assert.Equal(t, models.BranchGurgaon, booking.Branch)

	gurgaon, err := store.ListByBranch(ctx, models.BranchGurgaon)
	require.NoError(t, err)
	require.Len(t, gurgaon, 1)
	assert.Equal(t, booking.ID, gurgaon[0].ID)

	require.NoError(t, store.UpdateStatus(ctx, booking.ID, models.StatusConfirmed))

	gurgaon, err = store.ListByBranch(ctx, models.BranchGurgaon)
	require.NoError(t, err)
	require.Len(t, gurgaon, 1)
	assert.Equal(t, models.StatusConfirmed, gurgaon[0].Status)
}
