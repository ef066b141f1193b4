package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"drivedesk/internal/domain"
	"drivedesk/internal/models"

	"github.com/google/uuid"
)

// BookingStore keeps the booking collection newest-first under a single key.
type BookingStore struct {
	kv  domain.KV
	key string
}

func NewBookingStore(kv domain.KV, keys Keys) *BookingStore {
	return &BookingStore{kv: kv, key: keys.withDefaults().Bookings}
}

// DeriveBranch maps a dealership name to its branch by substring match,
// checked in the fixed branch order. Unmatched names fall back to Central
// Delhi. The result is frozen into the booking at creation time and never
// recomputed.
func DeriveBranch(dealership string) string {
	for _, branch := range models.Branches {
		if strings.Contains(dealership, branch) {
			return branch
		}
	}
	return models.BranchCentralDelhi
}

// List returns the stored bookings, newest first. A missing key or an
// unavailable backend reads as an empty collection.
func (s *BookingStore) List(ctx context.Context) ([]models.Booking, error) {
	if s.kv == nil {
		return nil, nil
	}
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil || !ok {
		return nil, err
	}
	var bookings []models.Booking
	if err := json.Unmarshal([]byte(raw), &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// ListByBranch filters List by exact branch match, preserving order.
func (s *BookingStore) ListByBranch(ctx context.Context, branch string) ([]models.Booking, error) {
	bookings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Branch == branch {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Get returns the booking with the given id, or nil if unknown.
func (s *BookingStore) Get(ctx context.Context, id string) (*models.Booking, error) {
	bookings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, nil
}

// Create assigns id, pending status, derived branch and creation time, then
// prepends the record so the collection stays newest-first.
func (s *BookingStore) Create(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	if s.kv == nil {
		return nil, ErrStorageUnavailable
	}

	bookings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	booking := models.Booking{
		ID:         uuid.NewString(),
		Customer:   input.Customer,
		Email:      input.Email,
		Phone:      input.Phone,
		Model:      input.Model,
		Dealership: input.Dealership,
		Branch:     DeriveBranch(input.Dealership),
		Date:       input.Date,
		Time:       input.Time,
		Message:    input.Message,
		Status:     models.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	bookings = append([]models.Booking{booking}, bookings...)
	if err := s.save(ctx, bookings); err != nil {
		return nil, err
	}

	return &booking, nil
}

// UpdateStatus replaces the status of the matching record in place. An
// unknown id is a silent no-op: nothing is written and no error is returned.
func (s *BookingStore) UpdateStatus(ctx context.Context, id, status string) error {
	bookings, err := s.List(ctx)
	if err != nil {
		return err
	}

	for i := range bookings {
		if bookings[i].ID == id {
			bookings[i].Status = status
			return s.save(ctx, bookings)
		}
	}

	return nil
}

func (s *BookingStore) save(ctx context.Context, bookings []models.Booking) error {
	if s.kv == nil {
		return ErrStorageUnavailable
	}
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to encode bookings: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist bookings: %w", err)
	}
	return nil
}
