package domain

import (
	"context"

	"drivedesk/internal/models"
)

// KV is the persistence substrate the stores depend on. Get reports absence
// via the bool instead of an error so callers can treat "nothing stored yet"
// as an empty collection.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type BookingStore interface {
	List(ctx context.Context) ([]models.Booking, error)
	ListByBranch(ctx context.Context, branch string) ([]models.Booking, error)
	Create(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Get(ctx context.Context, id string) (*models.Booking, error)
}

type ManagerDirectory interface {
	List(ctx context.Context) ([]models.Manager, error)
	Register(ctx context.Context, input models.ManagerInput) (*models.Manager, error)
	Authenticate(ctx context.Context, email, password string) (*models.ManagerSession, error)
	CurrentSession(ctx context.Context) (*models.ManagerSession, error)
	EndSession(ctx context.Context) error
	AvailableBranches(ctx context.Context) ([]string, error)
}

type FeedbackStore interface {
	List(ctx context.Context) ([]models.Feedback, error)
	ListByBranch(ctx context.Context, branch string) ([]models.Feedback, error)
	ByBooking(ctx context.Context, bookingID string) (*models.Feedback, error)
	Record(ctx context.Context, fb models.Feedback) (*models.Feedback, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Mailer delivers (or simulates delivering) a confirmation message.
type Mailer interface {
	Send(ctx context.Context, msg models.Email) error
}

// MailQueue accepts bookings for asynchronous confirmation delivery.
type MailQueue interface {
	EnqueueConfirmation(ctx context.Context, booking *models.Booking) error
}
