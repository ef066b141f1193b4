// Package mailer renders test-drive confirmation messages and simulates
// their delivery. No real transport is involved: a "sent" email is a
// structured log line carrying the full envelope.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"drivedesk/internal/metrics"
	"drivedesk/internal/models"

	"github.com/rs/zerolog"
)

const confirmationSubject = "Honda Test Drive Confirmation"

// LogMailer implements domain.Mailer by logging the rendered message.
type LogMailer struct {
	from   string
	logger *zerolog.Logger
}

func NewLogMailer(from string, logger *zerolog.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg models.Email) error {
	if msg.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	m.logger.Info().
		Str("from", m.from).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.Body)).
		Msg("confirmation email would be sent")
	metrics.IncEmailSent()

	return nil
}

// BuildConfirmation renders the confirmation email for a booking.
func BuildConfirmation(booking *models.Booking) models.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", booking.Customer)
	b.WriteString("Thank you for booking a test drive with Honda!\n\n")
	b.WriteString("Booking details:\n")
	fmt.Fprintf(&b, "  Vehicle:    %s\n", booking.Model)
	fmt.Fprintf(&b, "  Date:       %s\n", booking.Date)
	fmt.Fprintf(&b, "  Time:       %s\n", booking.Time)
	fmt.Fprintf(&b, "  Location:   %s\n", booking.Dealership)
	fmt.Fprintf(&b, "  Phone:      %s\n", booking.Phone)
	if booking.Message != "" {
		fmt.Fprintf(&b, "  Your message: %s\n", booking.Message)
	}
	b.WriteString("\nPlease bring a valid driver's license for your test drive.\n")
	b.WriteString("Our team will contact you shortly to confirm the appointment.\n")

	return models.Email{
		To:      booking.Email,
		Subject: confirmationSubject,
		Body:    b.String(),
	}
}
