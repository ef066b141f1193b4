package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivedesk",
			Name:      "bookings_created_total",
			Help:      "Bookings created by branch.",
		},
		[]string{"branch"},
	)

	statusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivedesk",
			Name:      "booking_status_updates_total",
			Help:      "Booking status transitions by new status.",
		},
		[]string{"status"},
	)

	managerLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivedesk",
			Name:      "manager_logins_total",
			Help:      "Manager login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	emailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "drivedesk",
			Name:      "confirmation_emails_total",
			Help:      "Simulated confirmation emails delivered.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivedesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsCreated, statusUpdates, managerLogins, emailsSent, httpRequests)
	})
}

// IncBookingCreated increments the booking counter for a branch label.
func IncBookingCreated(branch string) {
	bookingsCreated.WithLabelValues(branch).Inc()
}

// IncStatusUpdate increments the transition counter for a status label.
func IncStatusUpdate(status string) {
	statusUpdates.WithLabelValues(status).Inc()
}

// IncManagerLogin increments the login counter for an outcome label.
func IncManagerLogin(outcome string) {
	managerLogins.WithLabelValues(outcome).Inc()
}

// IncEmailSent increments the simulated delivery counter.
func IncEmailSent() {
	emailsSent.Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
