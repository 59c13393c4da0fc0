package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "bookings_created_total",
			Help:      "Created appointments by origin (client or admin).",
		},
		[]string{"created_by"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because the slot was already taken.",
		},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "reminders_sent_total",
			Help:      "Appointment reminders delivered to clients.",
		},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "bot_updates_total",
			Help:      "Processed Telegram updates by kind.",
		},
		[]string{"kind"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingConflicts, remindersSent, botUpdates)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a successfully created appointment.
func IncBookingCreated(createdBy string) {
	bookingsCreated.WithLabelValues(createdBy).Inc()
}

// IncBookingConflict counts a lost race for a slot.
func IncBookingConflict() {
	bookingConflicts.Inc()
}

// IncReminderSent counts a delivered reminder.
func IncReminderSent() {
	remindersSent.Inc()
}

// IncBotUpdate counts a processed Telegram update.
func IncBotUpdate(kind string) {
	botUpdates.WithLabelValues(kind).Inc()
}
