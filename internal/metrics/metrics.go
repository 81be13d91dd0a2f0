package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medibook",
			Name:      "http_requests_total",
			Help:      "Count of gateway HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	availabilityRefresh = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medibook",
			Name:      "availability_refresh_total",
			Help:      "Count of availability snapshot refreshes by outcome.",
		},
		[]string{"outcome"},
	)

	bookingSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medibook",
			Name:      "booking_submitted_total",
			Help:      "Count of booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	wizardSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medibook",
			Name:      "wizard_sessions_total",
			Help:      "Count of wizard sessions by lifecycle event.",
		},
		[]string{"event"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, availabilityRefresh, bookingSubmitted, wizardSessions)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncAvailabilityRefresh(outcome string) {
	availabilityRefresh.WithLabelValues(outcome).Inc()
}

func IncBookingSubmitted(outcome string) {
	bookingSubmitted.WithLabelValues(outcome).Inc()
}

func IncWizardSession(event string) {
	wizardSessions.WithLabelValues(event).Inc()
}
