package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "reservation_outcomes_total",
			Help:      "Reservation create attempts by outcome (created, conflict, rejected, error).",
		},
		[]string{"outcome"},
	)

	invariantViolations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "slot_invariant_violations_total",
			Help:      "Dates observed holding an impossible slot combination.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationOutcomes, invariantViolations)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservationOutcome records the result of a reservation create attempt.
func IncReservationOutcome(outcome string) {
	reservationOutcomes.WithLabelValues(outcome).Inc()
}

// IncInvariantViolation records a date whose stored reservations break
// slot exclusivity.
func IncInvariantViolation() {
	invariantViolations.Inc()
}
