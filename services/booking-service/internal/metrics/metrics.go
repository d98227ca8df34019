package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "masajes_booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by channel and outcome code (OK on success).",
		},
		[]string{"channel", "outcome"},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "masajes_booking",
			Name:      "status_changes_total",
			Help:      "Reservation status changes by target status.",
		},
		[]string{"status"},
	)

	slotQueries = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "masajes_booking",
			Name:      "slots_returned",
			Help:      "Number of slots returned per availability query.",
			Buckets:   []float64{0, 1, 2, 4, 8, 12, 16, 24, 32, 48},
		},
	)
)

// Register registers metrics with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingSubmissions, statusChanges, slotQueries)
	})
}

func IncSubmission(channel, outcome string) {
	bookingSubmissions.WithLabelValues(channel, outcome).Inc()
}

func IncStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

func ObserveSlots(n int) {
	slotQueries.Observe(float64(n))
}
