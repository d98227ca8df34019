package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "masajes_notification",
			Name:      "deliveries_total",
			Help:      "Notification delivery attempts by kind and status.",
		},
		[]string{"kind", "status"},
	)
)

// Register registers metrics with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(notificationsSent)
	})
}

func IncDelivery(kind, status string) {
	notificationsSent.WithLabelValues(kind, status).Inc()
}
