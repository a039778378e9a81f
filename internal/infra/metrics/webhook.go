package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		webhookRequestsTotal,
		webhookVerifyDuration,
		webhookDuplicatesTotal,
	)
}

var (
	// result: accepted|rejected|unverified|ignored|unavailable
	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_requests_total",
			Help: "Inbound payment webhook deliveries by handling result.",
		},
		[]string{"result"},
	)

	webhookVerifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_webhook_verify_duration_seconds",
			Help:    "Time spent verifying and decoding webhook payloads.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	webhookDuplicatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_duplicates_total",
			Help: "Deliveries skipped because the event id was already claimed.",
		},
		[]string{"type"},
	)
)

func IncWebhook(result string) {
	webhookRequestsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveVerify(d time.Duration) {
	webhookVerifyDuration.Observe(d.Seconds())
}

func IncDuplicate(eventType string) {
	webhookDuplicatesTotal.WithLabelValues(norm(eventType)).Inc()
}
