package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		eventsDispatchedTotal,
		stepOutcomesTotal,
		ordersMaterializedTotal,
		ticketsIssuedTotal,
		notificationsTotal,
		subscriptionSyncTotal,
		failuresRecordedTotal,
	)
}

var (
	// result: handled|ignored|failed
	eventsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_events_total",
			Help: "Dispatched provider events by type and result.",
		},
		[]string{"type", "result"},
	)

	// step: ensure_order|issue_tickets|notify|writeback|...; result: ok|error|panic
	stepOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_step_total",
			Help: "Outcomes of isolated fulfillment steps.",
		},
		[]string{"step", "result"},
	)

	// path: created|existing|joined
	ordersMaterializedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_orders_total",
			Help: "Orders returned by materialization, by path taken.",
		},
		[]string{"path"},
	)

	ticketsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_tickets_total",
			Help: "Ticket persist attempts by result.",
		},
		[]string{"result"},
	)

	// status: sent|skipped|failed
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_notifications_total",
			Help: "Ticket notifications by outcome.",
		},
		[]string{"status"},
	)

	subscriptionSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_sync_total",
			Help: "Subscription mirror updates by event type and result.",
		},
		[]string{"type", "result"},
	)

	failuresRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_failures_recorded_total",
			Help: "Dead-letter records written, by step.",
		},
		[]string{"step"},
	)
)

func IncEvent(eventType, result string) {
	eventsDispatchedTotal.WithLabelValues(norm(eventType), norm(result)).Inc()
}

func IncStep(step, result string) {
	stepOutcomesTotal.WithLabelValues(norm(step), norm(result)).Inc()
}

func IncOrder(path string) {
	ordersMaterializedTotal.WithLabelValues(norm(path)).Inc()
}

func AddTickets(result string, n int) {
	if n <= 0 {
		return
	}
	ticketsIssuedTotal.WithLabelValues(norm(result)).Add(float64(n))
}

func IncNotification(status string) {
	notificationsTotal.WithLabelValues(norm(status)).Inc()
}

func IncSubscriptionSync(eventType, result string) {
	subscriptionSyncTotal.WithLabelValues(norm(eventType), norm(result)).Inc()
}

func IncFailureRecorded(step string) {
	failuresRecordedTotal.WithLabelValues(norm(step)).Inc()
}
